package abuseguard

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Причины автоматических банов
const (
	ReasonDuplicatePayload = "too many identical submissions"
	ReasonRepeatedFailures = "too many failed submissions"
)

// ClientMeta идентификация анонимного клиента
type ClientMeta struct {
	IP          string
	Fingerprint string
	UserAgent   string
}

// Key ключ лимитов: отпечаток, иначе IP, иначе user-agent
func (m ClientMeta) Key() string {
	switch {
	case strings.TrimSpace(m.Fingerprint) != "":
		return "fp:" + strings.TrimSpace(m.Fingerprint)
	case strings.TrimSpace(m.IP) != "":
		return "ip:" + strings.TrimSpace(m.IP)
	case strings.TrimSpace(m.UserAgent) != "":
		return "ua:" + strings.TrimSpace(m.UserAgent)
	}
	return "anonymous"
}

// Subjects субъекты, по которым ищется и ставится бан
func (m ClientMeta) Subjects() []string {
	out := make([]string, 0, 2)
	if ip := strings.TrimSpace(m.IP); ip != "" {
		out = append(out, "ip:"+ip)
	}
	if fp := strings.TrimSpace(m.Fingerprint); fp != "" {
		out = append(out, "fp:"+fp)
	}
	if len(out) == 0 {
		out = append(out, m.Key())
	}
	return out
}

// Ban блокировка субъекта
type Ban struct {
	Subject   string     `json:"subject"`
	Reason    string     `json:"reason"`
	Until     *time.Time `json:"until,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active бан без срока или со сроком в будущем
func (b Ban) Active(now time.Time) bool {
	return b.Until == nil || b.Until.After(now)
}

// Payload поля заявки, по которым ищутся повторы
type Payload struct {
	ResourceID   int64
	StartDate    string
	EndDate      string
	PickupTime   string
	ReturnTime   string
	CustomerName string
	Phone        string
}

// Hash стабильный BLAKE2b-256 от нормализованных полей
func Hash(p Payload) string {
	normalized := strings.Join([]string{
		strconv.FormatInt(p.ResourceID, 10),
		strings.TrimSpace(p.StartDate),
		strings.TrimSpace(p.EndDate),
		strings.TrimSpace(p.PickupTime),
		strings.TrimSpace(p.ReturnTime),
		strings.ToLower(strings.Join(strings.Fields(p.CustomerName), " ")),
		domain.DigitsOnly(p.Phone),
	}, "\x1f")
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Outcome результат защищенной операции
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeConflict Outcome = "conflict"
	OutcomeError    Outcome = "error"
)

// Request входящая заявка на создание бронирования
type Request struct {
	Meta    ClientMeta
	Payload Payload
	// Verified запрос с проверенной сессией оператора, guard пропускается
	Verified bool
}

// Config лимиты guard
type Config struct {
	RateLimit  int64
	RateWindow time.Duration

	DuplicateLimit  int64
	DuplicateWindow time.Duration
	DuplicateBan    time.Duration

	FailureLimit  int64
	FailureWindow time.Duration
	FailureBan    time.Duration
}

// DefaultConfig лимиты по умолчанию
func DefaultConfig() Config {
	return Config{
		RateLimit:       10,
		RateWindow:      10 * time.Minute,
		DuplicateLimit:  3,
		DuplicateWindow: 30 * time.Minute,
		DuplicateBan:    time.Hour,
		FailureLimit:    5,
		FailureWindow:   time.Hour,
		FailureBan:      time.Hour,
	}
}
