package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
)

// FingerprintHeader заголовок с отпечатком браузера клиента
const FingerprintHeader = "X-Fingerprint"

// ClientMeta извлекает идентификацию клиента для abuse guard.
// X-Forwarded-For учитывается, только если trustProxy включен.
func ClientMeta(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			meta := abuseguard.ClientMeta{
				IP:          clientIP(r, trustProxy),
				Fingerprint: strings.TrimSpace(r.Header.Get(FingerprintHeader)),
				UserAgent:   r.UserAgent(),
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientMetaKey, meta)))
		})
	}
}

// GetClientMeta идентификация клиента из контекста
func GetClientMeta(ctx context.Context) abuseguard.ClientMeta {
	meta, _ := ctx.Value(clientMetaKey).(abuseguard.ClientMeta)
	return meta
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
