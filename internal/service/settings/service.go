// Package settings настройки аккаунта оператора: буфер между подтвержденными
// бронированиями.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	settingsRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-RentalService/internal/service/settings/models"
)

// Service сервис настроек единственного аккаунта оператора
type Service struct {
	repo               SettingsRepository
	accountID          int64
	defaultBufferHours int
	logger             Logger
}

// NewService создает сервис; accountID берется из конфигурации
func NewService(repo SettingsRepository, accountID int64, defaultBufferHours int, logger Logger) *Service {
	return &Service{
		repo:               repo,
		accountID:          accountID,
		defaultBufferHours: defaultBufferHours,
		logger:             logger,
	}
}

// Buffer действующий буфер аккаунта. Отсутствие настроек дает значение по умолчанию,
// ошибка хранилища возвращается вызывающему.
func (s *Service) Buffer(ctx context.Context) (time.Duration, error) {
	st, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return st.Buffer(s.defaultBufferHours), nil
}

// Get настройки аккаунта
func (s *Service) Get(ctx context.Context) (*models.SettingsResponse, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(st), nil
}

// Update меняет буфер. Доступно только привилегированной роли.
func (s *Service) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.SettingsResponse, error) {
	s.logger.Info("UpdateSettings: account=%d buffer=%v by actor=%d", s.accountID, req.BufferHours, req.Actor.ID)

	// 1. Проверяем права
	if !req.Actor.Role.IsPrivileged() {
		s.logger.Warn("UpdateSettings: actor=%d role=%s is not privileged", req.Actor.ID, req.Actor.Role)
		return nil, ErrAccessDenied
	}

	// 2. Валидируем значение
	if req.BufferHours != nil && (*req.BufferHours < domain.MinBufferHours || *req.BufferHours > domain.MaxBufferHours) {
		return nil, fmt.Errorf("%w: must be between %d and %d", ErrInvalidBuffer, domain.MinBufferHours, domain.MaxBufferHours)
	}

	// 3. Сохраняем
	saved, err := s.repo.Upsert(ctx, &domain.OperatorSettings{AccountID: s.accountID, BufferHours: req.BufferHours})
	if err != nil {
		s.logger.Error("UpdateSettings: failed to save settings for account=%d: %v", s.accountID, err)
		return nil, fmt.Errorf("%w: failed to save settings: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateSettings: account=%d buffer is now %s", s.accountID, saved.Buffer(s.defaultBufferHours))
	return s.toResponse(saved), nil
}

func (s *Service) load(ctx context.Context) (*domain.OperatorSettings, error) {
	st, err := s.repo.Get(ctx, s.accountID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return &domain.OperatorSettings{AccountID: s.accountID}, nil
		}
		s.logger.Error("Settings: failed to load settings for account=%d: %v", s.accountID, err)
		return nil, fmt.Errorf("%w: failed to load settings: %v", ErrInternal, err)
	}
	return st, nil
}

func (s *Service) toResponse(st *domain.OperatorSettings) *models.SettingsResponse {
	resp := &models.SettingsResponse{
		AccountID:          s.accountID,
		BufferHours:        int(st.Buffer(s.defaultBufferHours) / time.Hour),
		BufferHoursDefault: st.BufferHours == nil,
	}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}
