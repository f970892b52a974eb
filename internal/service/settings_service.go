package service

import (
	"context"
	"log"
	"time"

	"chat-guardian-be/internal/dto"
	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/repository/memory"
	"chat-guardian-be/internal/repository/unitofwork"
	"chat-guardian-be/pkg/events"
	"chat-guardian-be/pkg/guardian"
	pktNats "chat-guardian-be/pkg/nats"

	"github.com/google/uuid"
)

type ISettingsService interface {
	GetSettings(ctx context.Context) (*dto.GetSettingsResponse, error)
	UpdateSettings(ctx context.Context, updatedBy string, request *dto.UpdateSettingsRequest) (*dto.GetSettingsResponse, error)
	// Snapshot returns the settings used for one chat turn. Reads are served
	// from the in-process cache; a missing or unreadable row falls back to
	// the shipped defaults so chat never blocks on configuration.
	Snapshot(ctx context.Context) guardian.Settings
}

type settingsService struct {
	uowFactory     unitofwork.RepositoryFactory
	cache          *memory.SettingsCache
	eventPublisher *pktNats.Publisher
}

func NewSettingsService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.SettingsCache,
	eventPublisher *pktNats.Publisher,
) ISettingsService {
	return &settingsService{
		uowFactory:     uowFactory,
		cache:          cache,
		eventPublisher: eventPublisher,
	}
}

func (ss *settingsService) GetSettings(ctx context.Context) (*dto.GetSettingsResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	setting, err := uow.GuardianSettingRepository().Get(ctx)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &dto.GetSettingsResponse{Settings: guardian.DefaultSettings()}, nil
	}

	return &dto.GetSettingsResponse{
		Settings:  setting.Settings,
		UpdatedBy: setting.UpdatedBy,
		UpdatedAt: setting.UpdatedAt,
	}, nil
}

func (ss *settingsService) UpdateSettings(ctx context.Context, updatedBy string, request *dto.UpdateSettingsRequest) (*dto.GetSettingsResponse, error) {
	uow := ss.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	setting, err := uow.GuardianSettingRepository().Get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if setting == nil {
		setting = &entity.GuardianSetting{
			Id:        uuid.New(),
			CreatedAt: now,
		}
	}
	setting.Settings = request.Settings
	setting.UpdatedBy = updatedBy
	setting.UpdatedAt = &now

	if err := uow.GuardianSettingRepository().Save(ctx, setting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	ss.cache.Invalidate()

	if ss.eventPublisher != nil {
		if err := ss.eventPublisher.Publish(ctx, events.NewSettingsUpdatedEvent(updatedBy)); err != nil {
			log.Printf("Warn: failed to publish settings updated event: %v", err)
		}
	}

	return &dto.GetSettingsResponse{
		Settings:  setting.Settings,
		UpdatedBy: setting.UpdatedBy,
		UpdatedAt: setting.UpdatedAt,
	}, nil
}

func (ss *settingsService) Snapshot(ctx context.Context) guardian.Settings {
	if cached, found := ss.cache.Get(); found {
		return cached
	}

	uow := ss.uowFactory.NewUnitOfWork(ctx)
	setting, err := uow.GuardianSettingRepository().Get(ctx)
	if err != nil {
		log.Printf("[WARN] Failed to load guardian settings, using defaults: %v", err)
		return guardian.DefaultSettings()
	}

	settings := guardian.DefaultSettings()
	if setting != nil {
		settings = setting.Settings.Normalized()
	}
	ss.cache.Set(settings)
	return settings
}
