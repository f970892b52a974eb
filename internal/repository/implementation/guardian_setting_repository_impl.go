package implementation

import (
	"context"
	"errors"

	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/mapper"
	"chat-guardian-be/internal/model"
	"chat-guardian-be/internal/repository/contract"

	"gorm.io/gorm"
)

type GuardianSettingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingMapper
}

func NewGuardianSettingRepository(db *gorm.DB) contract.GuardianSettingRepository {
	return &GuardianSettingRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingMapper(),
	}
}

func (r *GuardianSettingRepositoryImpl) Get(ctx context.Context) (*entity.GuardianSetting, error) {
	var m model.GuardianSetting
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *GuardianSettingRepositoryImpl) Save(ctx context.Context, setting *entity.GuardianSetting) error {
	m, err := r.mapper.ToModel(setting)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	saved, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*setting = *saved
	return nil
}
