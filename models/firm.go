package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Firm is the tenant record: one accounting office.
type Firm struct {
	ID                 uuid.UUID       `gorm:"type:char(36);primary_key" json:"id"`
	Name               string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Timezone           string          `gorm:"size:50;default:'Asia/Jerusalem'" json:"timezone"`
	DefaultAdvanceRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"default_advance_rate"`
	IsActive           *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

/*
caches:
	Firm:$firmId
*/

func GetFirmById(ctx context.Context, firmId string) (*Firm, error) {
	if firmId == "" {
		return nil, errors.New("firm id is required")
	}

	firm, err := utils.RetrieveRedis[Firm](firmId)
	if err != nil {
		return nil, err
	}
	if firm != nil {
		return firm, nil
	}

	db := config.GetDB()
	var result Firm
	if err := db.WithContext(ctx).Where("id = ?", firmId).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if err := utils.StoreRedis[Firm](&result, firmId); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetFirm resolves the tenant of the current request context.
func GetFirm(ctx context.Context) (*Firm, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	return GetFirmById(ctx, firmId)
}

type NewFirm struct {
	Name               string          `json:"name" binding:"required"`
	Timezone           string          `json:"timezone"`
	DefaultAdvanceRate decimal.Decimal `json:"default_advance_rate"`
}

func CreateFirm(ctx context.Context, input *NewFirm) (*Firm, error) {
	db := config.GetDB()

	firm := Firm{
		ID:                 uuid.New(),
		Name:               input.Name,
		Timezone:           input.Timezone,
		DefaultAdvanceRate: input.DefaultAdvanceRate,
		IsActive:           utils.NewTrue(),
	}
	if firm.Timezone == "" {
		firm.Timezone = "Asia/Jerusalem"
	}

	if err := db.WithContext(ctx).Create(&firm).Error; err != nil {
		return nil, err
	}
	return &firm, nil
}
