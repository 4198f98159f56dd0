package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// StatusHistory is the append-only audit trail of stage changes. Rows are
// never updated or deleted; a failed insert never blocks the transition that
// produced it.
type StatusHistory struct {
	ID        int          `gorm:"primary_key" json:"id"`
	FirmId    string       `gorm:"index;not null" json:"firm_id"`
	CaseId    int          `gorm:"index;not null" json:"case_id"`
	FromStage BalanceStage `gorm:"not null" json:"from_stage"`
	ToStage   BalanceStage `gorm:"not null" json:"to_stage"`
	Note      string       `gorm:"type:text" json:"note"`
	UserId    int          `gorm:"not null" json:"user_id"`
	UserName  string       `json:"user_name"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func CreateStatusHistory(ctx context.Context, caseId int, fromStage, toStage BalanceStage, note string) (*StatusHistory, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)

	history := StatusHistory{
		FirmId:    firmId,
		CaseId:    caseId,
		FromStage: fromStage,
		ToStage:   toStage,
		Note:      note,
		UserId:    userId,
		UserName:  userName,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&history).Error; err != nil {
		return nil, err
	}
	return &history, nil
}

// GetCaseHistories returns the trail newest first.
func GetCaseHistories(ctx context.Context, caseId int) ([]*StatusHistory, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	if err := utils.ValidateResourceId[BalanceCase](ctx, firmId, caseId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var histories []*StatusHistory
	err := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("created_at DESC").
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}
