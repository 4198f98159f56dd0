package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"github.com/shopspring/decimal"
)

// BalanceCase is one client's annual balance sheet production file.
// Stage timestamps are owned by the workflow engine: a timestamp is non-null
// iff the case has passed through the owning stage and has not been reverted
// past it since. Only Notes, AdvancesAmount, auditor assignment/confirmation
// and IsActive may be edited outside a stage transition.
type BalanceCase struct {
	ID           int          `gorm:"primary_key" json:"id"`
	FirmId       string       `gorm:"index;not null;uniqueIndex:uniq_firm_client_year" json:"firm_id" binding:"required"`
	ClientId     int          `gorm:"index;not null;uniqueIndex:uniq_firm_client_year" json:"client_id" binding:"required"`
	Client       *Client      `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	FiscalYear   int          `gorm:"index;not null;uniqueIndex:uniq_firm_client_year" json:"fiscal_year" binding:"required"`
	CurrentStage BalanceStage `gorm:"type:enum('Opened','MaterialsReceived','AssignedToAuditor','InProgress','WorkCompleted','OfficeApproved','ReportTransmitted','AdvancesUpdated');not null;default:'Opened'" json:"current_stage"`

	MaterialsReceivedAt *time.Time `json:"materials_received_at"`
	WorkStartedAt       *time.Time `json:"work_started_at"`
	WorkCompletedAt     *time.Time `json:"work_completed_at"`
	OfficeApprovedAt    *time.Time `json:"office_approved_at"`
	ReportTransmittedAt *time.Time `json:"report_transmitted_at"`
	AdvancesUpdatedAt   *time.Time `json:"advances_updated_at"`

	AuditorId          *int       `gorm:"index" json:"auditor_id"`
	AuditorConfirmed   bool       `gorm:"not null;default:false" json:"auditor_confirmed"`
	AuditorConfirmedAt *time.Time `json:"auditor_confirmed_at"`

	AdvancesAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"advances_amount"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetBalanceCase(ctx context.Context, id int) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	return utils.FetchModel[BalanceCase](ctx, firmId, id, "Client")
}

func GetBalanceCases(ctx context.Context, year *int, stage *BalanceStage, auditorId *int, clientId *int, page int, limit int) ([]*BalanceCase, error) {
	db := config.GetDB()
	var results []*BalanceCase

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	dbCtx := db.WithContext(ctx).Where("firm_id = ? AND is_active = ?", firmId, true)
	if year != nil && *year > 0 {
		dbCtx = dbCtx.Where("fiscal_year = ?", year)
	}
	if stage != nil && len(*stage) > 0 {
		dbCtx = dbCtx.Where("current_stage = ?", stage)
	}
	if auditorId != nil && *auditorId > 0 {
		dbCtx = dbCtx.Where("auditor_id = ?", auditorId)
	}
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", clientId)
	}

	offset, lim := utils.NormalizePagination(page, limit)
	if err := dbCtx.Preload("Client").Order("id ASC").Offset(offset).Limit(lim).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateBalanceCaseNotes edits the free-text notes only; stage fields never
// change here.
func UpdateBalanceCaseNotes(ctx context.Context, id int, notes string) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	bc, err := utils.FetchModel[BalanceCase](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(bc).Updates(map[string]interface{}{
		"Notes": notes,
	}).Error
	if err != nil {
		return nil, err
	}
	return bc, nil
}

func UpdateBalanceCaseAdvances(ctx context.Context, id int, amount decimal.Decimal) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	if amount.IsNegative() {
		return nil, errors.New("advances amount cannot be negative")
	}

	bc, err := utils.FetchModel[BalanceCase](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(bc).Updates(map[string]interface{}{
		"AdvancesAmount": amount,
	}).Error
	if err != nil {
		return nil, err
	}
	return bc, nil
}

// AssignAuditor sets (or clears, auditorId == 0) the responsible auditor.
// Changing the auditor drops a previous confirmation.
func AssignAuditor(ctx context.Context, id int, auditorId int) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	bc, err := utils.FetchModel[BalanceCase](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"AuditorConfirmed":   false,
		"AuditorConfirmedAt": nil,
	}
	if auditorId > 0 {
		if _, err := GetUserByID(ctx, auditorId); err != nil {
			return nil, errors.New("auditor not found")
		}
		updates["AuditorId"] = auditorId
	} else {
		updates["AuditorId"] = nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(bc).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return bc, nil
}

// ConfirmAuditor marks the assigned auditor's acceptance of the case. Only
// meaningful once the case has reached AssignedToAuditor; the flag is what the
// engine's confirmation guard checks before the move into InProgress.
func ConfirmAuditor(ctx context.Context, id int) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	bc, err := utils.FetchModel[BalanceCase](ctx, firmId, id)
	if err != nil {
		return nil, err
	}
	if bc.AuditorId == nil {
		return nil, errors.New("no auditor assigned")
	}
	if BalanceStageIndex(bc.CurrentStage) < BalanceStageIndex(BalanceStageAssignedToAuditor) {
		return nil, errors.New("case has not been assigned to the auditor yet")
	}

	now := time.Now().UTC()
	db := config.GetDB()
	err = db.WithContext(ctx).Model(bc).Updates(map[string]interface{}{
		"AuditorConfirmed":   true,
		"AuditorConfirmedAt": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return bc, nil
}

func ToggleActiveBalanceCase(ctx context.Context, id int, isActive bool) (*BalanceCase, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	bc, err := utils.FetchModel[BalanceCase](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(bc).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		return nil, err
	}
	return bc, nil
}
