package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"github.com/shopspring/decimal"
)

// Client is one client entity of the firm: a company, partnership or
// self-employed person the office serves.
type Client struct {
	ID            int             `gorm:"primary_key" json:"id"`
	FirmId        string          `gorm:"index;not null" json:"firm_id" binding:"required"`
	Name          string          `gorm:"size:100;not null" json:"name" binding:"required"`
	EntityType    EntityType      `gorm:"type:enum('Company','Partnership','SelfEmployed','NonProfit');not null;default:'Company'" json:"entity_type"`
	TaxFileNumber string          `gorm:"size:20;index" json:"tax_file_number"`
	Email         string          `gorm:"size:100" json:"email"`
	Phone         string          `gorm:"size:20" json:"phone"`
	ContactPerson string          `gorm:"size:100" json:"contact_person"`
	AdvanceRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"advance_rate"`
	Notes         string          `gorm:"type:text" json:"notes"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name          string          `json:"name" binding:"required"`
	EntityType    EntityType      `json:"entity_type" binding:"required"`
	TaxFileNumber string          `json:"tax_file_number"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	ContactPerson string          `json:"contact_person"`
	AdvanceRate   decimal.Decimal `json:"advance_rate"`
	Notes         string          `json:"notes"`
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	db := config.GetDB()

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, errors.New("invalid phone number")
		}
	}

	client := Client{
		FirmId:        firmId,
		Name:          input.Name,
		EntityType:    input.EntityType,
		TaxFileNumber: input.TaxFileNumber,
		Email:         input.Email,
		Phone:         utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		ContactPerson: input.ContactPerson,
		AdvanceRate:   input.AdvanceRate,
		Notes:         input.Notes,
		IsActive:      utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	client, err := utils.FetchModel[Client](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, errors.New("invalid phone number")
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(client).Updates(map[string]interface{}{
		"Name":          input.Name,
		"EntityType":    input.EntityType,
		"TaxFileNumber": input.TaxFileNumber,
		"Email":         input.Email,
		"Phone":         utils.FormatPhoneNumber(input.Phone, utils.CountryCode),
		"ContactPerson": input.ContactPerson,
		"AdvanceRate":   input.AdvanceRate,
		"Notes":         input.Notes,
	}).Error
	if err != nil {
		return nil, err
	}
	return client, nil
}

func ToggleActiveClient(ctx context.Context, id int, isActive bool) (*Client, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	client, err := utils.FetchModel[Client](ctx, firmId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(client).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		return nil, err
	}
	return client, nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	return utils.FetchModel[Client](ctx, firmId, id)
}

func GetClients(ctx context.Context, name *string, entityType *EntityType, activeOnly bool, page int, limit int) ([]*Client, error) {
	db := config.GetDB()
	var results []*Client

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	dbCtx := db.WithContext(ctx).Where("firm_id = ?", firmId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if entityType != nil && len(*entityType) > 0 {
		dbCtx = dbCtx.Where("entity_type = ?", entityType)
	}
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}

	offset, lim := utils.NormalizePagination(page, limit)
	if err := dbCtx.Order("name ASC").Offset(offset).Limit(lim).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListEligibleClients returns the entities a new fiscal year opens balance
// cases for: active companies and partnerships. Self-employed clients follow
// a different yearly report track and are excluded here.
func ListEligibleClients(ctx context.Context) ([]*Client, error) {
	db := config.GetDB()
	var results []*Client

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	err := db.WithContext(ctx).
		Where("firm_id = ? AND is_active = ? AND entity_type IN ?",
			firmId, true, []EntityType{EntityTypeCompany, EntityTypePartnership}).
		Order("id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
