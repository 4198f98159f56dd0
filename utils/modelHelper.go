package utils

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// NormalizePagination turns 1-based page / limit query values into an
// offset/limit pair. Non-positive limits fall back to config.SearchLimit,
// non-positive pages mean the first page.
func NormalizePagination(page int, limit int) (offset int, lim int) {
	if limit <= 0 {
		limit = config.SearchLimit
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

// fetch model from db
// (returns RecordNotFound only when the row is missing)
func FetchSingleModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch model from db
// (ctx's firm_id is used in query's WHERE, returns RecordNotFound only when
// the row is missing)
func FetchModel[T any](ctx context.Context, firmId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("firm_id = ?", firmId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models from db
// (ctx's firm_id is used in query's WHERE)
func FetchAllModels[T any](ctx context.Context, firmId string, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("firm_id = ?", firmId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// check if id exists, using firm_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, firmId string, id interface{}) error {

	db := config.GetDB()
	var model T
	var count int64
	err := db.WithContext(ctx).Model(&model).
		Where("firm_id = ? AND id = ?", firmId, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}
