package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"gorm.io/gorm"
)

// CaseDocument records one uploaded material (trial balance, bank
// confirmation, signed report) attached to a balance case. The bytes live in
// GCS under ObjectKey; the row is the firm-scoped catalog entry.
type CaseDocument struct {
	ID          int       `gorm:"primary_key" json:"id"`
	FirmId      string    `gorm:"index;not null" json:"firm_id"`
	CaseId      int       `gorm:"index;not null" json:"case_id"`
	FileName    string    `gorm:"not null" json:"file_name"`
	ObjectKey   string    `gorm:"not null" json:"object_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  int       `json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func UploadCaseDocument(ctx context.Context, caseId int, fileName string, contentType string, size int64, content io.Reader) (*CaseDocument, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	if err := utils.ValidateResourceId[BalanceCase](ctx, firmId, caseId); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("%s/cases/%d/%s_%s", firmId, caseId, utils.GenerateUniqueFilename(), fileName)
	if err := utils.UploadFileToGCS(ctx, objectKey, content); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	doc := CaseDocument{
		FirmId:      firmId,
		CaseId:      caseId,
		FileName:    fileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  userId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func GetCaseDocuments(ctx context.Context, caseId int) ([]*CaseDocument, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}
	if err := utils.ValidateResourceId[BalanceCase](ctx, firmId, caseId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var docs []*CaseDocument
	err := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ?", firmId, caseId).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetCaseDocumentURL returns a short-lived signed download link.
func GetCaseDocumentURL(ctx context.Context, caseId int, documentId int) (string, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return "", errors.New("firm id is required")
	}

	db := config.GetDB()
	var doc CaseDocument
	err := db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ? AND id = ?", firmId, caseId, documentId).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.ErrorRecordNotFound
		}
		return "", err
	}

	return utils.SignDownloadURL(doc.ObjectKey, 15*time.Minute)
}
