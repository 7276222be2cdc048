package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"gorm.io/gorm"
)

// AuditLog is append-only and write-only from the engine's perspective.
// A failed audit write never fails the user-visible operation; the caller
// reports it as a warning instead.
type AuditLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CorrelationId string    `gorm:"size:100;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createAuditLog(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) error {

	var audit AuditLog

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	audit.ActionType = actionType
	audit.Before = string(b)
	audit.After = string(a)
	audit.Description = description
	audit.ReferenceID = referenceId
	audit.ReferenceType = referenceType
	audit.UserId = userId
	audit.UserName = userName
	audit.CorrelationId = correlationId

	return tx.Create(&audit).Error
}

func SaveAuditCreate(ctx context.Context, referenceId int, referenceType string, obj interface{}, description string) error {
	db := config.GetDB()
	return createAuditLog(db.WithContext(ctx), "CREATE", referenceId, referenceType, nil, obj, description)
}

func SaveAuditUpdate(ctx context.Context, referenceId int, referenceType string, before interface{}, after interface{}, description string) error {
	db := config.GetDB()
	return createAuditLog(db.WithContext(ctx), "UPDATE", referenceId, referenceType, before, after, description)
}

func SaveAuditDelete(ctx context.Context, referenceId int, referenceType string, obj interface{}, description string) error {
	db := config.GetDB()
	return createAuditLog(db.WithContext(ctx), "DELETE", referenceId, referenceType, obj, nil, description)
}
