package workflow

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
)

// Audit records land in the audit_logs table and, when AUDIT_PUBSUB_TOPIC is
// set, are mirrored to Pub/Sub for downstream consumers. Both writes are
// best-effort: the user-visible operation already happened, so a sink
// failure surfaces as a warning string, never as an error.

const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// RecordAudit writes one audit record and returns a non-empty warning when
// a sink failed.
func RecordAudit(ctx context.Context, actionType string, referenceId int, referenceType string, before any, after any, description string) string {
	logger := config.GetLogger()

	var dbErr error
	switch actionType {
	case AuditActionCreate:
		dbErr = models.SaveAuditCreate(ctx, referenceId, referenceType, after, description)
	case AuditActionDelete:
		dbErr = models.SaveAuditDelete(ctx, referenceId, referenceType, before, description)
	default:
		dbErr = models.SaveAuditUpdate(ctx, referenceId, referenceType, before, after, description)
	}
	if dbErr != nil {
		config.LogError(logger, "workflow", "RecordAudit", "audit log write failed",
			map[string]any{"action_type": actionType, "reference_type": referenceType, "reference_id": referenceId}, dbErr)
	}

	pubErr := mirrorAudit(ctx, actionType, referenceId, referenceType, before, after, description)
	if pubErr != nil {
		config.LogError(logger, "workflow", "RecordAudit", "audit pubsub mirror failed",
			map[string]any{"action_type": actionType, "reference_type": referenceType, "reference_id": referenceId}, pubErr)
	}

	if dbErr != nil {
		return "audit log could not be recorded"
	}
	if pubErr != nil {
		return "audit event could not be published"
	}
	return ""
}

func mirrorAudit(ctx context.Context, actionType string, referenceId int, referenceType string, before any, after any, description string) error {
	if config.AuditPubSubTopic() == "" {
		return nil
	}

	oldObj, _ := json.Marshal(before)
	newObj, _ := json.Marshal(after)
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	_, err := config.PublishAuditMessage(ctx, config.AuditMessage{
		ActionType:    actionType,
		ReferenceId:   referenceId,
		ReferenceType: referenceType,
		Description:   description,
		OldObj:        oldObj,
		NewObj:        newObj,
		UserId:        userId,
		UserName:      userName,
		CorrelationId: correlationId,
		RecordedAt:    time.Now().UTC(),
	})
	return err
}
