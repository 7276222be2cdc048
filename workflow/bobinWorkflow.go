package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
)

// BobinResult is the bobin after the operation plus non-fatal warnings.
type BobinResult struct {
	Bobin    *models.ProductionBobin `json:"bobin"`
	Warnings []string                `json:"warnings,omitempty"`
}

// RegisterProductionBobin records a produced roll against an order and
// recomputes production readiness, since a fresh bobin starts in a
// ready-counting status. The recompute is non-fatal: the roll exists
// either way.
func RegisterProductionBobin(ctx context.Context, input *models.NewProductionBobin) (*BobinResult, error) {
	ctx, span := tracer.Start(ctx, "RegisterProductionBobin")
	defer span.End()

	logger := config.GetLogger()
	db := config.GetDB().WithContext(ctx)

	bobin, err := models.InsertProductionBobin(ctx, db, input)
	if err != nil {
		return nil, err
	}

	result := &BobinResult{Bobin: bobin}
	if _, err := RecomputeProductionReadiness(ctx, bobin.OrderId); err != nil {
		config.LogError(logger, "workflow", "RegisterProductionBobin",
			"readiness recompute failed after bobin insert",
			map[string]any{"order_id": bobin.OrderId, "bobin_id": bobin.ID}, err)
		result.Warnings = append(result.Warnings, "order readiness could not be recomputed, run the rebuild tool")
	}

	if warning := RecordAudit(ctx, AuditActionCreate, bobin.ID, "production_bobin", nil, bobin,
		fmt.Sprintf("bobin registered for order %d", bobin.OrderId)); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// ChangeBobinStatus moves a bobin along its lifecycle with a guarded
// conditional update, then recomputes production readiness whenever the
// transition changes whether the bobin's kg counts (e.g. ready -> shipped,
// or any move into scrapped).
func ChangeBobinStatus(ctx context.Context, bobinId int, requested models.BobinStatus) (*BobinResult, error) {
	ctx, span := tracer.Start(ctx, "ChangeBobinStatus")
	defer span.End()

	logger := config.GetLogger()
	db := config.GetDB().WithContext(ctx)

	if !requested.IsValid() {
		return nil, utils.NewValidationError("invalid bobin status")
	}

	bobin, err := models.GetProductionBobin(ctx, bobinId)
	if err != nil {
		return nil, err
	}
	before := *bobin

	countedBefore := bobin.Status.CountsAsReady()
	if err := models.ChangeBobinStatus(db, bobin, requested); err != nil {
		return nil, err
	}

	result := &BobinResult{Bobin: bobin}
	if countedBefore != requested.CountsAsReady() {
		if _, err := RecomputeProductionReadiness(ctx, bobin.OrderId); err != nil {
			config.LogError(logger, "workflow", "ChangeBobinStatus",
				"readiness recompute failed after status change",
				map[string]any{"order_id": bobin.OrderId, "bobin_id": bobin.ID}, err)
			result.Warnings = append(result.Warnings, "order readiness could not be recomputed, run the rebuild tool")
		}
	}

	if warning := RecordAudit(ctx, AuditActionUpdate, bobin.ID, "production_bobin", before, bobin,
		fmt.Sprintf("bobin status changed from %s to %s", before.Status, requested)); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}
