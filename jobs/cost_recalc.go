package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/gudangchat/gudangchat/internal/catalog"
	"github.com/gudangchat/gudangchat/internal/commit"
	jobmetrics "github.com/gudangchat/gudangchat/internal/jobs"
)

// recalcPageSize bounds one product-listing page during a full recalc.
const recalcPageSize = 200

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	jobCostRecalc     = "cost_recalc"
	jobSnapshotWarmup = "snapshot_warmup"
)

// NewCostRecalcHandler builds the Asynq handler for TaskCostRecalc.
// After a recalculation the cached snapshot is invalidated so the draft
// pipeline sees fresh costs.
func NewCostRecalcHandler(service *commit.Service, products *catalog.Repository, snapshots *catalog.Snapshots, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := defaultJobMetrics.Track(jobCostRecalc)
		var payload CostRecalcPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		switch {
		case payload.All:
			recalced, err := recalcAll(ctx, service, products, logger)
			defaultJobMetrics.AddProducts(jobCostRecalc, recalced)
			if err != nil {
				return tracker.End(err)
			}
		case payload.ProductID != "":
			id, err := uuid.Parse(payload.ProductID)
			if err != nil {
				logger.Warn("cost recalc task with invalid product id", "product_id", payload.ProductID)
				return asynq.SkipRetry
			}
			if _, err := service.RecalculateProductCost(ctx, id); err != nil {
				return tracker.End(fmt.Errorf("recalc product %s: %w", id, err))
			}
			defaultJobMetrics.AddProducts(jobCostRecalc, 1)
		default:
			return asynq.SkipRetry
		}

		if snapshots != nil {
			if err := snapshots.Invalidate(ctx); err != nil {
				logger.Warn("snapshot invalidation failed", slog.Any("error", err))
			}
		}
		return tracker.End(nil)
	}
}

func recalcAll(ctx context.Context, service *commit.Service, products *catalog.Repository, logger *slog.Logger) (int, error) {
	recalced := 0
	for pageNum := 1; ; pageNum++ {
		page, err := products.ListProducts(ctx, catalog.ProductFilter{Page: pageNum, PerPage: recalcPageSize})
		if err != nil {
			return recalced, fmt.Errorf("list products: %w", err)
		}
		if len(page.Items) == 0 {
			break
		}
		for _, p := range page.Items {
			if _, err := service.RecalculateProductCost(ctx, p.ID); err != nil {
				logger.Error("recalc failed", "product_id", p.ID, slog.Any("error", err))
				continue
			}
			recalced++
		}
		if pageNum >= page.Pagination.TotalPages {
			break
		}
	}
	logger.Info("full cost recalc finished", "products", recalced)
	return recalced, nil
}

// NewSnapshotWarmupHandler builds the Asynq handler for
// TaskSnapshotWarmup.
func NewSnapshotWarmupHandler(snapshots *catalog.Snapshots, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := defaultJobMetrics.Track(jobSnapshotWarmup)
		var payload SnapshotWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := snapshots.Invalidate(ctx); err != nil {
			return tracker.End(err)
		}
		snap, err := snapshots.Load(ctx)
		if err != nil {
			return tracker.End(err)
		}
		logger.Info("snapshot warmed",
			"products", len(snap.Products), "suppliers", len(snap.Suppliers))
		return tracker.End(nil)
	}
}
