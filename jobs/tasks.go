// Package jobs runs background work over Asynq: product cost
// recalculation and catalog snapshot warmup.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCostRecalc rebuilds a product's moving-average cost, or every
	// product's when the payload carries All.
	TaskCostRecalc = "cost:recalc"
	// TaskSnapshotWarmup refreshes the cached known-entity snapshot.
	TaskSnapshotWarmup = "catalog:snapshot_warmup"
)

// CostRecalcPayload selects which products to recalculate.
type CostRecalcPayload struct {
	ProductID string `json:"product_id,omitempty"`
	All       bool   `json:"all,omitempty"`
}

// NewCostRecalcTask constructs an Asynq task for one product.
func NewCostRecalcTask(productID string) (*asynq.Task, error) {
	return newTask(TaskCostRecalc, CostRecalcPayload{ProductID: productID})
}

// NewCostRecalcAllTask constructs the nightly full-catalog recalc task.
func NewCostRecalcAllTask() (*asynq.Task, error) {
	return newTask(TaskCostRecalc, CostRecalcPayload{All: true})
}

// SnapshotWarmupPayload carries scheduling metadata.
type SnapshotWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSnapshotWarmupTask constructs an Asynq task for snapshot warmup.
func NewSnapshotWarmupTask(at time.Time) (*asynq.Task, error) {
	return newTask(TaskSnapshotWarmup, SnapshotWarmupPayload{ScheduledFor: at})
}

func newTask(taskType string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault)), nil
}
