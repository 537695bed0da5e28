package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProvisionListings assigns listings to owner accounts.
	TaskProvisionListings = "listings:provision"
)

// ProvisionListingsPayload lists the listings to process. An empty list sweeps
// every administrator-owned listing that carries an email.
type ProvisionListingsPayload struct {
	ListingIDs []int64 `json:"listing_ids"`
}

// NewProvisionListingsTask constructs an Asynq task.
func NewProvisionListingsTask(payload ProvisionListingsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProvisionListings, data, asynq.MaxRetry(3)), nil
}
