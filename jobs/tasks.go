package jobs

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/customtruckbeds/site/internal/quote"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLeadNotify emails the workshop about a new quote request.
	TaskLeadNotify = "lead:notify"

	leadNotifyRetries = 5
	leadNotifyTimeout = 30 * time.Second
)

// LeadNotifyPayload describes one lead to announce.
type LeadNotifyPayload struct {
	SubmissionID string        `json:"submission_id"`
	To           string        `json:"to"`
	Lead         quote.Payload `json:"lead"`
}

// NewLeadNotifyTask constructs an Asynq task. The submission id doubles as the
// task id so a lead is announced at most once.
func NewLeadNotifyTask(payload LeadNotifyPayload) (*asynq.Task, error) {
	if payload.SubmissionID == "" {
		return nil, errors.New("lead notify: submission id required")
	}
	if payload.To == "" {
		return nil, errors.New("lead notify: recipient required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotify, data,
		asynq.TaskID(payload.SubmissionID),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(leadNotifyRetries),
		asynq.Timeout(leadNotifyTimeout),
	), nil
}

// DecodeLeadNotifyPayload reads a task payload.
func DecodeLeadNotifyPayload(t *asynq.Task) (LeadNotifyPayload, error) {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return LeadNotifyPayload{}, err
	}
	return payload, nil
}
