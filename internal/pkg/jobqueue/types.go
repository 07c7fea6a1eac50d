package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeSMSNotification JobType = "sms_notification"
	JobTypeLedgerExport    JobType = "ledger_export"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// SMSNotificationJobPayload contains the payload for outbound SMS jobs
type SMSNotificationJobPayload struct {
	DriverID    *uint  `json:"driver_id,omitempty"`
	Phone       string `json:"phone"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
}

// ToMap converts the payload to a map for storage
func (p SMSNotificationJobPayload) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"phone":        p.Phone,
		"message_type": p.MessageType,
		"content":      p.Content,
	}
	if p.DriverID != nil {
		m["driver_id"] = *p.DriverID
	}
	return m
}

// SMSNotificationJobPayloadFromMap creates a payload from a map
func SMSNotificationJobPayloadFromMap(data map[string]interface{}) (*SMSNotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload SMSNotificationJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// LedgerExportJobPayload contains the payload for monthly statement exports
type LedgerExportJobPayload struct {
	Period string `json:"period"` // YYYYMM
}

// ToMap converts the payload to a map for storage
func (p LedgerExportJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"period": p.Period,
	}
}

// LedgerExportJobPayloadFromMap creates a payload from a map
func LedgerExportJobPayloadFromMap(data map[string]interface{}) (*LedgerExportJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload LedgerExportJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
