package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"SMS Notification", JobTypeSMSNotification, "sms_notification"},
		{"Ledger Export", JobTypeLedgerExport, "ledger_export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with no retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Pending job",
			job: &Job{
				Status:     JobStatusPending,
				RetryCount: 0,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_MarkAsProcessing(t *testing.T) {
	job := &Job{
		Status: JobStatusPending,
	}

	beforeTime := time.Now()
	job.MarkAsProcessing()
	afterTime := time.Now()

	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.NotNil(t, job.ProcessedAt)
}

func TestJob_MarkAsCompleted(t *testing.T) {
	job := &Job{
		Status:   JobStatusProcessing,
		ErrorMsg: "some error",
	}

	job.MarkAsCompleted()

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg, "completion clears the last error")
}

func TestJob_MarkAsFailed(t *testing.T) {
	job := &Job{
		Status:     JobStatusProcessing,
		RetryCount: 1,
	}

	job.MarkAsFailed("gateway timeout")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "gateway timeout", job.ErrorMsg)
	assert.Equal(t, 2, job.RetryCount)
}

func TestJob_MarkAsRetrying(t *testing.T) {
	job := &Job{
		Status: JobStatusFailed,
	}

	job.MarkAsRetrying()

	assert.Equal(t, JobStatusRetrying, job.Status)
}

func TestSMSNotificationJobPayload_ToMap(t *testing.T) {
	driverID := uint(42)
	payload := SMSNotificationJobPayload{
		DriverID:    &driverID,
		Phone:       "9876543210",
		MessageType: "swap_history",
		Content:     "Namaste! Aapki swap history...",
	}

	result := payload.ToMap()

	expected := map[string]interface{}{
		"driver_id":    uint(42),
		"phone":        "9876543210",
		"message_type": "swap_history",
		"content":      "Namaste! Aapki swap history...",
	}

	assert.Equal(t, expected, result)
}

func TestSMSNotificationJobPayload_ToMapWithoutDriver(t *testing.T) {
	payload := SMSNotificationJobPayload{
		Phone:       "9876543210",
		MessageType: "payment_link",
		Content:     "pay now",
	}

	result := payload.ToMap()

	_, hasDriver := result["driver_id"]
	assert.False(t, hasDriver, "anonymous sends carry no driver id")
}

func TestSMSNotificationJobPayloadFromMap(t *testing.T) {
	data := map[string]interface{}{
		"driver_id":    float64(42), // JSON numbers are float64
		"phone":        "9876543210",
		"message_type": "swap_history",
		"content":      "Namaste!",
	}

	payload, err := SMSNotificationJobPayloadFromMap(data)
	require.NoError(t, err)

	require.NotNil(t, payload.DriverID)
	assert.Equal(t, uint(42), *payload.DriverID)
	assert.Equal(t, "9876543210", payload.Phone)
	assert.Equal(t, "swap_history", payload.MessageType)
	assert.Equal(t, "Namaste!", payload.Content)
}

func TestSMSNotificationJobPayloadFromMap_InvalidData(t *testing.T) {
	// Channels can't be marshaled to JSON
	data := map[string]interface{}{
		"phone": make(chan int),
	}

	payload, err := SMSNotificationJobPayloadFromMap(data)
	assert.Error(t, err)
	assert.Nil(t, payload)
}

func TestLedgerExportJobPayload_RoundTrip(t *testing.T) {
	payload := LedgerExportJobPayload{Period: "202508"}

	result := payload.ToMap()
	assert.Equal(t, map[string]interface{}{"period": "202508"}, result)

	parsed, err := LedgerExportJobPayloadFromMap(result)
	require.NoError(t, err)
	assert.Equal(t, "202508", parsed.Period)
}
