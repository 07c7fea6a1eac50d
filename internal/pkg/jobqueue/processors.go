package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	"github.com/batterysmart/swapledger/internal/pkg/notify"
	"github.com/batterysmart/swapledger/internal/pkg/s3export"
)

// processSMSNotificationJob delivers one outbound SMS and records the attempt
func (q *Queue) processSMSNotificationJob(ctx context.Context, job *Job) error {
	payload, err := SMSNotificationJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid SMS payload: %w", err)
	}
	if payload.Phone == "" || payload.Content == "" {
		return fmt.Errorf("SMS payload missing phone or content")
	}

	svc := notify.NewService(notify.LoadConfig(), repository.GetGlobalFactory().GetSMSLogRepository())
	sent, err := svc.Send(ctx, payload.DriverID, payload.Phone, payload.MessageType, payload.Content)
	if err != nil {
		return err
	}

	// Delivery rejection is recorded on the log row; the job itself retries
	// so transient gateway errors get another attempt.
	if sent.Status == models.SMSStatusFailed {
		return fmt.Errorf("SMS to %s not delivered: %s", payload.Phone, sent.ErrorMessage)
	}

	log.Debugf("[JobQueue] SMS %s delivered to %s (sid=%s)", payload.MessageType, payload.Phone, sent.GatewaySID)
	return nil
}

// processLedgerExportJob archives one month's invoices to S3
func (q *Queue) processLedgerExportJob(ctx context.Context, job *Job) error {
	payload, err := LedgerExportJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid export payload: %w", err)
	}
	if len(payload.Period) != 6 {
		return fmt.Errorf("invalid export period %q", payload.Period)
	}

	cfg, err := s3export.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		log.Infof("[JobQueue] Ledger export disabled, skipping period %s", payload.Period)
		return nil
	}

	exporter, err := s3export.NewExporter(cfg, ledger.NewServiceFromDB(database.GetDB()))
	if err != nil {
		return err
	}

	_, err = exporter.ExportMonth(ctx, payload.Period)
	return err
}
