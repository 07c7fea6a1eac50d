package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/jobqueue"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	"github.com/batterysmart/swapledger/internal/pkg/s3export"
)

// HandleHealthcheck reports process health: database and Redis reachability
// plus the job queue backlog.
func HandleHealthcheck(c *fiber.Ctx) error {
	status := "ok"

	dbState := "up"
	if sqlDB, err := database.GetDB().DB(); err != nil || sqlDB.Ping() != nil {
		dbState = "down"
		status = "degraded"
	}

	redisState := "up"
	var queueDepth, processing int64
	queueRepo := repository.GetGlobalFactory().GetQueueRepository()
	if depth, err := queueRepo.GetListLength(jobqueue.JobQueueKey); err != nil {
		redisState = "down"
		status = "degraded"
	} else {
		queueDepth = depth
		processing, _ = queueRepo.GetListLength(jobqueue.JobProcessingKey)
	}

	return c.JSON(fiber.Map{
		"status":           status,
		"database":         dbState,
		"redis":            redisState,
		"queue_depth":      queueDepth,
		"queue_processing": processing,
		"workers_running":  jobqueue.GetManager().IsRunning(),
	})
}

// HandleFetchLedgerExport serves an archived monthly statement for audit
func HandleFetchLedgerExport(c *fiber.Ctx) error {
	period := c.Params("period")
	if len(period) != 6 {
		return respondError(c, apperrors.InvalidInput("period must be YYYYMM, got %q", period))
	}

	cfg, err := s3export.LoadConfig()
	if err != nil {
		return respondError(c, err)
	}
	if !cfg.IsEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Ledger export is not enabled"})
	}

	exporter, err := s3export.NewExporter(cfg, ledger.NewServiceFromDB(database.GetDB()))
	if err != nil {
		return respondError(c, err)
	}
	stmt, err := exporter.FetchMonth(c.Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stmt)
}

// HandlePenaltySweep triggers one penalty assessment sweep outside the
// daily schedule.
func HandlePenaltySweep(c *fiber.Ctx) error {
	if err := jobqueue.GetManager().RunPenaltySweepOnce(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"triggered": true})
}

// HandleTriggerExport enqueues an archive export for the given period,
// regardless of the monthly schedule. Re-running a period that is already
// archived is a no-op on the worker side.
func HandleTriggerExport(c *fiber.Ctx) error {
	period := c.Params("period")
	if len(period) != 6 {
		return respondError(c, apperrors.InvalidInput("period must be YYYYMM, got %q", period))
	}

	payload := jobqueue.LedgerExportJobPayload{Period: period}
	job, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeLedgerExport, payload.ToMap())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.ID,
		"period": period,
	})
}
