package jobqueue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/env"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	metrics "github.com/batterysmart/swapledger/internal/pkg/metrics/counter"
	"github.com/batterysmart/swapledger/internal/pkg/penalty"
	"github.com/batterysmart/swapledger/internal/pkg/s3export"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	expiryTicker       *time.Ticker
	penaltyTicker      *time.Ticker
	counterFlushTicker *time.Ticker
	exportTicker       *time.Ticker
	lastExportPeriod   string
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(workerCount()),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// workerCount reads the worker pool size from the environment, fallback 5
func workerCount() int {
	if v, err := strconv.Atoi(env.GetEnv("JOB_QUEUE_WORKERS", "5")); err == nil && v > 0 {
		return v
	}
	return 5
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Expire subscriptions whose end date has passed
	expiryInterval := envMinutes("EXPIRY_SWEEP_INTERVAL_MINUTES", 60)
	m.expiryTicker = time.NewTicker(expiryInterval)
	m.wg.Add(1)
	go m.expiryWorker(expiryInterval)

	// Assess late-return penalties once a day
	penaltyInterval := envMinutes("PENALTY_SWEEP_INTERVAL_MINUTES", 24*60)
	m.penaltyTicker = time.NewTicker(penaltyInterval)
	m.wg.Add(1)
	go m.penaltyWorker(penaltyInterval)

	// Start counter flush worker (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()

	// Check daily whether last month's statement still needs archiving
	exportInterval := envMinutes("EXPORT_CHECK_INTERVAL_MINUTES", 24*60)
	m.exportTicker = time.NewTicker(exportInterval)
	m.wg.Add(1)
	go m.exportScheduler(exportInterval)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}
	if m.penaltyTicker != nil {
		m.penaltyTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.exportTicker != nil {
		m.exportTicker.Stop()
	}

	// Signal workers to stop. The closed channel stays in place so a worker
	// that was mid-task still sees the close on its next select.
	close(m.stopCh)
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// expiryWorker runs periodically to expire overdue subscriptions
func (m *Manager) expiryWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started expiry worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Expiry worker stopping")
			return
		case <-m.expiryTicker.C:
			if err := m.runExpirySweepOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Expiry sweep error: %v", err)
			}
		}
	}
}

// penaltyWorker runs periodically to write penalty assessments
func (m *Manager) penaltyWorker(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started penalty worker (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Penalty worker stopping")
			return
		case <-m.penaltyTicker.C:
			if err := m.runPenaltySweepOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Penalty sweep error: %v", err)
			}
		}
	}
}

// counterFlushWorker periodically flushes station inventory deltas from Redis to DB
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := m.flushCountersOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// exportScheduler enqueues a ledger export for the previous month once per period
func (m *Manager) exportScheduler(interval time.Duration) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started export scheduler (interval: %s)", interval)

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Export scheduler stopping")
			return
		case <-m.exportTicker.C:
			m.scheduleExportOnce(time.Now())
		}
	}
}

func (m *Manager) scheduleExportOnce(now time.Time) {
	cfg, err := s3export.LoadConfig()
	if err != nil {
		log.Errorf("[JobQueue Manager] Export config error: %v", err)
		return
	}
	if !cfg.IsEnabled() {
		log.Debug("[JobQueue Manager] Ledger export disabled, skipping schedule check")
		return
	}

	period := now.AddDate(0, -1, 0).Format("200601")
	if period == m.lastExportPeriod {
		return
	}

	payload := LedgerExportJobPayload{Period: period}
	if _, err := m.queue.EnqueueJob(JobTypeLedgerExport, payload.ToMap()); err != nil {
		log.Errorf("[JobQueue Manager] Failed to enqueue export for %s: %v", period, err)
		return
	}
	m.lastExportPeriod = period
	log.Infof("[JobQueue Manager] Scheduled ledger export for period %s", period)
}

func (m *Manager) runExpirySweepOnce() error {
	svc := ledger.NewServiceFromDB(database.GetDB())
	expired, err := svc.ExpireOverdue(context.Background(), time.Now())
	if err != nil {
		return err
	}
	if expired > 0 {
		log.Infof("[JobQueue Manager] Expired %d overdue subscription(s)", expired)
	}
	return nil
}

func (m *Manager) runPenaltySweepOnce() error {
	engine := penalty.NewEngine(database.GetDB(), penalty.LoadConfig())
	written, err := engine.Sweep(context.Background(), time.Now())
	if err != nil {
		return err
	}
	if written > 0 {
		log.Infof("[JobQueue Manager] Assessed penalties for %d subscription(s)", written)
	}
	return nil
}

func (m *Manager) flushCountersOnce() error {
	// Flush Redis -> DB (batched CASE update)
	return metrics.FlushAll()
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// RunPenaltySweepOnce exposes a manual trigger for a single penalty sweep (admin use)
func (m *Manager) RunPenaltySweepOnce() error {
	return m.runPenaltySweepOnce()
}

func envMinutes(key string, fallback int) time.Duration {
	minutes := fallback
	if v, err := strconv.Atoi(env.GetEnv(key, strconv.Itoa(fallback))); err == nil && v > 0 {
		minutes = v
	}
	return time.Duration(minutes) * time.Minute
}
