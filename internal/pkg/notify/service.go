// Package notify delivers driver SMS through the configured gateway and
// keeps an audit row for every attempt, sent or not. Delivery runs on the
// job queue, request paths only enqueue.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
)

// maxPerHour caps outbound messages per phone and type; past it messages
// are logged as failed instead of hammering the driver.
const maxPerHour = 10

// Service sends SMS through the gateway and records every attempt.
type Service struct {
	cfg    *Config
	client *http.Client
	logs   repository.SMSLogRepository
}

// NewService creates an SMS service with the given gateway config.
func NewService(cfg *Config, logs repository.SMSLogRepository) *Service {
	if cfg == nil {
		cfg = LoadConfig()
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logs:   logs,
	}
}

// Send delivers one message and writes the audit row. The audit row is
// written no matter what happened; delivery failures come back as the row's
// failed status, not as an error, so queue retries stay in control of the
// caller.
func (s *Service) Send(ctx context.Context, driverID *uint, phone, messageType, content string) (*models.SMSLog, error) {
	if !models.IsValidPhoneNumber(phone) {
		return nil, apperrors.InvalidInput("invalid phone number %q", phone)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidInput("message content is empty")
	}

	entry := &models.SMSLog{
		DriverID:       driverID,
		PhoneNumber:    phone,
		MessageType:    messageType,
		MessageContent: content,
	}

	sent, err := s.logs.CountSince(phone, time.Now().Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	if sent >= maxPerHour {
		entry.Status = models.SMSStatusFailed
		entry.ErrorMessage = fmt.Sprintf("hourly message cap (%d) reached", maxPerHour)
		log.Warnf("[SMS] %s to %s suppressed: %s", messageType, phone, entry.ErrorMessage)
		return entry, s.logs.Create(entry)
	}

	if !s.cfg.Enabled {
		entry.Status = models.SMSStatusSent
		entry.GatewaySID = "mock:" + strings.ToUpper(uuid.New().String()[:8])
		log.Infof("[SMS] gateway disabled, logged %s to %s only", messageType, phone)
		return entry, s.logs.Create(entry)
	}

	sid, sendErr := s.deliver(ctx, phone, content)
	if sendErr != nil {
		entry.Status = models.SMSStatusFailed
		entry.ErrorMessage = sendErr.Error()
		log.Errorf("[SMS] sending %s to %s: %v", messageType, phone, sendErr)
	} else {
		entry.Status = models.SMSStatusSent
		entry.GatewaySID = sid
		log.Infof("[SMS] %s sent to %s (sid %s)", messageType, phone, sid)
	}

	return entry, s.logs.Create(entry)
}

// deliver posts the message to the gateway REST API and returns the gateway
// message sid.
func (s *Service) deliver(ctx context.Context, phone, content string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json",
		strings.TrimRight(s.cfg.APIBaseURL, "/"), s.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", "+91"+phone)
	form.Set("From", s.cfg.FromNumber)
	form.Set("Body", content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing gateway response: %w", err)
	}
	return parsed.SID, nil
}
