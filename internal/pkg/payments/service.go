// Package payments handles subscription renewals: order creation with
// BSMART references, gateway webhook ingestion with signature checks and
// dedupe, and subscription activation on settled payments.
package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
)

// Gateway event names that settle or kill an order.
const (
	EventPaymentCaptured    = "payment.captured"
	EventPaymentLinkPaid    = "payment_link.paid"
	EventPaymentFailed      = "payment.failed"
	EventPaymentLinkExpired = "payment_link.expired"
	EventPaymentLinkCancel  = "payment_link.cancelled"
)

// Service provides payment order management and webhook processing.
type Service struct {
	repo   Repository
	ledger *ledger.Service
	cfg    *Config
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository, ledgerSvc *ledger.Service, cfg *Config) *Service {
	if cfg == nil {
		cfg = LoadConfig()
	}
	return &Service{repo: repo, ledger: ledgerSvc, cfg: cfg}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, cfg *Config) *Service {
	return NewService(NewRepository(db), ledger.NewServiceFromDB(db), cfg)
}

// NewOrderReference builds a BSMART order id: timestamp plus a short random
// suffix, unique enough for gateway reconciliation and human readable.
func NewOrderReference(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("BSMART-%s-%s", at.Format("20060102150405"), suffix)
}

// CreateOrder opens a renewal order for the driver on the given plan and
// returns the transaction carrying the payment link to hand out.
func (s *Service) CreateOrder(ctx context.Context, driver *models.Driver, plan *models.SubscriptionPlan) (*models.PaymentTransaction, error) {
	_ = ctx
	if driver == nil || plan == nil {
		return nil, apperrors.InvalidInput("driver and plan are required")
	}

	now := time.Now()
	orderID := NewOrderReference(now)
	tax := plan.GSTAmount()

	txn := &models.PaymentTransaction{
		DriverID:       driver.ID,
		PlanID:         plan.ID,
		OrderID:        orderID,
		Amount:         plan.Price,
		TaxAmount:      tax,
		TotalAmount:    plan.TotalWithGST(),
		Status:         models.TransactionStatusPaymentLinkCreated,
		PaymentGateway: s.cfg.Gateway,
		PaymentLink:    fmt.Sprintf("%s/order/%s", strings.TrimRight(s.cfg.PaymentBaseURL, "/"), orderID),
	}
	if err := s.repo.CreateTransaction(txn); err != nil {
		return nil, err
	}

	log.Infof("[Payments] order %s created for driver %d plan %s (total %.2f)",
		orderID, driver.ID, plan.Code, txn.TotalAmount)
	return txn, nil
}

// CheckStatus returns the current state of an order.
func (s *Service) CheckStatus(ctx context.Context, orderID string) (*models.PaymentTransaction, error) {
	_ = ctx
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, apperrors.InvalidInput("order_id is required")
	}
	txn, err := s.repo.GetTransactionByOrderID(trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order %s", trimmed)
		}
		return nil, err
	}
	return txn, nil
}

// WebhookResult reports what a webhook delivery did.
type WebhookResult struct {
	Duplicate    bool                       `json:"duplicate"`
	EventType    string                     `json:"event_type"`
	OrderID      string                     `json:"order_id,omitempty"`
	Status       string                     `json:"status,omitempty"`
	Subscription *models.DriverSubscription `json:"subscription,omitempty"`
}

// gatewayEvent is the subset of the gateway webhook body the ledger needs.
type gatewayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string            `json:"id"`
				OrderID string            `json:"order_id"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		PaymentLink struct {
			Entity struct {
				ID          string `json:"id"`
				ReferenceID string `json:"reference_id"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// orderReference digs the BSMART order id out of the event, preferring the
// payment link reference, then payment notes.
func (e *gatewayEvent) orderReference() string {
	if ref := strings.TrimSpace(e.Payload.PaymentLink.Entity.ReferenceID); ref != "" {
		return ref
	}
	if ref := strings.TrimSpace(e.Payload.Payment.Entity.Notes["order_id"]); ref != "" {
		return ref
	}
	return strings.TrimSpace(e.Payload.Payment.Entity.OrderID)
}

// HandleWebhook ingests one gateway delivery: verify the signature, store
// the event idempotently, then settle the referenced order. Settled payments
// activate or extend the driver's subscription. Re-deliveries of an already
// stored event are acknowledged without reprocessing.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature, eventID string) (*WebhookResult, error) {
	signatureValid := VerifyWebhookSignature(payload, signature, s.cfg.WebhookSecret)

	var evt gatewayEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, apperrors.InvalidInput("malformed webhook payload: %v", err)
	}

	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256(payload)
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.PaymentWebhookEvent{
		Provider:        s.cfg.Gateway,
		ProviderEventID: id,
		EventType:       evt.Event,
		PayloadJSON:     string(payload),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &WebhookResult{Duplicate: true, EventType: evt.Event}, nil
	}

	if !signatureValid {
		_ = s.repo.MarkWebhookProcessed(stored.ID, "invalid signature")
		return nil, apperrors.InvalidInput("webhook signature verification failed")
	}

	result, processErr := s.applyEvent(ctx, &evt)
	errMsg := ""
	if processErr != nil {
		errMsg = processErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(stored.ID, errMsg); err != nil {
		log.Errorf("[Payments] marking webhook %d processed: %v", stored.ID, err)
	}
	if processErr != nil {
		return nil, processErr
	}
	result.EventType = evt.Event
	return result, nil
}

func (s *Service) applyEvent(ctx context.Context, evt *gatewayEvent) (*WebhookResult, error) {
	switch evt.Event {
	case EventPaymentCaptured, EventPaymentLinkPaid:
		return s.settleOrder(ctx, evt, true)
	case EventPaymentFailed, EventPaymentLinkExpired, EventPaymentLinkCancel:
		return s.settleOrder(ctx, evt, false)
	default:
		log.Debugf("[Payments] ignoring webhook event %q", evt.Event)
		return &WebhookResult{}, nil
	}
}

func (s *Service) settleOrder(ctx context.Context, evt *gatewayEvent, paid bool) (*WebhookResult, error) {
	orderID := evt.orderReference()
	if orderID == "" {
		return nil, apperrors.InvalidInput("webhook event %q carries no order reference", evt.Event)
	}

	txn, err := s.repo.GetTransactionByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order %s", orderID)
		}
		return nil, err
	}

	if txn.Status == models.TransactionStatusCompleted {
		// Settled orders stay settled; a late failure event cannot undo them.
		return &WebhookResult{OrderID: orderID, Status: txn.Status}, nil
	}

	if !paid {
		txn.Status = models.TransactionStatusFailed
		txn.GatewayTransactionID = evt.Payload.Payment.Entity.ID
		if err := s.repo.UpdateTransaction(txn); err != nil {
			return nil, err
		}
		return &WebhookResult{OrderID: orderID, Status: txn.Status}, nil
	}

	now := time.Now()
	txn.Status = models.TransactionStatusCompleted
	txn.GatewayTransactionID = evt.Payload.Payment.Entity.ID
	txn.PaymentDate = &now
	if err := s.repo.UpdateTransaction(txn); err != nil {
		return nil, err
	}

	sub, err := s.ledger.ActivateOrExtend(ctx, txn.DriverID, txn.PlanID)
	if err != nil {
		return nil, fmt.Errorf("activating subscription for order %s: %w", orderID, err)
	}

	log.Infof("[Payments] order %s settled, subscription %d active until %s",
		orderID, sub.ID, sub.EndDate.Format("2006-01-02"))
	return &WebhookResult{OrderID: orderID, Status: txn.Status, Subscription: sub}, nil
}
