package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/testutil"
)

const testSecret = "whsec_test_1234"

func testConfig() *Config {
	return &Config{
		WebhookSecret:  testSecret,
		PaymentBaseURL: "https://pay.example.in",
		Gateway:        "razorpay",
	}
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func linkPaidPayload(orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_1","reference_id":"%s"}}}}`,
		orderID))
}

func paymentFailedPayload(orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_9","notes":{"order_id":"%s"}}}}}`,
		orderID))
}

func TestNewOrderReference(t *testing.T) {
	at := time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)

	ref := NewOrderReference(at)
	assert.Regexp(t, regexp.MustCompile(`^BSMART-20250815103000-[0-9A-F]{8}$`), ref)

	other := NewOrderReference(at)
	assert.NotEqual(t, ref, other, "random suffix keeps references unique")
}

func TestCreateOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)

	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)
	assert.Equal(t, driver.ID, txn.DriverID)
	assert.Equal(t, plan.ID, txn.PlanID)
	assert.InDelta(t, 149.00, txn.Amount, 0.001)
	assert.InDelta(t, 26.82, txn.TaxAmount, 0.001)
	assert.InDelta(t, 175.82, txn.TotalAmount, 0.001)
	assert.Equal(t, models.TransactionStatusPaymentLinkCreated, txn.Status)
	assert.Equal(t, "razorpay", txn.PaymentGateway)
	assert.Equal(t, "https://pay.example.in/order/"+txn.OrderID, txn.PaymentLink)

	_, err = svc.CreateOrder(ctx, nil, plan)
	assert.True(t, apperrors.IsInvalidInput(err))
	_, err = svc.CreateOrder(ctx, driver, nil)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestCheckStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)
	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)

	found, err := svc.CheckStatus(ctx, "  "+txn.OrderID+" ")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, found.ID)

	_, err = svc.CheckStatus(ctx, "BSMART-00000000000000-DEADBEEF")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.CheckStatus(ctx, "   ")
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"payment.captured"}`)
	good := sign(payload, testSecret)

	assert.True(t, VerifyWebhookSignature(payload, good, testSecret))
	assert.True(t, VerifyWebhookSignature(payload, "  "+good+"  ", testSecret), "whitespace is trimmed")

	upper := regexp.MustCompile("[a-f]").ReplaceAllStringFunc(good, func(s string) string {
		return string(s[0] - 'a' + 'A')
	})
	assert.True(t, VerifyWebhookSignature(payload, upper, testSecret), "hex case does not matter")

	assert.False(t, VerifyWebhookSignature(payload, good, "other_secret"))
	assert.False(t, VerifyWebhookSignature([]byte(`tampered`), good, testSecret))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex!", testSecret))
	assert.False(t, VerifyWebhookSignature(payload, "", testSecret))
	assert.False(t, VerifyWebhookSignature(payload, good, ""), "empty secret never validates")
}

func TestHandleWebhookSettlesOrderOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)
	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)

	payload := linkPaidPayload(txn.OrderID)
	res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_001")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "payment_link.paid", res.EventType)
	assert.Equal(t, txn.OrderID, res.OrderID)
	assert.Equal(t, models.TransactionStatusCompleted, res.Status)
	require.NotNil(t, res.Subscription)
	assert.Equal(t, models.SubscriptionStatusActive, res.Subscription.Status)
	firstEnd := res.Subscription.EndDate

	settled, err := svc.CheckStatus(ctx, txn.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, settled.Status)
	assert.NotNil(t, settled.PaymentDate)

	var evt models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", "evt_001").First(&evt).Error)
	assert.True(t, evt.SignatureValid)
	assert.NotNil(t, evt.ProcessedAt)
	assert.Empty(t, evt.ProcessingError)

	// The gateway re-delivers; the stored event absorbs it without touching
	// the subscription again.
	res, err = svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_001")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	var subs []models.DriverSubscription
	require.NoError(t, db.Where("driver_id = ?", driver.ID).Find(&subs).Error)
	require.Len(t, subs, 1)
	assert.Equal(t, firstEnd.Format("2006-01-02"), subs[0].EndDate.Format("2006-01-02"))
}

func TestHandleWebhookExtendsRunningSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)
	current := testutil.TestSubscription(t, db, driver.ID, plan.ID)
	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)

	payload := linkPaidPayload(txn.OrderID)
	res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_002")
	require.NoError(t, err)
	require.NotNil(t, res.Subscription)
	assert.Equal(t, current.ID, res.Subscription.ID, "a running subscription extends instead of restarting")
	assert.Equal(t, current.EndDate.AddDate(0, 0, plan.ValidityDays).Format("2006-01-02"),
		res.Subscription.EndDate.Format("2006-01-02"))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)
	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)

	payload := linkPaidPayload(txn.OrderID)
	_, err = svc.HandleWebhook(ctx, payload, sign(payload, "wrong_secret"), "evt_bad")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))

	// The delivery is kept for audit, flagged, and the order is untouched.
	var evt models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", "evt_bad").First(&evt).Error)
	assert.False(t, evt.SignatureValid)
	assert.Equal(t, "invalid signature", evt.ProcessingError)

	stored, err := svc.CheckStatus(ctx, txn.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaymentLinkCreated, stored.Status)
}

func TestHandleWebhookFailureEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	plan := testutil.TestPlan(t, db)
	txn, err := svc.CreateOrder(ctx, driver, plan)
	require.NoError(t, err)

	// The failed event references the order through payment notes.
	payload := paymentFailedPayload(txn.OrderID)
	res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_f1")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, res.Status)
	assert.Nil(t, res.Subscription)

	var subs int64
	require.NoError(t, db.Model(&models.DriverSubscription{}).
		Where("driver_id = ?", driver.ID).Count(&subs).Error)
	assert.Zero(t, subs, "failed payments never activate anything")

	t.Run("late failure cannot undo a settlement", func(t *testing.T) {
		order, err := svc.CreateOrder(ctx, driver, plan)
		require.NoError(t, err)

		paid := linkPaidPayload(order.OrderID)
		_, err = svc.HandleWebhook(ctx, paid, sign(paid, testSecret), "evt_f2")
		require.NoError(t, err)

		late := paymentFailedPayload(order.OrderID)
		res, err := svc.HandleWebhook(ctx, late, sign(late, testSecret), "evt_f3")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, res.Status)

		stored, err := svc.CheckStatus(ctx, order.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusCompleted, stored.Status)
	})
}

func TestHandleWebhookEdgeCases(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db, testConfig())
	ctx := context.Background()

	t.Run("malformed payload", func(t *testing.T) {
		payload := []byte(`{wat`)
		_, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_m1")
		assert.True(t, apperrors.IsInvalidInput(err))
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		payload := []byte(`{"event":"refund.created","payload":{}}`)
		res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_m2")
		require.NoError(t, err)
		assert.Equal(t, "refund.created", res.EventType)
		assert.Empty(t, res.OrderID)
	})

	t.Run("unknown order", func(t *testing.T) {
		payload := linkPaidPayload("BSMART-19990101000000-FFFFFFFF")
		_, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_m3")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("no order reference", func(t *testing.T) {
		payload := []byte(`{"event":"payment.captured","payload":{}}`)
		_, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "evt_m4")
		assert.True(t, apperrors.IsInvalidInput(err))
	})

	t.Run("missing event id falls back to payload hash", func(t *testing.T) {
		payload := []byte(`{"event":"refund.created","payload":{"n":1}}`)
		res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "")
		require.NoError(t, err)
		assert.False(t, res.Duplicate)

		var evt models.PaymentWebhookEvent
		require.NoError(t, db.Where("event_type = ? AND provider_event_id LIKE ?",
			"refund.created", "hash:%").First(&evt).Error)

		res, err = svc.HandleWebhook(ctx, payload, sign(payload, testSecret), "")
		require.NoError(t, err)
		assert.True(t, res.Duplicate, "identical body dedupes on its hash")
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")
	t.Setenv("PAYMENT_LINK_BASE_URL", "")
	t.Setenv("PAYMENT_GATEWAY", "")

	cfg := LoadConfig()
	assert.Empty(t, cfg.WebhookSecret)
	assert.Equal(t, "https://pay.batterysmart.in", cfg.PaymentBaseURL)
	assert.Equal(t, "razorpay", cfg.Gateway)

	t.Setenv("PAYMENT_GATEWAY", "cashfree")
	assert.Equal(t, "cashfree", LoadConfig().Gateway)
}
