package s3export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	"github.com/batterysmart/swapledger/internal/pkg/testutil"
)

func TestGetObjectKey(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, "ledgers/2026/07/invoices-202607.json", cfg.GetObjectKey("202607"))
	assert.Equal(t, "ledgers/2025/12/invoices-202512.json", cfg.GetObjectKey("202512"))
	assert.Equal(t, "ledgers/unknown/invoices-2026.json", cfg.GetObjectKey("2026"))
}

func TestLoadConfig(t *testing.T) {
	clear := func() {
		t.Setenv("S3_ACCESS_KEY_ID", "")
		t.Setenv("S3_SECRET_ACCESS_KEY", "")
		t.Setenv("S3_REGION", "")
		t.Setenv("S3_BUCKET_NAME", "")
		t.Setenv("S3_ENDPOINT_URL", "")
		t.Setenv("S3_EXPORT_ENABLED", "")
	}

	t.Run("disabled by default", func(t *testing.T) {
		clear()
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.False(t, cfg.IsEnabled())
		assert.Equal(t, "ap-south-1", cfg.Region)
	})

	t.Run("enabled requires credentials", func(t *testing.T) {
		clear()
		t.Setenv("S3_EXPORT_ENABLED", "true")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S3_ACCESS_KEY_ID")

		t.Setenv("S3_ACCESS_KEY_ID", "key")
		t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
		_, err = LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S3_BUCKET_NAME")

		t.Setenv("S3_BUCKET_NAME", "swapledger-exports")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.IsEnabled())
		assert.Equal(t, "swapledger-exports", cfg.GetBucketName())
	})
}

func TestBuildStatement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := ledger.NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	generatedAt := time.Date(2026, 7, 5, 12, 0, 0, 0, time.UTC)
	amounts := []float64{35.00, 100.00, 149.00}
	for i, amount := range amounts {
		_, err := svc.CreateInvoice(ctx, ledger.CreateInvoiceInput{
			DriverID:      driver.ID,
			Amount:        amount,
			GSTPercentage: 18.00,
			GeneratedAt:   generatedAt.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	exporter := &Exporter{config: &Config{}, ledger: svc}

	stmt, err := exporter.BuildStatement(ctx, "202607")
	require.NoError(t, err)
	assert.Equal(t, "202607", stmt.Period)
	assert.Equal(t, 3, stmt.InvoiceCount)
	require.Len(t, stmt.Invoices, 3)
	assert.Equal(t, "INV-202607-000001", stmt.Invoices[0].InvoiceNumber)
	assert.InDelta(t, 284.00, stmt.TotalAmount, 0.001)
	assert.InDelta(t, 51.12, stmt.TotalTax, 0.001)
	assert.InDelta(t, 335.12, stmt.TotalPayable, 0.001)

	t.Run("empty period still builds", func(t *testing.T) {
		stmt, err := exporter.BuildStatement(ctx, "202601")
		require.NoError(t, err)
		assert.Zero(t, stmt.InvoiceCount)
		assert.Zero(t, stmt.TotalPayable)
		assert.Empty(t, stmt.Invoices)
	})

	t.Run("malformed period", func(t *testing.T) {
		_, err := exporter.BuildStatement(ctx, "26-07")
		assert.True(t, apperrors.IsInvalidInput(err))
	})
}
