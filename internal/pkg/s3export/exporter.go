package s3export

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
)

// MonthlyStatement is the JSON document written to S3 for one billing month
type MonthlyStatement struct {
	Period       string           `json:"period"`
	GeneratedAt  time.Time        `json:"generated_at"`
	InvoiceCount int              `json:"invoice_count"`
	TotalAmount  float64          `json:"total_amount"`
	TotalTax     float64          `json:"total_tax"`
	TotalPayable float64          `json:"total_payable"`
	Invoices     []models.Invoice `json:"invoices"`
}

// Exporter builds monthly invoice statements and archives them in S3
type Exporter struct {
	client *Client
	config *Config
	ledger *ledger.Service
}

// NewExporter creates an exporter backed by the given ledger service
func NewExporter(cfg *Config, svc *ledger.Service) (*Exporter, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		client: client,
		config: cfg,
		ledger: svc,
	}, nil
}

// BuildStatement assembles the statement for a YYYYMM period from the ledger
func (e *Exporter) BuildStatement(ctx context.Context, period string) (*MonthlyStatement, error) {
	invoices, err := e.ledger.ListInvoicesByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	stmt := &MonthlyStatement{
		Period:       period,
		GeneratedAt:  time.Now(),
		InvoiceCount: len(invoices),
		Invoices:     invoices,
	}
	for _, inv := range invoices {
		stmt.TotalAmount += inv.Amount
		stmt.TotalTax += inv.TaxAmount
		stmt.TotalPayable += inv.TotalAmount
	}
	stmt.TotalAmount = models.RoundMoney(stmt.TotalAmount)
	stmt.TotalTax = models.RoundMoney(stmt.TotalTax)
	stmt.TotalPayable = models.RoundMoney(stmt.TotalPayable)
	return stmt, nil
}

// ExportMonth uploads the statement for a YYYYMM period. The upload is
// idempotent: if the object already exists the export is skipped.
func (e *Exporter) ExportMonth(ctx context.Context, period string) (*UploadResult, error) {
	objectKey := e.config.GetObjectKey(period)

	exists, err := e.client.ObjectExists(objectKey)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Infof("[LedgerExport] Statement for %s already archived, skipping", period)
		return nil, nil
	}

	stmt, err := e.BuildStatement(ctx, period)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statement for %s: %w", period, err)
	}

	result, err := e.client.Upload(objectKey, body, map[string]string{
		"statement-period": period,
		"invoice-count":    strconv.Itoa(stmt.InvoiceCount),
		"export-source":    "swapledger",
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[LedgerExport] Archived %d invoice(s) for %s", stmt.InvoiceCount, period)
	return result, nil
}

// FetchMonth downloads a previously archived statement for audit
func (e *Exporter) FetchMonth(ctx context.Context, period string) (*MonthlyStatement, error) {
	objectKey := e.config.GetObjectKey(period)

	exists, err := e.client.ObjectExists(objectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("no archived statement for period %s", period)
	}

	data, err := e.client.Download(objectKey)
	if err != nil {
		return nil, err
	}

	var stmt MonthlyStatement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement for %s: %w", period, err)
	}
	return &stmt, nil
}
