package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/testutil"
)

func TestGetOrCreateBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	now := time.Now()

	balance, err := svc.GetOrCreateBalance(ctx, driver.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.MonthKey(now), balance.Month)
	assert.Equal(t, models.MonthlyLeaveAllowance, balance.TotalLeaves)
	assert.Zero(t, balance.UsedLeaves)
	assert.Equal(t, models.MonthlyLeaveAllowance, balance.Remaining())

	again, err := svc.GetOrCreateBalance(ctx, driver.ID, now)
	require.NoError(t, err)
	assert.Equal(t, balance.ID, again.ID, "second touch reuses the row")

	_, err = svc.GetOrCreateBalance(ctx, 0, now)
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestGetOrCreateBalanceConcurrentFirstTouch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	now := time.Now()

	const workers = 6
	var wg sync.WaitGroup
	ids := make([]uint, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			b, err := svc.GetOrCreateBalance(ctx, driver.ID, now)
			if err != nil {
				errs[slot] = err
				return
			}
			ids[slot] = b.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.Equal(t, ids[0], ids[i], "every caller sees the same row")
	}

	var count int64
	require.NoError(t, db.Model(&models.LeaveBalance{}).
		Where("driver_id = ?", driver.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestWithBalanceDeductsAtFiling(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	start := time.Now()

	req, balance, err := svc.RequestWithBalance(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		Reason:    "family function",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, req.Status)
	assert.Equal(t, 2, req.DeductedDays)
	assert.Equal(t, 2, balance.UsedLeaves)
	assert.Equal(t, models.MonthlyLeaveAllowance-2, balance.Remaining())

	// Three more days do not fit into the two remaining.
	_, _, err = svc.RequestWithBalance(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))

	var requests int64
	require.NoError(t, db.Model(&models.DriverLeaveRequest{}).
		Where("driver_id = ?", driver.ID).Count(&requests).Error)
	assert.Equal(t, int64(1), requests, "the refused request writes nothing")

	stored, err := NewRepository(db).GetBalance(driver.ID, models.MonthKey(start))
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsedLeaves)
}

func TestRejectRefundsDeduction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	start := time.Now()

	req, _, err := svc.RequestWithBalance(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, req.DeductedDays)

	rejected, err := svc.Reject(ctx, req.ID, "ops:asha")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, rejected.Status)
	assert.Equal(t, "ops:asha", rejected.ProcessedBy)
	require.NotNil(t, rejected.ProcessedAt)

	balance, err := NewRepository(db).GetBalance(driver.ID, models.MonthKey(start))
	require.NoError(t, err)
	assert.Zero(t, balance.UsedLeaves, "rejection refunds the deducted days")

	// Terminal: a second decision of either kind conflicts.
	_, err = svc.Reject(ctx, req.ID, "ops:asha")
	assert.True(t, apperrors.IsConflict(err))
	_, err = svc.Approve(ctx, req.ID, "ops:asha")
	assert.True(t, apperrors.IsConflict(err))
}

func TestApproveKeepsDeduction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	start := time.Now()

	req, _, err := svc.RequestWithBalance(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   start,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, req.ID, "ops:ravi")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, approved.Status)

	// Approval does not touch the allowance, the request already paid.
	balance, err := NewRepository(db).GetBalance(driver.ID, models.MonthKey(start))
	require.NoError(t, err)
	assert.Equal(t, 1, balance.UsedLeaves)

	_, err = svc.Approve(ctx, req.ID, "ops:ravi")
	assert.True(t, apperrors.IsConflict(err))

	_, err = svc.Approve(ctx, 99999, "ops:ravi")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPlainRequestSkipsAllowance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	start := time.Now()

	req, err := svc.Request(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusPending, req.Status)
	assert.Zero(t, req.DeductedDays)

	var balances int64
	require.NoError(t, db.Model(&models.LeaveBalance{}).
		Where("driver_id = ?", driver.ID).Count(&balances).Error)
	assert.Zero(t, balances, "no balance row is opened")

	// Rejecting an unpaid request refunds nothing.
	_, err = svc.Reject(ctx, req.ID, "ops:asha")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.LeaveBalance{}).
		Where("driver_id = ?", driver.ID).Count(&balances).Error)
	assert.Zero(t, balances)
}

func TestRequestValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	now := time.Now()
	tests := []struct {
		name string
		in   RequestInput
	}{
		{"missing driver", RequestInput{StartDate: now, EndDate: now}},
		{"missing dates", RequestInput{DriverID: 1}},
		{"end before start", RequestInput{DriverID: 1, StartDate: now, EndDate: now.AddDate(0, 0, -1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Request(ctx, tt.in)
			assert.True(t, apperrors.IsInvalidInput(err))
			_, _, err = svc.RequestWithBalance(ctx, tt.in)
			assert.True(t, apperrors.IsInvalidInput(err))
		})
	}
}

func TestSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	driver := testutil.TestDriver(t, db)
	today := time.Now()

	pending, err := svc.Request(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: today.AddDate(0, 0, 10),
		EndDate:   today.AddDate(0, 0, 11),
	})
	require.NoError(t, err)

	upcoming, err := svc.Request(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: today.AddDate(0, 0, 3),
		EndDate:   today.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, upcoming.ID, "ops:asha")
	require.NoError(t, err)

	// Approved but already over, stays out of the summary.
	past, err := svc.Request(ctx, RequestInput{
		DriverID:  driver.ID,
		StartDate: today.AddDate(0, 0, -10),
		EndDate:   today.AddDate(0, 0, -8),
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, past.ID, "ops:asha")
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, driver.ID)
	require.NoError(t, err)
	require.NotNil(t, summary.Balance)
	assert.Equal(t, models.MonthKey(today), summary.Balance.Month)
	require.Len(t, summary.Pending, 1)
	assert.Equal(t, pending.ID, summary.Pending[0].ID)
	require.Len(t, summary.Upcoming, 1)
	assert.Equal(t, upcoming.ID, summary.Upcoming[0].ID)

	_, err = svc.Summary(ctx, 0)
	assert.True(t, apperrors.IsInvalidInput(err))
}
