package drawdown

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contractbill-system/internal/database/dbtest"
	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
	"contractbill-system/internal/services/ledger"
	"contractbill-system/internal/services/settings"
)

func TestQuarter(t *testing.T) {
	cases := []struct {
		date    time.Time
		year    int
		quarter int
	}{
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 2025, 1},
		{time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), 2025, 1},
		{time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 2025, 2},
		{time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), 2025, 3},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 2025, 4},
	}
	for _, tc := range cases {
		year, quarter := Quarter(tc.date)
		assert.Equal(t, tc.year, year)
		assert.Equal(t, tc.quarter, quarter, "date %s", tc.date)
	}
}

func newTestServices(t *testing.T) (*gorm.DB, *Service, *ledger.Service) {
	t.Helper()
	db := dbtest.Open(t)
	ledgerSvc := ledger.NewService(db)
	settingsSvc := settings.NewService(db, nil)
	require.NoError(t, settingsSvc.InitializeDefaults(context.Background()))
	return db, NewService(db, ledgerSvc, settingsSvc), ledgerSvc
}

func createSalespersonWithBalance(t *testing.T, db *gorm.DB, ledgerSvc *ledger.Service, recognized decimal.Decimal) *models.Salesperson {
	t.Helper()

	salesperson := models.Salesperson{
		Name:   "Drawdown Test",
		Email:  fmt.Sprintf("drawdown+%d@test.local", time.Now().UnixNano()),
		Status: models.EntityActive,
	}
	require.NoError(t, db.Create(&salesperson).Error)

	if recognized.GreaterThan(decimal.Zero) {
		_, err := ledgerSvc.Record(context.Background(), ledger.Entry{
			EntryType:     models.EntryCommissionRecognized,
			SalespersonID: salesperson.ID,
			Amount:        recognized,
			Description:   "test recognition",
			CreatedBy:     "tester",
		})
		require.NoError(t, err)
	}
	return &salesperson
}

func TestCreateRequestRejectsOverdraw(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(300))

	_, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(500), "", "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))

	_, err = svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(-10), "", "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}

func TestQuarterCap(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(1000))

	first, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(100), "", "tester")
	require.NoError(t, err)

	// Default policy allows one request per quarter
	_, err = svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(100), "", "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))

	// A rejected request frees the slot
	_, err = svc.Reject(ctx, first.ID, "duplicate", "approver")
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(100), "", "tester")
	require.NoError(t, err)
}

func TestApprovalAndPaymentFlow(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(1000))

	request, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(400), "Q1 payout", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.DrawdownPending, request.Status)

	// Paying before approval must fail
	_, err = svc.ProcessPayment(ctx, request.ID, "BANK_TRANSFER", "REF-1", "finance")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))

	reduced := decimal.NewFromInt(350)
	approved, err := svc.Approve(ctx, request.ID, &reduced, "approver")
	require.NoError(t, err)
	assert.Equal(t, models.DrawdownApproved, approved.Status)
	assert.True(t, approved.ApprovedAmount.Equal(reduced))
	assert.Equal(t, "approver", approved.ApprovedBy)

	paid, err := svc.ProcessPayment(ctx, request.ID, "BANK_TRANSFER", "REF-1", "finance")
	require.NoError(t, err)
	assert.Equal(t, models.DrawdownPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)

	balance, err := svc.AvailableBalance(ctx, salesperson.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(650)), "balance %s", balance)

	// Paying twice must fail
	_, err = svc.ProcessPayment(ctx, request.ID, "BANK_TRANSFER", "REF-2", "finance")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestApproveRejectsAmountAboveRequested(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(1000))
	request, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(200), "", "tester")
	require.NoError(t, err)

	tooMuch := decimal.NewFromInt(250)
	_, err = svc.Approve(ctx, request.ID, &tooMuch, "approver")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}

func TestRejectRequiresReason(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(500))
	request, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(100), "", "tester")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, request.ID, "", "approver")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}

func TestRequestPostsLedgerEntry(t *testing.T) {
	db, svc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	salesperson := createSalespersonWithBalance(t, db, ledgerSvc, decimal.NewFromInt(500))
	request, err := svc.CreateRequest(ctx, salesperson.ID, decimal.NewFromInt(150), "", "tester")
	require.NoError(t, err)

	var entries []models.LedgerEntry
	require.NoError(t, db.Where("salesperson_id = ? AND entry_type = ?",
		salesperson.ID, models.EntryDrawdownRequested).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, entries[0].ReferenceID)
	assert.Equal(t, request.ID, *entries[0].ReferenceID)
}
