package ledger

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
)

func TestValidateAmount(t *testing.T) {
	// Positive-only types reject negatives and zero
	for _, entryType := range []models.LedgerEntryType{
		models.EntryCommissionAccrued,
		models.EntryCommissionRecognized,
		models.EntryCommissionPaid,
		models.EntryDrawdownRequested,
		models.EntryDrawdownApproved,
	} {
		assert.NoError(t, validateAmount(entryType, decimal.NewFromInt(10)))
		assert.Error(t, validateAmount(entryType, decimal.NewFromInt(-10)), "type %s", entryType)
		assert.Error(t, validateAmount(entryType, decimal.Zero), "type %s", entryType)
	}

	// Signed types allow negatives, still reject zero
	for _, entryType := range []models.LedgerEntryType{
		models.EntryReversal,
		models.EntryAdjustment,
		models.EntryCommissionAdjusted,
	} {
		assert.NoError(t, validateAmount(entryType, decimal.NewFromInt(-10)), "type %s", entryType)
		assert.NoError(t, validateAmount(entryType, decimal.NewFromInt(10)))
		assert.Error(t, validateAmount(entryType, decimal.Zero), "type %s", entryType)
	}
}

func createSalesperson(t *testing.T, db *gorm.DB) *models.Salesperson {
	t.Helper()
	salesperson := models.Salesperson{
		Name:   "Ledger Test",
		Email:  fmt.Sprintf("ledger+%d@test.local", time.Now().UnixNano()),
		Status: models.EntityActive,
	}
	require.NoError(t, db.Create(&salesperson).Error)
	return &salesperson
}

func TestRecordRejectsUnknownSalesperson(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)

	_, err := svc.Record(context.Background(), Entry{
		EntryType:     models.EntryCommissionAccrued,
		SalespersonID: 999999999,
		Amount:        decimal.NewFromInt(100),
		CreatedBy:     "tester",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSumsAndAvailableBalance(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	salesperson := createSalesperson(t, db)

	post := func(entryType models.LedgerEntryType, amount decimal.Decimal) {
		t.Helper()
		_, err := svc.Record(ctx, Entry{
			EntryType:     entryType,
			SalespersonID: salesperson.ID,
			Amount:        amount,
			Description:   "test posting",
			CreatedBy:     "tester",
		})
		require.NoError(t, err)
	}

	post(models.EntryCommissionAccrued, decimal.NewFromFloat(1259.39))
	post(models.EntryCommissionRecognized, decimal.NewFromFloat(104.95))
	post(models.EntryCommissionRecognized, decimal.NewFromFloat(104.95))
	post(models.EntryCommissionPaid, decimal.NewFromFloat(50.00))
	post(models.EntryAdjustment, decimal.NewFromFloat(-9.90))

	accrued, err := svc.SumAccrued(ctx, salesperson.ID)
	require.NoError(t, err)
	assert.True(t, accrued.Equal(decimal.NewFromFloat(1259.39)), "accrued %s", accrued)

	recognized, err := svc.SumRecognized(ctx, salesperson.ID)
	require.NoError(t, err)
	assert.True(t, recognized.Equal(decimal.NewFromFloat(209.90)), "recognized %s", recognized)

	paid, err := svc.SumPaid(ctx, salesperson.ID)
	require.NoError(t, err)
	assert.True(t, paid.Equal(decimal.NewFromFloat(50.00)), "paid %s", paid)

	// 209.90 - 50.00 - 9.90
	available, err := svc.AvailableBalance(ctx, salesperson.ID)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromFloat(150.00)), "available %s", available)
}

func TestFindBySalespersonOrdersNewestFirst(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	salesperson := createSalesperson(t, db)
	for i := 1; i <= 3; i++ {
		_, err := svc.Record(ctx, Entry{
			EntryType:     models.EntryCommissionRecognized,
			SalespersonID: salesperson.ID,
			Amount:        decimal.NewFromInt(int64(i)),
			CreatedBy:     "tester",
		})
		require.NoError(t, err)
	}

	entries, err := svc.FindBySalesperson(ctx, salesperson.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].CreatedAt.After(*entries[2].CreatedAt) || entries[0].CreatedAt.Equal(*entries[2].CreatedAt))
}

func TestRecordRejectsBadSigns(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	ctx := context.Background()

	salesperson := createSalesperson(t, db)

	_, err := svc.Record(ctx, Entry{
		EntryType:     models.EntryCommissionAccrued,
		SalespersonID: salesperson.ID,
		Amount:        decimal.NewFromInt(-100),
		CreatedBy:     "tester",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("salesperson_id = ?", salesperson.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}
