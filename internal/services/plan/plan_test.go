package plan

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
	"contractbill-system/internal/services/recognition"
	"contractbill-system/internal/services/settings"
)

func newTestServices(t *testing.T) (*gorm.DB, *Service, *recognition.Service, *ledger.Service) {
	t.Helper()
	db := dbtest.Open(t)
	ledgerSvc := ledger.NewService(db)
	settingsSvc := settings.NewService(db, nil)
	require.NoError(t, settingsSvc.InitializeDefaults(context.Background()))
	recognitionSvc := recognition.NewService(db, ledgerSvc, settingsSvc)
	return db, NewService(db, ledgerSvc), recognitionSvc, ledgerSvc
}

func createPlanFixture(t *testing.T, db *gorm.DB, planned decimal.Decimal, months int, start time.Time, status models.PlanStatus) *models.CommissionPlan {
	t.Helper()

	salesperson := models.Salesperson{
		Name:   "Plan Test",
		Email:  fmt.Sprintf("plan+%d@test.local", time.Now().UnixNano()),
		Status: models.EntityActive,
	}
	require.NoError(t, db.Create(&salesperson).Error)

	placement := models.Placement{
		SalespersonID:   salesperson.ID,
		ClientID:        1,
		ContractorID:    1,
		PlacementType:   models.PlacementContractor,
		Status:          models.PlacementActive,
		StartDate:       start,
		SequenceNumber:  1,
		CommissionTotal: planned,
	}
	require.NoError(t, db.Create(&placement).Error)

	p := models.CommissionPlan{
		PlacementID:          placement.ID,
		SalespersonID:        salesperson.ID,
		PlannedAmount:        planned,
		RecognizedAmount:     decimal.Zero,
		PaidAmount:           decimal.Zero,
		Status:               status,
		RecognitionStartDate: &start,
		MonthsToRecognize:    months,
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestConfirm(t *testing.T) {
	db, svc, _, _ := newTestServices(t)
	ctx := context.Background()

	start := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	p := createPlanFixture(t, db, decimal.NewFromInt(1200), 12, start, models.PlanPlanned)

	confirmed, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanConfirmed, confirmed.Status)
	assert.True(t, confirmed.ConfirmedAmount.Equal(p.PlannedAmount))

	// Confirming twice is a state error
	_, err = svc.Confirm(ctx, p.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestReverseNegatesUnpaidRecognized(t *testing.T) {
	db, svc, recognitionSvc, ledgerSvc := newTestServices(t)
	ctx := context.Background()

	start := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	p := createPlanFixture(t, db, decimal.NewFromInt(1200), 12, start, models.PlanConfirmed)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := recognitionSvc.GenerateScheduleTx(tx, p)
		return err
	}))

	var first models.RecognitionSchedule
	require.NoError(t, db.Where("commission_plan_id = ? AND month = 1", p.ID).First(&first).Error)
	_, err := recognitionSvc.Recognize(ctx, first.ID, "tester")
	require.NoError(t, err)

	balance, err := ledgerSvc.AvailableBalance(ctx, p.SalespersonID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(100)), "balance %s", balance)

	reversed, err := svc.Reverse(ctx, p.ID, "placement terminated early", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.PlanReversed, reversed.Status)

	balance, err = ledgerSvc.AvailableBalance(ctx, p.SalespersonID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "balance %s", balance)

	var reversals []models.LedgerEntry
	require.NoError(t, db.Where("commission_plan_id = ? AND entry_type = ?",
		p.ID, models.EntryReversal).Find(&reversals).Error)
	require.Len(t, reversals, 1)
	assert.True(t, reversals[0].Amount.Equal(decimal.NewFromInt(-100)), "amount %s", reversals[0].Amount)

	// Reversing twice is a state error
	_, err = svc.Reverse(ctx, p.ID, "again", "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))

	// A reversed plan cannot be recognized further
	var second models.RecognitionSchedule
	require.NoError(t, db.Where("commission_plan_id = ? AND month = 2", p.ID).First(&second).Error)
	_, err = recognitionSvc.Recognize(ctx, second.ID, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestReverseRequiresReason(t *testing.T) {
	db, svc, _, _ := newTestServices(t)
	ctx := context.Background()

	start := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	p := createPlanFixture(t, db, decimal.NewFromInt(600), 6, start, models.PlanConfirmed)

	_, err := svc.Reverse(ctx, p.ID, "", "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))
}
