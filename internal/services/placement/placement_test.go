package placement

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

type fixtures struct {
	salesperson *models.Salesperson
	client      *models.Client
	contractor  *models.Contractor
}

func newTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db := dbtest.Open(t)
	ledgerSvc := ledger.NewService(db)
	settingsSvc := settings.NewService(db, nil)
	require.NoError(t, settingsSvc.InitializeDefaults(context.Background()))
	recognitionSvc := recognition.NewService(db, ledgerSvc, settingsSvc)
	return db, NewService(db, ledgerSvc, settingsSvc, recognitionSvc)
}

func createFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()
	suffix := time.Now().UnixNano()

	salesperson := models.Salesperson{
		Name:   "Placement Test",
		Email:  fmt.Sprintf("placement+%d@test.local", suffix),
		Status: models.EntityActive,
	}
	require.NoError(t, db.Create(&salesperson).Error)

	client := models.Client{Name: "Acme Staffing Client", Status: models.EntityActive}
	require.NoError(t, db.Create(&client).Error)

	contractor := models.Contractor{
		Name:   "Contractor Under Test",
		Email:  fmt.Sprintf("contractor+%d@test.local", suffix),
		Type:   models.ContractorTypeContractor,
		Status: models.EntityActive,
	}
	require.NoError(t, db.Create(&contractor).Error)

	return fixtures{salesperson: &salesperson, client: &client, contractor: &contractor}
}

func contractorInput(f fixtures) CreateInput {
	return CreateInput{
		SalespersonID: f.salesperson.ID,
		ClientID:      f.client.ID,
		ContractorID:  f.contractor.ID,
		PlacementType: models.PlacementContractor,
		StartDate:     time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC),
		HoursPerWeek:  decimal.NewFromInt(39),
		PayType:       models.PaySalary,
		AnnualSalary:  decimal.NewFromInt(55000),
		BillRate:      decimal.NewFromFloat(40.28),
		FixedCosts:    decimal.Zero,
	}
}

func TestCreateContractorPlacementOpensFullPipeline(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	f := createFixtures(t, db)

	created, err := svc.Create(ctx, contractorInput(f), "tester")
	require.NoError(t, err)

	assert.Equal(t, 1, created.SequenceNumber)
	assert.True(t, created.CommissionTotal.Equal(decimal.NewFromFloat(1259.39)), "commissionTotal %s", created.CommissionTotal)
	// Overheads default from policy
	assert.True(t, created.AdminPercentage.Equal(decimal.NewFromFloat(6.00)))
	assert.True(t, created.InsurancePercentage.Equal(decimal.NewFromFloat(2.00)))

	var plan models.CommissionPlan
	require.NoError(t, db.Where("placement_id = ?", created.ID).First(&plan).Error)
	assert.True(t, plan.PlannedAmount.Equal(decimal.NewFromFloat(1259.39)))
	assert.Equal(t, models.PlanConfirmed, plan.Status)
	assert.Equal(t, 12, plan.MonthsToRecognize)

	var scheduleCount int64
	require.NoError(t, db.Model(&models.RecognitionSchedule{}).
		Where("commission_plan_id = ?", plan.ID).Count(&scheduleCount).Error)
	assert.EqualValues(t, 12, scheduleCount)

	var accruals []models.LedgerEntry
	require.NoError(t, db.Where("placement_id = ? AND entry_type = ?",
		created.ID, models.EntryCommissionAccrued).Find(&accruals).Error)
	require.Len(t, accruals, 1)
	assert.True(t, accruals[0].Amount.Equal(decimal.NewFromFloat(1259.39)))
}

func TestSequenceNumberDrivesTier(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	f := createFixtures(t, db)

	expected := []struct {
		sequence int
		total    string
	}{
		{1, "1259.39"},
		{2, "839.59"},
		{3, "671.67"},
	}
	for _, tc := range expected {
		created, err := svc.Create(ctx, contractorInput(f), "tester")
		require.NoError(t, err)
		assert.Equal(t, tc.sequence, created.SequenceNumber)
		assert.True(t, created.CommissionTotal.Equal(decimal.RequireFromString(tc.total)),
			"sequence %d total %s", tc.sequence, created.CommissionTotal)
	}
}

func TestCreatePermanentPlacement(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	f := createFixtures(t, db)

	created, err := svc.Create(ctx, CreateInput{
		SalespersonID: f.salesperson.ID,
		ClientID:      f.client.ID,
		ContractorID:  f.contractor.ID,
		PlacementType: models.PlacementPermanent,
		StartDate:     time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC),
		PlacementFee:  decimal.NewFromInt(10000),
		FeeType:       models.FeeFlat,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, created.NetAnnualMargin.Equal(decimal.NewFromFloat(10000.00)))
	assert.True(t, created.CommissionTotal.Equal(decimal.NewFromFloat(1500.00)), "commissionTotal %s", created.CommissionTotal)
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	f := createFixtures(t, db)

	input := contractorInput(f)
	input.SalespersonID = 999999999
	_, err := svc.Create(ctx, input, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateTermsRepricesAndAdjusts(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	f := createFixtures(t, db)

	created, err := svc.Create(ctx, contractorInput(f), "tester")
	require.NoError(t, err)

	input := contractorInput(f)
	input.BillRate = decimal.NewFromFloat(42.28)
	updated, err := svc.UpdateTerms(ctx, created.ID, input, "tester")
	require.NoError(t, err)

	// marginPerHour rises by 2.00: weekly +78.00, gross +3510.00, net +3229.20, commission +484.38
	assert.True(t, updated.CommissionTotal.Equal(decimal.NewFromFloat(1743.77)), "commissionTotal %s", updated.CommissionTotal)

	var plan models.CommissionPlan
	require.NoError(t, db.Where("placement_id = ?", created.ID).First(&plan).Error)
	assert.True(t, plan.PlannedAmount.Equal(updated.CommissionTotal))

	var adjustments []models.LedgerEntry
	require.NoError(t, db.Where("placement_id = ? AND entry_type = ?",
		created.ID, models.EntryCommissionAdjusted).Find(&adjustments).Error)
	require.Len(t, adjustments, 1)
	assert.True(t, adjustments[0].Amount.Equal(decimal.NewFromFloat(484.38)), "delta %s", adjustments[0].Amount)

	var scheduleTotal decimal.Decimal
	var schedules []models.RecognitionSchedule
	require.NoError(t, db.Where("commission_plan_id = ?", plan.ID).Find(&schedules).Error)
	require.Len(t, schedules, 12)
	for _, s := range schedules {
		scheduleTotal = scheduleTotal.Add(s.PlannedAmount)
	}
	assert.True(t, scheduleTotal.Equal(updated.CommissionTotal), "schedule total %s", scheduleTotal)
}
