package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractbill-system/internal/database/dbtest"
	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

func TestDefaultSettings(t *testing.T) {
	defaults := defaultSettings()

	assert.True(t, defaults.AdminPercentage.Equal(decimal.NewFromFloat(6.00)))
	assert.True(t, defaults.InsurancePercentage.Equal(decimal.NewFromFloat(2.00)))
	assert.True(t, defaults.LeavePercentage.Equal(decimal.NewFromFloat(14.54)))
	assert.True(t, defaults.StatutoryPercentage.Equal(decimal.NewFromFloat(11.25)))
	assert.True(t, defaults.PensionPercentage.Equal(decimal.NewFromFloat(1.50)))
	assert.Equal(t, 45, defaults.WeeksPerYear)
	assert.True(t, defaults.FirstContractCommission.Equal(decimal.NewFromFloat(15.00)))
	assert.True(t, defaults.SecondContractCommission.Equal(decimal.NewFromFloat(10.00)))
	assert.True(t, defaults.ThirdContractCommission.Equal(decimal.NewFromFloat(8.00)))
	assert.Equal(t, 3, defaults.DrawdownMinMonth)
	assert.Equal(t, 1, defaults.DrawdownMaxPerQuarter)
}

func TestUpdateInputValidation(t *testing.T) {
	bad := decimal.NewFromInt(150)
	in := UpdateInput{AdminPercentage: &bad}
	err := in.validate()
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidInput(err))

	negative := decimal.NewFromInt(-1)
	in = UpdateInput{LeavePercentage: &negative}
	require.Error(t, in.validate())

	weeks := 53
	in = UpdateInput{WeeksPerYear: &weeks}
	require.Error(t, in.validate())

	zero := 0
	in = UpdateInput{DrawdownMaxPerQuarter: &zero}
	require.Error(t, in.validate())

	good := decimal.NewFromFloat(7.5)
	okWeeks := 46
	in = UpdateInput{AdminPercentage: &good, WeeksPerYear: &okWeeks}
	require.NoError(t, in.validate())
}

func TestInitializeDefaultsIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.InitializeDefaults(ctx))
	var before int64
	require.NoError(t, db.Model(&models.PolicySettings{}).Count(&before).Error)

	require.NoError(t, svc.InitializeDefaults(ctx))
	var after int64
	require.NoError(t, db.Model(&models.PolicySettings{}).Count(&after).Error)
	assert.Equal(t, before, after)

	current, err := svc.GetTx(db)
	require.NoError(t, err)
	assert.Equal(t, 45, current.WeeksPerYear)
}
