// Package ledger owns the append-only transaction log. Entries are immutable
// once written; corrections are posted as new REVERSAL or ADJUSTMENT entries.
// Every balance used elsewhere in the system is an aggregation over this log.
package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry groups the arguments of a ledger posting.
type Entry struct {
	EntryType        models.LedgerEntryType
	SalespersonID    int64
	CommissionPlanID *int64
	PlacementID      *int64
	Amount           decimal.Decimal
	Description      string
	ReferenceType    string
	ReferenceID      *int64
	CreatedBy        string
}

// signedTypes may carry any sign; every other type must be strictly positive.
var signedTypes = map[models.LedgerEntryType]bool{
	models.EntryAdjustment:         true,
	models.EntryReversal:           true,
	models.EntryCommissionAdjusted: true,
}

func validateAmount(entryType models.LedgerEntryType, amount decimal.Decimal) error {
	if amount.IsZero() {
		return apperr.InvalidInput("ledger amount must be non-zero for %s", entryType)
	}
	if !signedTypes[entryType] && amount.IsNegative() {
		return apperr.InvalidInput("ledger amount must be positive for %s, got %s", entryType, amount)
	}
	return nil
}

// Record appends one entry in its own transaction.
func (s *Service) Record(ctx context.Context, e Entry) (*models.LedgerEntry, error) {
	var created *models.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = s.RecordTx(tx, e)
		return txErr
	})
	return created, err
}

// RecordTx appends one entry inside the caller's transaction. Workflow
// engines use this so a status change and its ledger posting commit together.
func (s *Service) RecordTx(tx *gorm.DB, e Entry) (*models.LedgerEntry, error) {
	if err := validateAmount(e.EntryType, e.Amount); err != nil {
		return nil, err
	}

	var salesperson models.Salesperson
	if err := tx.First(&salesperson, e.SalespersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Salesperson", e.SalespersonID)
		}
		return nil, err
	}

	if e.CommissionPlanID != nil {
		var plan models.CommissionPlan
		if err := tx.First(&plan, *e.CommissionPlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("CommissionPlan", *e.CommissionPlanID)
			}
			return nil, err
		}
	}

	entry := models.LedgerEntry{
		CommissionPlanID: e.CommissionPlanID,
		SalespersonID:    e.SalespersonID,
		PlacementID:      e.PlacementID,
		EntryType:        e.EntryType,
		Amount:           e.Amount,
		Description:      e.Description,
		ReferenceType:    e.ReferenceType,
		ReferenceID:      e.ReferenceID,
		Status:           models.LedgerCompleted,
		CreatedBy:        e.CreatedBy,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	log.Printf("Ledger entry recorded: type=%s salesperson=%d amount=%s", e.EntryType, e.SalespersonID, e.Amount)
	return &entry, nil
}

func (s *Service) ensureSalesperson(ctx context.Context, salespersonID int64) error {
	var salesperson models.Salesperson
	if err := s.db.WithContext(ctx).First(&salesperson, salespersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Salesperson", salespersonID)
		}
		return err
	}
	return nil
}

// SumByType totals a salesperson's entries of one type. The sum is computed
// from the log on every call; no balance column exists to drift out of sync.
func (s *Service) SumByType(ctx context.Context, salespersonID int64, entryType models.LedgerEntryType) (decimal.Decimal, error) {
	if err := s.ensureSalesperson(ctx, salespersonID); err != nil {
		return decimal.Zero, err
	}
	return s.sumByTypeTx(s.db.WithContext(ctx), salespersonID, entryType)
}

func (s *Service) sumByTypeTx(tx *gorm.DB, salespersonID int64, entryType models.LedgerEntryType) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("salesperson_id = ? AND entry_type = ?", salespersonID, entryType).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (s *Service) SumAccrued(ctx context.Context, salespersonID int64) (decimal.Decimal, error) {
	return s.SumByType(ctx, salespersonID, models.EntryCommissionAccrued)
}

func (s *Service) SumRecognized(ctx context.Context, salespersonID int64) (decimal.Decimal, error) {
	return s.SumByType(ctx, salespersonID, models.EntryCommissionRecognized)
}

func (s *Service) SumPaid(ctx context.Context, salespersonID int64) (decimal.Decimal, error) {
	return s.SumByType(ctx, salespersonID, models.EntryCommissionPaid)
}

// SumRecognizedTx and SumPaidTx let workflow engines read balances inside the
// same transaction that will write against them.
func (s *Service) SumRecognizedTx(tx *gorm.DB, salespersonID int64) (decimal.Decimal, error) {
	return s.sumByTypeTx(tx, salespersonID, models.EntryCommissionRecognized)
}

func (s *Service) SumPaidTx(tx *gorm.DB, salespersonID int64) (decimal.Decimal, error) {
	return s.sumByTypeTx(tx, salespersonID, models.EntryCommissionPaid)
}

// AvailableBalance is the payable balance: recognized minus paid, plus
// signed reversals and manual adjustments.
func (s *Service) AvailableBalance(ctx context.Context, salespersonID int64) (decimal.Decimal, error) {
	if err := s.ensureSalesperson(ctx, salespersonID); err != nil {
		return decimal.Zero, err
	}
	return s.AvailableBalanceTx(s.db.WithContext(ctx), salespersonID)
}

// AvailableBalanceTx computes the payable balance inside the caller's
// transaction, in a single aggregate query so the figure is consistent with
// the rows the transaction holds locks on.
func (s *Service) AvailableBalanceTx(tx *gorm.DB, salespersonID int64) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&models.LedgerEntry{}).
		Select(`COALESCE(SUM(CASE
			WHEN entry_type = ? THEN amount
			WHEN entry_type = ? THEN -amount
			WHEN entry_type IN (?, ?) THEN amount
			ELSE 0 END), 0) as total`,
			models.EntryCommissionRecognized,
			models.EntryCommissionPaid,
			models.EntryReversal,
			models.EntryAdjustment).
		Where("salesperson_id = ?", salespersonID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("LedgerEntry", id)
		}
		return nil, err
	}
	return &entry, nil
}

func (s *Service) FindBySalesperson(ctx context.Context, salespersonID int64) ([]models.LedgerEntry, error) {
	if err := s.ensureSalesperson(ctx, salespersonID); err != nil {
		return nil, err
	}
	var entries []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("salesperson_id = ?", salespersonID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (s *Service) FindByCommissionPlan(ctx context.Context, planID int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("commission_plan_id = ?", planID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (s *Service) FindByPlacement(ctx context.Context, placementID int64) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("placement_id = ?", placementID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (s *Service) FindByDateRange(ctx context.Context, salespersonID int64, start, end time.Time) ([]models.LedgerEntry, error) {
	if err := s.ensureSalesperson(ctx, salespersonID); err != nil {
		return nil, err
	}
	var entries []models.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("salesperson_id = ? AND created_at >= ? AND created_at <= ?", salespersonID, start, end).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}
