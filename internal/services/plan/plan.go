// Package plan exposes read and lifecycle operations on commission plans.
// Plans are opened by placement creation; this package confirms manually
// re-opened plans and reverses plans whose placement fell through.
package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
	"contractbill-system/internal/services/ledger"
)

type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc}
}

func (s *Service) GetByID(ctx context.Context, planID int64) (*models.CommissionPlan, error) {
	var plan models.CommissionPlan
	if err := s.db.WithContext(ctx).First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CommissionPlan", planID)
		}
		return nil, err
	}
	return &plan, nil
}

func (s *Service) GetByPlacement(ctx context.Context, placementID int64) (*models.CommissionPlan, error) {
	var plan models.CommissionPlan
	if err := s.db.WithContext(ctx).Where("placement_id = ?", placementID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CommissionPlan", placementID)
		}
		return nil, err
	}
	return &plan, nil
}

func (s *Service) FindBySalesperson(ctx context.Context, salespersonID int64) ([]models.CommissionPlan, error) {
	var plans []models.CommissionPlan
	err := s.db.WithContext(ctx).
		Where("salesperson_id = ?", salespersonID).
		Order("created_at desc").
		Find(&plans).Error
	return plans, err
}

func (s *Service) FindByStatus(ctx context.Context, status models.PlanStatus) ([]models.CommissionPlan, error) {
	var plans []models.CommissionPlan
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&plans).Error
	return plans, err
}

// Confirm moves a PLANNED plan to CONFIRMED and locks in the confirmed
// amount. Plans opened by placement creation confirm automatically; this
// covers plans re-opened after a reversal.
func (s *Service) Confirm(ctx context.Context, planID int64) (*models.CommissionPlan, error) {
	var confirmed *models.CommissionPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}
		if plan.Status != models.PlanPlanned {
			return apperr.InvalidState("CommissionPlan", string(plan.Status), "confirm")
		}

		plan.Status = models.PlanConfirmed
		plan.ConfirmedAmount = plan.PlannedAmount
		if err := tx.Save(plan).Error; err != nil {
			return err
		}
		confirmed = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// Reverse closes a plan whose placement fell through. Recognized-but-unpaid
// amounts are negated with a REVERSAL ledger entry so the available balance
// drops immediately; already-paid amounts stay paid and are handled outside
// the system. Pending schedule entries stay in place but the recognition
// sweep skips reversed plans.
func (s *Service) Reverse(ctx context.Context, planID int64, reason, actor string) (*models.CommissionPlan, error) {
	if reason == "" {
		return nil, apperr.InvalidInput("reversal reason is required")
	}

	var reversed *models.CommissionPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}
		if plan.Status == models.PlanReversed {
			return apperr.InvalidState("CommissionPlan", string(plan.Status), "reverse")
		}

		unpaidRecognized := plan.RecognizedAmount.Sub(plan.PaidAmount)

		plan.Status = models.PlanReversed
		plan.Notes = appendNote(plan.Notes, "Reversed: "+reason)
		if err := tx.Save(plan).Error; err != nil {
			return err
		}

		if unpaidRecognized.GreaterThan(decimal.Zero) {
			_, err = s.ledger.RecordTx(tx, ledger.Entry{
				EntryType:        models.EntryReversal,
				SalespersonID:    plan.SalespersonID,
				CommissionPlanID: &plan.ID,
				PlacementID:      &plan.PlacementID,
				Amount:           unpaidRecognized.Neg(),
				Description:      fmt.Sprintf("Plan %d reversed: %s", plan.ID, reason),
				ReferenceType:    "COMMISSION_PLAN",
				ReferenceID:      &plan.ID,
				CreatedBy:        actor,
			})
			if err != nil {
				return err
			}
		}

		reversed = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reversed, nil
}

func lockPlan(tx *gorm.DB, planID int64) (*models.CommissionPlan, error) {
	var plan models.CommissionPlan
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CommissionPlan", planID)
		}
		return nil, err
	}
	return &plan, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
