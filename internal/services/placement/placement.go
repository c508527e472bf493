// Package placement manages placement records and drives the commission
// pipeline: on creation a placement is priced, its commission plan opened,
// the accrual posted, and the recognition schedule generated, all in one
// transaction.
package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
	"contractbill-system/internal/services/calculation"
	"contractbill-system/internal/services/ledger"
	"contractbill-system/internal/services/recognition"
	"contractbill-system/internal/services/settings"
)

const defaultRecognitionMonths = 12

type Service struct {
	db          *gorm.DB
	ledger      *ledger.Service
	settings    *settings.Service
	recognition *recognition.Service
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service, settingsSvc *settings.Service, recognitionSvc *recognition.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc, settings: settingsSvc, recognition: recognitionSvc}
}

// CreateInput carries the placement terms. Overhead percentages left nil
// default from the current policy settings.
type CreateInput struct {
	SalespersonID int64
	ClientID      int64
	ContractorID  int64
	PlacementType models.PlacementType
	StartDate     time.Time
	EndDate       *time.Time

	// Contractor terms
	HoursPerWeek decimal.Decimal
	WeeksPerYear *int
	PayType      models.PayType
	AnnualSalary decimal.Decimal
	BillRate     decimal.Decimal

	AdminPercentage     *decimal.Decimal
	InsurancePercentage *decimal.Decimal
	FixedCosts          decimal.Decimal

	// Permanent terms
	PlacementFee            decimal.Decimal
	FeeType                 models.FeeType
	CandidateSalary         decimal.Decimal
	RecognitionPeriodMonths *int
}

func (in *CreateInput) validate() error {
	switch in.PlacementType {
	case models.PlacementContractor:
		if in.HoursPerWeek.LessThanOrEqual(decimal.Zero) {
			return apperr.InvalidInput("contractor placement requires positive hours per week")
		}
		if in.AnnualSalary.LessThanOrEqual(decimal.Zero) {
			return apperr.InvalidInput("contractor placement requires positive annual salary")
		}
		if in.BillRate.LessThanOrEqual(decimal.Zero) {
			return apperr.InvalidInput("contractor placement requires positive bill rate")
		}
	case models.PlacementPermanent:
		if in.PlacementFee.LessThanOrEqual(decimal.Zero) {
			return apperr.InvalidInput("permanent placement requires positive placement fee")
		}
	default:
		return apperr.InvalidInput("unknown placement type %q", in.PlacementType)
	}
	if in.WeeksPerYear != nil && (*in.WeeksPerYear < 1 || *in.WeeksPerYear > 52) {
		return apperr.InvalidInput("weeksPerYear must be between 1 and 52, got %d", *in.WeeksPerYear)
	}
	if in.RecognitionPeriodMonths != nil && *in.RecognitionPeriodMonths < 1 {
		return apperr.InvalidInput("recognitionPeriodMonths must be at least 1, got %d", *in.RecognitionPeriodMonths)
	}
	if in.StartDate.IsZero() {
		return apperr.InvalidInput("start date is required")
	}
	return nil
}

func ensureExists[T any](tx *gorm.DB, resource string, id int64) error {
	var record T
	if err := tx.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(resource, id)
		}
		return err
	}
	return nil
}

// Create prices the placement and opens its commission lifecycle. The
// placement, commission plan, accrual entry, and recognition schedule commit
// together or not at all. A placement with non-positive commission is stored
// without a plan; there is nothing to recognize.
func (s *Service) Create(ctx context.Context, in CreateInput, actor string) (*models.Placement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *models.Placement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists[models.Salesperson](tx, "Salesperson", in.SalespersonID); err != nil {
			return err
		}
		if err := ensureExists[models.Client](tx, "Client", in.ClientID); err != nil {
			return err
		}
		// The contractor row is locked because the sequence number below is
		// derived from a count; serializing per contractor keeps two
		// concurrent creations from landing on the same sequence.
		var contractor models.Contractor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&contractor, in.ContractorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Contractor", in.ContractorID)
			}
			return err
		}

		policy, err := s.settings.GetTx(tx)
		if err != nil {
			return err
		}

		// Sequence is per contractor-client pair and drives the commission tier.
		var priorPlacements int64
		if err := tx.Model(&models.Placement{}).
			Where("contractor_id = ? AND client_id = ?", in.ContractorID, in.ClientID).
			Count(&priorPlacements).Error; err != nil {
			return err
		}

		placement := models.Placement{
			SalespersonID:           in.SalespersonID,
			ClientID:                in.ClientID,
			ContractorID:            in.ContractorID,
			PlacementType:           in.PlacementType,
			Status:                  models.PlacementActive,
			StartDate:               in.StartDate,
			EndDate:                 in.EndDate,
			HoursPerWeek:            in.HoursPerWeek,
			WeeksPerYear:            in.WeeksPerYear,
			PayType:                 in.PayType,
			AnnualSalary:            in.AnnualSalary,
			BillRate:                in.BillRate,
			FixedCosts:              in.FixedCosts,
			SequenceNumber:          int(priorPlacements) + 1,
			PlacementFee:            in.PlacementFee,
			FeeType:                 in.FeeType,
			CandidateSalary:         in.CandidateSalary,
			RecognitionPeriodMonths: in.RecognitionPeriodMonths,
		}

		placement.AdminPercentage = policy.AdminPercentage
		if in.AdminPercentage != nil {
			placement.AdminPercentage = *in.AdminPercentage
		}
		placement.InsurancePercentage = policy.InsurancePercentage
		if in.InsurancePercentage != nil {
			placement.InsurancePercentage = *in.InsurancePercentage
		}

		if err := price(&placement, policy); err != nil {
			return err
		}

		if err := tx.Create(&placement).Error; err != nil {
			return err
		}

		if placement.CommissionTotal.GreaterThan(decimal.Zero) {
			if err := s.openCommissionPlanTx(tx, &placement, actor); err != nil {
				return err
			}
		}

		created = &placement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func price(placement *models.Placement, policy *models.PolicySettings) error {
	switch placement.PlacementType {
	case models.PlacementContractor:
		return calculation.CalculateContractorCommission(placement, policy)
	case models.PlacementPermanent:
		return calculation.CalculatePermanentCommission(placement, policy)
	default:
		return apperr.InvalidInput("unknown placement type %q", placement.PlacementType)
	}
}

func (s *Service) openCommissionPlanTx(tx *gorm.DB, placement *models.Placement, actor string) error {
	months := defaultRecognitionMonths
	if placement.RecognitionPeriodMonths != nil {
		months = *placement.RecognitionPeriodMonths
	}

	startDate := placement.StartDate
	plan := models.CommissionPlan{
		PlacementID:          placement.ID,
		SalespersonID:        placement.SalespersonID,
		PlannedAmount:        placement.CommissionTotal,
		ConfirmedAmount:      placement.CommissionTotal,
		RecognizedAmount:     decimal.Zero,
		PaidAmount:           decimal.Zero,
		Status:               models.PlanConfirmed,
		RecognitionStartDate: &startDate,
		MonthsToRecognize:    months,
	}
	if err := tx.Create(&plan).Error; err != nil {
		return err
	}

	_, err := s.ledger.RecordTx(tx, ledger.Entry{
		EntryType:        models.EntryCommissionAccrued,
		SalespersonID:    placement.SalespersonID,
		CommissionPlanID: &plan.ID,
		PlacementID:      &placement.ID,
		Amount:           placement.CommissionTotal,
		Description:      fmt.Sprintf("Commission accrued for placement %d (contract #%d)", placement.ID, placement.SequenceNumber),
		ReferenceType:    "PLACEMENT",
		ReferenceID:      &placement.ID,
		CreatedBy:        actor,
	})
	if err != nil {
		return err
	}

	_, err = s.recognition.GenerateScheduleTx(tx, &plan)
	return err
}

// UpdateTerms re-prices a placement whose recognition has not started.
// The plan's amounts are replaced, the pending schedule regenerated, and the
// accrual delta posted as a COMMISSION_ADJUSTED entry.
func (s *Service) UpdateTerms(ctx context.Context, placementID int64, in CreateInput, actor string) (*models.Placement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.Placement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var placement models.Placement
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&placement, placementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Placement", placementID)
			}
			return err
		}
		if placement.Status != models.PlacementDraft && placement.Status != models.PlacementActive {
			return apperr.InvalidState("Placement", string(placement.Status), "update")
		}

		var plan models.CommissionPlan
		planErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("placement_id = ?", placement.ID).
			First(&plan).Error
		hasPlan := planErr == nil
		if planErr != nil && !errors.Is(planErr, gorm.ErrRecordNotFound) {
			return planErr
		}
		if hasPlan && plan.MonthsRecognized > 0 {
			return apperr.InvalidState("CommissionPlan", "RECOGNITION_STARTED", "update placement terms")
		}

		policy, err := s.settings.GetTx(tx)
		if err != nil {
			return err
		}

		previousTotal := placement.CommissionTotal

		placement.StartDate = in.StartDate
		placement.EndDate = in.EndDate
		placement.HoursPerWeek = in.HoursPerWeek
		placement.WeeksPerYear = in.WeeksPerYear
		placement.PayType = in.PayType
		placement.AnnualSalary = in.AnnualSalary
		placement.BillRate = in.BillRate
		placement.FixedCosts = in.FixedCosts
		placement.PlacementFee = in.PlacementFee
		placement.FeeType = in.FeeType
		placement.CandidateSalary = in.CandidateSalary
		placement.RecognitionPeriodMonths = in.RecognitionPeriodMonths
		if in.AdminPercentage != nil {
			placement.AdminPercentage = *in.AdminPercentage
		}
		if in.InsurancePercentage != nil {
			placement.InsurancePercentage = *in.InsurancePercentage
		}

		if err := price(&placement, policy); err != nil {
			return err
		}
		if err := tx.Save(&placement).Error; err != nil {
			return err
		}

		if !hasPlan {
			if placement.CommissionTotal.GreaterThan(decimal.Zero) {
				if err := s.openCommissionPlanTx(tx, &placement, actor); err != nil {
					return err
				}
			}
			updated = &placement
			return nil
		}

		months := defaultRecognitionMonths
		if placement.RecognitionPeriodMonths != nil {
			months = *placement.RecognitionPeriodMonths
		}
		startDate := placement.StartDate
		plan.PlannedAmount = placement.CommissionTotal
		plan.ConfirmedAmount = placement.CommissionTotal
		plan.RecognitionStartDate = &startDate
		plan.MonthsToRecognize = months
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		if err := tx.Where("commission_plan_id = ? AND status = ?", plan.ID, models.SchedulePending).
			Delete(&models.RecognitionSchedule{}).Error; err != nil {
			return err
		}
		if _, err := s.recognition.GenerateScheduleTx(tx, &plan); err != nil {
			return err
		}

		delta := placement.CommissionTotal.Sub(previousTotal)
		if !delta.IsZero() {
			_, err = s.ledger.RecordTx(tx, ledger.Entry{
				EntryType:        models.EntryCommissionAdjusted,
				SalespersonID:    placement.SalespersonID,
				CommissionPlanID: &plan.ID,
				PlacementID:      &placement.ID,
				Amount:           delta,
				Description:      fmt.Sprintf("Commission adjusted from %s to %s after terms update", previousTotal, placement.CommissionTotal),
				ReferenceType:    "PLACEMENT",
				ReferenceID:      &placement.ID,
				CreatedBy:        actor,
			})
			if err != nil {
				return err
			}
		}

		updated = &placement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, placementID int64) (*models.Placement, error) {
	var placement models.Placement
	if err := s.db.WithContext(ctx).First(&placement, placementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Placement", placementID)
		}
		return nil, err
	}
	return &placement, nil
}

func (s *Service) FindBySalesperson(ctx context.Context, salespersonID int64) ([]models.Placement, error) {
	var placements []models.Placement
	err := s.db.WithContext(ctx).
		Where("salesperson_id = ?", salespersonID).
		Order("created_at desc").
		Find(&placements).Error
	return placements, err
}

func (s *Service) FindByClient(ctx context.Context, clientID int64) ([]models.Placement, error) {
	var placements []models.Placement
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&placements).Error
	return placements, err
}
