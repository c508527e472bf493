// Package recognition converts a commission plan's total into monthly
// recognition schedule rows and moves them PENDING -> RECOGNIZED over time.
// Each recognized month posts a COMMISSION_RECOGNIZED ledger entry.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
	"contractbill-system/internal/services/ledger"
	"contractbill-system/internal/services/settings"
)

type Service struct {
	db       *gorm.DB
	ledger   *ledger.Service
	settings *settings.Service
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service, settingsSvc *settings.Service) *Service {
	return &Service{db: db, ledger: ledgerSvc, settings: settingsSvc}
}

// MonthlyAmount is the even monthly slice of a plan total, rounded to cents.
// The rounding remainder lands on the final month, not here.
func MonthlyAmount(plannedAmount decimal.Decimal, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, apperr.InvalidInput("months to recognize must be positive, got %d", months)
	}
	return plannedAmount.DivRound(decimal.NewFromInt(int64(months)), 10).Round(2), nil
}

// GenerateScheduleTx creates the full set of schedule rows for a plan inside
// the caller's transaction. The final month absorbs the rounding remainder so
// the schedule sums exactly to the planned amount.
func (s *Service) GenerateScheduleTx(tx *gorm.DB, plan *models.CommissionPlan) ([]models.RecognitionSchedule, error) {
	if plan.RecognitionStartDate == nil {
		now := time.Now()
		plan.RecognitionStartDate = &now
		if err := tx.Model(&models.CommissionPlan{}).
			Where("id = ?", plan.ID).
			Update("recognition_start_date", now).Error; err != nil {
			return nil, err
		}
	}
	monthly, err := MonthlyAmount(plan.PlannedAmount, plan.MonthsToRecognize)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := tx.Model(&models.RecognitionSchedule{}).
		Where("commission_plan_id = ?", plan.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperr.InvalidState("RecognitionSchedule", "EXISTS", "generate")
	}

	schedules := make([]models.RecognitionSchedule, 0, plan.MonthsToRecognize)
	allocated := decimal.Zero
	for month := 1; month <= plan.MonthsToRecognize; month++ {
		amount := monthly
		if month == plan.MonthsToRecognize {
			amount = plan.PlannedAmount.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		schedules = append(schedules, models.RecognitionSchedule{
			CommissionPlanID: plan.ID,
			Month:            month,
			RecognitionDate:  plan.RecognitionStartDate.AddDate(0, month-1, 0),
			PlannedAmount:    amount,
			RecognizedAmount: decimal.Zero,
			Status:           models.SchedulePending,
		})
	}

	if err := tx.Create(&schedules).Error; err != nil {
		return nil, err
	}

	endDate := schedules[len(schedules)-1].RecognitionDate
	plan.RecognitionEndDate = &endDate
	if err := tx.Model(&models.CommissionPlan{}).
		Where("id = ?", plan.ID).
		Update("recognition_end_date", endDate).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

// Recognize marks one schedule entry recognized, rolls the amount into the
// plan, and posts the ledger entry. Recognizing an already-recognized entry
// is a no-op, so a retried sweep cannot double-post.
func (s *Service) Recognize(ctx context.Context, scheduleID int64, actor string) (*models.RecognitionSchedule, error) {
	var recognized *models.RecognitionSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.RecognitionSchedule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&schedule, scheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("RecognitionSchedule", scheduleID)
			}
			return err
		}

		if schedule.Status != models.SchedulePending {
			recognized = &schedule
			return nil
		}

		var plan models.CommissionPlan
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&plan, schedule.CommissionPlanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("CommissionPlan", schedule.CommissionPlanID)
			}
			return err
		}
		if plan.Status == models.PlanReversed {
			return apperr.InvalidState("CommissionPlan", string(plan.Status), "recognize")
		}

		policy, err := s.settings.GetTx(tx)
		if err != nil {
			return err
		}

		schedule.RecognizedAmount = schedule.PlannedAmount
		schedule.Status = models.ScheduleRecognized
		if err := tx.Save(&schedule).Error; err != nil {
			return err
		}

		plan.RecognizedAmount = plan.RecognizedAmount.Add(schedule.PlannedAmount)
		plan.MonthsRecognized++
		if !plan.EligibleForDrawdown && plan.MonthsRecognized >= policy.DrawdownMinMonth {
			plan.EligibleForDrawdown = true
			month := plan.MonthsRecognized
			plan.DrawdownMonth = &month
		}
		if plan.MonthsRecognized >= plan.MonthsToRecognize {
			plan.Status = models.PlanRecognized
		}
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		_, err = s.ledger.RecordTx(tx, ledger.Entry{
			EntryType:        models.EntryCommissionRecognized,
			SalespersonID:    plan.SalespersonID,
			CommissionPlanID: &plan.ID,
			PlacementID:      &plan.PlacementID,
			Amount:           schedule.PlannedAmount,
			Description:      fmt.Sprintf("Commission recognized for month %d of %d", schedule.Month, plan.MonthsToRecognize),
			ReferenceType:    "RECOGNITION_SCHEDULE",
			ReferenceID:      &scheduleID,
			CreatedBy:        actor,
		})
		if err != nil {
			return err
		}

		recognized = &schedule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recognized, nil
}

// RecognizeAllDue sweeps every PENDING entry whose recognition date has
// passed. Each entry commits in its own transaction; one failure does not
// abort the sweep. Entries of reversed plans are skipped.
func (s *Service) RecognizeAllDue(ctx context.Context, asOf time.Time, actor string) (int, error) {
	var due []models.RecognitionSchedule
	err := s.db.WithContext(ctx).
		Select("recognition_schedules.*").
		Joins("JOIN commission_plans ON commission_plans.id = recognition_schedules.commission_plan_id").
		Where("recognition_schedules.status = ? AND recognition_schedules.recognition_date <= ?", models.SchedulePending, asOf).
		Where("commission_plans.status <> ?", models.PlanReversed).
		Order("recognition_schedules.recognition_date asc, recognition_schedules.id asc").
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	processed := 0
	var lastErr error
	for _, schedule := range due {
		if _, err := s.Recognize(ctx, schedule.ID, actor); err != nil {
			log.Printf("Recognition sweep failed for schedule %d: %v", schedule.ID, err)
			lastErr = err
			continue
		}
		processed++
	}
	if lastErr != nil {
		return processed, fmt.Errorf("recognition sweep completed with errors, last: %w", lastErr)
	}
	return processed, nil
}

func (s *Service) GetSchedule(ctx context.Context, planID int64) ([]models.RecognitionSchedule, error) {
	var plan models.CommissionPlan
	if err := s.db.WithContext(ctx).First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CommissionPlan", planID)
		}
		return nil, err
	}
	var schedules []models.RecognitionSchedule
	err := s.db.WithContext(ctx).
		Where("commission_plan_id = ?", planID).
		Order("month asc").
		Find(&schedules).Error
	return schedules, err
}
