// Package reporting builds the salesperson commission dashboard from the
// ledger and workflow tables. Summaries are cached in redis for a short
// window and invalidated lazily by expiry.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/ledger"
)

const (
	summaryCachePrefix = "commission_summary:"
	summaryCacheTTL    = 2 * time.Hour
)

type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
	redis  *redis.Client
}

func NewService(db *gorm.DB, ledgerSvc *ledger.Service, redisClient *redis.Client) *Service {
	return &Service{db: db, ledger: ledgerSvc, redis: redisClient}
}

// Summary is the per-salesperson dashboard payload.
type Summary struct {
	SalespersonID    int64           `json:"salespersonId"`
	TotalAccrued     decimal.Decimal `json:"totalAccrued"`
	TotalRecognized  decimal.Decimal `json:"totalRecognized"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	ActivePlacements int64           `json:"activePlacements"`
	ActivePlans      int64           `json:"activePlans"`
	PendingDrawdowns int64           `json:"pendingDrawdowns"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

func (s *Service) SalespersonSummary(ctx context.Context, salespersonID int64) (*Summary, error) {
	cacheKey := fmt.Sprintf("%s%d", summaryCachePrefix, salespersonID)
	val, err := s.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var cached Summary
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("Summary cache read failed: %v", err)
	}

	summary := &Summary{SalespersonID: salespersonID, GeneratedAt: time.Now()}

	if summary.TotalAccrued, err = s.ledger.SumAccrued(ctx, salespersonID); err != nil {
		return nil, err
	}
	if summary.TotalRecognized, err = s.ledger.SumRecognized(ctx, salespersonID); err != nil {
		return nil, err
	}
	if summary.TotalPaid, err = s.ledger.SumPaid(ctx, salespersonID); err != nil {
		return nil, err
	}
	if summary.AvailableBalance, err = s.ledger.AvailableBalance(ctx, salespersonID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Placement{}).
		Where("salesperson_id = ? AND status = ?", salespersonID, models.PlacementActive).
		Count(&summary.ActivePlacements).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.CommissionPlan{}).
		Where("salesperson_id = ? AND status IN ?", salespersonID,
			[]models.PlanStatus{models.PlanPlanned, models.PlanConfirmed}).
		Count(&summary.ActivePlans).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.DrawdownRequest{}).
		Where("salesperson_id = ? AND status = ?", salespersonID, models.DrawdownPending).
		Count(&summary.PendingDrawdowns).Error; err != nil {
		return nil, err
	}

	if jsonData, err := json.Marshal(summary); err == nil {
		s.redis.Set(ctx, cacheKey, jsonData, summaryCacheTTL)
	}
	return summary, nil
}

// MonthlyRecognition is one row of the recognition forecast report.
type MonthlyRecognition struct {
	Month   string          `json:"month"`
	Pending decimal.Decimal `json:"pending"`
	Done    decimal.Decimal `json:"recognized"`
}

// RecognitionForecast groups a salesperson's schedule rows by calendar month.
func (s *Service) RecognitionForecast(ctx context.Context, salespersonID int64, from, to time.Time) ([]MonthlyRecognition, error) {
	var rows []MonthlyRecognition
	err := s.db.WithContext(ctx).
		Model(&models.RecognitionSchedule{}).
		Select(`to_char(recognition_schedules.recognition_date, 'YYYY-MM') as month,
			COALESCE(SUM(CASE WHEN recognition_schedules.status = ? THEN recognition_schedules.planned_amount ELSE 0 END), 0) as pending,
			COALESCE(SUM(CASE WHEN recognition_schedules.status = ? THEN recognition_schedules.recognized_amount ELSE 0 END), 0) as done`,
			models.SchedulePending, models.ScheduleRecognized).
		Joins("JOIN commission_plans ON commission_plans.id = recognition_schedules.commission_plan_id").
		Where("commission_plans.salesperson_id = ?", salespersonID).
		Where("commission_plans.status <> ?", models.PlanReversed).
		Where("recognition_schedules.recognition_date >= ? AND recognition_schedules.recognition_date <= ?", from, to).
		Group("to_char(recognition_schedules.recognition_date, 'YYYY-MM')").
		Order("month asc").
		Scan(&rows).Error
	return rows, err
}
