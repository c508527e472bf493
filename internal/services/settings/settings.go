// Package settings manages the singleton policy record that every pricing and
// workflow decision reads from. The row is created once with defaults and
// updated in place; reads go through a redis cache.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

const (
	settingsCacheKey = "policy_settings:current"
	settingsCacheTTL = 24 * time.Hour
)

type Service struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewService(db *gorm.DB, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

func defaultSettings() models.PolicySettings {
	return models.PolicySettings{
		AdminPercentage:          decimal.NewFromFloat(6.00),
		InsurancePercentage:      decimal.NewFromFloat(2.00),
		LeavePercentage:          decimal.NewFromFloat(14.54),
		StatutoryPercentage:      decimal.NewFromFloat(11.25),
		PensionPercentage:        decimal.NewFromFloat(1.50),
		PensionCap:               decimal.NewFromFloat(2000.00),
		WeeksPerYear:             45,
		FirstContractCommission:  decimal.NewFromFloat(15.00),
		SecondContractCommission: decimal.NewFromFloat(10.00),
		ThirdContractCommission:  decimal.NewFromFloat(8.00),
		DrawdownMinMonth:         3,
		DrawdownMaxPerQuarter:    1,
		UpdatedBy:                "system",
	}
}

// InitializeDefaults creates the singleton row if none exists. Safe to call
// on every boot.
func (s *Service) InitializeDefaults(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PolicySettings{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		settings := defaultSettings()
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}
		log.Println("Policy settings initialized with defaults")
		return nil
	})
}

// Get returns the current policy settings, serving from cache when possible.
func (s *Service) Get(ctx context.Context) (*models.PolicySettings, error) {
	val, err := s.redis.Get(ctx, settingsCacheKey).Result()
	if err == nil {
		var cached models.PolicySettings
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("Settings cache read failed: %v", err)
	}

	settings, err := s.GetTx(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if jsonData, err := json.Marshal(settings); err == nil {
		if err := s.redis.Set(ctx, settingsCacheKey, jsonData, settingsCacheTTL).Err(); err != nil {
			log.Printf("Failed to set cache for key %s: %v", settingsCacheKey, err)
		}
	}
	return settings, nil
}

// GetTx reads the settings row inside the caller's transaction, bypassing
// the cache.
func (s *Service) GetTx(tx *gorm.DB) (*models.PolicySettings, error) {
	var settings models.PolicySettings
	if err := tx.Order("id asc").First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("policy settings not initialized")
		}
		return nil, err
	}
	return &settings, nil
}

// UpdateInput carries the updatable policy fields. Nil pointers leave the
// current value unchanged.
type UpdateInput struct {
	AdminPercentage     *decimal.Decimal
	InsurancePercentage *decimal.Decimal
	LeavePercentage     *decimal.Decimal
	StatutoryPercentage *decimal.Decimal
	PensionPercentage   *decimal.Decimal
	PensionCap          *decimal.Decimal

	WeeksPerYear *int

	FirstContractCommission  *decimal.Decimal
	SecondContractCommission *decimal.Decimal
	ThirdContractCommission  *decimal.Decimal

	DrawdownMinMonth      *int
	DrawdownMaxPerQuarter *int
}

func validatePercentage(name string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return apperr.InvalidInput("%s must be between 0 and 100, got %s", name, pct)
	}
	return nil
}

func (in *UpdateInput) validate() error {
	checks := map[string]*decimal.Decimal{
		"adminPercentage":          in.AdminPercentage,
		"insurancePercentage":      in.InsurancePercentage,
		"leavePercentage":          in.LeavePercentage,
		"statutoryPercentage":      in.StatutoryPercentage,
		"pensionPercentage":        in.PensionPercentage,
		"firstContractCommission":  in.FirstContractCommission,
		"secondContractCommission": in.SecondContractCommission,
		"thirdContractCommission":  in.ThirdContractCommission,
	}
	for name, pct := range checks {
		if pct == nil {
			continue
		}
		if err := validatePercentage(name, *pct); err != nil {
			return err
		}
	}
	if in.WeeksPerYear != nil && (*in.WeeksPerYear < 1 || *in.WeeksPerYear > 52) {
		return apperr.InvalidInput("weeksPerYear must be between 1 and 52, got %d", *in.WeeksPerYear)
	}
	if in.DrawdownMinMonth != nil && *in.DrawdownMinMonth < 1 {
		return apperr.InvalidInput("drawdownMinMonth must be at least 1, got %d", *in.DrawdownMinMonth)
	}
	if in.DrawdownMaxPerQuarter != nil && *in.DrawdownMaxPerQuarter < 1 {
		return apperr.InvalidInput("drawdownMaxPerQuarter must be at least 1, got %d", *in.DrawdownMaxPerQuarter)
	}
	return nil
}

// Update modifies the singleton row in place and invalidates the cache.
// Changes apply to future calculations only; existing placements keep the
// figures stored on them.
func (s *Service) Update(ctx context.Context, in UpdateInput, updatedBy string) (*models.PolicySettings, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.PolicySettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := s.GetTx(tx)
		if err != nil {
			return err
		}

		if in.AdminPercentage != nil {
			settings.AdminPercentage = *in.AdminPercentage
		}
		if in.InsurancePercentage != nil {
			settings.InsurancePercentage = *in.InsurancePercentage
		}
		if in.LeavePercentage != nil {
			settings.LeavePercentage = *in.LeavePercentage
		}
		if in.StatutoryPercentage != nil {
			settings.StatutoryPercentage = *in.StatutoryPercentage
		}
		if in.PensionPercentage != nil {
			settings.PensionPercentage = *in.PensionPercentage
		}
		if in.PensionCap != nil {
			settings.PensionCap = *in.PensionCap
		}
		if in.WeeksPerYear != nil {
			settings.WeeksPerYear = *in.WeeksPerYear
		}
		if in.FirstContractCommission != nil {
			settings.FirstContractCommission = *in.FirstContractCommission
		}
		if in.SecondContractCommission != nil {
			settings.SecondContractCommission = *in.SecondContractCommission
		}
		if in.ThirdContractCommission != nil {
			settings.ThirdContractCommission = *in.ThirdContractCommission
		}
		if in.DrawdownMinMonth != nil {
			settings.DrawdownMinMonth = *in.DrawdownMinMonth
		}
		if in.DrawdownMaxPerQuarter != nil {
			settings.DrawdownMaxPerQuarter = *in.DrawdownMaxPerQuarter
		}
		settings.UpdatedBy = updatedBy

		if err := tx.Save(settings).Error; err != nil {
			return err
		}
		updated = settings
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.redis.Del(ctx, settingsCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate settings cache: %v", err)
	}
	return updated, nil
}
