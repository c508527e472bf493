// Package drawdown implements the payout request workflow: a salesperson
// requests recognized-but-unpaid commission, an approver approves or rejects,
// and finance marks the approved amount paid. Balances are always derived
// from the ledger inside the transaction that writes against them.
package drawdown

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

// Quarter returns the calendar quarter a date falls in.
func Quarter(t time.Time) (year, number int) {
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// AvailableBalance is recognized minus paid, plus reversals and adjustments,
// derived from the ledger.
func (s *Service) AvailableBalance(ctx context.Context, salespersonID int64) (decimal.Decimal, error) {
	return s.ledger.AvailableBalance(ctx, salespersonID)
}

func (s *Service) countRequestsInQuarterTx(tx *gorm.DB, salespersonID int64, year, quarter int) (int64, error) {
	var count int64
	err := tx.Model(&models.DrawdownRequest{}).
		Where("salesperson_id = ? AND quarter_year = ? AND quarter_number = ?", salespersonID, year, quarter).
		Where("status <> ?", models.DrawdownRejected).
		Count(&count).Error
	return count, err
}

// Eligibility summarizes whether and how much a salesperson can draw right now.
type Eligibility struct {
	Eligible         bool            `json:"eligible"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	QuarterRemaining int             `json:"quarterRemaining"`
	Reason           string          `json:"reason,omitempty"`
}

// CheckEligibility reports drawdown capacity without creating a request.
// It is advisory; CreateRequest re-checks everything under lock.
func (s *Service) CheckEligibility(ctx context.Context, salespersonID int64, asOf time.Time) (*Eligibility, error) {
	policy, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.AvailableBalance(ctx, salespersonID)
	if err != nil {
		return nil, err
	}

	year, quarter := Quarter(asOf)
	used, err := s.countRequestsInQuarterTx(s.db.WithContext(ctx), salespersonID, year, quarter)
	if err != nil {
		return nil, err
	}
	remaining := policy.DrawdownMaxPerQuarter - int(used)
	if remaining < 0 {
		remaining = 0
	}

	result := &Eligibility{AvailableBalance: balance, QuarterRemaining: remaining}
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		result.Reason = "no recognized commission available"
	case remaining == 0:
		result.Reason = fmt.Sprintf("quarterly drawdown limit of %d reached", policy.DrawdownMaxPerQuarter)
	default:
		result.Eligible = true
	}
	return result, nil
}

// CreateRequest validates balance and quarter limits under a row lock on the
// salesperson and opens a PENDING request with a DRAWDOWN_REQUESTED ledger
// entry. The salesperson lock serializes concurrent requests so two of them
// cannot both pass the quarter-limit check.
func (s *Service) CreateRequest(ctx context.Context, salespersonID int64, amount decimal.Decimal, notes string, requestedBy string) (*models.DrawdownRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.InvalidInput("drawdown amount must be positive, got %s", amount)
	}

	var created *models.DrawdownRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var salesperson models.Salesperson
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&salesperson, salespersonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Salesperson", salespersonID)
			}
			return err
		}

		policy, err := s.settings.GetTx(tx)
		if err != nil {
			return err
		}

		balance, err := s.ledger.AvailableBalanceTx(tx, salespersonID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return apperr.InvalidInput("requested amount %s exceeds available balance %s", amount, balance)
		}

		now := time.Now()
		year, quarter := Quarter(now)
		used, err := s.countRequestsInQuarterTx(tx, salespersonID, year, quarter)
		if err != nil {
			return err
		}
		if int(used) >= policy.DrawdownMaxPerQuarter {
			return apperr.InvalidState("DrawdownRequest", "QUARTER_LIMIT_REACHED", "create")
		}

		request := models.DrawdownRequest{
			SalespersonID:   salespersonID,
			RequestedAmount: amount,
			Status:          models.DrawdownPending,
			RequestDate:     now,
			QuarterYear:     year,
			QuarterNumber:   quarter,
			Notes:           notes,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		_, err = s.ledger.RecordTx(tx, ledger.Entry{
			EntryType:     models.EntryDrawdownRequested,
			SalespersonID: salespersonID,
			Amount:        amount,
			Description:   fmt.Sprintf("Drawdown requested for Q%d %d", quarter, year),
			ReferenceType: "DRAWDOWN_REQUEST",
			ReferenceID:   &request.ID,
			CreatedBy:     requestedBy,
		})
		if err != nil {
			return err
		}

		created = &request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve moves a PENDING request to APPROVED, optionally for a reduced
// amount, and posts a DRAWDOWN_APPROVED entry. The balance is re-checked
// because recognition and other drawdowns may have moved it since creation.
func (s *Service) Approve(ctx context.Context, requestID int64, approvedAmount *decimal.Decimal, approvedBy string) (*models.DrawdownRequest, error) {
	var approved *models.DrawdownRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.DrawdownPending {
			return apperr.InvalidState("DrawdownRequest", string(request.Status), "approve")
		}

		amount := request.RequestedAmount
		if approvedAmount != nil {
			amount = *approvedAmount
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return apperr.InvalidInput("approved amount must be positive, got %s", amount)
		}
		if amount.GreaterThan(request.RequestedAmount) {
			return apperr.InvalidInput("approved amount %s exceeds requested amount %s", amount, request.RequestedAmount)
		}

		balance, err := s.ledger.AvailableBalanceTx(tx, request.SalespersonID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return apperr.InvalidInput("approved amount %s exceeds available balance %s", amount, balance)
		}

		now := time.Now()
		request.Status = models.DrawdownApproved
		request.ApprovedAmount = amount
		request.ApprovedDate = &now
		request.ApprovedBy = approvedBy
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		_, err = s.ledger.RecordTx(tx, ledger.Entry{
			EntryType:     models.EntryDrawdownApproved,
			SalespersonID: request.SalespersonID,
			Amount:        amount,
			Description:   fmt.Sprintf("Drawdown request %d approved", request.ID),
			ReferenceType: "DRAWDOWN_REQUEST",
			ReferenceID:   &request.ID,
			CreatedBy:     approvedBy,
		})
		if err != nil {
			return err
		}

		approved = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Reject closes a PENDING request with a reason. No money moves, so no
// balance-affecting ledger entry is posted beyond the audit record.
func (s *Service) Reject(ctx context.Context, requestID int64, reason string, rejectedBy string) (*models.DrawdownRequest, error) {
	if reason == "" {
		return nil, apperr.InvalidInput("rejection reason is required")
	}

	var rejected *models.DrawdownRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.DrawdownPending {
			return apperr.InvalidState("DrawdownRequest", string(request.Status), "reject")
		}

		request.Status = models.DrawdownRejected
		request.RejectionReason = reason
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		_, err = s.ledger.RecordTx(tx, ledger.Entry{
			EntryType:     models.EntryDrawdownRejected,
			SalespersonID: request.SalespersonID,
			Amount:        request.RequestedAmount,
			Description:   fmt.Sprintf("Drawdown request %d rejected: %s", request.ID, reason),
			ReferenceType: "DRAWDOWN_REQUEST",
			ReferenceID:   &request.ID,
			CreatedBy:     rejectedBy,
		})
		if err != nil {
			return err
		}

		rejected = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// ProcessPayment marks an APPROVED request paid and posts the COMMISSION_PAID
// entry that reduces the available balance.
func (s *Service) ProcessPayment(ctx context.Context, requestID int64, paymentMethod, referenceNumber, paidBy string) (*models.DrawdownRequest, error) {
	var paid *models.DrawdownRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.DrawdownApproved {
			return apperr.InvalidState("DrawdownRequest", string(request.Status), "pay")
		}

		now := time.Now()
		request.Status = models.DrawdownPaid
		request.PaidDate = &now
		request.PaymentMethod = paymentMethod
		request.ReferenceNumber = referenceNumber
		request.PaidBy = paidBy
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		_, err = s.ledger.RecordTx(tx, ledger.Entry{
			EntryType:     models.EntryCommissionPaid,
			SalespersonID: request.SalespersonID,
			Amount:        request.ApprovedAmount,
			Description:   fmt.Sprintf("Drawdown request %d paid via %s", request.ID, paymentMethod),
			ReferenceType: "DRAWDOWN_REQUEST",
			ReferenceID:   &request.ID,
			CreatedBy:     paidBy,
		})
		if err != nil {
			return err
		}

		paid = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func lockRequest(tx *gorm.DB, requestID int64) (*models.DrawdownRequest, error) {
	var request models.DrawdownRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("DrawdownRequest", requestID)
		}
		return nil, err
	}
	return &request, nil
}

func (s *Service) GetByID(ctx context.Context, requestID int64) (*models.DrawdownRequest, error) {
	var request models.DrawdownRequest
	if err := s.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("DrawdownRequest", requestID)
		}
		return nil, err
	}
	return &request, nil
}

func (s *Service) FindBySalesperson(ctx context.Context, salespersonID int64) ([]models.DrawdownRequest, error) {
	var requests []models.DrawdownRequest
	err := s.db.WithContext(ctx).
		Where("salesperson_id = ?", salespersonID).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (s *Service) FindByStatus(ctx context.Context, status models.DrawdownStatus) ([]models.DrawdownRequest, error) {
	var requests []models.DrawdownRequest
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&requests).Error
	return requests, err
}
