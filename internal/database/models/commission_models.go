package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicySettings is the singleton policy record. Exactly one row exists;
// it is created with defaults on first boot and only ever updated in place.
type PolicySettings struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// Overhead percentages, whole-percent values (15.00 means 15%)
	AdminPercentage     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	InsurancePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	LeavePercentage     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	StatutoryPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PensionPercentage   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PensionCap          decimal.Decimal `gorm:"type:decimal(12,2)"`

	WeeksPerYear int `gorm:"not null"`

	// Tiered commission percentages by contract sequence
	FirstContractCommission  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	SecondContractCommission decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	ThirdContractCommission  decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	// Drawdown rules
	DrawdownMinMonth      int `gorm:"not null"`
	DrawdownMaxPerQuarter int `gorm:"not null"`

	UpdatedBy string     `gorm:"type:varchar(100)"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type PlacementType string

const (
	PlacementContractor PlacementType = "CONTRACTOR"
	PlacementPermanent  PlacementType = "PERMANENT"
)

type PlacementStatus string

const (
	PlacementDraft      PlacementStatus = "DRAFT"
	PlacementActive     PlacementStatus = "ACTIVE"
	PlacementCompleted  PlacementStatus = "COMPLETED"
	PlacementTerminated PlacementStatus = "TERMINATED"
)

type PayType string

const (
	PayHourly PayType = "HOURLY"
	PaySalary PayType = "SALARY"
)

type FeeType string

const (
	FeePercentage FeeType = "PERCENTAGE"
	FeeFlat       FeeType = "FLAT"
)

// Placement links a contractor to a client through a salesperson. The
// calculated margin fields are stored for audit and reporting.
type Placement struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	SalespersonID int64 `gorm:"index;not null"`
	ClientID      int64 `gorm:"index;not null"`
	ContractorID  int64 `gorm:"index;not null"`

	PlacementType PlacementType   `gorm:"type:varchar(20);not null"`
	Status        PlacementStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`

	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time

	// Contractor terms
	HoursPerWeek decimal.Decimal `gorm:"type:decimal(5,2)"`
	WeeksPerYear *int
	PayType      PayType         `gorm:"type:varchar(20)"`
	AnnualSalary decimal.Decimal `gorm:"type:decimal(12,2)"`
	BillRate     decimal.Decimal `gorm:"type:decimal(8,2)"`

	// Overheads applied to this placement
	AdminPercentage     decimal.Decimal `gorm:"type:decimal(5,2)"`
	InsurancePercentage decimal.Decimal `gorm:"type:decimal(5,2)"`
	FixedCosts          decimal.Decimal `gorm:"type:decimal(10,2)"`

	// Calculated fields
	HourlyPayCost     decimal.Decimal `gorm:"type:decimal(8,2)"`
	MarginPerHour     decimal.Decimal `gorm:"type:decimal(8,2)"`
	WeeklyMargin      decimal.Decimal `gorm:"type:decimal(10,2)"`
	GrossAnnualMargin decimal.Decimal `gorm:"type:decimal(12,2)"`
	NetAnnualMargin   decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Commission
	SequenceNumber       int             `gorm:"not null;default:1"`
	CommissionPercentage decimal.Decimal `gorm:"type:decimal(5,2)"`
	CommissionTotal      decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Permanent placement terms
	PlacementFee            decimal.Decimal `gorm:"type:decimal(12,2)"`
	FeeType                 FeeType         `gorm:"type:varchar(20)"`
	CandidateSalary         decimal.Decimal `gorm:"type:decimal(12,2)"`
	RecognitionPeriodMonths *int

	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type PlanStatus string

const (
	PlanPlanned    PlanStatus = "PLANNED"
	PlanConfirmed  PlanStatus = "CONFIRMED"
	PlanRecognized PlanStatus = "RECOGNIZED"
	PlanPaid       PlanStatus = "PAID"
	PlanReversed   PlanStatus = "REVERSED"
)

// CommissionPlan tracks the commission lifecycle for one placement:
// planned -> confirmed -> recognized -> paid, or reversed.
type CommissionPlan struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	PlacementID   int64 `gorm:"uniqueIndex;not null"`
	SalespersonID int64 `gorm:"index;not null"`

	PlannedAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ConfirmedAmount  decimal.Decimal `gorm:"type:decimal(12,2)"`
	RecognizedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status PlanStatus `gorm:"type:varchar(20);not null;default:'PLANNED'"`

	RecognitionStartDate *time.Time
	RecognitionEndDate   *time.Time
	MonthsToRecognize    int `gorm:"not null;default:12"`
	MonthsRecognized     int `gorm:"not null;default:0"`

	EligibleForDrawdown bool `gorm:"not null;default:false"`
	DrawdownMonth       *int

	Notes     string     `gorm:"type:varchar(500)"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type ScheduleStatus string

const (
	SchedulePending    ScheduleStatus = "PENDING"
	ScheduleRecognized ScheduleStatus = "RECOGNIZED"
	SchedulePaid       ScheduleStatus = "PAID"
)

// RecognitionSchedule is one month of a commission plan's recognition window.
// Entries are created in a single batch and only ever move PENDING -> RECOGNIZED.
type RecognitionSchedule struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	CommissionPlanID int64 `gorm:"index;not null"`

	Month            int             `gorm:"not null"`
	RecognitionDate  time.Time       `gorm:"index;not null"`
	PlannedAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RecognizedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status           ScheduleStatus  `gorm:"type:varchar(20);not null;default:'PENDING'"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

type LedgerEntryType string

const (
	EntryCommissionAccrued    LedgerEntryType = "COMMISSION_ACCRUED"
	EntryCommissionAdjusted   LedgerEntryType = "COMMISSION_ADJUSTED"
	EntryCommissionRecognized LedgerEntryType = "COMMISSION_RECOGNIZED"
	EntryCommissionPaid       LedgerEntryType = "COMMISSION_PAID"
	EntryDrawdownRequested    LedgerEntryType = "DRAWDOWN_REQUESTED"
	EntryDrawdownApproved     LedgerEntryType = "DRAWDOWN_APPROVED"
	EntryDrawdownRejected     LedgerEntryType = "DRAWDOWN_REJECTED"
	EntryReversal             LedgerEntryType = "REVERSAL"
	EntryAdjustment           LedgerEntryType = "ADJUSTMENT"
)

type LedgerEntryStatus string

const (
	LedgerPending   LedgerEntryStatus = "PENDING"
	LedgerCompleted LedgerEntryStatus = "COMPLETED"
	LedgerFailed    LedgerEntryStatus = "FAILED"
)

// LedgerEntry is an immutable record of one money-relevant event. Entries are
// append-only: corrections are new REVERSAL/ADJUSTMENT entries, never updates.
type LedgerEntry struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	CommissionPlanID *int64 `gorm:"index"`
	SalespersonID    int64  `gorm:"not null;index:idx_ledger_sp_type_created,priority:1"`
	PlacementID      *int64 `gorm:"index"`

	EntryType LedgerEntryType `gorm:"type:varchar(30);not null;index:idx_ledger_sp_type_created,priority:2"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Description   string `gorm:"type:varchar(500)"`
	ReferenceType string `gorm:"type:varchar(50)"`
	ReferenceID   *int64

	Status    LedgerEntryStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	CreatedBy string            `gorm:"type:varchar(100)"`
	CreatedAt *time.Time        `gorm:"autoCreateTime;index:idx_ledger_sp_type_created,priority:3"`
}

type DrawdownStatus string

const (
	DrawdownPending  DrawdownStatus = "PENDING"
	DrawdownApproved DrawdownStatus = "APPROVED"
	DrawdownRejected DrawdownStatus = "REJECTED"
	DrawdownPaid     DrawdownStatus = "PAID"
)

// DrawdownRequest is a salesperson payout request against recognized,
// not-yet-paid commission. Quarter membership is stamped once at creation.
type DrawdownRequest struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	SalespersonID int64 `gorm:"not null;index:idx_drawdown_quarter,priority:1"`

	RequestedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ApprovedAmount  decimal.Decimal `gorm:"type:decimal(12,2)"`

	Status DrawdownStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`

	RequestDate  time.Time `gorm:"not null"`
	ApprovedDate *time.Time
	PaidDate     *time.Time

	QuarterYear   int `gorm:"index:idx_drawdown_quarter,priority:2;not null"`
	QuarterNumber int `gorm:"index:idx_drawdown_quarter,priority:3;not null"`

	PaymentMethod   string `gorm:"type:varchar(50)"`
	ReferenceNumber string `gorm:"type:varchar(100)"`
	Notes           string `gorm:"type:varchar(500)"`
	RejectionReason string `gorm:"type:varchar(500)"`

	ApprovedBy string `gorm:"type:varchar(100)"`
	PaidBy     string `gorm:"type:varchar(100)"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}
