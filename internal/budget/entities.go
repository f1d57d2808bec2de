package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates the kinds of money accounts the household tracks.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCash     AccountType = "cash"
	AccountCredit   AccountType = "credit"
)

// Direction tells which way a commitment moves money.
type Direction string

const (
	// DirectionIncome is expected money in (a paycheck).
	DirectionIncome Direction = "income"
	// DirectionBill is expected money out.
	DirectionBill Direction = "bill"
)

// EntryType is the direction of a recorded ledger transaction.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// Priority ranks how painful it is to miss a commitment.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityNormal   Priority = "normal"
	PriorityFlexible Priority = "flexible"
)

// InstanceStatus is the funding state of a commitment instance.
type InstanceStatus string

const (
	// StatusOpen means the envelope still needs money.
	StatusOpen InstanceStatus = "open"
	// StatusFunded means allocations have reached the planned amount
	// (within Epsilon), or the instance was closed by rollover/release.
	StatusFunded InstanceStatus = "funded"
)

// AlertSeverity grades a risk signal.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// Account is a real money account. Reserve accounts (emergency funds and the
// like) are excluded from spendable-balance projections.
type Account struct {
	ID        uuid.UUID
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	Reserve   bool
	UpdatedAt time.Time
}

// Commitment is a recurring or one-time expected cash movement. For a
// recurring commitment DueDate always points at the earliest occurrence not
// yet fully funded and only ever moves forward. Paid is terminal and only
// meaningful for one-time commitments; ActualAmount/PaidDate are display
// fields kept in sync alongside it.
type Commitment struct {
	ID           uuid.UUID
	Name         string
	Direction    Direction
	Amount       decimal.Decimal
	ActualAmount *decimal.Decimal
	DueDate      Date
	Recurrence   Recurrence
	Priority     Priority
	Autopay      bool
	AccountID    *uuid.UUID
	Active       bool
	Paid         bool
	PaidDate     *Date
	CreatedAt    time.Time
}

// Instance is the envelope for one occurrence of a commitment on a specific
// due date. Planned defaults to the commitment's nominal amount but is
// independently editable; Allocated is the sum of all allocations that
// reference the instance, recomputed on every mutation.
type Instance struct {
	ID           uuid.UUID
	CommitmentID uuid.UUID
	DueDate      Date
	Planned      decimal.Decimal
	Allocated    decimal.Decimal
	Status       InstanceStatus
	CreatedAt    time.Time
}

// Remaining is the derived unfunded portion of the envelope. It is never
// stored and may be zero or (transiently, as a validation input) negative.
func (i Instance) Remaining() decimal.Decimal {
	return i.Planned.Sub(i.Allocated)
}

// Entry is a recorded money movement in the ledger. AccountID is nil only
// after its account has been deleted; CommitmentID links payments recorded
// through mark-paid back to their commitment.
type Entry struct {
	ID           uuid.UUID
	Date         Date
	Description  string
	Amount       decimal.Decimal
	Type         EntryType
	AccountID    *uuid.UUID
	CommitmentID *uuid.UUID
	CreatedAt    time.Time
}

// Allocation ties a portion of a ledger entry to exactly one instance.
type Allocation struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	InstanceID   uuid.UUID
	CommitmentID uuid.UUID
	Amount       decimal.Decimal
	Note         string
	CreatedAt    time.Time
}

// LineItem is a sub-component of a single ledger entry, e.g. one item of a
// multi-item store receipt.
type LineItem struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	Description  string
	Amount       decimal.Decimal
	CommitmentID *uuid.UUID
	DueDate      *Date
}

// PaymentRecord is the history row written whenever a commitment is paid
// through mark-paid: nominal vs actual amount, and which occurrence it hit.
type PaymentRecord struct {
	ID           uuid.UUID
	CommitmentID uuid.UUID
	Amount       decimal.Decimal
	ActualAmount decimal.Decimal
	PaidDate     Date
	DueDate      Date
}

// Occurrence is one commitment's contribution to a projected day.
type Occurrence struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Direction Direction       `json:"direction"`
	Priority  Priority        `json:"priority"`
}

// ProjectionDay is one step of the daily balance projection.
type ProjectionDay struct {
	Date        Date            `json:"date"`
	Balance     decimal.Decimal `json:"balance"`
	Occurrences []Occurrence    `json:"occurrences"`
}

// Alert is a derived risk signal with a suggested action.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	Action   string        `json:"action"`
}
