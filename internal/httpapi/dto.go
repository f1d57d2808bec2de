package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/service/funding"
)

// Accounts

type postAccountRequest struct {
	Name    string             `json:"name"`
	Type    budget.AccountType `json:"type"`
	Balance decimal.Decimal    `json:"balance"`
	Reserve bool               `json:"is_reserve"`
}

type patchAccountRequest struct {
	Name    *string             `json:"name"`
	Type    *budget.AccountType `json:"type"`
	Balance *decimal.Decimal    `json:"balance"`
	Reserve *bool               `json:"is_reserve"`
}

type reconcileRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance"`
}

type accountResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Type      budget.AccountType `json:"type"`
	Balance   decimal.Decimal    `json:"balance"`
	Reserve   bool               `json:"is_reserve"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toAccountResponse(a budget.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      a.Type,
		Balance:   a.Balance,
		Reserve:   a.Reserve,
		UpdatedAt: a.UpdatedAt,
	}
}

// Commitments

type postCommitmentRequest struct {
	Name       string           `json:"name"`
	Direction  budget.Direction `json:"direction"`
	Amount     decimal.Decimal  `json:"amount"`
	DueDate    budget.Date      `json:"due_date"`
	Recurrence string           `json:"recurrence"`
	Priority   budget.Priority  `json:"priority"`
	Autopay    bool             `json:"autopay"`
	AccountID  *uuid.UUID       `json:"account_id"`
}

type patchCommitmentRequest struct {
	Name       *string           `json:"name"`
	Direction  *budget.Direction `json:"direction"`
	Amount     *decimal.Decimal  `json:"amount"`
	DueDate    *budget.Date      `json:"due_date"`
	Recurrence *string           `json:"recurrence"`
	Priority   *budget.Priority  `json:"priority"`
	Autopay    *bool             `json:"autopay"`
	AccountID  *uuid.UUID        `json:"account_id"`
	Active     *bool             `json:"active"`
}

type commitmentResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Direction    budget.Direction `json:"direction"`
	Amount       decimal.Decimal  `json:"amount"`
	ActualAmount *decimal.Decimal `json:"actual_amount,omitempty"`
	DueDate      budget.Date      `json:"due_date"`
	Recurrence   string           `json:"recurrence"`
	Priority     budget.Priority  `json:"priority"`
	Autopay      bool             `json:"autopay"`
	AccountID    *uuid.UUID       `json:"account_id,omitempty"`
	Active       bool             `json:"active"`
	Paid         bool             `json:"paid"`
	PaidDate     *budget.Date     `json:"paid_date,omitempty"`
}

func toCommitmentResponse(c budget.Commitment) commitmentResponse {
	return commitmentResponse{
		ID:           c.ID,
		Name:         c.Name,
		Direction:    c.Direction,
		Amount:       c.Amount,
		ActualAmount: c.ActualAmount,
		DueDate:      c.DueDate,
		Recurrence:   c.Recurrence.String(),
		Priority:     c.Priority,
		Autopay:      c.Autopay,
		AccountID:    c.AccountID,
		Active:       c.Active,
		Paid:         c.Paid,
		PaidDate:     c.PaidDate,
	}
}

type payRequest struct {
	ActualAmount decimal.Decimal `json:"actual_amount"`
	DueDate      *budget.Date    `json:"due_date"`
	Note         string          `json:"note"`
	AccountID    *uuid.UUID      `json:"account_id"`
}

type closeInstanceRequest struct {
	DueDate *budget.Date `json:"due_date"`
}

type paymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	CommitmentID uuid.UUID       `json:"commitment_id"`
	Amount       decimal.Decimal `json:"amount"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	PaidDate     budget.Date     `json:"paid_date"`
	DueDate      budget.Date     `json:"due_date"`
}

// Instances

type instanceResponse struct {
	ID             uuid.UUID             `json:"id"`
	CommitmentID   uuid.UUID             `json:"commitment_id"`
	CommitmentName string                `json:"commitment_name"`
	Direction      budget.Direction      `json:"direction"`
	DueDate        budget.Date           `json:"due_date"`
	Planned        decimal.Decimal       `json:"planned_amount"`
	Allocated      decimal.Decimal       `json:"allocated_amount"`
	Remaining      decimal.Decimal       `json:"remaining"`
	Status         budget.InstanceStatus `json:"status"`
}

func toInstanceResponse(v funding.InstanceView) instanceResponse {
	return instanceResponse{
		ID:             v.ID,
		CommitmentID:   v.CommitmentID,
		CommitmentName: v.CommitmentName,
		Direction:      v.Direction,
		DueDate:        v.DueDate,
		Planned:        v.Planned,
		Allocated:      v.Allocated,
		Remaining:      v.Remaining,
		Status:         v.Status,
	}
}

type setPlannedRequest struct {
	CommitmentID uuid.UUID       `json:"commitment_id"`
	DueDate      budget.Date     `json:"due_date"`
	Planned      decimal.Decimal `json:"planned_amount"`
}

// Ledger

type allocationRequest struct {
	CommitmentID uuid.UUID       `json:"commitment_id"`
	DueDate      budget.Date     `json:"due_date"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note"`
}

type postEntryRequest struct {
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        budget.EntryType    `json:"type"`
	AccountID   uuid.UUID           `json:"account_id"`
	Date        budget.Date         `json:"date"`
	Allocations []allocationRequest `json:"allocations"`
}

type patchEntryRequest struct {
	Description *string             `json:"description"`
	Amount      *decimal.Decimal    `json:"amount"`
	Type        *budget.EntryType   `json:"type"`
	AccountID   *uuid.UUID          `json:"account_id"`
	Allocations []allocationRequest `json:"allocations"`
}

type allocationResponse struct {
	ID             uuid.UUID       `json:"id"`
	InstanceID     uuid.UUID       `json:"instance_id"`
	CommitmentID   uuid.UUID       `json:"commitment_id"`
	CommitmentName string          `json:"commitment_name"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note,omitempty"`
}

type entryResponse struct {
	ID           uuid.UUID            `json:"id"`
	Date         budget.Date          `json:"date"`
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	Type         budget.EntryType     `json:"type"`
	AccountID    *uuid.UUID           `json:"account_id,omitempty"`
	CommitmentID *uuid.UUID           `json:"commitment_id,omitempty"`
	Allocations  []allocationResponse `json:"allocations"`
}

func toEntryResponse(v funding.EntryView) entryResponse {
	allocs := make([]allocationResponse, 0, len(v.Allocations))
	for _, a := range v.Allocations {
		allocs = append(allocs, allocationResponse{
			ID:             a.ID,
			InstanceID:     a.InstanceID,
			CommitmentID:   a.CommitmentID,
			CommitmentName: a.CommitmentName,
			Amount:         a.Amount,
			Note:           a.Note,
		})
	}
	return entryResponse{
		ID:           v.ID,
		Date:         v.Entry.Date,
		Description:  v.Description,
		Amount:       v.Entry.Amount,
		Type:         v.Type,
		AccountID:    v.Entry.AccountID,
		CommitmentID: v.Entry.CommitmentID,
		Allocations:  allocs,
	}
}

func toAllocationInputs(reqs []allocationRequest) []funding.AllocationInput {
	out := make([]funding.AllocationInput, 0, len(reqs))
	for _, a := range reqs {
		out = append(out, funding.AllocationInput{
			CommitmentID: a.CommitmentID,
			DueDate:      a.DueDate,
			Amount:       a.Amount,
			Note:         a.Note,
		})
	}
	return out
}

// Demo data

type seedRequest struct {
	CheckingBalance decimal.Decimal `json:"checking_balance"`
}

type statusResponse struct {
	Status string `json:"status"`
}
