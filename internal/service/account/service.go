// Package account manages the funding accounts that balances are drawn from
// and projected over.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

type CreateInput struct {
	Name    string
	Type    budget.AccountType
	Balance decimal.Decimal
	Reserve bool
}

type UpdateInput struct {
	Name    *string
	Type    *budget.AccountType
	Balance *decimal.Decimal
	Reserve *bool
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (budget.Account, error)
	Get(ctx context.Context, id uuid.UUID) (budget.Account, error)
	List(ctx context.Context) ([]budget.Account, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (budget.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reconcile(ctx context.Context, id uuid.UUID, actual decimal.Decimal) (budget.Account, error)
}

type service struct {
	store budget.TxStore
}

func New(store budget.TxStore) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, in CreateInput) (budget.Account, error) {
	if in.Name == "" {
		return budget.Account{}, fmt.Errorf("%w: name is required", errs.ErrInvalid)
	}
	if !validType(in.Type) {
		return budget.Account{}, fmt.Errorf("%w: unknown account type %q", errs.ErrInvalid, in.Type)
	}
	a := budget.Account{
		ID:        uuid.New(),
		Name:      in.Name,
		Type:      in.Type,
		Balance:   in.Balance,
		Reserve:   in.Reserve,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (budget.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *service) List(ctx context.Context) ([]budget.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (budget.Account, error) {
	var out budget.Account
	err := s.store.InTx(ctx, func(st budget.Store) error {
		a, err := st.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("%w: name cannot be empty", errs.ErrInvalid)
			}
			a.Name = *in.Name
		}
		if in.Type != nil {
			if !validType(*in.Type) {
				return fmt.Errorf("%w: unknown account type %q", errs.ErrInvalid, *in.Type)
			}
			a.Type = *in.Type
		}
		if in.Balance != nil {
			a.Balance = *in.Balance
		}
		if in.Reserve != nil {
			a.Reserve = *in.Reserve
		}
		a.UpdatedAt = time.Now().UTC()
		if err := st.UpdateAccount(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// Delete unlinks the account from commitments and ledger entries before
// removing it, so history survives with the account reference cleared.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(st budget.Store) error {
		if _, err := st.GetAccount(ctx, id); err != nil {
			return err
		}
		commitments, err := st.ListCommitments(ctx, budget.CommitmentFilter{})
		if err != nil {
			return err
		}
		for _, c := range commitments {
			if c.AccountID == nil || *c.AccountID != id {
				continue
			}
			c.AccountID = nil
			if err := st.UpdateCommitment(ctx, c); err != nil {
				return err
			}
		}
		entries, err := st.ListEntries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.AccountID == nil || *e.AccountID != id {
				continue
			}
			e.AccountID = nil
			if err := st.UpdateEntry(ctx, e); err != nil {
				return err
			}
		}
		return st.DeleteAccount(ctx, id)
	})
}

// Reconcile snaps the stored balance to the real one and reports the drift as
// the returned account's balance delta is already applied.
func (s *service) Reconcile(ctx context.Context, id uuid.UUID, actual decimal.Decimal) (budget.Account, error) {
	var out budget.Account
	err := s.store.InTx(ctx, func(st budget.Store) error {
		a, err := st.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		a.Balance = actual
		a.UpdatedAt = time.Now().UTC()
		if err := st.UpdateAccount(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func validType(t budget.AccountType) bool {
	switch t {
	case budget.AccountChecking, budget.AccountSavings, budget.AccountCash, budget.AccountCredit:
		return true
	}
	return false
}
