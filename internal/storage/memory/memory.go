// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing
// us to plug in a real DB later.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pwielgus/cashplan/internal/budget"
	"github.com/pwielgus/cashplan/internal/errs"
)

// instanceKey is the natural key of a commitment instance.
type instanceKey struct {
	CommitmentID uuid.UUID
	DueDate      string
}

// Store is an in-memory implementation of budget.TxStore. It is guarded by
// an RWMutex; InTx holds the write lock for the whole transaction, so
// transactions are serialized just like in the relational stores.
type Store struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]budget.Account
	commitments  map[uuid.UUID]budget.Commitment
	instances    map[uuid.UUID]budget.Instance
	instanceKeys map[instanceKey]uuid.UUID
	entries      map[uuid.UUID]budget.Entry
	allocations  map[uuid.UUID]budget.Allocation
	lineItems    map[uuid.UUID]budget.LineItem
	payments     map[uuid.UUID]budget.PaymentRecord
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]budget.Account),
		commitments:  make(map[uuid.UUID]budget.Commitment),
		instances:    make(map[uuid.UUID]budget.Instance),
		instanceKeys: make(map[instanceKey]uuid.UUID),
		entries:      make(map[uuid.UUID]budget.Entry),
		allocations:  make(map[uuid.UUID]budget.Allocation),
		lineItems:    make(map[uuid.UUID]budget.LineItem),
		payments:     make(map[uuid.UUID]budget.PaymentRecord),
	}
}

// InTx runs fn against a private copy of the store and swaps the copy in
// only if fn succeeds. The parent lock is held throughout, so concurrent
// transactions are serialized and a failed fn leaves no trace.
func (s *Store) InTx(ctx context.Context, fn func(budget.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.cloneLocked()
	if err := fn(work); err != nil {
		return err
	}
	s.accounts = work.accounts
	s.commitments = work.commitments
	s.instances = work.instances
	s.instanceKeys = work.instanceKeys
	s.entries = work.entries
	s.allocations = work.allocations
	s.lineItems = work.lineItems
	s.payments = work.payments
	return nil
}

// cloneLocked copies every table. Entity structs are value types and are
// always replaced whole on update, so a per-map shallow copy is enough.
// Caller must hold s.mu.
func (s *Store) cloneLocked() *Store {
	return &Store{
		accounts:     cloneMap(s.accounts),
		commitments:  cloneMap(s.commitments),
		instances:    cloneMap(s.instances),
		instanceKeys: cloneMap(s.instanceKeys),
		entries:      cloneMap(s.entries),
		allocations:  cloneMap(s.allocations),
		lineItems:    cloneMap(s.lineItems),
		payments:     cloneMap(s.payments),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts(_ context.Context) ([]budget.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (budget.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return budget.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) CreateAccount(_ context.Context, a budget.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, a budget.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return errs.ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// ListCommitments returns commitments ordered by due date ascending.
func (s *Store) ListCommitments(_ context.Context, f budget.CommitmentFilter) ([]budget.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Commitment, 0, len(s.commitments))
	for _, c := range s.commitments {
		if f.ActiveOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Store) GetCommitment(_ context.Context, id uuid.UUID) (budget.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commitments[id]
	if !ok {
		return budget.Commitment{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCommitment(_ context.Context, c budget.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitments[c.ID] = c
	return nil
}

func (s *Store) UpdateCommitment(_ context.Context, c budget.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.commitments[c.ID]; !ok {
		return errs.ErrNotFound
	}
	s.commitments[c.ID] = c
	return nil
}

func (s *Store) DeleteCommitment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.commitments[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.commitments, id)
	return nil
}

func (s *Store) UpsertInstance(_ context.Context, inst budget.Instance) (budget.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := instanceKey{CommitmentID: inst.CommitmentID, DueDate: inst.DueDate.String()}
	if id, ok := s.instanceKeys[key]; ok {
		return s.instances[id], nil
	}
	if _, ok := s.commitments[inst.CommitmentID]; !ok {
		return budget.Instance{}, errs.ErrNotFound
	}
	s.instances[inst.ID] = inst
	s.instanceKeys[key] = inst.ID
	return inst, nil
}

func (s *Store) InstanceByID(_ context.Context, id uuid.UUID) (budget.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return budget.Instance{}, errs.ErrNotFound
	}
	return inst, nil
}

func (s *Store) InstanceByKey(_ context.Context, commitmentID uuid.UUID, due budget.Date) (budget.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.instanceKeys[instanceKey{CommitmentID: commitmentID, DueDate: due.String()}]
	if !ok {
		return budget.Instance{}, errs.ErrNotFound
	}
	return s.instances[id], nil
}

func (s *Store) UpdateInstance(_ context.Context, inst budget.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[inst.ID]; !ok {
		return errs.ErrNotFound
	}
	s.instances[inst.ID] = inst
	return nil
}

// ListInstances returns instances matching the filter, ordered by due date
// ascending.
func (s *Store) ListInstances(_ context.Context, f budget.InstanceFilter) ([]budget.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		if f.CommitmentID != uuid.Nil && inst.CommitmentID != f.CommitmentID {
			continue
		}
		if f.Status != "" && inst.Status != f.Status {
			continue
		}
		if f.DueOnOrBefore != nil && inst.DueDate.After(*f.DueOnOrBefore) {
			continue
		}
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Store) DeleteInstancesByCommitment(_ context.Context, commitmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inst := range s.instances {
		if inst.CommitmentID == commitmentID {
			delete(s.instances, id)
			delete(s.instanceKeys, instanceKey{CommitmentID: commitmentID, DueDate: inst.DueDate.String()})
		}
	}
	return nil
}

// ListEntries returns ledger entries newest first (date, then creation time).
func (s *Store) ListEntries(_ context.Context) ([]budget.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (budget.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return budget.Entry{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEntry(_ context.Context, e budget.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *Store) UpdateEntry(_ context.Context, e budget.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; !ok {
		return errs.ErrNotFound
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.entries, id)
	for liID, li := range s.lineItems {
		if li.EntryID == id {
			delete(s.lineItems, liID)
		}
	}
	return nil
}

func (s *Store) ListAllocations(_ context.Context) ([]budget.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Allocation, 0, len(s.allocations))
	for _, a := range s.allocations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AllocationsByEntry(_ context.Context, entryID uuid.UUID) ([]budget.Allocation, error) {
	return s.allocationsWhere(func(a budget.Allocation) bool { return a.EntryID == entryID })
}

func (s *Store) AllocationsByInstance(_ context.Context, instanceID uuid.UUID) ([]budget.Allocation, error) {
	return s.allocationsWhere(func(a budget.Allocation) bool { return a.InstanceID == instanceID })
}

func (s *Store) allocationsWhere(match func(budget.Allocation) bool) ([]budget.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Allocation, 0)
	for _, a := range s.allocations {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateAllocation(_ context.Context, a budget.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations[a.ID] = a
	return nil
}

func (s *Store) DeleteAllocationsByEntry(_ context.Context, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.allocations {
		if a.EntryID == entryID {
			delete(s.allocations, id)
		}
	}
	return nil
}

func (s *Store) DeleteAllocationsByCommitment(_ context.Context, commitmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.allocations {
		if a.CommitmentID == commitmentID {
			delete(s.allocations, id)
		}
	}
	return nil
}

func (s *Store) CreateLineItem(_ context.Context, li budget.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineItems[li.ID] = li
	return nil
}

func (s *Store) LineItemsByEntry(_ context.Context, entryID uuid.UUID) ([]budget.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.LineItem, 0)
	for _, li := range s.lineItems {
		if li.EntryID == entryID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (s *Store) CreatePaymentRecord(_ context.Context, p budget.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *Store) PaymentsByCommitment(_ context.Context, commitmentID uuid.UUID) ([]budget.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.PaymentRecord, 0)
	for _, p := range s.payments {
		if p.CommitmentID == commitmentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidDate.Before(out[j].PaidDate) })
	return out, nil
}

func (s *Store) DeletePaymentsByCommitment(_ context.Context, commitmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.payments {
		if p.CommitmentID == commitmentID {
			delete(s.payments, id)
		}
	}
	return nil
}
