package budget

import (
	"context"

	"github.com/google/uuid"
)

// CommitmentFilter narrows commitment listings.
type CommitmentFilter struct {
	ActiveOnly bool
}

// InstanceFilter narrows instance listings. Zero values mean "any".
type InstanceFilter struct {
	CommitmentID  uuid.UUID
	Status        InstanceStatus
	DueOnOrBefore *Date
}

// Store is the relational contract the engine runs against. Implementations
// live in internal/storage; every method is a single logical statement, and
// multi-step mutations are composed inside TxStore.InTx so they commit or
// roll back as one.
type Store interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (Account, error)
	CreateAccount(ctx context.Context, a Account) error
	UpdateAccount(ctx context.Context, a Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	ListCommitments(ctx context.Context, f CommitmentFilter) ([]Commitment, error)
	GetCommitment(ctx context.Context, id uuid.UUID) (Commitment, error)
	CreateCommitment(ctx context.Context, c Commitment) error
	UpdateCommitment(ctx context.Context, c Commitment) error
	DeleteCommitment(ctx context.Context, id uuid.UUID) error

	// UpsertInstance creates the row keyed by (CommitmentID, DueDate) if it
	// does not exist, and returns the stored row either way. An existing
	// row is returned untouched: a previously edited planned amount is
	// never reset.
	UpsertInstance(ctx context.Context, inst Instance) (Instance, error)
	InstanceByID(ctx context.Context, id uuid.UUID) (Instance, error)
	InstanceByKey(ctx context.Context, commitmentID uuid.UUID, due Date) (Instance, error)
	UpdateInstance(ctx context.Context, inst Instance) error
	ListInstances(ctx context.Context, f InstanceFilter) ([]Instance, error)
	DeleteInstancesByCommitment(ctx context.Context, commitmentID uuid.UUID) error

	ListEntries(ctx context.Context) ([]Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (Entry, error)
	CreateEntry(ctx context.Context, e Entry) error
	UpdateEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	ListAllocations(ctx context.Context) ([]Allocation, error)
	AllocationsByEntry(ctx context.Context, entryID uuid.UUID) ([]Allocation, error)
	AllocationsByInstance(ctx context.Context, instanceID uuid.UUID) ([]Allocation, error)
	CreateAllocation(ctx context.Context, a Allocation) error
	DeleteAllocationsByEntry(ctx context.Context, entryID uuid.UUID) error
	DeleteAllocationsByCommitment(ctx context.Context, commitmentID uuid.UUID) error

	CreateLineItem(ctx context.Context, li LineItem) error
	LineItemsByEntry(ctx context.Context, entryID uuid.UUID) ([]LineItem, error)

	CreatePaymentRecord(ctx context.Context, p PaymentRecord) error
	PaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) ([]PaymentRecord, error)
	DeletePaymentsByCommitment(ctx context.Context, commitmentID uuid.UUID) error
}

// TxStore is a Store that can run a function transactionally: the Store
// handed to fn sees uncommitted state, and if fn returns an error every
// change made through it is rolled back. Read-only callers may also use InTx
// to get a consistent snapshot.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}
