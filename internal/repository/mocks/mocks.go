package mocks

import (
	"context"

	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/stretchr/testify/mock"
)

// TreasuryRepository is a mock for treasury.Repository.
type TreasuryRepository struct {
	mock.Mock
}

func (m *TreasuryRepository) Create(ctx context.Context, t *treasury.Treasury) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TreasuryRepository) Get(ctx context.Context, id string) (*treasury.Treasury, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*treasury.Treasury); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TreasuryRepository) Update(ctx context.Context, t *treasury.Treasury) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

// StreamRepository is a mock for stream.Repository.
type StreamRepository struct {
	mock.Mock
}

func (m *StreamRepository) Create(ctx context.Context, s *stream.Stream) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StreamRepository) Get(ctx context.Context, id string) (*stream.Stream, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*stream.Stream); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StreamRepository) Update(ctx context.Context, s *stream.Stream) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *StreamRepository) List(ctx context.Context, opts stream.ListOptions) ([]stream.Stream, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]stream.Stream); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// VestingRepository is a mock for vesting.Repository.
type VestingRepository struct {
	mock.Mock
}

func (m *VestingRepository) Create(ctx context.Context, v *vesting.Vesting) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *VestingRepository) Get(ctx context.Context, id string) (*vesting.Vesting, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*vesting.Vesting); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VestingRepository) Update(ctx context.Context, v *vesting.Vesting) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *VestingRepository) List(ctx context.Context, opts vesting.ListOptions) ([]vesting.Vesting, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]vesting.Vesting); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CustodyRepository is a mock for custody.Repository.
type CustodyRepository struct {
	mock.Mock
}

func (m *CustodyRepository) Get(ctx context.Context, owner, mint string) (*custody.Account, error) {
	args := m.Called(ctx, owner, mint)
	if acct, ok := args.Get(0).(*custody.Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CustodyRepository) Put(ctx context.Context, acct *custody.Account) error {
	args := m.Called(ctx, acct)
	return args.Error(0)
}

// Gateway is a mock for custody.Gateway.
type Gateway struct {
	mock.Mock
}

func (m *Gateway) Transfer(ctx context.Context, req custody.TransferRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// Publisher is a mock for events.Publisher.
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, evt events.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// Transactor runs fn directly on the caller's context.
type Transactor struct {
	Calls int
}

func (m *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}
