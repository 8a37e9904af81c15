package vesting

import "context"

// Repository provides persistence for vesting grants.
type Repository interface {
	Create(ctx context.Context, v *Vesting) error
	Get(ctx context.Context, id string) (*Vesting, error)
	Update(ctx context.Context, v *Vesting) error
	List(ctx context.Context, opts ListOptions) ([]Vesting, error)
}
