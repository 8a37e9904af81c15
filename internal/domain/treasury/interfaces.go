package treasury

import "context"

// Repository provides persistence for treasuries.
type Repository interface {
	Create(ctx context.Context, t *Treasury) error
	Get(ctx context.Context, id string) (*Treasury, error)
	Update(ctx context.Context, t *Treasury) error
}
