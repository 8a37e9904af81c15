package stream

import "context"

// Repository provides persistence for streams.
type Repository interface {
	Create(ctx context.Context, s *Stream) error
	Get(ctx context.Context, id string) (*Stream, error)
	Update(ctx context.Context, s *Stream) error
	List(ctx context.Context, opts ListOptions) ([]Stream, error)
}
