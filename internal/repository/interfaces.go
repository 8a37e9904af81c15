package repository

import "context"

// Transactor runs fn as one unit of work. Repositories called with the
// context passed to fn take part in the same transaction; fn returning an
// error rolls every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
