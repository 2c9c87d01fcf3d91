package domain

import "context"

// Transactor runs fn as one unit of work against the store. Repositories called
// with the ctx passed to fn take part in the same transaction when the store supports it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
