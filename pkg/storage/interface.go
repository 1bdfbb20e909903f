package storage

import (
	"context"
)

// LinkStore is the persistence surface the service layer depends on.
type LinkStore interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, code, targetURL string) (*Link, error)
	GetAll(ctx context.Context) ([]Link, error)
	GetByCode(ctx context.Context, code string) (*Link, error)
	IncrementClicks(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) (bool, error)
}
