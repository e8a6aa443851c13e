package job

import (
	"context"

	"rcvj/internal/common"
)

type Repository interface {
	Create(ctx context.Context, posting Posting) (*Posting, error)
	Update(ctx context.Context, posting Posting) (*Posting, error)
	GetActiveByID(ctx context.Context, id common.UUID) (*Posting, error)
	ListActive(ctx context.Context) ([]Posting, error)
	ListAll(ctx context.Context) ([]Posting, error)
	SoftDelete(ctx context.Context, id common.UUID) error
}
