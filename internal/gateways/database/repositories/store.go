package repositories

import (
	"context"

	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/uptrace/bun"
)

// store implements crafting.Repository over any bun.IDB, so the same code
// serves the pool and a single transaction.
type store struct {
	db bun.IDB
	*accountRepository
	*skillRepository
	*requestRepository
}

func NewStore(db *bun.DB) crafting.Repository {
	return newStore(db)
}

func newStore(db bun.IDB) *store {
	return &store{
		db:                db,
		accountRepository: &accountRepository{db: db},
		skillRepository:   &skillRepository{db: db},
		requestRepository: &requestRepository{db: db},
	}
}

func (s *store) RunInTx(ctx context.Context, fn func(ctx context.Context, repo crafting.Repository) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return s.db.RunInTx(timeoutCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, newStore(tx))
	})
}
