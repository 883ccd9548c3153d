package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/domain/logger"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type accountRepository struct {
	db bun.IDB
}

func (r *accountRepository) EnsureAccount(ctx context.Context, id, displayName string) (*models.Account, bool, error) {
	account := &models.Account{
		ID:             id,
		DisplayName:    displayName,
		CompletedCount: 0,
		CreatedAt:      time.Now(),
	}

	inserted, err := r.insertAccount(ctx, account)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return account, true, nil
	}

	existing, err := r.lockAccount(ctx, id)
	if errors.Is(err, crafting.ErrRecordNotFound) {
		// deleted between the insert and the lock
		if inserted, err = r.insertAccount(ctx, account); err != nil {
			return nil, false, err
		}
		if inserted {
			return account, true, nil
		}
		existing, err = r.lockAccount(ctx, id)
	}
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *accountRepository) insertAccount(ctx context.Context, account *models.Account) (bool, error) {
	query := r.db.NewInsert().
		Model(account).
		On("CONFLICT (id) DO NOTHING").
		Returning("NULL")

	ql := logger.NewQueryLogger("ensure_account", query.String(), account.ID)
	res, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return false, HandleErrorWithID("ensure", "account", account.ID, err)
	}
	rows, _ := res.RowsAffected()
	ql.Log(nil, rows)
	return rows == 1, nil
}

// lockQuery selects the account row with FOR UPDATE on PostgreSQL. SQLite has
// no row locks and serializes writers on the database lock instead.
func (r *accountRepository) lockQuery(account *models.Account, id string) *bun.SelectQuery {
	query := r.db.NewSelect().
		Model(account).
		Where("id = ?", id)
	if r.db.Dialect().Name() == dialect.PG {
		query = query.For("UPDATE")
	}
	return query
}

// lockAccount holds the account row until the surrounding transaction ends,
// so a request written under the lock and a DeleteAccount cannot interleave.
func (r *accountRepository) lockAccount(ctx context.Context, id string) (*models.Account, error) {
	account := new(models.Account)
	if err := r.lockQuery(account, id).Scan(ctx); err != nil {
		return nil, HandleErrorWithID("lock", "account", id, err)
	}
	return account, nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().
		Model(account).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, HandleErrorWithID("get", "account", id, err)
	}
	return account, nil
}

func (r *accountRepository) IncrementCompleted(ctx context.Context, id string) (int64, error) {
	var count int64
	query := r.db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("completed_count = completed_count + 1").
		Where("id = ?", id).
		Returning("completed_count")

	ql := logger.NewQueryLogger("increment_completed", query.String(), id)
	err := query.Scan(ctx, &count)
	if err != nil {
		ql.Log(err, 0)
		return 0, HandleErrorWithID("increment_completed", "account", id, err)
	}
	ql.Log(nil, 1)
	return count, nil
}

// DeleteAccount removes the account only while no pending or accepted
// request names it. The row lock is taken first so the conditional delete
// runs on a snapshot that includes any request committed by a writer that
// held the lock. Call it inside RunInTx.
func (r *accountRepository) DeleteAccount(ctx context.Context, id string) error {
	if _, err := r.lockAccount(ctx, id); err != nil {
		return err
	}

	openRefs := r.db.NewSelect().
		Model((*models.CraftingRequest)(nil)).
		ColumnExpr("1").
		Where("status IN (?)", bun.In([]models.RequestStatus{models.StatusPending, models.StatusAccepted})).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("requestor_id = ?", id).WhereOr("accepted_by = ?", id)
		})

	query := r.db.NewDelete().
		Model((*models.Account)(nil)).
		Where("id = ?", id).
		Where("NOT EXISTS (?)", openRefs)

	ql := logger.NewQueryLogger("delete_account", query.String(), id)
	res, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return HandleErrorWithID("delete", "account", id, err)
	}
	rows, _ := res.RowsAffected()
	ql.Log(nil, rows)
	if rows > 0 {
		return nil
	}

	return &ConflictError{Entity: "account", ID: id, Reason: "referenced by a pending or accepted request"}
}
