package repositories

import (
	"context"

	"github.com/sergawain/gawain/internal/domain/logger"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type requestRepository struct {
	db bun.IDB
}

func (r *requestRepository) InsertRequest(ctx context.Context, req *models.CraftingRequest) error {
	query := r.db.NewInsert().Model(req)

	ql := logger.NewQueryLogger("insert_request", query.String(), req.RequestorID, req.ItemName)
	_, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return HandleErrorWithID("insert", "crafting_request", req.RequestorID, err)
	}
	ql.Log(nil, 1)
	return nil
}

func (r *requestRepository) GetRequest(ctx context.Context, id int64) (*models.CraftingRequest, error) {
	req := new(models.CraftingRequest)
	err := r.db.NewSelect().
		Model(req).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, HandleErrorWithID("get", "crafting_request", id, err)
	}
	return req, nil
}

// UpdateStatus is the compare-and-set every transition goes through. The
// status and actor guards sit in the WHERE clause, so of several concurrent
// callers only the first to commit matches the row.
func (r *requestRepository) UpdateStatus(ctx context.Context, id int64, t models.StatusTransition) (bool, error) {
	query := r.db.NewUpdate().
		Model((*models.CraftingRequest)(nil)).
		Set("status = ?", t.To)

	if t.AcceptedBy != nil {
		query = query.Set("accepted_by = ?", *t.AcceptedBy)
	}
	if t.CompletedOn != nil {
		query = query.Set("completed_on = ?", *t.CompletedOn)
	}

	query = query.
		Where("id = ?", id).
		Where("status IN (?)", bun.In(t.From))

	if t.RequestorNot != "" {
		query = query.Where("requestor_id <> ?", t.RequestorNot)
	}
	if t.AcceptedByIs != "" {
		query = query.Where("accepted_by = ?", t.AcceptedByIs)
	}

	ql := logger.NewQueryLogger("update_status", query.String(), id, t.To)
	res, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return false, HandleErrorWithID("update_status", "crafting_request", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		ql.Log(err, 0)
		return false, HandleErrorWithID("update_status", "crafting_request", id, err)
	}
	ql.Log(nil, rows)
	return rows == 1, nil
}

func (r *requestRepository) ListRequests(ctx context.Context, status *models.RequestStatus) ([]*models.CraftingRequest, error) {
	var reqs []*models.CraftingRequest
	query := r.db.NewSelect().
		Model(&reqs).
		Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, HandleErrorWithID("list", "crafting_request", "all", err)
	}
	return reqs, nil
}

func (r *requestRepository) DeleteRequest(ctx context.Context, id int64) (bool, error) {
	query := r.db.NewDelete().
		Model((*models.CraftingRequest)(nil)).
		Where("id = ?", id)

	ql := logger.NewQueryLogger("delete_request", query.String(), id)
	res, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return false, HandleErrorWithID("delete", "crafting_request", id, err)
	}
	rows, _ := res.RowsAffected()
	ql.Log(nil, rows)
	return rows > 0, nil
}
