package repositories

import (
	"context"

	"github.com/sergawain/gawain/internal/domain/logger"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

type skillRepository struct {
	db bun.IDB
}

// UpsertSkill overwrites the level of an existing (account, skill) row or
// inserts a new one. The row keeps its id, so roster order is stable.
func (r *skillRepository) UpsertSkill(ctx context.Context, record *models.SkillRecord) error {
	query := r.db.NewInsert().
		Model(record).
		On("CONFLICT (account_id, skill_name) DO UPDATE").
		Set("level = EXCLUDED.level").
		Set("display_name = EXCLUDED.display_name").
		Set("updated_at = EXCLUDED.updated_at")

	ql := logger.NewQueryLogger("upsert_skill", query.String(), record.AccountID, record.SkillName, record.Level)
	_, err := query.Exec(ctx)
	if err != nil {
		ql.Log(err, 0)
		return HandleErrorWithID("upsert", "skill_record", record.AccountID, err)
	}
	ql.Log(nil, 1)
	return nil
}

func (r *skillRepository) ListSkills(ctx context.Context) ([]*models.SkillRecord, error) {
	var records []*models.SkillRecord
	err := r.db.NewSelect().
		Model(&records).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, HandleErrorWithID("list", "skill_record", "all", err)
	}
	return records, nil
}
