package repositories

import (
	"context"
	"fmt"

	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

// Models lists the tables backing the crafting board.
var Models = []interface{}{
	(*models.Account)(nil),
	(*models.SkillRecord)(nil),
	(*models.CraftingRequest)(nil),
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_crafting_requests_status ON crafting_requests(status);",
	"CREATE INDEX IF NOT EXISTS idx_crafting_requests_requestor ON crafting_requests(requestor_id);",
	"CREATE INDEX IF NOT EXISTS idx_crafting_requests_accepted_by ON crafting_requests(accepted_by);",
	"CREATE INDEX IF NOT EXISTS idx_skill_records_skill ON skill_records(skill_name);",
}

// CreateSchema creates the tables and indexes if they do not exist. It only
// uses SQL understood by both PostgreSQL and SQLite.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
