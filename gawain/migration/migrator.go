package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
	_ "modernc.org/sqlite"
)

// Migrator copies the old bot's SQLite database into the current schema.
// Rows that would violate the current invariants are skipped and reported in
// the stats instead of aborting the import.
type Migrator struct {
	source    *sql.DB
	target    *bun.DB
	batchSize int
	stats     MigrationStats
}

// OpenLegacy opens the old bot's SQLite file read-only.
func OpenLegacy(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	return db, nil
}

func NewMigrator(source *sql.DB, target *bun.DB) *Migrator {
	return &Migrator{
		source:    source,
		target:    target,
		batchSize: 500,
		stats: MigrationStats{
			Tables: make(map[string]*TableStats),
		},
	}
}

// SetBatchSize overrides the default batch size for inserts
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

func (m *Migrator) Stats() MigrationStats {
	return m.stats
}

// MigrateAll imports users, trade skills and crafting requests in a single
// target transaction. Rows whose id already exists in the target are left
// untouched, so the import can be re-run.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	m.stats.StartTime = time.Now()

	err := m.target.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.migrateUsers(ctx, tx); err != nil {
			return err
		}
		if err := m.migrateSkills(ctx, tx); err != nil {
			return err
		}
		return m.migrateRequests(ctx, tx)
	})
	m.stats.EndTime = time.Now()
	if err != nil {
		return err
	}

	for _, t := range m.stats.Tables {
		m.stats.TotalProcessed += t.Processed
		m.stats.TotalSkipped += t.Skipped
	}
	slog.Info("Legacy import finished",
		slog.String("type", "db"),
		slog.Int("processed", m.stats.TotalProcessed),
		slog.Int("skipped", m.stats.TotalSkipped),
		slog.Duration("took", m.stats.EndTime.Sub(m.stats.StartTime)),
	)
	return nil
}

func (m *Migrator) migrateUsers(ctx context.Context, tx bun.Tx) error {
	stats := m.stats.table("accounts")

	rows, err := m.source.QueryContext(ctx,
		`SELECT user_id, user_name, requests_completed, created_at FROM users ORDER BY user_id`)
	if err != nil {
		return fmt.Errorf("failed to read legacy users: %w", err)
	}
	defer rows.Close()

	batch := make([]*models.Account, 0, m.batchSize)
	for rows.Next() {
		var (
			id, name, created sql.NullString
			completed         sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &completed, &created); err != nil {
			return fmt.Errorf("failed to scan legacy user: %w", err)
		}
		stats.Processed++

		u := LegacyUser{UserID: id.String, UserName: name.String, RequestsCompleted: completed.Int64}
		if u.CreatedAt, err = optionalTime(created); err != nil {
			stats.skip(id.String, err.Error())
			continue
		}
		account, reason := convertUser(u)
		if account == nil {
			stats.skip(id.String, reason)
			continue
		}

		batch = append(batch, account)
		if len(batch) == m.batchSize {
			if err := insertBatch(ctx, tx, &batch, stats); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read legacy users: %w", err)
	}
	return insertBatch(ctx, tx, &batch, stats)
}

func (m *Migrator) migrateSkills(ctx context.Context, tx bun.Tx) error {
	stats := m.stats.table("skill_records")

	rows, err := m.source.QueryContext(ctx,
		`SELECT skill_id, user_id, user_name, skill_name, skill_level, created_at FROM trade_skills ORDER BY skill_id`)
	if err != nil {
		return fmt.Errorf("failed to read legacy trade skills: %w", err)
	}
	defer rows.Close()

	batch := make([]*models.SkillRecord, 0, m.batchSize)
	for rows.Next() {
		var (
			id                int64
			user, name, skill sql.NullString
			created           sql.NullString
			level             sql.NullInt64
		)
		if err := rows.Scan(&id, &user, &name, &skill, &level, &created); err != nil {
			return fmt.Errorf("failed to scan legacy trade skill: %w", err)
		}
		stats.Processed++
		key := strconv.FormatInt(id, 10)

		s := LegacySkill{SkillID: id, UserID: user.String, UserName: name.String, SkillName: skill.String, SkillLevel: int(level.Int64)}
		if s.CreatedAt, err = optionalTime(created); err != nil {
			stats.skip(key, err.Error())
			continue
		}
		record, reason := convertSkill(s)
		if record == nil {
			stats.skip(key, reason)
			continue
		}

		batch = append(batch, record)
		if len(batch) == m.batchSize {
			if err := insertBatch(ctx, tx, &batch, stats); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read legacy trade skills: %w", err)
	}
	return insertBatch(ctx, tx, &batch, stats)
}

func (m *Migrator) migrateRequests(ctx context.Context, tx bun.Tx) error {
	stats := m.stats.table("crafting_requests")

	rows, err := m.source.QueryContext(ctx, `
		SELECT request_id, requestor_id, user_name, item_name, has_materials, amount,
		       trade_skill, level_required, status, accepted_by, created_at, completed_on
		FROM crafting_requests ORDER BY request_id`)
	if err != nil {
		return fmt.Errorf("failed to read legacy crafting requests: %w", err)
	}
	defer rows.Close()

	batch := make([]*models.CraftingRequest, 0, m.batchSize)
	for rows.Next() {
		var (
			id                                   int64
			requestor, name, item, skill, status sql.NullString
			acceptedBy, created, completed       sql.NullString
			hasMaterials                         sql.NullBool
			amount, level                        sql.NullInt64
		)
		if err := rows.Scan(&id, &requestor, &name, &item, &hasMaterials, &amount,
			&skill, &level, &status, &acceptedBy, &created, &completed); err != nil {
			return fmt.Errorf("failed to scan legacy crafting request: %w", err)
		}
		stats.Processed++
		key := strconv.FormatInt(id, 10)

		r := LegacyRequest{
			RequestID:    id,
			RequestorID:  requestor.String,
			UserName:     name.String,
			ItemName:     item.String,
			HasMaterials: hasMaterials.Bool,
			Amount:       int(amount.Int64),
			TradeSkill:   skill.String,
			Status:       status.String,
		}
		// a NULL amount is an omitted one
		if !amount.Valid {
			r.Amount = 1
		}
		if level.Valid {
			lvl := int(level.Int64)
			r.LevelRequired = &lvl
		}
		if acceptedBy.Valid {
			r.AcceptedBy = &acceptedBy.String
		}
		if r.CreatedAt, err = optionalTime(created); err != nil {
			stats.skip(key, err.Error())
			continue
		}
		if completed.Valid && completed.String != "" {
			t, err := parseLegacyTime(completed.String)
			if err != nil {
				stats.skip(key, err.Error())
				continue
			}
			r.CompletedOn = &t
		}

		req, reason := convertRequest(r)
		if req == nil {
			stats.skip(key, reason)
			continue
		}

		batch = append(batch, req)
		if len(batch) == m.batchSize {
			if err := insertBatch(ctx, tx, &batch, stats); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read legacy crafting requests: %w", err)
	}
	return insertBatch(ctx, tx, &batch, stats)
}

// insertBatch writes batch, leaving rows that already exist untouched.
func insertBatch[T any](ctx context.Context, tx bun.Tx, batch *[]T, stats *TableStats) error {
	if len(*batch) == 0 {
		return nil
	}
	res, err := tx.NewInsert().Model(batch).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert %s batch: %w", stats.TableName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert %s batch: %w", stats.TableName, err)
	}
	stats.Successful += int(affected)
	if dup := len(*batch) - int(affected); dup > 0 {
		stats.Skipped += dup
		stats.SkippedRecords = append(stats.SkippedRecords, SkippedRecord{
			Reason: fmt.Sprintf("%d rows already present", dup),
		})
	}
	return nil
}

// optionalTime parses a legacy timestamp, treating NULL as the zero time so
// the column default applies.
func optionalTime(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	return parseLegacyTime(v.String)
}
