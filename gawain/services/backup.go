package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

// Snapshot is the JSON document a backup run uploads.
type Snapshot struct {
	RunID    string                    `json:"run_id"`
	TakenAt  time.Time                 `json:"taken_at"`
	Accounts []*models.Account         `json:"accounts"`
	Skills   []*models.SkillRecord     `json:"skills"`
	Requests []*models.CraftingRequest `json:"requests"`
}

type uploader interface {
	PutJSON(ctx context.Context, name string, body []byte) (string, error)
}

type BackupService struct {
	db     bun.IDB
	spaces uploader
	now    func() time.Time
}

func NewBackupService(db bun.IDB, spaces uploader) *BackupService {
	return &BackupService{
		db:     db,
		spaces: spaces,
		now:    time.Now,
	}
}

// snapshotTx pins one snapshot for every SELECT; under READ COMMITTED a
// completion committing between reads would pair a COMPLETED request with
// the acceptor's old completed_count.
var snapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Snapshot reads the three tables from a single repeatable-read transaction.
func (b *BackupService) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		RunID:    uuid.NewString(),
		TakenAt:  b.now().UTC(),
		Accounts: make([]*models.Account, 0),
		Skills:   make([]*models.SkillRecord, 0),
		Requests: make([]*models.CraftingRequest, 0),
	}

	err := b.db.RunInTx(ctx, snapshotTx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(&snap.Accounts).Order("id ASC").Scan(ctx); err != nil {
			return fmt.Errorf("failed to read accounts: %w", err)
		}
		if err := tx.NewSelect().Model(&snap.Skills).Order("id ASC").Scan(ctx); err != nil {
			return fmt.Errorf("failed to read skill records: %w", err)
		}
		if err := tx.NewSelect().Model(&snap.Requests).Order("id ASC").Scan(ctx); err != nil {
			return fmt.Errorf("failed to read crafting requests: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Run takes a snapshot and uploads it, returning the object key.
func (b *BackupService) Run(ctx context.Context) (string, *Snapshot, error) {
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := fmt.Sprintf("gawain-%s-%s.json", snap.TakenAt.Format("20060102T150405Z"), snap.RunID)
	key, err := b.spaces.PutJSON(ctx, name, body)
	if err != nil {
		return "", nil, err
	}

	slog.Info("Backup uploaded",
		slog.String("type", "sys"),
		slog.String("key", key),
		slog.String("run_id", snap.RunID),
		slog.Int("accounts", len(snap.Accounts)),
		slog.Int("skills", len(snap.Skills)),
		slog.Int("requests", len(snap.Requests)),
	)
	return key, snap, nil
}
