package crafting

import (
	"context"

	"github.com/sergawain/gawain/internal/gateways/database/models"
)

type AccountRegistry interface {
	// EnsureAccount inserts the account if it is absent and reports whether it
	// did. An existing row, including its display name, is left untouched.
	EnsureAccount(ctx context.Context, id, displayName string) (*models.Account, bool, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	// IncrementCompleted bumps completed_count in a single statement and
	// returns the new value.
	IncrementCompleted(ctx context.Context, id string) (int64, error)
	// DeleteAccount fails with ErrAccountReferenced while a pending or
	// accepted request still points at the account. EnsureAccount and
	// DeleteAccount lock the account row, so run both inside RunInTx.
	DeleteAccount(ctx context.Context, id string) error
}

type SkillLedger interface {
	UpsertSkill(ctx context.Context, record *models.SkillRecord) error
	// ListSkills returns every skill row in insertion order.
	ListSkills(ctx context.Context) ([]*models.SkillRecord, error)
}

type RequestStore interface {
	InsertRequest(ctx context.Context, req *models.CraftingRequest) error
	GetRequest(ctx context.Context, id int64) (*models.CraftingRequest, error)
	// UpdateStatus applies t as one conditional update and reports whether a
	// row changed.
	UpdateStatus(ctx context.Context, id int64, t models.StatusTransition) (bool, error)
	// ListRequests returns requests ordered by id, optionally filtered by status.
	ListRequests(ctx context.Context, status *models.RequestStatus) ([]*models.CraftingRequest, error)
	DeleteRequest(ctx context.Context, id int64) (bool, error)
}

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

// Repository is the storage port of the engine. RunInTx hands fn a
// Repository bound to a single transaction which commits when fn returns nil.
type Repository interface {
	AccountRegistry
	SkillLedger
	RequestStore
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
