package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusAccepted  RequestStatus = "ACCEPTED"
	StatusCompleted RequestStatus = "COMPLETED"
	StatusCancelled RequestStatus = "CANCELLED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type CraftingRequest struct {
	bun.BaseModel `bun:"table:crafting_requests,alias:cr" json:"-"`

	ID            int64         `bun:"id,pk,autoincrement"`
	RequestorID   string        `bun:"requestor_id,notnull"`
	RequestorName string        `bun:"requestor_name,notnull"`
	ItemName      string        `bun:"item_name,notnull"`
	HasMaterials  bool          `bun:"has_materials,notnull"`
	Amount        int           `bun:"amount,notnull,default:1"`
	TradeSkill    *TradeSkill   `bun:"trade_skill"`
	LevelRequired *int          `bun:"level_required"`
	Status        RequestStatus `bun:"status,notnull"`
	AcceptedBy    *string       `bun:"accepted_by"`
	CreatedAt     time.Time     `bun:"created_at,notnull,default:current_timestamp"`
	CompletedOn   *time.Time    `bun:"completed_on"`
}

// StatusTransition describes one compare-and-set on a request row. The update
// applies only while the row's status is one of From and the optional actor
// guards hold.
type StatusTransition struct {
	From []RequestStatus
	To   RequestStatus

	AcceptedBy  *string
	CompletedOn *time.Time

	// RequestorNot adds requestor_id <> ? to the predicate when set.
	RequestorNot string
	// AcceptedByIs adds accepted_by = ? to the predicate when set.
	AcceptedByIs string
}
