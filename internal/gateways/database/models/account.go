package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Account is a community member known to the bot. Rows are created lazily the
// first time a member files or accepts a request.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a" json:"-"`

	ID             string    `bun:"id,pk"` // Discord user snowflake
	DisplayName    string    `bun:"display_name,notnull"`
	CompletedCount int64     `bun:"completed_count,notnull,default:0"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
