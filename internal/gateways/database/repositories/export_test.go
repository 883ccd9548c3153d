package repositories

import (
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/uptrace/bun"
)

// LockQuery exposes accountRepository.lockQuery to the external test package.
func LockQuery(db bun.IDB, account *models.Account, id string) *bun.SelectQuery {
	return (&accountRepository{db: db}).lockQuery(account, id)
}
