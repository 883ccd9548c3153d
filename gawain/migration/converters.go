package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/sergawain/gawain/internal/gateways/database/models"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseLegacyTime accepts the formats SQLite and the old bot wrote
// timestamps in. Values without a zone are taken as UTC.
func parseLegacyTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func normalizeSkill(name string) (models.TradeSkill, bool) {
	name = strings.TrimSpace(name)
	for _, s := range models.TradeSkills {
		if strings.EqualFold(name, string(s)) {
			return s, true
		}
	}
	return "", false
}

func normalizeStatus(status string) (models.RequestStatus, bool) {
	s := models.RequestStatus(strings.ToUpper(strings.TrimSpace(status)))
	return s, s.Valid()
}

func validLevel(level int) bool {
	return level >= models.MinSkillLevel && level <= models.MaxSkillLevel
}

func convertUser(u LegacyUser) (*models.Account, string) {
	if strings.TrimSpace(u.UserID) == "" {
		return nil, "missing user id"
	}
	count := u.RequestsCompleted
	if count < 0 {
		count = 0
	}
	return &models.Account{
		ID:             u.UserID,
		DisplayName:    u.UserName,
		CompletedCount: count,
		CreatedAt:      u.CreatedAt,
	}, ""
}

func convertSkill(s LegacySkill) (*models.SkillRecord, string) {
	if strings.TrimSpace(s.UserID) == "" {
		return nil, "missing user id"
	}
	skill, ok := normalizeSkill(s.SkillName)
	if !ok {
		return nil, fmt.Sprintf("unknown trade skill %q", s.SkillName)
	}
	if !validLevel(s.SkillLevel) {
		return nil, fmt.Sprintf("level %d out of range", s.SkillLevel)
	}
	return &models.SkillRecord{
		ID:          s.SkillID,
		AccountID:   s.UserID,
		DisplayName: s.UserName,
		SkillName:   skill,
		Level:       s.SkillLevel,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.CreatedAt,
	}, ""
}

func convertRequest(r LegacyRequest) (*models.CraftingRequest, string) {
	if strings.TrimSpace(r.RequestorID) == "" {
		return nil, "missing requestor id"
	}
	if strings.TrimSpace(r.ItemName) == "" {
		return nil, "missing item name"
	}
	status, ok := normalizeStatus(r.Status)
	if !ok {
		return nil, fmt.Sprintf("unknown status %q", r.Status)
	}
	if r.LevelRequired != nil && !validLevel(*r.LevelRequired) {
		return nil, fmt.Sprintf("level %d out of range", *r.LevelRequired)
	}
	if r.Amount < 1 {
		return nil, fmt.Sprintf("amount %d below 1", r.Amount)
	}
	hasAcceptor := r.AcceptedBy != nil && *r.AcceptedBy != ""
	switch {
	case (status == models.StatusAccepted || status == models.StatusCompleted) && !hasAcceptor:
		return nil, fmt.Sprintf("%s request without an acceptor", status)
	case status == models.StatusPending && hasAcceptor:
		return nil, "PENDING request with an acceptor"
	case hasAcceptor && *r.AcceptedBy == r.RequestorID:
		return nil, "accepted by its own requestor"
	case status == models.StatusCompleted && r.CompletedOn == nil:
		return nil, "COMPLETED request without a completion time"
	}

	req := &models.CraftingRequest{
		ID:            r.RequestID,
		RequestorID:   r.RequestorID,
		RequestorName: r.UserName,
		ItemName:      r.ItemName,
		HasMaterials:  r.HasMaterials,
		Amount:        r.Amount,
		LevelRequired: r.LevelRequired,
		Status:        status,
		AcceptedBy:    r.AcceptedBy,
		CreatedAt:     r.CreatedAt,
		CompletedOn:   r.CompletedOn,
	}
	if !hasAcceptor {
		req.AcceptedBy = nil
	}
	// the old bot stored "None" or an empty string for requests without a skill
	if r.TradeSkill != "" && !strings.EqualFold(r.TradeSkill, "none") {
		skill, ok := normalizeSkill(r.TradeSkill)
		if !ok {
			return nil, fmt.Sprintf("unknown trade skill %q", r.TradeSkill)
		}
		req.TradeSkill = &skill
	}
	return req, ""
}
