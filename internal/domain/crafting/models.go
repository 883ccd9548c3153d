package crafting

import (
	"strconv"
	"strings"
	"time"

	"github.com/sergawain/gawain/internal/gateways/database/models"
)

// Actor is the member performing an operation, as resolved by the adapter.
type Actor struct {
	ID   string
	Name string
}

type CreateParams struct {
	Item          string `validate:"required,max=200"`
	Amount        int    `validate:"gte=0"`
	HasMaterials  bool
	Skill         *models.TradeSkill `validate:"omitempty,tradeskill"`
	LevelRequired *int               `validate:"omitempty,gte=0,lte=250"`
}

type RequestView struct {
	ID            int64
	RequestorID   string
	RequestorName string
	ItemName      string
	HasMaterials  bool
	Amount        int
	TradeSkill    *models.TradeSkill
	LevelRequired *int
	Status        models.RequestStatus
	AcceptedBy    *string
	CreatedAt     time.Time
	CompletedOn   *time.Time
}

func newRequestView(r *models.CraftingRequest) RequestView {
	return RequestView{
		ID:            r.ID,
		RequestorID:   r.RequestorID,
		RequestorName: r.RequestorName,
		ItemName:      r.ItemName,
		HasMaterials:  r.HasMaterials,
		Amount:        r.Amount,
		TradeSkill:    r.TradeSkill,
		LevelRequired: r.LevelRequired,
		Status:        r.Status,
		AcceptedBy:    r.AcceptedBy,
		CreatedAt:     r.CreatedAt,
		CompletedOn:   r.CompletedOn,
	}
}

func (v RequestView) MaterialsText() string {
	if v.HasMaterials {
		return "Yes"
	}
	return "No"
}

func (v RequestView) SkillText() string {
	if v.TradeSkill == nil || *v.TradeSkill == "" {
		return "None"
	}
	return string(*v.TradeSkill)
}

func (v RequestView) LevelText() string {
	if v.LevelRequired == nil {
		return "None"
	}
	return strconv.Itoa(*v.LevelRequired)
}

func (v RequestView) StatusText() string {
	return StatusTitle(v.Status)
}

// StatusTitle renders PENDING as Pending.
func StatusTitle(s models.RequestStatus) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

type Completion struct {
	Request        RequestView
	CompletedCount int64
}

type SkillLevel struct {
	Skill models.TradeSkill
	Level int
}

type CrafterView struct {
	AccountID   string
	DisplayName string
	Skills      []SkillLevel
}

// SkillsText renders "Arcana: 200, Cooking: 15".
func (c CrafterView) SkillsText() string {
	parts := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		parts = append(parts, string(s.Skill)+": "+strconv.Itoa(s.Level))
	}
	return strings.Join(parts, ", ")
}

// buildRoster groups skill rows by account, keeping accounts in the order of
// their first row and skills in row order.
func buildRoster(records []*models.SkillRecord) []CrafterView {
	roster := make([]CrafterView, 0)
	index := make(map[string]int)
	for _, rec := range records {
		i, ok := index[rec.AccountID]
		if !ok {
			i = len(roster)
			index[rec.AccountID] = i
			roster = append(roster, CrafterView{AccountID: rec.AccountID, DisplayName: rec.DisplayName})
		}
		roster[i].Skills = append(roster[i].Skills, SkillLevel{Skill: rec.SkillName, Level: rec.Level})
	}
	return roster
}
