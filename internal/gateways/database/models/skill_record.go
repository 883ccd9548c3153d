package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TradeSkill string

const (
	SkillArcana         TradeSkill = "Arcana"
	SkillArmoring       TradeSkill = "Armoring"
	SkillCooking        TradeSkill = "Cooking"
	SkillEngineering    TradeSkill = "Engineering"
	SkillFurnishing     TradeSkill = "Furnishing"
	SkillJewelcrafting  TradeSkill = "Jewelcrafting"
	SkillWeaponsmithing TradeSkill = "Weaponsmithing"
)

// TradeSkills lists every skill in display order.
var TradeSkills = []TradeSkill{
	SkillArcana,
	SkillArmoring,
	SkillCooking,
	SkillEngineering,
	SkillFurnishing,
	SkillJewelcrafting,
	SkillWeaponsmithing,
}

func (s TradeSkill) Valid() bool {
	for _, skill := range TradeSkills {
		if s == skill {
			return true
		}
	}
	return false
}

const (
	MinSkillLevel = 0
	MaxSkillLevel = 250
)

type SkillRecord struct {
	bun.BaseModel `bun:"table:skill_records,alias:sr" json:"-"`

	ID          int64      `bun:"id,pk,autoincrement"`
	AccountID   string     `bun:"account_id,notnull,unique:skill_records_account_skill"`
	DisplayName string     `bun:"display_name,notnull"`
	SkillName   TradeSkill `bun:"skill_name,notnull,unique:skill_records_account_skill"`
	Level       int        `bun:"level,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
