package crafting

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sergawain/gawain/internal/gateways/database/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("tradeskill", validateTradeSkill)
}

func validateTradeSkill(fl validator.FieldLevel) bool {
	return models.TradeSkill(fl.Field().String()).Valid()
}

func validateCreate(p CreateParams) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidArgument("create", 0, "The request is invalid.")
	}
	switch fe := verrs[0]; fe.Field() {
	case "Item":
		if fe.Tag() == "required" {
			return invalidArgument("create", 0, "An item name is required.")
		}
		return invalidArgument("create", 0, "The item name is too long.")
	case "Amount":
		return invalidArgument("create", 0, "Amount must be at least 1.")
	case "Skill":
		return invalidArgument("create", 0, fmt.Sprintf("%s is not a known trade skill.", *p.Skill))
	case "LevelRequired":
		return invalidArgument("create", 0, levelRangeMessage)
	}
	return invalidArgument("create", 0, "The request is invalid.")
}

const levelRangeMessage = "Levels must be between 0 and 250."

func validLevel(level int) bool {
	return level >= models.MinSkillLevel && level <= models.MaxSkillLevel
}
