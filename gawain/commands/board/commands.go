package board

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/sergawain/gawain/internal/gateways/database/models"
)

func skillChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(models.TradeSkills))
	for _, s := range models.TradeSkills {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  string(s),
			Value: string(s),
		})
	}
	return choices
}

func statusChoices() []discord.ApplicationCommandOptionChoiceString {
	statuses := []models.RequestStatus{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusCompleted,
		models.StatusCancelled,
	}
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(statuses))
	for _, s := range statuses {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  string(s),
			Value: string(s),
		})
	}
	return choices
}

func requestIDOption(description string) discord.ApplicationCommandOptionInt {
	return discord.ApplicationCommandOptionInt{
		Name:         "request_id",
		Description:  description,
		Required:     true,
		Autocomplete: true,
		MinValue:     intPtr(1),
	}
}

func intPtr(v int) *int {
	return &v
}

var Crafting = discord.SlashCommandCreate{
	Name:        "crafting",
	Description: "Post, claim and finish crafting requests",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "request",
			Description: "Post a new crafting request",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "item",
					Description: "The item you need crafted",
					Required:    true,
					MaxLength:   intPtr(200),
				},
				discord.ApplicationCommandOptionBool{
					Name:        "has_materials",
					Description: "Whether you provide the materials",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "How many you need (default 1)",
					MinValue:    intPtr(1),
				},
				discord.ApplicationCommandOptionString{
					Name:        "skill",
					Description: "The trade skill required",
					Choices:     skillChoices(),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "level_required",
					Description: "The minimum skill level required",
					MinValue:    intPtr(models.MinSkillLevel),
					MaxValue:    intPtr(models.MaxSkillLevel),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Show a crafting request",
			Options: []discord.ApplicationCommandOption{
				requestIDOption("The request to show"),
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List crafting requests",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "status",
					Description: "Only show requests in this status",
					Choices:     statusChoices(),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "accept",
			Description: "Accept a pending crafting request",
			Options: []discord.ApplicationCommandOption{
				requestIDOption("The request to accept"),
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cancel",
			Description: "Cancel one of your crafting requests",
			Options: []discord.ApplicationCommandOption{
				requestIDOption("The request to cancel"),
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "complete",
			Description: "Mark a request you accepted as completed",
			Options: []discord.ApplicationCommandOption{
				requestIDOption("The request you finished"),
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set_skill",
			Description: "Record your level in a trade skill",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "skill",
					Description: "The trade skill",
					Required:    true,
					Choices:     skillChoices(),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "level",
					Description: "Your level (0-250)",
					Required:    true,
					MinValue:    intPtr(models.MinSkillLevel),
					MaxValue:    intPtr(models.MaxSkillLevel),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "crafters",
			Description: "List crafters and their skill levels",
		},
	},
}

var Commands = []discord.ApplicationCommandCreate{
	Crafting,
}
