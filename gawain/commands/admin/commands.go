package admin

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
)

var Admin = discord.SlashCommandCreate{
	Name:                     "admin",
	Description:              "Moderate the crafting board",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete_request",
			Description: "Permanently delete a crafting request in any status",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "request_id",
					Description: "The request to delete",
					Required:    true,
				},
				discord.ApplicationCommandOptionBool{
					Name:        "confirm",
					Description: "Confirm that you want to delete this request",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "delete_user",
			Description: "Remove a member's account",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to remove",
					Required:    true,
				},
			},
		},
	},
}

var Commands = []discord.ApplicationCommandCreate{
	Admin,
}
