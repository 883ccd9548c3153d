package users

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/gawain/handlers"
	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
)

var Users = discord.SlashCommandCreate{
	Name:        "users",
	Description: "Crafting board membership",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "register",
			Description: "Register yourself on the crafting board",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "requests_completed",
			Description: "Show how many requests a member has completed",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The member to look up (defaults to you)",
				},
			},
		},
	},
}

var Commands = []discord.ApplicationCommandCreate{
	Users,
}

func Register(b *gawain.Bot, directory *handlers.Directory, r handler.Router) {
	r.Route("/users", func(r handler.Router) {
		r.Command("/register", handlers.Guarded("users register", directory, RegisterHandler(b)))
		r.Command("/requests_completed", handlers.Guarded("users requests_completed", directory, RequestsCompletedHandler(b)))
	})
}

func RegisterHandler(b *gawain.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		actor := crafting.Actor{ID: e.User().ID.String(), Name: e.User().Username}
		_, created, err := b.Crafting.RegisterAccount(ctx, actor)
		if err != nil {
			return utils.EH.CommandError(e, err)
		}
		if !created {
			return utils.EH.CreateErrorEmbed(e, "User already exists.")
		}
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Welcome %s, you are now registered.", utils.UserMention(actor.ID)), true)
	}
}

func RequestsCompletedHandler(b *gawain.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		user := e.User()
		if u, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			user = u
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		count, err := b.Crafting.RequestsCompleted(ctx, user.ID.String())
		if err != nil {
			return utils.EH.CommandError(e, err)
		}
		if count == 0 {
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("%s has not completed any requests.",
				utils.UserMention(user.ID.String())))
		}
		return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("%s has completed %s crafting requests.",
			utils.UserMention(user.ID.String()), utils.FormatNumber(count)))
	}
}
