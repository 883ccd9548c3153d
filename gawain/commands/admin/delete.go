package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/gawain/handlers"
	"github.com/sergawain/gawain/gawain/utils"
)

func Register(b *gawain.Bot, directory *handlers.Directory, r handler.Router) {
	r.Route("/admin", func(r handler.Router) {
		r.Command("/delete_request", handlers.Guarded("admin delete_request", directory, DeleteRequestHandler(b)))
		r.Command("/delete_user", handlers.Guarded("admin delete_user", directory, DeleteUserHandler(b)))
	})
}

func DeleteRequestHandler(b *gawain.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		id := int64(data.Int("request_id"))

		if !data.Bool("confirm") {
			return utils.EH.CreateErrorEmbed(e, "You must confirm the deletion by setting the confirm option to true.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		if err := b.Crafting.Delete(ctx, id); err != nil {
			return utils.EH.CommandError(e, err)
		}

		slog.Info("Crafting request deleted by admin",
			slog.String("type", "cmd"),
			slog.Int64("request_id", id),
			slog.String("admin_id", e.User().ID.String()),
		)
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Crafting request #%d has been deleted.", id), true)
	}
}

func DeleteUserHandler(b *gawain.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		user := e.SlashCommandInteractionData().User("user")

		ctx, cancel := context.WithTimeout(context.Background(), config.CommandTimeout)
		defer cancel()

		if err := b.Crafting.DeleteAccount(ctx, user.ID.String()); err != nil {
			return utils.EH.CommandError(e, err)
		}

		slog.Info("Account deleted by admin",
			slog.String("type", "cmd"),
			slog.String("user_id", user.ID.String()),
			slog.String("admin_id", e.User().ID.String()),
		)
		return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("%s has been removed.", utils.UserMention(user.ID.String())), true)
	}
}
