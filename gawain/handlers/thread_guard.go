package handlers

import (
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain/config"
)

// RefuseInPublicThreads rejects slash commands issued inside public threads.
// Lookup failures let the command through.
func RefuseInPublicThreads(directory *Directory, next handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if e.GuildID() == nil {
			return next(e)
		}

		inThread, err := directory.IsPublicThread(RESTLookup{Rest: e.Client().Rest()}, e.ChannelID())
		if err != nil {
			slog.Warn("Failed to resolve channel type",
				slog.String("type", "cmd"),
				slog.String("channel_id", e.ChannelID().String()),
				slog.Any("error", err),
			)
		}
		if inThread {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: "❌ Commands cannot be used in public threads.",
					Color:       config.ErrorColor,
				}},
				Flags: discord.MessageFlagEphemeral,
			})
		}
		return next(e)
	}
}

// Guarded wraps a command with the thread check and logging.
func Guarded(name string, directory *Directory, h handler.CommandHandler) handler.CommandHandler {
	return WrapWithLogging(name, RefuseInPublicThreads(directory, h))
}
