package system

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/utils"
)

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "Show the bot's version",
}

var Commands = []discord.ApplicationCommandCreate{
	Version,
}

func VersionHandler(b *gawain.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if err := e.DeferCreateMessage(true); err != nil {
			return err
		}
		_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
			Content: utils.Ptr(fmt.Sprintf("Version: %s\nCommit: %s", b.Version, b.Commit)),
		})
		return err
	}
}
