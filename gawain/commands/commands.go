package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/sergawain/gawain/gawain/commands/admin"
	"github.com/sergawain/gawain/gawain/commands/board"
	"github.com/sergawain/gawain/gawain/commands/system"
	"github.com/sergawain/gawain/gawain/commands/users"
)

var Commands = []discord.ApplicationCommandCreate{}

func init() {
	Commands = append(Commands, board.Commands...)
	Commands = append(Commands, users.Commands...)
	Commands = append(Commands, admin.Commands...)
	Commands = append(Commands, system.Commands...)
}
