package utils

import (
	"errors"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/internal/domain/crafting"
)

// ResponseHandler provides standardized response methods for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

func errorPrefix(kind crafting.Kind) string {
	switch kind {
	case crafting.KindInvalidArgument:
		return "⚠️"
	case crafting.KindNotFound:
		return "🔍"
	case crafting.KindPermissionDenied:
		return "🚫"
	case crafting.KindConflict:
		return "⏰"
	case crafting.KindStoreUnavailable:
		return "🔧"
	default:
		return "❌"
	}
}

func errorColor(kind crafting.Kind) int {
	switch kind {
	case crafting.KindInvalidArgument, crafting.KindConflict:
		return config.WarningColor
	case crafting.KindNotFound:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// EngineErrorEmbed renders an engine error for the member who caused it.
func EngineErrorEmbed(err error) discord.Embed {
	kind := crafting.KindOf(err)
	return discord.Embed{
		Description: errorPrefix(kind) + " " + crafting.UserMessage(err),
		Color:       errorColor(kind),
	}
}

func logUnexpected(err error) {
	var e *crafting.Error
	if !errors.As(err, &e) || e.Kind == crafting.KindStoreUnavailable {
		slog.Error("Crafting operation failed",
			slog.String("type", "error"),
			slog.Any("error", err),
		)
	}
}

// CommandError replies to a slash command with an ephemeral engine error.
func (h *ResponseHandler) CommandError(event *handler.CommandEvent, err error) error {
	logUnexpected(err)
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{EngineErrorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// ComponentError replies to a button press with an ephemeral engine error.
func (h *ResponseHandler) ComponentError(event *handler.ComponentEvent, err error) error {
	logUnexpected(err)
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{EngineErrorEmbed(err)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

// CreateEphemeralError creates an ephemeral error message for component events
func (h *ResponseHandler) CreateEphemeralError(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "❌ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

// CreateErrorEmbed creates a standard ephemeral error embed for command events
func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "❌ " + message,
			Color:       config.ErrorColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

// CreateSuccessEmbed creates a standard success embed for command events
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string, ephemeral bool) error {
	msg := discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "✅ " + message,
			Color:       config.SuccessColor,
		}},
	}
	if ephemeral {
		msg.Flags = discord.MessageFlagEphemeral
	}
	return event.CreateMessage(msg)
}

// CreateInfoEmbed creates a standard info embed for command events
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}
