package board

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
)

func requestIDVar(e *handler.ComponentEvent) (int64, error) {
	id, err := strconv.ParseInt(e.Vars["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q in custom id", e.Vars["id"])
	}
	return id, nil
}

func (h *Handler) HandleAcceptButton(e *handler.ComponentEvent) error {
	id, err := requestIDVar(e)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
	}

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Accept(ctx, actorOf(e.User()), id)
	if err != nil {
		return utils.EH.ComponentError(e, err)
	}

	if err := e.UpdateMessage(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{requestEmbed(*view)},
		Components: &[]discord.ContainerComponent{requestButtons(*view, false)},
	}); err != nil {
		return err
	}

	_, err = e.Client().Rest().CreateFollowupMessage(e.ApplicationID(), e.Token(), discord.MessageCreate{
		Content:         acceptedNotice(*view),
		AllowedMentions: mentionUsers(view.RequestorID),
	})
	return err
}

func (h *Handler) HandleCancelButton(e *handler.ComponentEvent) error {
	id, err := requestIDVar(e)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
	}

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Cancel(ctx, actorOf(e.User()), id)
	if err != nil {
		return utils.EH.ComponentError(e, err)
	}

	return e.UpdateMessage(discord.MessageUpdate{
		Embeds:     &[]discord.Embed{requestEmbed(*view)},
		Components: &[]discord.ContainerComponent{requestButtons(*view, false)},
	})
}

// HandleThreadButton opens a discussion thread on the announcement between
// the requestor and the member who pressed the button.
func (h *Handler) HandleThreadButton(e *handler.ComponentEvent) error {
	id, err := requestIDVar(e)
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
	}

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Get(ctx, id)
	if err != nil {
		return utils.EH.ComponentError(e, err)
	}
	if view.Status.Terminal() {
		return utils.EH.CreateEphemeralError(e, fmt.Sprintf("Crafting request %d is already %s.", id, view.StatusText()))
	}
	if view.RequestorID == e.User().ID.String() {
		return utils.EH.CreateEphemeralError(e, "You cannot open a thread on your own request.")
	}

	if err := e.DeferCreateMessage(true); err != nil {
		return err
	}

	client := e.Client().Rest()
	threadID, err := openRequestThread(ctx, client, e.ChannelID(), e.Message.ID, *view, e.User().ID)
	content := fmt.Sprintf("Thread created: <#%s>", threadID)
	if err != nil {
		slog.Error("Failed to open request thread",
			slog.String("type", "component"),
			slog.Int64("request_id", id),
			slog.Any("error", err),
		)
		content = "❌ Could not create a thread for this request."
	}

	_, updErr := client.UpdateInteractionResponse(e.ApplicationID(), e.Token(), discord.MessageUpdate{
		Content: utils.Ptr(content),
	})
	if err != nil {
		return err
	}
	return updErr
}

func openRequestThread(ctx context.Context, client rest.Rest, channelID, messageID snowflake.ID, view crafting.RequestView, crafterID snowflake.ID) (snowflake.ID, error) {
	thread, err := client.CreateThreadFromMessage(channelID, messageID, discord.ThreadCreateFromMessage{
		Name:                utils.Truncate(fmt.Sprintf("Request #%d: %s", view.ID, view.ItemName), 100),
		AutoArchiveDuration: discord.AutoArchiveDuration24h,
	}, rest.WithCtx(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to create thread: %w", err)
	}

	requestorID, err := snowflake.Parse(view.RequestorID)
	if err != nil {
		return thread.ID(), fmt.Errorf("invalid requestor id %q: %w", view.RequestorID, err)
	}
	for _, member := range []snowflake.ID{requestorID, crafterID} {
		if err := client.AddThreadMember(thread.ID(), member, rest.WithCtx(ctx)); err != nil {
			return thread.ID(), fmt.Errorf("failed to add %s to thread: %w", member, err)
		}
	}

	greeting := fmt.Sprintf("%s, %s would like to discuss your request for **%s**.",
		utils.UserMention(view.RequestorID), utils.UserMention(crafterID.String()), view.ItemName)
	if _, err := client.CreateMessage(thread.ID(), discord.MessageCreate{Content: greeting}, rest.WithCtx(ctx)); err != nil {
		return thread.ID(), fmt.Errorf("failed to greet thread: %w", err)
	}

	if err := client.LeaveThread(thread.ID(), rest.WithCtx(ctx)); err != nil {
		slog.Warn("Failed to leave request thread",
			slog.String("type", "component"),
			slog.String("thread_id", thread.ID().String()),
			slog.Any("error", err),
		)
	}
	return thread.ID(), nil
}
