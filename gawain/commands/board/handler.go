package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/gawain/handlers"
	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
)

type Handler struct {
	service   crafting.Service
	paginator *paginator.Manager
	directory *handlers.Directory
	cfg       gawain.CraftingConfig
}

func NewHandler(b *gawain.Bot, directory *handlers.Directory) *Handler {
	return &Handler{
		service:   b.Crafting,
		paginator: b.Paginator,
		directory: directory,
		cfg:       b.Cfg.Crafting,
	}
}

func (h *Handler) Register(r handler.Router) {
	r.Route("/crafting", func(r handler.Router) {
		r.Command("/request", h.command("crafting request", h.HandleRequest))
		r.Command("/status", h.command("crafting status", h.HandleStatus))
		r.Command("/list", h.command("crafting list", h.HandleList))
		r.Command("/accept", h.command("crafting accept", h.HandleAccept))
		r.Command("/cancel", h.command("crafting cancel", h.HandleCancel))
		r.Command("/complete", h.command("crafting complete", h.HandleComplete))
		r.Command("/set_skill", h.command("crafting set_skill", h.HandleSetSkill))
		r.Command("/crafters", h.command("crafting crafters", h.HandleCrafters))

		r.Autocomplete("/status", h.requestAutocomplete())
		r.Autocomplete("/accept", h.requestAutocomplete(models.StatusPending))
		r.Autocomplete("/cancel", h.requestAutocomplete(models.StatusPending, models.StatusAccepted))
		r.Autocomplete("/complete", h.requestAutocomplete(models.StatusAccepted))
	})

	r.Component("/request/accept/{id}", handlers.WrapComponentWithLogging("request accept", h.HandleAcceptButton))
	r.Component("/request/cancel/{id}", handlers.WrapComponentWithLogging("request cancel", h.HandleCancelButton))
	r.Component("/request/thread/{id}", handlers.WrapComponentWithLogging("request thread", h.HandleThreadButton))
}

func (h *Handler) command(name string, next handler.CommandHandler) handler.CommandHandler {
	return handlers.Guarded(name, h.directory, next)
}

func actorOf(u discord.User) crafting.Actor {
	return crafting.Actor{ID: u.ID.String(), Name: u.Username}
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.CommandTimeout)
}

func (h *Handler) HandleRequest(e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()

	params := crafting.CreateParams{
		Item:         data.String("item"),
		HasMaterials: data.Bool("has_materials"),
	}
	if amount, ok := data.OptInt("amount"); ok {
		params.Amount = amount
	}
	if skill, ok := data.OptString("skill"); ok {
		params.Skill = utils.Ptr(models.TradeSkill(skill))
	}
	if level, ok := data.OptInt("level_required"); ok {
		params.LevelRequired = utils.Ptr(level)
	}

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Create(ctx, actorOf(e.User()), params)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}

	msg := discord.MessageCreate{
		Embeds:     []discord.Embed{requestEmbed(*view)},
		Components: []discord.ContainerComponent{requestButtons(*view, false)},
	}
	if roleID, ok := h.skillRole(e, view); ok {
		msg.Content = fmt.Sprintf("<@&%s> a new request needs your skill.", roleID)
		msg.AllowedMentions = &discord.AllowedMentions{Roles: []snowflake.ID{roleID}}
	}

	if err := e.CreateMessage(msg); err != nil {
		return err
	}

	h.expireButtons(e.Client().Rest(), e.ApplicationID(), e.Token(), view.ID)
	return nil
}

// skillRole finds the guild role named after the request's trade skill.
func (h *Handler) skillRole(e *handler.CommandEvent, view *crafting.RequestView) (snowflake.ID, bool) {
	if !h.cfg.MentionSkillRoles || view.TradeSkill == nil || e.GuildID() == nil {
		return 0, false
	}
	id, ok, err := h.directory.RoleByName(handlers.RESTLookup{Rest: e.Client().Rest()}, *e.GuildID(), strings.ToLower(string(*view.TradeSkill)))
	if err != nil {
		slog.Warn("Failed to resolve skill role",
			slog.String("type", "cmd"),
			slog.String("skill", string(*view.TradeSkill)),
			slog.Any("error", err),
		)
		return 0, false
	}
	return id, ok
}

// expireButtons disables the announcement's buttons once the configured
// timeout has passed.
func (h *Handler) expireButtons(client rest.Rest, applicationID snowflake.ID, token string, requestID int64) {
	time.AfterFunc(h.cfg.ButtonTimeoutDuration(), func() {
		_, err := client.UpdateInteractionResponse(applicationID, token, discord.MessageUpdate{
			Components: &[]discord.ContainerComponent{disabledButtons(requestID)},
		})
		if err != nil {
			slog.Debug("Failed to disable request buttons",
				slog.String("type", "cmd"),
				slog.Int64("request_id", requestID),
				slog.Any("error", err),
			)
		}
	})
}

func (h *Handler) HandleStatus(e *handler.CommandEvent) error {
	id := int64(e.SlashCommandInteractionData().Int("request_id"))

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Get(ctx, id)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{requestEmbed(*view)},
		Flags:  discord.MessageFlagEphemeral,
	})
}

func (h *Handler) HandleList(e *handler.CommandEvent) error {
	var filter *models.RequestStatus
	if s, ok := e.SlashCommandInteractionData().OptString("status"); ok {
		filter = utils.Ptr(models.RequestStatus(s))
	}

	ctx, cancel := commandContext()
	defer cancel()

	views, err := h.service.List(ctx, filter)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}
	if len(views) == 0 {
		return utils.EH.CreateInfoEmbed(e, "No crafting requests found.")
	}

	title := "Crafting Requests"
	if filter != nil {
		title = fmt.Sprintf("%s Crafting Requests", crafting.StatusTitle(*filter))
	}

	size := h.cfg.ListPageSize
	pages := pageCount(len(views), size)
	return h.paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start, end := pageBounds(page, size, len(views))
			embed.
				SetTitle(title).
				SetDescription(listPageDescription(views[start:end])).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • %d requests", page+1, pages, len(views)), "")
		},
		Pages:      pages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

func (h *Handler) HandleAccept(e *handler.CommandEvent) error {
	id := int64(e.SlashCommandInteractionData().Int("request_id"))

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Accept(ctx, actorOf(e.User()), id)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}

	return e.CreateMessage(discord.MessageCreate{
		Content:         acceptedNotice(*view),
		Embeds:          []discord.Embed{requestEmbed(*view)},
		AllowedMentions: mentionUsers(view.RequestorID),
	})
}

func (h *Handler) HandleCancel(e *handler.CommandEvent) error {
	id := int64(e.SlashCommandInteractionData().Int("request_id"))

	ctx, cancel := commandContext()
	defer cancel()

	view, err := h.service.Cancel(ctx, actorOf(e.User()), id)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Crafting request #%d for **%s** has been cancelled.", view.ID, view.ItemName), false)
}

func (h *Handler) HandleComplete(e *handler.CommandEvent) error {
	id := int64(e.SlashCommandInteractionData().Int("request_id"))

	ctx, cancel := commandContext()
	defer cancel()

	done, err := h.service.Complete(ctx, actorOf(e.User()), id)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}

	return e.CreateMessage(discord.MessageCreate{
		Content:         completedNotice(*done),
		Embeds:          []discord.Embed{requestEmbed(done.Request)},
		AllowedMentions: mentionUsers(done.Request.RequestorID),
	})
}

func (h *Handler) HandleSetSkill(e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()
	skill := models.TradeSkill(data.String("skill"))
	level := data.Int("level")

	ctx, cancel := commandContext()
	defer cancel()

	if err := h.service.SetSkill(ctx, actorOf(e.User()), skill, level); err != nil {
		return utils.EH.CommandError(e, err)
	}
	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Your %s level is now %d.", skill, level), true)
}

func (h *Handler) HandleCrafters(e *handler.CommandEvent) error {
	ctx, cancel := commandContext()
	defer cancel()

	crafters, err := h.service.ListCrafters(ctx)
	if err != nil {
		return utils.EH.CommandError(e, err)
	}
	if len(crafters) == 0 {
		return utils.EH.CreateInfoEmbed(e, "No crafters have recorded their skills yet.")
	}

	size := h.cfg.ListPageSize
	pages := pageCount(len(crafters), size)
	return h.paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			start, end := pageBounds(page, size, len(crafters))
			embed.
				SetTitle("Crafters").
				SetDescription(crafterPageDescription(crafters[start:end])).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • %d crafters", page+1, pages, len(crafters)), "")
		},
		Pages:      pages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

// mentionUsers allows pings for the given members only.
func mentionUsers(ids ...string) *discord.AllowedMentions {
	users := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		if sf, err := snowflake.Parse(id); err == nil {
			users = append(users, sf)
		}
	}
	return &discord.AllowedMentions{Users: users}
}

func acceptedNotice(v crafting.RequestView) string {
	acceptor := ""
	if v.AcceptedBy != nil {
		acceptor = utils.UserMention(*v.AcceptedBy)
	}
	return fmt.Sprintf("%s, your crafting request #%d for **%s** has been accepted by %s.",
		utils.UserMention(v.RequestorID), v.ID, v.ItemName, acceptor)
}

func completedNotice(c crafting.Completion) string {
	v := c.Request
	acceptor := ""
	if v.AcceptedBy != nil {
		acceptor = utils.UserMention(*v.AcceptedBy)
	}
	return fmt.Sprintf("%s, your crafting request #%d for **%s** has been completed by %s. They have now completed %s requests.",
		utils.UserMention(v.RequestorID), v.ID, v.ItemName, acceptor, utils.FormatNumber(c.CompletedCount))
}
