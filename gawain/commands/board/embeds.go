package board

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
)

const (
	acceptPrefix = "/request/accept/"
	cancelPrefix = "/request/cancel/"
	threadPrefix = "/request/thread/"
)

func statusColor(s models.RequestStatus) int {
	switch s {
	case models.StatusPending:
		return config.PendingColor
	case models.StatusAccepted:
		return config.AcceptedColor
	case models.StatusCompleted:
		return config.CompletedColor
	case models.StatusCancelled:
		return config.CancelledColor
	}
	return config.EmbedDefaultColor
}

func requestEmbed(v crafting.RequestView) discord.Embed {
	eb := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("Crafting Request #%d", v.ID)).
		SetColor(statusColor(v.Status)).
		AddField("Requestor", utils.UserMention(v.RequestorID), true).
		AddField("Item", v.ItemName, true).
		AddField("Has Materials", v.MaterialsText(), true).
		AddField("Amount", fmt.Sprintf("%d", v.Amount), true).
		AddField("Trade Skill", v.SkillText(), true).
		AddField("Level Required", v.LevelText(), true).
		AddField("Status", v.StatusText(), true)

	if v.AcceptedBy != nil {
		eb.AddField("Accepted By", utils.UserMention(*v.AcceptedBy), true)
	}
	if v.CompletedOn != nil {
		eb.AddField("Completed", fmt.Sprintf("<t:%d:f>", v.CompletedOn.Unix()), true)
	}

	return eb.
		SetFooter(fmt.Sprintf("Requested by %s", v.RequestorName), "").
		SetTimestamp(v.CreatedAt).
		Build()
}

// buttonStates reports which announcement buttons can still succeed.
func buttonStates(v crafting.RequestView) (accept, cancel, thread bool) {
	open := !v.Status.Terminal()
	return v.Status == models.StatusPending, open, open
}

// requestButtons renders the announcement buttons; expired turns every
// button off once the announcement times out.
func requestButtons(v crafting.RequestView, expired bool) discord.ContainerComponent {
	accept, cancel, thread := buttonStates(v)
	return discord.NewActionRow(
		discord.NewSuccessButton("✅ Accept", fmt.Sprintf("%s%d", acceptPrefix, v.ID)).
			WithDisabled(expired || !accept),
		discord.NewDangerButton("❌ Cancel", fmt.Sprintf("%s%d", cancelPrefix, v.ID)).
			WithDisabled(expired || !cancel),
		discord.NewSecondaryButton("🧵 Thread", fmt.Sprintf("%s%d", threadPrefix, v.ID)).
			WithDisabled(expired || !thread),
	)
}

func disabledButtons(id int64) discord.ContainerComponent {
	return requestButtons(crafting.RequestView{ID: id}, true)
}

// requestLine is the one-line summary used by list pages and autocomplete.
func requestLine(v crafting.RequestView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", v.ID, v.ItemName)
	if v.Amount > 1 {
		fmt.Fprintf(&b, " x%d", v.Amount)
	}
	if v.TradeSkill != nil {
		fmt.Fprintf(&b, " (%s", v.SkillText())
		if v.LevelRequired != nil {
			fmt.Fprintf(&b, " %d", *v.LevelRequired)
		}
		b.WriteString(")")
	}
	return b.String()
}

func listPageDescription(views []crafting.RequestView) string {
	var b strings.Builder
	for _, v := range views {
		fmt.Fprintf(&b, "**%s** • %s • %s\n", requestLine(v), v.StatusText(), utils.UserMention(v.RequestorID))
	}
	return b.String()
}

func crafterPageDescription(crafters []crafting.CrafterView) string {
	var b strings.Builder
	for _, c := range crafters {
		fmt.Fprintf(&b, "**%s**: %s\n", c.DisplayName, c.SkillsText())
	}
	return b.String()
}

func pageCount(total, size int) int {
	if total == 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func pageBounds(page, size, total int) (int, int) {
	start := page * size
	if start > total {
		start = total
	}
	return start, min(start+size, total)
}
