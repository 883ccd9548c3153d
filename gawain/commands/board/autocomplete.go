package board

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"
	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
)

type requestSource []crafting.RequestView

func (s requestSource) String(i int) string { return requestLine(s[i]) }

func (s requestSource) Len() int { return len(s) }

// matchRequests keeps the requests whose status is in allowed and ranks them
// against query. An empty query returns the newest requests first.
func matchRequests(views []crafting.RequestView, allowed []models.RequestStatus, query string) []crafting.RequestView {
	candidates := make(requestSource, 0, len(views))
	for _, v := range views {
		if len(allowed) == 0 || containsStatus(allowed, v.Status) {
			candidates = append(candidates, v)
		}
	}

	query = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(query), "#"))
	if query == "" {
		out := make([]crafting.RequestView, 0, min(len(candidates), config.MaxChoices))
		for i := len(candidates) - 1; i >= 0 && len(out) < config.MaxChoices; i-- {
			out = append(out, candidates[i])
		}
		return out
	}

	matches := fuzzy.FindFrom(query, candidates)
	out := make([]crafting.RequestView, 0, min(len(matches), config.MaxChoices))
	for _, m := range matches {
		if len(out) == config.MaxChoices {
			break
		}
		out = append(out, candidates[m.Index])
	}
	return out
}

func containsStatus(list []models.RequestStatus, s models.RequestStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// focusedText returns what the member has typed so far. Integer options may
// arrive either as a JSON string or a bare number.
func focusedText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (h *Handler) requestAutocomplete(allowed ...models.RequestStatus) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "request_id" {
			return e.AutocompleteResult(nil)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.AutocompleteTimeout)
		defer cancel()

		views, err := h.service.List(ctx, nil)
		if err != nil {
			slog.Error("Failed to load requests for autocomplete",
				slog.String("type", "cmd"),
				slog.Any("error", err),
			)
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		matches := matchRequests(views, allowed, focusedText(focused.Value))
		choices := make([]discord.AutocompleteChoice, 0, len(matches))
		for _, v := range matches {
			choices = append(choices, discord.AutocompleteChoiceInt{
				Name:  utils.Truncate(requestLine(v), 100),
				Value: int(v.ID),
			})
		}
		return e.AutocompleteResult(choices)
	}
}
