package board

import (
	"fmt"
	"testing"

	"github.com/sergawain/gawain/gawain/config"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/stretchr/testify/require"
)

func sampleViews() []crafting.RequestView {
	return []crafting.RequestView{
		{ID: 1, ItemName: "Iron Sword", Amount: 1, Status: models.StatusPending},
		{ID: 2, ItemName: "Healing Potion", Amount: 3, Status: models.StatusAccepted},
		{ID: 3, ItemName: "Iron Shield", Amount: 1, Status: models.StatusCompleted},
		{ID: 4, ItemName: "Bread", Amount: 1, Status: models.StatusPending},
	}
}

func ids(views []crafting.RequestView) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestMatchRequestsEmptyQueryNewestFirst(t *testing.T) {
	got := matchRequests(sampleViews(), []models.RequestStatus{models.StatusPending}, "")
	require.Equal(t, []int64{4, 1}, ids(got))
}

func TestMatchRequestsFuzzy(t *testing.T) {
	got := matchRequests(sampleViews(), nil, "iron")
	require.ElementsMatch(t, []int64{1, 3}, ids(got))

	got = matchRequests(sampleViews(), []models.RequestStatus{models.StatusPending, models.StatusAccepted}, "iron")
	require.Equal(t, []int64{1}, ids(got))
}

func TestMatchRequestsByID(t *testing.T) {
	got := matchRequests(sampleViews(), nil, "#2")
	require.NotEmpty(t, got)
	require.Equal(t, int64(2), got[0].ID)
}

func TestMatchRequestsCapsChoices(t *testing.T) {
	views := make([]crafting.RequestView, 0, 40)
	for i := 1; i <= 40; i++ {
		views = append(views, crafting.RequestView{ID: int64(i), ItemName: fmt.Sprintf("Plank %d", i), Status: models.StatusPending})
	}
	require.Len(t, matchRequests(views, nil, ""), config.MaxChoices)
	require.Len(t, matchRequests(views, nil, "plank"), config.MaxChoices)
}

func TestFocusedText(t *testing.T) {
	require.Equal(t, "", focusedText(nil))
	require.Equal(t, "iron", focusedText([]byte(`"iron"`)))
	require.Equal(t, "12", focusedText([]byte(`12`)))
}
