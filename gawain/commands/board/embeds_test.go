package board

import (
	"strings"
	"testing"
	"time"

	"github.com/sergawain/gawain/gawain/utils"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/stretchr/testify/require"
)

func TestButtonStates(t *testing.T) {
	tests := []struct {
		status                 models.RequestStatus
		accept, cancel, thread bool
	}{
		{models.StatusPending, true, true, true},
		{models.StatusAccepted, false, true, true},
		{models.StatusCompleted, false, false, false},
		{models.StatusCancelled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			accept, cancel, thread := buttonStates(crafting.RequestView{ID: 1, Status: tt.status})
			require.Equal(t, tt.accept, accept)
			require.Equal(t, tt.cancel, cancel)
			require.Equal(t, tt.thread, thread)
		})
	}
}

func TestRequestEmbedFields(t *testing.T) {
	acceptor := "222"
	completed := time.Unix(1700000000, 0)
	v := crafting.RequestView{
		ID:            7,
		RequestorID:   "111",
		RequestorName: "alice",
		ItemName:      "Iron Sword",
		HasMaterials:  true,
		Amount:        2,
		TradeSkill:    utils.Ptr(models.SkillWeaponsmithing),
		LevelRequired: utils.Ptr(150),
		Status:        models.StatusCompleted,
		AcceptedBy:    &acceptor,
		CompletedOn:   &completed,
		CreatedAt:     completed.Add(-time.Hour),
	}

	embed := requestEmbed(v)
	require.Equal(t, "Crafting Request #7", embed.Title)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	require.Equal(t, "<@111>", fields["Requestor"])
	require.Equal(t, "Yes", fields["Has Materials"])
	require.Equal(t, "Weaponsmithing", fields["Trade Skill"])
	require.Equal(t, "150", fields["Level Required"])
	require.Equal(t, "Completed", fields["Status"])
	require.Equal(t, "<@222>", fields["Accepted By"])
	require.Equal(t, "<t:1700000000:f>", fields["Completed"])
}

func TestRequestEmbedDefaults(t *testing.T) {
	embed := requestEmbed(crafting.RequestView{ID: 1, RequestorID: "1", ItemName: "Bread", Amount: 1, Status: models.StatusPending})

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	require.Equal(t, "No", fields["Has Materials"])
	require.Equal(t, "None", fields["Trade Skill"])
	require.Equal(t, "None", fields["Level Required"])
	require.NotContains(t, fields, "Accepted By")
}

func TestRequestLine(t *testing.T) {
	require.Equal(t, "#3 Bread", requestLine(crafting.RequestView{ID: 3, ItemName: "Bread", Amount: 1}))
	require.Equal(t, "#4 Ring x5 (Jewelcrafting 100)", requestLine(crafting.RequestView{
		ID:            4,
		ItemName:      "Ring",
		Amount:        5,
		TradeSkill:    utils.Ptr(models.SkillJewelcrafting),
		LevelRequired: utils.Ptr(100),
	}))
}

func TestPaging(t *testing.T) {
	require.Equal(t, 0, pageCount(0, 10))
	require.Equal(t, 1, pageCount(10, 10))
	require.Equal(t, 2, pageCount(11, 10))

	start, end := pageBounds(1, 10, 15)
	require.Equal(t, 10, start)
	require.Equal(t, 15, end)

	start, end = pageBounds(3, 10, 15)
	require.Equal(t, 15, start)
	require.Equal(t, 15, end)
}

func TestNotices(t *testing.T) {
	acceptor := "222"
	v := crafting.RequestView{ID: 9, RequestorID: "111", ItemName: "Bread", AcceptedBy: &acceptor}

	require.Equal(t, "<@111>, your crafting request #9 for **Bread** has been accepted by <@222>.", acceptedNotice(v))

	msg := completedNotice(crafting.Completion{Request: v, CompletedCount: 1200})
	require.True(t, strings.HasPrefix(msg, "<@111>, your crafting request #9"))
	require.Contains(t, msg, "1,200 requests")
}

func TestMentionUsersSkipsInvalidIDs(t *testing.T) {
	m := mentionUsers("123456789012345678", "legacy-name")
	require.Len(t, m.Users, 1)
	require.Equal(t, "123456789012345678", m.Users[0].String())
}
