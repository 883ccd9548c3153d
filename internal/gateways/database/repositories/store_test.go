package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"github.com/sergawain/gawain/internal/gateways/database/repositories"
	"github.com/sergawain/gawain/internal/gateways/database/sqlitetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) crafting.Repository {
	t.Helper()
	return repositories.NewStore(sqlitetest.Open(t))
}

func insertRequest(t *testing.T, repo crafting.Repository, requestor string, status models.RequestStatus) *models.CraftingRequest {
	t.Helper()
	req := &models.CraftingRequest{
		RequestorID:   requestor,
		RequestorName: "name-" + requestor,
		ItemName:      "Sword",
		Amount:        1,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, repo.InsertRequest(context.Background(), req))
	require.NotZero(t, req.ID)
	return req
}

func TestEnsureAccount(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	account, created, err := repo.EnsureAccount(ctx, "100", "Alice")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "Alice", account.DisplayName)
	require.Zero(t, account.CompletedCount)

	again, created, err := repo.EnsureAccount(ctx, "100", "Renamed")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "Alice", again.DisplayName)
}

func TestIncrementCompleted(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	_, err := repo.IncrementCompleted(ctx, "missing")
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)

	_, _, err = repo.EnsureAccount(ctx, "200", "Bob")
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.IncrementCompleted(ctx, "200")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	account, err := repo.GetAccount(ctx, "200")
	require.NoError(t, err)
	require.Equal(t, int64(3), account.CompletedCount)
}

func TestGetRequestNotFound(t *testing.T) {
	_, err := newStore(t).GetRequest(context.Background(), 42)
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)
	require.True(t, repositories.IsNotFound(err))
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	req := insertRequest(t, repo, "1", models.StatusPending)

	acceptor := "2"
	accept := models.StatusTransition{
		From:         []models.RequestStatus{models.StatusPending},
		To:           models.StatusAccepted,
		AcceptedBy:   &acceptor,
		RequestorNot: acceptor,
	}

	ok, err := repo.UpdateStatus(ctx, req.ID, accept)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, req.ID, accept)
	require.NoError(t, err)
	require.False(t, ok, "second transition from PENDING must not match")

	got, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.AcceptedBy)
	require.Equal(t, "2", *got.AcceptedBy)
	require.Nil(t, got.CompletedOn)
}

func TestInterleavedAcceptsOnlyOneMatches(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	req := insertRequest(t, repo, "1", models.StatusPending)

	// both handlers read PENDING before either writes
	first, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	second, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, first.Status)
	require.Equal(t, models.StatusPending, second.Status)

	accept := func(acceptor string) bool {
		ok, err := repo.UpdateStatus(ctx, req.ID, models.StatusTransition{
			From:         []models.RequestStatus{models.StatusPending},
			To:           models.StatusAccepted,
			AcceptedBy:   &acceptor,
			RequestorNot: acceptor,
		})
		require.NoError(t, err)
		return ok
	}
	require.True(t, accept("2"))
	require.False(t, accept("3"))

	got, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, "2", *got.AcceptedBy)
}

func TestDeleteAccountInsideTx(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	err := repo.RunInTx(ctx, func(ctx context.Context, tx crafting.Repository) error {
		if _, _, err := tx.EnsureAccount(ctx, "7", "Gwen"); err != nil {
			return err
		}
		insertRequest(t, tx, "7", models.StatusPending)
		return tx.DeleteAccount(ctx, "7")
	})
	require.ErrorIs(t, err, crafting.ErrAccountReferenced)

	// the whole transaction rolled back
	_, err = repo.GetAccount(ctx, "7")
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)

	_, _, err = repo.EnsureAccount(ctx, "7", "Gwen")
	require.NoError(t, err)
	err = repo.RunInTx(ctx, func(ctx context.Context, tx crafting.Repository) error {
		return tx.DeleteAccount(ctx, "7")
	})
	require.NoError(t, err)
	_, err = repo.GetAccount(ctx, "7")
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)
}

func TestUpdateStatusActorGuards(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	self := insertRequest(t, repo, "1", models.StatusPending)
	requestor := "1"
	ok, err := repo.UpdateStatus(ctx, self.ID, models.StatusTransition{
		From:         []models.RequestStatus{models.StatusPending},
		To:           models.StatusAccepted,
		AcceptedBy:   &requestor,
		RequestorNot: requestor,
	})
	require.NoError(t, err)
	require.False(t, ok)

	req := insertRequest(t, repo, "1", models.StatusPending)
	acceptor := "2"
	ok, err = repo.UpdateStatus(ctx, req.ID, models.StatusTransition{
		From:       []models.RequestStatus{models.StatusPending},
		To:         models.StatusAccepted,
		AcceptedBy: &acceptor,
	})
	require.NoError(t, err)
	require.True(t, ok)

	now := time.Now()
	complete := models.StatusTransition{
		From:         []models.RequestStatus{models.StatusAccepted},
		To:           models.StatusCompleted,
		CompletedOn:  &now,
		AcceptedByIs: "3",
	}
	ok, err = repo.UpdateStatus(ctx, req.ID, complete)
	require.NoError(t, err)
	require.False(t, ok, "only the acceptor may complete")

	complete.AcceptedByIs = "2"
	ok, err = repo.UpdateStatus(ctx, req.ID, complete)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedOn)
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	first := insertRequest(t, repo, "1", models.StatusPending)
	second := insertRequest(t, repo, "2", models.StatusCancelled)
	third := insertRequest(t, repo, "3", models.StatusPending)

	all, err := repo.ListRequests(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []int64{first.ID, second.ID, third.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	pending := models.StatusPending
	open, err := repo.ListRequests(ctx, &pending)
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, r := range open {
		require.Equal(t, models.StatusPending, r.Status)
	}
}

func TestDeleteRequest(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	req := insertRequest(t, repo, "1", models.StatusCompleted)

	ok, err := repo.DeleteRequest(ctx, req.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.DeleteRequest(ctx, req.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	require.ErrorIs(t, repo.DeleteAccount(ctx, "nobody"), crafting.ErrRecordNotFound)

	_, _, err := repo.EnsureAccount(ctx, "1", "Alice")
	require.NoError(t, err)
	open := insertRequest(t, repo, "1", models.StatusPending)

	err = repo.DeleteAccount(ctx, "1")
	require.ErrorIs(t, err, crafting.ErrAccountReferenced)

	acceptor := "2"
	_, _, err = repo.EnsureAccount(ctx, acceptor, "Bob")
	require.NoError(t, err)
	ok, err := repo.UpdateStatus(ctx, open.ID, models.StatusTransition{
		From:       []models.RequestStatus{models.StatusPending},
		To:         models.StatusAccepted,
		AcceptedBy: &acceptor,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.ErrorIs(t, repo.DeleteAccount(ctx, acceptor), crafting.ErrAccountReferenced)

	ok, err = repo.UpdateStatus(ctx, open.ID, models.StatusTransition{
		From: []models.RequestStatus{models.StatusPending, models.StatusAccepted},
		To:   models.StatusCancelled,
	})
	require.NoError(t, err)
	require.True(t, ok)

	// terminal references may dangle
	require.NoError(t, repo.DeleteAccount(ctx, "1"))
	require.NoError(t, repo.DeleteAccount(ctx, acceptor))

	_, err = repo.GetAccount(ctx, "1")
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)
}

func TestSkillUpsertAndRoster(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	upsert := func(account, name string, skill models.TradeSkill, level int) {
		now := time.Now()
		require.NoError(t, repo.UpsertSkill(ctx, &models.SkillRecord{
			AccountID:   account,
			DisplayName: name,
			SkillName:   skill,
			Level:       level,
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}

	upsert("1", "Alice", models.SkillArcana, 100)
	upsert("2", "Bob", models.SkillCooking, 50)
	upsert("1", "Alice", models.SkillArmoring, 10)
	upsert("1", "Alice", models.SkillArcana, 200)

	records, err := repo.ListSkills(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, models.SkillArcana, records[0].SkillName)
	require.Equal(t, 200, records[0].Level)
	require.Equal(t, "2", records[1].AccountID)
	require.Equal(t, models.SkillArmoring, records[2].SkillName)
}

var errAbort = errors.New("abort")

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)

	err := repo.RunInTx(ctx, func(ctx context.Context, tx crafting.Repository) error {
		if _, _, err := tx.EnsureAccount(ctx, "1", "Alice"); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = repo.GetAccount(ctx, "1")
	require.ErrorIs(t, err, crafting.ErrRecordNotFound)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx crafting.Repository) error {
		_, _, err := tx.EnsureAccount(ctx, "1", "Alice")
		return err
	})
	require.NoError(t, err)

	_, err = repo.GetAccount(ctx, "1")
	require.NoError(t, err)
}
