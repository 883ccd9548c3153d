package crafting_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/domain/crafting/mock"
	"github.com/sergawain/gawain/internal/gateways/database/models"
	"go.uber.org/mock/gomock"
)

var (
	alice = crafting.Actor{ID: "1", Name: "Alice"}
	bob   = crafting.Actor{ID: "2", Name: "Bob"}
)

// repoMock returns a mock whose RunInTx runs fn against the mock itself.
func repoMock(t *testing.T) *mock.MockRepository {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().
		RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, crafting.Repository) error) error {
			return fn(ctx, repo)
		}).
		AnyTimes()
	return repo
}

func pendingRequest(id int64) *models.CraftingRequest {
	return &models.CraftingRequest{
		ID:            id,
		RequestorID:   alice.ID,
		RequestorName: alice.Name,
		ItemName:      "Sword",
		Amount:        1,
		Status:        models.StatusPending,
	}
}

func acceptedRequest(id int64, by string) *models.CraftingRequest {
	req := pendingRequest(id)
	req.Status = models.StatusAccepted
	req.AcceptedBy = &by
	return req
}

func ptr[T any](v T) *T {
	return &v
}

func Test_service_Create_validation(t *testing.T) {
	tests := []struct {
		name   string
		params crafting.CreateParams
	}{
		{name: "level above range", params: crafting.CreateParams{Item: "Sword", LevelRequired: ptr(251)}},
		{name: "level below range", params: crafting.CreateParams{Item: "Sword", LevelRequired: ptr(-1)}},
		{name: "negative amount", params: crafting.CreateParams{Item: "Sword", Amount: -3}},
		{name: "blank item", params: crafting.CreateParams{Item: "   "}},
		{name: "unknown skill", params: crafting.CreateParams{Item: "Sword", Skill: ptr(models.TradeSkill("Fishing"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no expectations: any store call fails the test
			s := crafting.NewService(mock.NewMockRepository(gomock.NewController(t)))
			_, err := s.Create(context.Background(), alice, tt.params)
			if !errors.Is(err, crafting.ErrInvalidArgument) {
				t.Errorf("service.Create() error = %v, want InvalidArgument", err)
			}
		})
	}
}

func Test_service_Create_defaultsAmount(t *testing.T) {
	repo := repoMock(t)
	repo.EXPECT().EnsureAccount(gomock.Any(), alice.ID, alice.Name).Return(&models.Account{ID: alice.ID}, true, nil)
	repo.EXPECT().
		InsertRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.CraftingRequest) error {
			if req.Amount != 1 {
				t.Errorf("amount = %d, want 1", req.Amount)
			}
			if req.Status != models.StatusPending {
				t.Errorf("status = %s, want PENDING", req.Status)
			}
			req.ID = 7
			return nil
		})

	got, err := crafting.NewService(repo).Create(context.Background(), alice, crafting.CreateParams{Item: " Sword "})
	if err != nil {
		t.Fatalf("service.Create() error = %v", err)
	}
	if got.ID != 7 || got.ItemName != "Sword" {
		t.Errorf("service.Create() got = %+v", got)
	}
	if got.SkillText() != "None" || got.MaterialsText() != "No" || got.StatusText() != "Pending" {
		t.Errorf("unexpected projection: %s %s %s", got.SkillText(), got.MaterialsText(), got.StatusText())
	}
}

func Test_service_Accept(t *testing.T) {
	tests := []struct {
		name    string
		actor   crafting.Actor
		setup   func(repo *mock.MockRepository)
		wantErr error
		wantMsg string
	}{
		{
			name:  "Success",
			actor: bob,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(pendingRequest(1), nil)
				repo.EXPECT().EnsureAccount(gomock.Any(), bob.ID, bob.Name).Return(&models.Account{ID: bob.ID}, true, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any()).Return(true, nil)
			},
		},
		{
			name:  "Unknown request",
			actor: bob,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(nil, crafting.ErrRecordNotFound)
			},
			wantErr: crafting.ErrNotFound,
		},
		{
			name:  "Not pending",
			actor: bob,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(acceptedRequest(1, "3"), nil)
			},
			wantErr: crafting.ErrConflict,
			wantMsg: "Crafting request 1 is not available. It may have already been accepted or cancelled.",
		},
		{
			name:  "Own request",
			actor: alice,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(pendingRequest(1), nil)
			},
			wantErr: crafting.ErrInvalidArgument,
			wantMsg: "You cannot accept your own crafting request.",
		},
		{
			name:  "Lost race",
			actor: bob,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(pendingRequest(1), nil)
				repo.EXPECT().EnsureAccount(gomock.Any(), bob.ID, bob.Name).Return(&models.Account{ID: bob.ID}, false, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any()).Return(false, nil)
			},
			wantErr: crafting.ErrConflict,
			wantMsg: "Crafting request 1 was already accepted or cancelled.",
		},
		{
			name:  "Store down",
			actor: bob,
			setup: func(repo *mock.MockRepository) {
				repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(nil, errors.New("dial tcp: connection refused"))
			},
			wantErr: crafting.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoMock(t)
			tt.setup(repo)

			got, err := crafting.NewService(repo).Accept(context.Background(), tt.actor, 1)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("service.Accept() error = %v", err)
				}
				if got.Status != models.StatusAccepted || got.AcceptedBy == nil || *got.AcceptedBy != tt.actor.ID {
					t.Errorf("service.Accept() got = %+v", got)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("service.Accept() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && crafting.UserMessage(err) != tt.wantMsg {
				t.Errorf("message = %q, want %q", crafting.UserMessage(err), tt.wantMsg)
			}
		})
	}
}

func Test_service_Cancel_permissionFirst(t *testing.T) {
	statuses := []models.RequestStatus{
		models.StatusPending,
		models.StatusAccepted,
		models.StatusCompleted,
		models.StatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			req := acceptedRequest(1, "3")
			req.Status = status

			repo := repoMock(t)
			repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(req, nil)

			_, err := crafting.NewService(repo).Cancel(context.Background(), bob, 1)
			if !errors.Is(err, crafting.ErrPermissionDenied) {
				t.Errorf("service.Cancel() error = %v, want PermissionDenied", err)
			}
		})
	}
}

func Test_service_Cancel_keepsAcceptor(t *testing.T) {
	repo := repoMock(t)
	repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(acceptedRequest(1, bob.ID), nil)
	repo.EXPECT().
		UpdateStatus(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, tr models.StatusTransition) (bool, error) {
			if tr.AcceptedBy != nil {
				t.Errorf("cancel must not touch accepted_by")
			}
			if len(tr.From) != 2 {
				t.Errorf("cancel from = %v, want PENDING and ACCEPTED", tr.From)
			}
			return true, nil
		})

	got, err := crafting.NewService(repo).Cancel(context.Background(), alice, 1)
	if err != nil {
		t.Fatalf("service.Cancel() error = %v", err)
	}
	if got.Status != models.StatusCancelled || got.AcceptedBy == nil || *got.AcceptedBy != bob.ID {
		t.Errorf("service.Cancel() got = %+v", got)
	}
}

func Test_service_Complete_counterFailure(t *testing.T) {
	repo := repoMock(t)
	repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(acceptedRequest(1, bob.ID), nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), int64(1), gomock.Any()).Return(true, nil)
	repo.EXPECT().EnsureAccount(gomock.Any(), bob.ID, bob.Name).Return(&models.Account{ID: bob.ID}, false, nil)
	repo.EXPECT().IncrementCompleted(gomock.Any(), bob.ID).Return(int64(0), errors.New("connection reset"))

	_, err := crafting.NewService(repo).Complete(context.Background(), bob, 1)
	if !errors.Is(err, crafting.ErrStoreUnavailable) {
		t.Errorf("service.Complete() error = %v, want StoreUnavailable", err)
	}
}

func Test_service_Complete_wrongActor(t *testing.T) {
	repo := repoMock(t)
	repo.EXPECT().GetRequest(gomock.Any(), int64(1)).Return(acceptedRequest(1, bob.ID), nil)

	_, err := crafting.NewService(repo).Complete(context.Background(), alice, 1)
	if !errors.Is(err, crafting.ErrPermissionDenied) {
		t.Errorf("service.Complete() error = %v, want PermissionDenied", err)
	}
}

func Test_service_SetSkill_rejectsOutOfRange(t *testing.T) {
	s := crafting.NewService(mock.NewMockRepository(gomock.NewController(t)))
	for _, level := range []int{-1, 251} {
		if err := s.SetSkill(context.Background(), alice, models.SkillArcana, level); !errors.Is(err, crafting.ErrInvalidArgument) {
			t.Errorf("service.SetSkill(%d) error = %v, want InvalidArgument", level, err)
		}
	}
}

func Test_service_ListCrafters(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().ListSkills(gomock.Any()).Return([]*models.SkillRecord{
		{AccountID: "1", DisplayName: "Alice", SkillName: models.SkillArcana, Level: 200},
		{AccountID: "2", DisplayName: "Bob", SkillName: models.SkillCooking, Level: 15},
		{AccountID: "1", DisplayName: "Alice", SkillName: models.SkillArmoring, Level: 40},
	}, nil)

	got, err := crafting.NewService(repo).ListCrafters(context.Background())
	if err != nil {
		t.Fatalf("service.ListCrafters() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("service.ListCrafters() got %d crafters, want 2", len(got))
	}
	if got[0].DisplayName != "Alice" || got[0].SkillsText() != "Arcana: 200, Armoring: 40" {
		t.Errorf("first crafter = %+v", got[0])
	}
	if got[1].SkillsText() != "Cooking: 15" {
		t.Errorf("second crafter = %+v", got[1])
	}
}

func Test_service_ListCrafters_empty(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().ListSkills(gomock.Any()).Return(nil, nil)

	got, err := crafting.NewService(repo).ListCrafters(context.Background())
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("service.ListCrafters() = %v, %v; want empty roster", got, err)
	}
}

func Test_service_DeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "Success"},
		{name: "Missing", repoErr: crafting.ErrRecordNotFound, wantErr: crafting.ErrNotFound},
		{name: "Referenced", repoErr: crafting.ErrAccountReferenced, wantErr: crafting.ErrConflict},
		{name: "Store down", repoErr: errors.New("timeout"), wantErr: crafting.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoMock(t)
			repo.EXPECT().DeleteAccount(gomock.Any(), "9").Return(tt.repoErr)

			err := crafting.NewService(repo).DeleteAccount(context.Background(), "9")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("service.DeleteAccount() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("service.DeleteAccount() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_service_RequestsCompleted(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().GetAccount(gomock.Any(), "2").Return(&models.Account{ID: "2", CompletedCount: 4}, nil)
	repo.EXPECT().GetAccount(gomock.Any(), "9").Return(nil, crafting.ErrRecordNotFound)
	repo.EXPECT().GetAccount(gomock.Any(), "5").Return(nil, errors.New("timeout"))
	svc := crafting.NewService(repo)

	if got, err := svc.RequestsCompleted(context.Background(), "2"); err != nil || got != 4 {
		t.Errorf("service.RequestsCompleted(registered) = %d, %v; want 4", got, err)
	}
	if got, err := svc.RequestsCompleted(context.Background(), "9"); err != nil || got != 0 {
		t.Errorf("service.RequestsCompleted(unregistered) = %d, %v; want 0", got, err)
	}
	if _, err := svc.RequestsCompleted(context.Background(), "5"); !errors.Is(err, crafting.ErrStoreUnavailable) {
		t.Errorf("service.RequestsCompleted(store down) error = %v; want StoreUnavailable", err)
	}
}

func Test_service_Delete_missing(t *testing.T) {
	repo := mock.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().DeleteRequest(gomock.Any(), int64(5)).Return(false, nil)

	err := crafting.NewService(repo).Delete(context.Background(), 5)
	if !errors.Is(err, crafting.ErrNotFound) {
		t.Errorf("service.Delete() error = %v, want NotFound", err)
	}
}
