package crafting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sergawain/gawain/internal/gateways/database/models"
)

type Service interface {
	Create(ctx context.Context, actor Actor, params CreateParams) (*RequestView, error)
	Accept(ctx context.Context, actor Actor, id int64) (*RequestView, error)
	Cancel(ctx context.Context, actor Actor, id int64) (*RequestView, error)
	Complete(ctx context.Context, actor Actor, id int64) (*Completion, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*RequestView, error)
	List(ctx context.Context, status *models.RequestStatus) ([]RequestView, error)
	SetSkill(ctx context.Context, actor Actor, skill models.TradeSkill, level int) error
	ListCrafters(ctx context.Context) ([]CrafterView, error)
	RequestsCompleted(ctx context.Context, accountID string) (int64, error)
	RegisterAccount(ctx context.Context, actor Actor) (*models.Account, bool, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

type service struct {
	repository Repository
	now        func() time.Time
}

func NewService(repository Repository) *service {
	return &service{
		repository: repository,
		now:        time.Now,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, params CreateParams) (view *RequestView, err error) {
	start := time.Now()
	defer func() { observe("create", start, err) }()

	params.Item = strings.TrimSpace(params.Item)
	if params.Skill != nil && *params.Skill == "" {
		params.Skill = nil
	}
	if err = validateCreate(params); err != nil {
		return nil, err
	}

	amount := params.Amount
	if amount == 0 {
		amount = 1
	}

	req := &models.CraftingRequest{
		RequestorID:   actor.ID,
		RequestorName: actor.Name,
		ItemName:      params.Item,
		HasMaterials:  params.HasMaterials,
		Amount:        amount,
		TradeSkill:    params.Skill,
		LevelRequired: params.LevelRequired,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}

	err = s.repository.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, _, err := repo.EnsureAccount(ctx, actor.ID, actor.Name); err != nil {
			return err
		}
		return repo.InsertRequest(ctx, req)
	})
	if err != nil {
		return nil, storeError("create", 0, err)
	}

	slog.Info("Crafting request created",
		slog.String("type", "eng"),
		slog.Int64("request_id", req.ID),
		slog.String("user_id", actor.ID),
		slog.String("item", req.ItemName),
	)

	v := newRequestView(req)
	return &v, nil
}

func (s *service) Accept(ctx context.Context, actor Actor, id int64) (view *RequestView, err error) {
	start := time.Now()
	defer func() { observe("accept", start, err) }()

	var accepted *models.CraftingRequest
	err = s.repository.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		req, err := repo.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			return conflict("accept", id, "Crafting request %d is not available. It may have already been accepted or cancelled.", id)
		}
		if req.RequestorID == actor.ID {
			return invalidArgument("accept", id, "You cannot accept your own crafting request.")
		}

		if _, _, err := repo.EnsureAccount(ctx, actor.ID, actor.Name); err != nil {
			return err
		}

		acceptor := actor.ID
		ok, err := repo.UpdateStatus(ctx, id, models.StatusTransition{
			From:         []models.RequestStatus{models.StatusPending},
			To:           models.StatusAccepted,
			AcceptedBy:   &acceptor,
			RequestorNot: actor.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			casLost.WithLabelValues("accept").Inc()
			return conflict("accept", id, "Crafting request %d was already accepted or cancelled.", id)
		}

		req.Status = models.StatusAccepted
		req.AcceptedBy = &acceptor
		accepted = req
		return nil
	})
	if err != nil {
		return nil, storeError("accept", id, err)
	}

	slog.Info("Crafting request accepted",
		slog.String("type", "eng"),
		slog.Int64("request_id", id),
		slog.String("user_id", actor.ID),
	)

	v := newRequestView(accepted)
	return &v, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id int64) (view *RequestView, err error) {
	start := time.Now()
	defer func() { observe("cancel", start, err) }()

	var cancelled *models.CraftingRequest
	err = s.repository.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		req, err := repo.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		if req.RequestorID != actor.ID {
			return permissionDenied("cancel", id, "You can only cancel your own crafting requests.")
		}
		if req.Status.Terminal() {
			return conflict("cancel", id, "Crafting request %d is already %s.", id, strings.ToLower(string(req.Status)))
		}

		ok, err := repo.UpdateStatus(ctx, id, models.StatusTransition{
			From: []models.RequestStatus{models.StatusPending, models.StatusAccepted},
			To:   models.StatusCancelled,
		})
		if err != nil {
			return err
		}
		if !ok {
			casLost.WithLabelValues("cancel").Inc()
			return conflict("cancel", id, "Crafting request %d was already completed or cancelled.", id)
		}

		req.Status = models.StatusCancelled
		cancelled = req
		return nil
	})
	if err != nil {
		return nil, storeError("cancel", id, err)
	}

	slog.Info("Crafting request cancelled",
		slog.String("type", "eng"),
		slog.Int64("request_id", id),
		slog.String("user_id", actor.ID),
	)

	v := newRequestView(cancelled)
	return &v, nil
}

func (s *service) Complete(ctx context.Context, actor Actor, id int64) (completion *Completion, err error) {
	start := time.Now()
	defer func() { observe("complete", start, err) }()

	var (
		completed *models.CraftingRequest
		count     int64
	)
	err = s.repository.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		req, err := repo.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		switch req.Status {
		case models.StatusAccepted:
		case models.StatusPending:
			return conflict("complete", id, "Crafting request %d has not been accepted yet.", id)
		default:
			return conflict("complete", id, "Crafting request %d not found or already completed.", id)
		}
		if req.AcceptedBy == nil || *req.AcceptedBy != actor.ID {
			return permissionDenied("complete", id, "You are not the one who accepted this job. Only the person who accepted the job can complete it.")
		}

		now := s.now()
		ok, err := repo.UpdateStatus(ctx, id, models.StatusTransition{
			From:         []models.RequestStatus{models.StatusAccepted},
			To:           models.StatusCompleted,
			CompletedOn:  &now,
			AcceptedByIs: actor.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			casLost.WithLabelValues("complete").Inc()
			return conflict("complete", id, "Crafting request %d was already completed or cancelled.", id)
		}

		// Rows imported from older databases may reference an acceptor that
		// was never registered.
		if _, _, err := repo.EnsureAccount(ctx, actor.ID, actor.Name); err != nil {
			return err
		}
		count, err = repo.IncrementCompleted(ctx, actor.ID)
		if err != nil {
			return err
		}

		req.Status = models.StatusCompleted
		req.CompletedOn = &now
		completed = req
		return nil
	})
	if err != nil {
		return nil, storeError("complete", id, err)
	}

	slog.Info("Crafting request completed",
		slog.String("type", "eng"),
		slog.Int64("request_id", id),
		slog.String("user_id", actor.ID),
		slog.Int64("completed_count", count),
	)

	return &Completion{Request: newRequestView(completed), CompletedCount: count}, nil
}

func (s *service) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { observe("delete", start, err) }()

	ok, err := s.repository.DeleteRequest(ctx, id)
	if err != nil {
		return storeError("delete", id, err)
	}
	if !ok {
		return notFound("delete", id)
	}

	slog.Info("Crafting request deleted",
		slog.String("type", "eng"),
		slog.Int64("request_id", id),
	)
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*RequestView, error) {
	req, err := s.repository.GetRequest(ctx, id)
	if err != nil {
		return nil, storeError("get", id, err)
	}
	v := newRequestView(req)
	return &v, nil
}

func (s *service) List(ctx context.Context, status *models.RequestStatus) ([]RequestView, error) {
	if status != nil && !status.Valid() {
		return nil, invalidArgument("list", 0, fmt.Sprintf("%s is not a request status.", *status))
	}

	reqs, err := s.repository.ListRequests(ctx, status)
	if err != nil {
		return nil, storeError("list", 0, err)
	}

	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, newRequestView(r))
	}
	return views, nil
}

func (s *service) SetSkill(ctx context.Context, actor Actor, skill models.TradeSkill, level int) (err error) {
	start := time.Now()
	defer func() { observe("set_skill", start, err) }()

	if !skill.Valid() {
		return invalidArgument("set_skill", 0, fmt.Sprintf("%s is not a known trade skill.", skill))
	}
	if !validLevel(level) {
		return invalidArgument("set_skill", 0, levelRangeMessage)
	}

	now := s.now()
	err = s.repository.UpsertSkill(ctx, &models.SkillRecord{
		AccountID:   actor.ID,
		DisplayName: actor.Name,
		SkillName:   skill,
		Level:       level,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return storeError("set_skill", 0, err)
	}
	return nil
}

func (s *service) ListCrafters(ctx context.Context) ([]CrafterView, error) {
	records, err := s.repository.ListSkills(ctx)
	if err != nil {
		return nil, storeError("list_crafters", 0, err)
	}
	return buildRoster(records), nil
}

// RequestsCompleted reports zero for members who never registered.
func (s *service) RequestsCompleted(ctx context.Context, accountID string) (int64, error) {
	account, err := s.repository.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return 0, nil
		}
		return 0, storeError("requests_completed", 0, err)
	}
	return account.CompletedCount, nil
}

func (s *service) RegisterAccount(ctx context.Context, actor Actor) (*models.Account, bool, error) {
	account, created, err := s.repository.EnsureAccount(ctx, actor.ID, actor.Name)
	if err != nil {
		return nil, false, storeError("register", 0, err)
	}
	if created {
		slog.Info("Account registered",
			slog.String("type", "eng"),
			slog.String("user_id", actor.ID),
		)
	}
	return account, created, nil
}

func (s *service) DeleteAccount(ctx context.Context, accountID string) (err error) {
	start := time.Now()
	defer func() { observe("delete_account", start, err) }()

	err = s.repository.RunInTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.DeleteAccount(ctx, accountID)
	})
	switch {
	case err == nil:
		slog.Info("Account deleted",
			slog.String("type", "eng"),
			slog.String("user_id", accountID),
		)
		return nil
	case errors.Is(err, ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Op: "delete_account", Message: "That member is not registered.", Err: err}
	case errors.Is(err, ErrAccountReferenced):
		return &Error{Kind: KindConflict, Op: "delete_account", Message: "That member still has pending or accepted crafting requests.", Err: err}
	}
	return storeError("delete_account", 0, err)
}
