package item

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
)

var (
	// errors
	ErrNotFound         = errors.New("item not found")
	ErrNotMajorProject  = errors.New("sub-items can only be added to a major project")
	ErrAlreadyCompleted = errors.New("item is already completed")
)

type (
	Repository interface {
		CreateItem(ctx context.Context, it Item) (Item, error)
		GetItem(ctx context.Context, id, userID string) (Item, error)
		// QueryItems applies AND operation on available QueryFilter fields.
		QueryItems(ctx context.Context, userID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Item, error)
		UpdateItem(ctx context.Context, it Item) (Item, error)
		CountSiblings(ctx context.Context, userID, parentID string) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, userID string, ni NewItem) (Item, error)
		CreateSub(ctx context.Context, userID, parentID string, ns NewSubItem) (Item, error)
		GetByID(ctx context.Context, id, userID string) (Item, error)
		Query(ctx context.Context, userID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Item, error)
		QuerySubItems(ctx context.Context, userID, parentID string) ([]Item, error)
		Update(ctx context.Context, id, userID string, ui UpdateItem) (Item, error)
		Complete(ctx context.Context, id, userID string, ci CompleteItem) (Item, error)
		Dashboard(ctx context.Context, userID string) (Dashboard, error)
		Summary(ctx context.Context, userID string) (Summary, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, userID string, ni NewItem) (Item, error) {
	now := time.Now().UTC()
	it := Item{
		UserID:         userID,
		Title:          ni.Title,
		Goal:           ni.Goal,
		Type:           ni.Type,
		Status:         StatusActive,
		Deadline:       ni.Deadline,
		CourseName:     ni.CourseName,
		IsMajorProject: ni.IsMajorProject,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateItem(ctx, it)
}

// CreateSub appends a sub-item to a major project; its order index is the
// current sibling count so siblings keep their creation order.
func (svc *service) CreateSub(ctx context.Context, userID, parentID string, ns NewSubItem) (Item, error) {
	parent, err := svc.repo.GetItem(ctx, parentID, userID)
	if err != nil {
		return Item{}, err
	}
	if !parent.IsMajorProject {
		return Item{}, core.NewValidationError(ErrNotMajorProject)
	}

	siblings, err := svc.repo.CountSiblings(ctx, userID, parent.ID)
	if err != nil {
		return Item{}, err
	}

	now := time.Now().UTC()
	it := Item{
		UserID:          userID,
		Title:           ns.Title,
		Goal:            ns.Goal,
		Type:            TypeClass,
		Status:          StatusActive,
		Deadline:        ns.Deadline,
		CourseName:      parent.CourseName,
		ParentProjectID: parent.ID,
		OrderIndex:      siblings,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateItem(ctx, it)
}

func (svc *service) GetByID(ctx context.Context, id, userID string) (Item, error) {
	return svc.repo.GetItem(ctx, id, userID)
}

func (svc *service) Query(ctx context.Context, userID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Item, error) {
	return svc.repo.QueryItems(ctx, userID, filter, ordering...)
}

func (svc *service) QuerySubItems(ctx context.Context, userID, parentID string) ([]Item, error) {
	return svc.repo.QueryItems(
		ctx, userID,
		QueryFilter{ParentProjectID: parentID},
		core.DBOrdering{Field: "order_index", Ascending: true},
	)
}

func (svc *service) Update(ctx context.Context, id, userID string, ui UpdateItem) (Item, error) {
	it, err := svc.repo.GetItem(ctx, id, userID)
	if err != nil {
		return Item{}, err
	}

	if ui.Title != nil {
		it.Title = *ui.Title
	}
	if ui.Goal != nil {
		goal := core.CleanString(*ui.Goal)
		if GoalRequired(it.Type) && goal == "" {
			return Item{}, core.NewValidationError(nil,
				core.FieldError{Field: "goal", Error: goalRequiredText})
		}
		it.Goal = goal
	}
	if ui.Deadline != nil {
		it.Deadline = ui.Deadline
	}
	if ui.CourseName != nil {
		it.CourseName = core.CleanString(*ui.CourseName)
	}
	if ui.Notes != nil {
		it.Notes = *ui.Notes
	}
	it.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateItem(ctx, it)
}

// Complete replays the submitted payload through the completion state
// machine; only a walk that reaches the done state persists anything.
func (svc *service) Complete(ctx context.Context, id, userID string, ci CompleteItem) (Item, error) {
	it, err := svc.repo.GetItem(ctx, id, userID)
	if err != nil {
		return Item{}, err
	}
	if it.IsCompleted() {
		return Item{}, core.NewValidationError(ErrAlreadyCompleted)
	}

	flow := NewCompletionFlow()
	if err := flow.ChooseOutcome(ci.CompletionOutcome); err != nil {
		return Item{}, core.NewValidationError(err,
			core.FieldError{Field: "completion_outcome", Error: ErrInvalidOutcome.Error()})
	}

	switch ci.CompletionOutcome {
	case OutcomeGoalAchieved:
		if err := flow.RateExperience(ci.ExperienceRating); err != nil {
			return Item{}, core.NewValidationError(err,
				core.FieldError{Field: "experience_rating", Error: ErrInvalidExperience.Error()})
		}
		if err := flow.SubmitSuccessReflection(ci.ReflectionText); err != nil {
			return Item{}, core.NewValidationError(err,
				core.FieldError{Field: "reflection_text", Error: "a reflection is required"})
		}
	case OutcomeNotAchieved:
		if err := flow.SubmitFailureReflection(ci.WhatWentWrong, ci.WhatWouldDoDifferently, ci.LongReflection); err != nil {
			field := "what_went_wrong"
			if strings.TrimSpace(ci.WhatWentWrong) != "" {
				field = "what_would_do_differently"
			}
			return Item{}, core.NewValidationError(err,
				core.FieldError{Field: field, Error: "this field is required"})
		}
	}

	it, err = flow.Apply(it, time.Now())
	if err != nil {
		return Item{}, err
	}
	return svc.repo.UpdateItem(ctx, it)
}

func (svc *service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	items, err := svc.repo.QueryItems(
		ctx, userID,
		QueryFilter{},
		core.DBOrdering{Field: "created_date", Ascending: false},
	)
	if err != nil {
		return Dashboard{}, err
	}
	return Partition(items), nil
}

func (svc *service) Summary(ctx context.Context, userID string) (Summary, error) {
	completed, err := svc.repo.QueryItems(
		ctx, userID,
		QueryFilter{Status: StatusCompleted},
		core.DBOrdering{Field: "completion_date", Ascending: false},
	)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(completed), nil
}
