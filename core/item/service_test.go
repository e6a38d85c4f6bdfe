package item

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
)

// fakeRepository is a map-backed Repository for service tests.
type fakeRepository struct {
	seq   int
	items map[string]Item
	order []string
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: make(map[string]Item)}
}

func (r *fakeRepository) CreateItem(_ context.Context, it Item) (Item, error) {
	r.seq++
	it.ID = fmt.Sprintf("item-%03d", r.seq)
	r.items[it.ID] = it
	r.order = append(r.order, it.ID)
	return it, nil
}

func (r *fakeRepository) GetItem(_ context.Context, id, userID string) (Item, error) {
	if it, ok := r.items[id]; ok && it.UserID == userID {
		return it, nil
	}
	return Item{}, ErrNotFound
}

func (r *fakeRepository) QueryItems(_ context.Context, userID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Item, error) {
	var out []Item
	for _, id := range r.order {
		it := r.items[id]
		if it.UserID != userID {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.Outcome != "" && it.CompletionOutcome != filter.Outcome {
			continue
		}
		if filter.ParentProjectID != "" && it.ParentProjectID != filter.ParentProjectID {
			continue
		}
		if filter.TopLevelOnly && it.IsSubItem() {
			continue
		}
		out = append(out, it)
	}
	if len(ordering) > 0 && ordering[0].Field == "order_index" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	}
	return out, nil
}

func (r *fakeRepository) UpdateItem(_ context.Context, it Item) (Item, error) {
	old, ok := r.items[it.ID]
	if !ok || old.UserID != it.UserID {
		return Item{}, ErrNotFound
	}
	r.items[it.ID] = it
	return it, nil
}

func (r *fakeRepository) CountSiblings(_ context.Context, userID, parentID string) (int, error) {
	n := 0
	for _, it := range r.items {
		if it.UserID == userID && it.ParentProjectID == parentID {
			n++
		}
	}
	return n, nil
}

func newTestValidator() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()
	validate := newTestValidator()
	svc := NewService(newFakeRepository())

	tests := []struct {
		name    string
		ni      NewItem
		wantErr bool
	}{
		{name: "class item", ni: NewItem{Title: "CS101 Final", Goal: "Score > 90%", Type: TypeClass, CourseName: "CS101"}},
		{name: "activity item", ni: NewItem{Title: "Debate prep", Goal: "Practice until proficient", Type: TypeActivity}},
		{name: "admin item without goal", ni: NewItem{Title: "Renew student ID", Type: TypeAdmin}},
		{name: "class item without goal", ni: NewItem{Title: "CS101 Final", Type: TypeClass}, wantErr: true},
		{name: "whitespace goal", ni: NewItem{Title: "CS101 Final", Goal: "   ", Type: TypeClass}, wantErr: true},
		{name: "unknown type", ni: NewItem{Title: "CS101 Final", Goal: "pass", Type: "chore"}, wantErr: true},
		{name: "missing title", ni: NewItem{Goal: "pass", Type: TypeClass}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ni.Validate(validate)
			if tt.wantErr {
				if err == nil {
					t.Error("Validate() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate(): %v", err)
			}

			it, err := svc.Create(ctx, "usr-1", tt.ni)
			if err != nil {
				t.Fatalf("Create(): %v", err)
			}
			if it.ID == "" || it.Status != StatusActive {
				t.Errorf("item = %+v; want active item with ID", it)
			}
		})
	}
}

func Test_service_CreateSub(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo)

	project, err := svc.Create(ctx, "usr-1", NewItem{
		Title: "Thesis", Goal: "Deep learn concepts", Type: TypeClass,
		CourseName: "CS499", IsMajorProject: true,
	})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	regular, err := svc.Create(ctx, "usr-1", NewItem{Title: "Homework 3", Goal: "submit", Type: TypeClass})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	t.Run("regular item rejects sub-items", func(t *testing.T) {
		_, err := svc.CreateSub(ctx, "usr-1", regular.ID, NewSubItem{Title: "part 1", Goal: "done"})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("err = %v; want ValidationError", err)
		}
	})

	t.Run("unknown parent", func(t *testing.T) {
		if _, err := svc.CreateSub(ctx, "usr-1", "nope", NewSubItem{Title: "part 1", Goal: "done"}); errors.Cause(err) != ErrNotFound {
			t.Errorf("err = %v; want %v", err, ErrNotFound)
		}
	})

	t.Run("sub-items keep creation order", func(t *testing.T) {
		for i, title := range []string{"Research", "Draft", "Revise"} {
			sub, err := svc.CreateSub(ctx, "usr-1", project.ID, NewSubItem{Title: title, Goal: "done"})
			if err != nil {
				t.Fatalf("CreateSub(): %v", err)
			}
			if sub.OrderIndex != i {
				t.Errorf("orderIndex = %d; want %d", sub.OrderIndex, i)
			}
			if sub.CourseName != project.CourseName {
				t.Errorf("courseName = %q; want inherited %q", sub.CourseName, project.CourseName)
			}
			if sub.ParentProjectID != project.ID {
				t.Errorf("parentProjectID = %q; want %q", sub.ParentProjectID, project.ID)
			}
		}

		subs, err := svc.QuerySubItems(ctx, "usr-1", project.ID)
		if err != nil {
			t.Fatalf("QuerySubItems(): %v", err)
		}
		if len(subs) != 3 {
			t.Fatalf("len(subs) = %d; want 3", len(subs))
		}
		for i, title := range []string{"Research", "Draft", "Revise"} {
			if subs[i].Title != title {
				t.Errorf("subs[%d].Title = %q; want %q", i, subs[i].Title, title)
			}
		}
	})
}

func Test_service_Complete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo)

	newActive := func(t *testing.T) Item {
		it, err := svc.Create(ctx, "usr-1", NewItem{Title: "CS101 Final", Goal: "pass", Type: TypeClass})
		if err != nil {
			t.Fatalf("Create(): %v", err)
		}
		return it
	}

	t.Run("goal achieved", func(t *testing.T) {
		it := newActive(t)
		done, err := svc.Complete(ctx, it.ID, "usr-1", CompleteItem{
			CompletionOutcome: OutcomeGoalAchieved,
			ExperienceRating:  ExperienceBetterThanExpected,
			ReflectionText:    "all those flashcards paid off",
		})
		if err != nil {
			t.Fatalf("Complete(): %v", err)
		}
		if done.Status != StatusCompleted || done.CompletionDate == nil {
			t.Errorf("item = %+v; want completed with date", done)
		}
		if done.ExperienceRating != ExperienceBetterThanExpected {
			t.Errorf("rating = %q", done.ExperienceRating)
		}
	})

	t.Run("pending result", func(t *testing.T) {
		it := newActive(t)
		done, err := svc.Complete(ctx, it.ID, "usr-1", CompleteItem{CompletionOutcome: OutcomePendingResult})
		if err != nil {
			t.Fatalf("Complete(): %v", err)
		}
		if done.Status != StatusPending {
			t.Errorf("status = %q; want %q", done.Status, StatusPending)
		}
	})

	t.Run("already completed", func(t *testing.T) {
		it := newActive(t)
		if _, err := svc.Complete(ctx, it.ID, "usr-1", CompleteItem{
			CompletionOutcome: OutcomeGoalAchieved,
			ExperienceRating:  ExperienceAsExpected,
			ReflectionText:    "done",
		}); err != nil {
			t.Fatalf("Complete(): %v", err)
		}
		_, err := svc.Complete(ctx, it.ID, "usr-1", CompleteItem{CompletionOutcome: OutcomePendingResult})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("err = %v; want ValidationError", err)
		}
	})

	t.Run("failure reflection field errors", func(t *testing.T) {
		tests := []struct {
			name      string
			ci        CompleteItem
			wantField string
		}{
			{
				name:      "missing what went wrong",
				ci:        CompleteItem{CompletionOutcome: OutcomeNotAchieved, WhatWouldDoDifferently: "start earlier"},
				wantField: "what_went_wrong",
			},
			{
				name:      "missing what would do differently",
				ci:        CompleteItem{CompletionOutcome: OutcomeNotAchieved, WhatWentWrong: "procrastinated"},
				wantField: "what_would_do_differently",
			},
			{
				name:      "missing reflection text",
				ci:        CompleteItem{CompletionOutcome: OutcomeGoalAchieved, ExperienceRating: ExperienceAsExpected},
				wantField: "reflection_text",
			},
			{
				name:      "invalid outcome",
				ci:        CompleteItem{CompletionOutcome: "maybe"},
				wantField: "completion_outcome",
			},
			{
				name:      "invalid rating",
				ci:        CompleteItem{CompletionOutcome: OutcomeGoalAchieved, ExperienceRating: "meh"},
				wantField: "experience_rating",
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				it := newActive(t)
				_, err := svc.Complete(ctx, it.ID, "usr-1", tt.ci)
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("err = %v; want ValidationError", err)
				}
				if len(vErr.Fields) == 0 || vErr.Fields[0].Field != tt.wantField {
					t.Errorf("fields = %+v; want field %q", vErr.Fields, tt.wantField)
				}

				// a failed walk persists nothing
				fresh, err := svc.GetByID(ctx, it.ID, "usr-1")
				if err != nil {
					t.Fatalf("GetByID(): %v", err)
				}
				if fresh.Status != StatusActive || fresh.CompletionOutcome != "" {
					t.Errorf("item mutated by failed completion: %+v", fresh)
				}
			})
		}
	})
}

func Test_service_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository())

	it, err := svc.Create(ctx, "usr-1", NewItem{Title: "CS101 Final", Goal: "pass", Type: TypeClass})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	t.Run("patches only set fields", func(t *testing.T) {
		title := "CS101 Final Exam"
		notes := "chapters 4-9"
		got, err := svc.Update(ctx, it.ID, "usr-1", UpdateItem{Title: &title, Notes: &notes})
		if err != nil {
			t.Fatalf("Update(): %v", err)
		}
		if got.Title != title || got.Notes != notes {
			t.Errorf("item = %+v", got)
		}
		if got.Goal != "pass" {
			t.Errorf("goal = %q; want untouched", got.Goal)
		}
	})

	t.Run("goal cannot be blanked", func(t *testing.T) {
		goal := "  "
		_, err := svc.Update(ctx, it.ID, "usr-1", UpdateItem{Goal: &goal})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("err = %v; want ValidationError", err)
		}
	})

	t.Run("other user's item", func(t *testing.T) {
		title := "hijack"
		if _, err := svc.Update(ctx, it.ID, "usr-2", UpdateItem{Title: &title}); errors.Cause(err) != ErrNotFound {
			t.Errorf("err = %v; want %v", err, ErrNotFound)
		}
	})
}

func Test_service_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository())

	dash, err := svc.Dashboard(ctx, "usr-1")
	if err != nil {
		t.Fatalf("Dashboard(): %v", err)
	}
	if !dash.IsEmpty {
		t.Error("IsEmpty = false; want true")
	}

	regular, _ := svc.Create(ctx, "usr-1", NewItem{Title: "Homework", Goal: "submit", Type: TypeClass})
	project, _ := svc.Create(ctx, "usr-1", NewItem{Title: "Thesis", Goal: "finish", Type: TypeClass, IsMajorProject: true})
	if _, err := svc.CreateSub(ctx, "usr-1", project.ID, NewSubItem{Title: "outline", Goal: "done"}); err != nil {
		t.Fatalf("CreateSub(): %v", err)
	}
	pending, _ := svc.Create(ctx, "usr-1", NewItem{Title: "Midterm", Goal: "pass", Type: TypeClass})
	if _, err := svc.Complete(ctx, pending.ID, "usr-1", CompleteItem{CompletionOutcome: OutcomePendingResult}); err != nil {
		t.Fatalf("Complete(): %v", err)
	}

	dash, err = svc.Dashboard(ctx, "usr-1")
	if err != nil {
		t.Fatalf("Dashboard(): %v", err)
	}
	if dash.IsEmpty {
		t.Error("IsEmpty = true; want false")
	}
	if len(dash.RegularItems) != 1 || dash.RegularItems[0].ID != regular.ID {
		t.Errorf("RegularItems = %+v", dash.RegularItems)
	}
	if len(dash.MajorProjects) != 1 || dash.MajorProjects[0].ID != project.ID {
		t.Errorf("MajorProjects = %+v", dash.MajorProjects)
	}
	if len(dash.PendingItems) != 1 || dash.PendingItems[0].ID != pending.ID {
		t.Errorf("PendingItems = %+v", dash.PendingItems)
	}
}

func Test_service_Summary(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository())

	first, _ := svc.Create(ctx, "usr-1", NewItem{Title: "Midterm", Goal: "pass", Type: TypeClass})
	second, _ := svc.Create(ctx, "usr-1", NewItem{Title: "Essay", Goal: "submit", Type: TypeClass})
	if _, err := svc.Complete(ctx, first.ID, "usr-1", CompleteItem{
		CompletionOutcome: OutcomeGoalAchieved,
		ExperienceRating:  ExperienceAsExpected,
		ReflectionText:    "went fine",
	}); err != nil {
		t.Fatalf("Complete(): %v", err)
	}
	if _, err := svc.Complete(ctx, second.ID, "usr-1", CompleteItem{
		CompletionOutcome:      OutcomeNotAchieved,
		WhatWentWrong:          "underestimated the workload",
		WhatWouldDoDifferently: "start earlier",
		LongReflection:         "details for my eyes only",
	}); err != nil {
		t.Fatalf("Complete(): %v", err)
	}

	sum, err := svc.Summary(ctx, "usr-1")
	if err != nil {
		t.Fatalf("Summary(): %v", err)
	}
	if sum.Stats.CompletedCount != 2 || sum.Stats.AchievedCount != 1 || sum.Stats.SuccessRate != 50 {
		t.Errorf("stats = %+v", sum.Stats)
	}
	if sum.Stats.ExperienceStats[ExperienceAsExpected] != 1 {
		t.Errorf("experienceStats = %v", sum.Stats.ExperienceStats)
	}
	for _, entry := range sum.Entries {
		if entry.ID == second.ID && !entry.HasLongReflection {
			t.Error("HasLongReflection = false; want true")
		}
	}
}
