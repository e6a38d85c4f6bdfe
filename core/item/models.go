package item

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gradahq/grada/core"
)

// Item types
const (
	TypeClass    = "class"
	TypeActivity = "activity"
	TypeAdmin    = "admin"
)

// Item statuses
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Completion outcomes
const (
	OutcomeGoalAchieved  = "goal_achieved"
	OutcomeNotAchieved   = "not_achieved"
	OutcomePendingResult = "pending_result"
)

// Experience ratings
const (
	ExperienceBetterThanExpected = "better_than_expected"
	ExperienceAsExpected         = "as_expected"
	ExperienceNotAsPlanned       = "not_as_planned"
)

var (
	AllTypes       = []string{TypeClass, TypeActivity, TypeAdmin}
	AllStatuses    = []string{StatusActive, StatusPending, StatusCompleted}
	AllOutcomes    = []string{OutcomeGoalAchieved, OutcomeNotAchieved, OutcomePendingResult}
	AllExperiences = []string{ExperienceBetterThanExpected, ExperienceAsExpected, ExperienceNotAsPlanned}

	// GoalTemplates are the quick goal suggestions offered when creating an item.
	GoalTemplates = []string{
		"Complete and submit by deadline",
		"Score > 90%",
		"Deep learn concepts",
		"Revise for deep understanding",
		"Practice until proficient",
		"Custom goal",
	}

	// SubItemGoalTemplates are the quick goal suggestions for sub-items.
	SubItemGoalTemplates = []string{
		"Complete and submit by deadline",
		"Score > 90%",
		"Deep learn concepts",
		"Revise for deep understanding",
		"Research thoroughly",
		"Draft and refine",
		"Custom goal",
	}
)

type Item struct {
	ID              string     `json:"id"`
	UserID          string     `json:"-"`
	Title           string     `json:"title"`
	Goal            string     `json:"goal"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	CourseName      string     `json:"course_name,omitempty"`
	IsMajorProject  bool       `json:"is_major_project"`
	ParentProjectID string     `json:"parent_project_id,omitempty"`
	OrderIndex      int        `json:"order_index"`
	Notes           string     `json:"notes,omitempty"`

	CompletionOutcome      string     `json:"completion_outcome,omitempty"`
	CompletionDate         *time.Time `json:"completion_date,omitempty"`
	ExperienceRating       string     `json:"experience_rating,omitempty"`
	ReflectionText         string     `json:"reflection_text,omitempty"`
	WhatWentWrong          string     `json:"what_went_wrong,omitempty"`
	WhatWouldDoDifferently string     `json:"what_would_do_differently,omitempty"`
	LongReflection         string     `json:"long_reflection,omitempty"`

	CreatedAt time.Time `json:"created_date"` // UTC
	UpdatedAt time.Time `json:"updated_date"` // UTC
}

func (it *Item) IsSubItem() bool   { return it.ParentProjectID != "" }
func (it *Item) IsCompleted() bool { return it.Status == StatusCompleted }

// DaysUntilDeadline counts whole days from now to the deadline;
// negative when overdue, ok=false when no deadline is set.
func (it *Item) DaysUntilDeadline(now time.Time) (days int, ok bool) {
	if it.Deadline == nil {
		return 0, false
	}
	return int(it.Deadline.Sub(now).Hours() / 24), true
}

// NewItem contains information needed to create a new Item.
// A goal is required except for admin items.
type NewItem struct {
	Title          string     `json:"title" validate:"required"`
	Goal           string     `json:"goal"`
	Type           string     `json:"type" validate:"required,itemtype"`
	Deadline       *time.Time `json:"deadline"`
	CourseName     string     `json:"course_name"`
	IsMajorProject bool       `json:"is_major_project"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	ni.Goal = core.CleanString(ni.Goal)
	ni.CourseName = core.CleanString(ni.CourseName)
	return validate.Struct(ni)
}

// NewSubItem contains information needed to create a sub-item of a major
// project. Both title and goal are always required.
type NewSubItem struct {
	Title    string     `json:"title" validate:"required"`
	Goal     string     `json:"goal" validate:"required"`
	Deadline *time.Time `json:"deadline"`
}

func (ns *NewSubItem) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.Goal = core.CleanString(ns.Goal)
	return validate.Struct(ns)
}

// UpdateItem defines what may be changed on an existing Item outside the
// completion flow. Nil pointer fields are left untouched.
type UpdateItem struct {
	Title      *string    `json:"title" validate:"omitempty,notblank"`
	Goal       *string    `json:"goal"`
	Deadline   *time.Time `json:"deadline"`
	CourseName *string    `json:"course_name"`
	Notes      *string    `json:"notes"`
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	if ui.Title != nil {
		title := core.CleanString(*ui.Title)
		ui.Title = &title
	}
	return validate.Struct(ui)
}

type QueryFilter struct {
	Status          string `query:"status"`
	Outcome         string `query:"outcome"`
	ParentProjectID string `query:"parent_project_id"`
	TopLevelOnly    bool   `query:"top_level_only"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.Outcome == "" && qf.ParentProjectID == "" && !qf.TopLevelOnly
}
