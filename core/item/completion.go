package item

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Completion flow states.
const (
	StateInitial           CompletionState = "initial"
	StateExperience        CompletionState = "experience"
	StateReflectionSuccess CompletionState = "reflection_success"
	StateReflectionFailure CompletionState = "reflection_failure"
	StateDone              CompletionState = "done"
	StateCancelled         CompletionState = "cancelled"
)

var (
	ErrFlowTransition     = errors.New("completion: transition not allowed")
	ErrInvalidOutcome     = errors.New("completion: invalid outcome")
	ErrInvalidExperience  = errors.New("completion: invalid experience rating")
	ErrReflectionRequired = errors.New("completion: a reflection is required")
	ErrFlowNotDone        = errors.New("completion: flow not finished")

	// completionTransitions lists, per state, the states the flow may move
	// to. Cancel is modelled here too: every non-terminal state may move
	// to cancelled.
	completionTransitions = map[CompletionState][]CompletionState{
		StateInitial:           {StateExperience, StateReflectionFailure, StateDone, StateCancelled},
		StateExperience:        {StateReflectionSuccess, StateCancelled},
		StateReflectionSuccess: {StateDone, StateCancelled},
		StateReflectionFailure: {StateDone, StateCancelled},
		StateDone:              nil,
		StateCancelled:         nil,
	}
)

type (
	CompletionState string

	// CompletionFlow walks an item through the mark-as-complete wizard.
	// It accumulates the reflection answers; nothing touches the item
	// until the flow is done and Apply is called.
	CompletionFlow struct {
		state                  CompletionState
		outcome                string
		experienceRating       string
		reflectionText         string
		whatWentWrong          string
		whatWouldDoDifferently string
		longReflection         string
	}
)

func NewCompletionFlow() *CompletionFlow {
	return &CompletionFlow{state: StateInitial}
}

func (f *CompletionFlow) State() CompletionState { return f.state }

func (f *CompletionFlow) canMove(to CompletionState) bool {
	for _, next := range completionTransitions[f.state] {
		if next == to {
			return true
		}
	}
	return false
}

func (f *CompletionFlow) move(to CompletionState) error {
	if !f.canMove(to) {
		return errors.Wrapf(ErrFlowTransition, "%q -> %q", f.state, to)
	}
	f.state = to
	return nil
}

// ChooseOutcome answers the "did you achieve your goal?" question.
// goal_achieved moves on to the experience rating, not_achieved to the
// failure reflection, and pending_result finishes the flow immediately.
func (f *CompletionFlow) ChooseOutcome(outcome string) error {
	var to CompletionState
	switch outcome {
	case OutcomeGoalAchieved:
		to = StateExperience
	case OutcomeNotAchieved:
		to = StateReflectionFailure
	case OutcomePendingResult:
		to = StateDone
	default:
		return errors.Wrapf(ErrInvalidOutcome, "%q", outcome)
	}
	if err := f.move(to); err != nil {
		return err
	}
	f.outcome = outcome
	return nil
}

func (f *CompletionFlow) RateExperience(rating string) error {
	sorted := make([]string, len(AllExperiences))
	copy(sorted, AllExperiences)
	sort.Strings(sorted)
	if idx := sort.SearchStrings(sorted, rating); idx >= len(sorted) || sorted[idx] != rating {
		return errors.Wrapf(ErrInvalidExperience, "%q", rating)
	}
	if err := f.move(StateReflectionSuccess); err != nil {
		return err
	}
	f.experienceRating = rating
	return nil
}

// SubmitSuccessReflection finishes a goal_achieved flow; the reflection
// text must be non-empty after trimming.
func (f *CompletionFlow) SubmitSuccessReflection(text string) error {
	if !f.canMove(StateDone) || f.state != StateReflectionSuccess {
		return errors.Wrapf(ErrFlowTransition, "%q -> %q", f.state, StateDone)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.Wrap(ErrReflectionRequired, "reflection_text")
	}
	f.state = StateDone
	f.reflectionText = text
	return nil
}

// SubmitFailureReflection finishes a not_achieved flow; both answers are
// required, the long reflection is optional.
func (f *CompletionFlow) SubmitFailureReflection(wentWrong, wouldDoDifferently, longReflection string) error {
	if !f.canMove(StateDone) || f.state != StateReflectionFailure {
		return errors.Wrapf(ErrFlowTransition, "%q -> %q", f.state, StateDone)
	}
	wentWrong = strings.TrimSpace(wentWrong)
	wouldDoDifferently = strings.TrimSpace(wouldDoDifferently)
	if wentWrong == "" {
		return errors.Wrap(ErrReflectionRequired, "what_went_wrong")
	}
	if wouldDoDifferently == "" {
		return errors.Wrap(ErrReflectionRequired, "what_would_do_differently")
	}
	f.state = StateDone
	f.whatWentWrong = wentWrong
	f.whatWouldDoDifferently = wouldDoDifferently
	f.longReflection = strings.TrimSpace(longReflection)
	return nil
}

// Cancel abandons the flow; allowed from any non-terminal state.
func (f *CompletionFlow) Cancel() error {
	return f.move(StateCancelled)
}

// Apply writes the accumulated answers onto the item. Only a finished
// flow applies; a pending_result outcome leaves the item pending rather
// than completed.
func (f *CompletionFlow) Apply(it Item, now time.Time) (Item, error) {
	if f.state != StateDone {
		return Item{}, errors.Wrapf(ErrFlowNotDone, "in state %q", f.state)
	}

	completedAt := now.UTC()
	it.CompletionOutcome = f.outcome
	it.CompletionDate = &completedAt
	it.UpdatedAt = completedAt

	switch f.outcome {
	case OutcomePendingResult:
		it.Status = StatusPending
	case OutcomeGoalAchieved:
		it.Status = StatusCompleted
		it.ExperienceRating = f.experienceRating
		it.ReflectionText = f.reflectionText
	case OutcomeNotAchieved:
		it.Status = StatusCompleted
		it.WhatWentWrong = f.whatWentWrong
		it.WhatWouldDoDifferently = f.whatWouldDoDifferently
		it.LongReflection = f.longReflection
	}
	return it, nil
}

// CompleteItem is the wire form of a finished completion flow; the
// service replays it through a fresh CompletionFlow before persisting.
type CompleteItem struct {
	CompletionOutcome      string `json:"completion_outcome"`
	ExperienceRating       string `json:"experience_rating"`
	ReflectionText         string `json:"reflection_text"`
	WhatWentWrong          string `json:"what_went_wrong"`
	WhatWouldDoDifferently string `json:"what_would_do_differently"`
	LongReflection         string `json:"long_reflection"`
}
