package item

import (
	"math"
	"time"
)

type (
	// SummaryEntry is a completed item as shown on the summary page.
	// The long reflection is private to its author's detail view; the
	// summary only says whether one exists.
	SummaryEntry struct {
		ID                     string     `json:"id"`
		Title                  string     `json:"title"`
		Goal                   string     `json:"goal"`
		Type                   string     `json:"type"`
		CourseName             string     `json:"course_name,omitempty"`
		CompletionOutcome      string     `json:"completion_outcome"`
		CompletionDate         *time.Time `json:"completion_date"`
		ExperienceRating       string     `json:"experience_rating,omitempty"`
		ReflectionText         string     `json:"reflection_text,omitempty"`
		WhatWentWrong          string     `json:"what_went_wrong,omitempty"`
		WhatWouldDoDifferently string     `json:"what_would_do_differently,omitempty"`
		HasLongReflection      bool       `json:"has_long_reflection"`
	}

	SummaryStats struct {
		CompletedCount   int            `json:"completed_count"`
		AchievedCount    int            `json:"achieved_count"`
		NotAchievedCount int            `json:"not_achieved_count"`
		SuccessRate      int            `json:"success_rate"` // percentage, rounded
		ExperienceStats  map[string]int `json:"experience_stats"`
	}

	Summary struct {
		Entries []SummaryEntry `json:"entries"`
		Stats   SummaryStats   `json:"stats"`
	}
)

// Summarize builds the summary page payload from completed items,
// preserving input order. The experience histogram only counts achieved
// goals since failed ones never get a rating.
func Summarize(completed []Item) Summary {
	s := Summary{
		Entries: make([]SummaryEntry, 0, len(completed)),
		Stats:   SummaryStats{ExperienceStats: map[string]int{}},
	}
	for _, it := range completed {
		s.Stats.CompletedCount++
		switch it.CompletionOutcome {
		case OutcomeGoalAchieved:
			s.Stats.AchievedCount++
			if it.ExperienceRating != "" {
				s.Stats.ExperienceStats[it.ExperienceRating]++
			}
		case OutcomeNotAchieved:
			s.Stats.NotAchievedCount++
		}
		s.Entries = append(s.Entries, SummaryEntry{
			ID:                     it.ID,
			Title:                  it.Title,
			Goal:                   it.Goal,
			Type:                   it.Type,
			CourseName:             it.CourseName,
			CompletionOutcome:      it.CompletionOutcome,
			CompletionDate:         it.CompletionDate,
			ExperienceRating:       it.ExperienceRating,
			ReflectionText:         it.ReflectionText,
			WhatWentWrong:          it.WhatWentWrong,
			WhatWouldDoDifferently: it.WhatWouldDoDifferently,
			HasLongReflection:      it.LongReflection != "",
		})
	}
	if s.Stats.CompletedCount > 0 {
		s.Stats.SuccessRate = int(math.Round(float64(s.Stats.AchievedCount) / float64(s.Stats.CompletedCount) * 100))
	}
	return s
}
