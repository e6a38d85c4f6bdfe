package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
	"github.com/gradahq/grada/core/item"
)

type dbItem struct {
	ID                     string         `db:"id"`
	UserID                 string         `db:"user_id"`
	Title                  string         `db:"title"`
	Goal                   string         `db:"goal"`
	Type                   string         `db:"type"`
	Status                 string         `db:"status"`
	Deadline               *time.Time     `db:"deadline"`
	CourseName             string         `db:"course_name"`
	IsMajorProject         bool           `db:"is_major_project"`
	ParentProjectID        sql.NullString `db:"parent_project_id"`
	OrderIndex             int            `db:"order_index"`
	Notes                  string         `db:"notes"`
	CompletionOutcome      string         `db:"completion_outcome"`
	CompletionDate         *time.Time     `db:"completion_date"`
	ExperienceRating       string         `db:"experience_rating"`
	ReflectionText         string         `db:"reflection_text"`
	WhatWentWrong          string         `db:"what_went_wrong"`
	WhatWouldDoDifferently string         `db:"what_would_do_differently"`
	LongReflection         string         `db:"long_reflection"`
	CreatedAt              time.Time      `db:"created_date"`
	UpdatedAt              time.Time      `db:"updated_date"`
}

func (it dbItem) toCore() item.Item {
	return item.Item{
		ID:                     it.ID,
		UserID:                 it.UserID,
		Title:                  it.Title,
		Goal:                   it.Goal,
		Type:                   it.Type,
		Status:                 it.Status,
		Deadline:               it.Deadline,
		CourseName:             it.CourseName,
		IsMajorProject:         it.IsMajorProject,
		ParentProjectID:        it.ParentProjectID.String,
		OrderIndex:             it.OrderIndex,
		Notes:                  it.Notes,
		CompletionOutcome:      it.CompletionOutcome,
		CompletionDate:         it.CompletionDate,
		ExperienceRating:       it.ExperienceRating,
		ReflectionText:         it.ReflectionText,
		WhatWentWrong:          it.WhatWentWrong,
		WhatWouldDoDifferently: it.WhatWouldDoDifferently,
		LongReflection:         it.LongReflection,
		CreatedAt:              it.CreatedAt,
		UpdatedAt:              it.UpdatedAt,
	}
}

func fromCoreItem(it item.Item) dbItem {
	return dbItem{
		ID:                     it.ID,
		UserID:                 it.UserID,
		Title:                  it.Title,
		Goal:                   it.Goal,
		Type:                   it.Type,
		Status:                 it.Status,
		Deadline:               it.Deadline,
		CourseName:             it.CourseName,
		IsMajorProject:         it.IsMajorProject,
		ParentProjectID:        sql.NullString{String: it.ParentProjectID, Valid: it.ParentProjectID != ""},
		OrderIndex:             it.OrderIndex,
		Notes:                  it.Notes,
		CompletionOutcome:      it.CompletionOutcome,
		CompletionDate:         it.CompletionDate,
		ExperienceRating:       it.ExperienceRating,
		ReflectionText:         it.ReflectionText,
		WhatWentWrong:          it.WhatWentWrong,
		WhatWouldDoDifferently: it.WhatWouldDoDifferently,
		LongReflection:         it.LongReflection,
		CreatedAt:              it.CreatedAt,
		UpdatedAt:              it.UpdatedAt,
	}
}

type itemRepository struct {
	db *sqlx.DB
}

var _ item.Repository = (*itemRepository)(nil) // interface compliance check

func NewItemRepository(db *sqlx.DB) *itemRepository {
	return &itemRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to item.ErrNotFound
func (repo itemRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return item.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo itemRepository) CreateItem(ctx context.Context, it item.Item) (item.Item, error) {
	it.ID = uuid.New().String()
	row := fromCoreItem(it)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO item (id, user_id, title, goal, type, status, deadline, course_name,
		                  is_major_project, parent_project_id, order_index, notes,
		                  completion_outcome, completion_date, experience_rating,
		                  reflection_text, what_went_wrong, what_would_do_differently,
		                  long_reflection, created_date, updated_date)
		VALUES (:id, :user_id, :title, :goal, :type, :status, :deadline, :course_name,
		        :is_major_project, :parent_project_id, :order_index, :notes,
		        :completion_outcome, :completion_date, :experience_rating,
		        :reflection_text, :what_went_wrong, :what_would_do_differently,
		        :long_reflection, :created_date, :updated_date)`,
		row,
	)
	if err != nil {
		return item.Item{}, errors.Wrap(err, "inserting item")
	}
	return it, nil
}

func (repo itemRepository) GetItem(ctx context.Context, id, userID string) (item.Item, error) {
	var row dbItem
	err := repo.db.GetContext(ctx, &row, "SELECT * FROM item WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return item.Item{}, repo.trapNoRowsErr(err, "getting item")
	}
	return row.toCore(), nil
}

func (repo itemRepository) QueryItems(ctx context.Context, userID string, filter item.QueryFilter, ordering ...core.DBOrdering) ([]item.Item, error) {
	args := []interface{}{userID}
	clauses := []string{"user_id = $1"}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		clauses = append(clauses, "status = "+arg(filter.Status))
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "completion_outcome = "+arg(filter.Outcome))
	}
	if filter.ParentProjectID != "" {
		clauses = append(clauses, "parent_project_id = "+arg(filter.ParentProjectID))
	}
	if filter.TopLevelOnly {
		clauses = append(clauses, "parent_project_id IS NULL")
	}

	q := "SELECT * FROM item WHERE " + strings.Join(clauses, " AND ")
	q += orderingClause(ordering, "created_date DESC")

	var rows []dbItem
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	items := make([]item.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toCore())
	}
	return items, nil
}

func (repo itemRepository) UpdateItem(ctx context.Context, it item.Item) (item.Item, error) {
	row := fromCoreItem(it)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE item
		SET title                     = :title,
		    goal                      = :goal,
		    status                    = :status,
		    deadline                  = :deadline,
		    course_name               = :course_name,
		    is_major_project          = :is_major_project,
		    order_index               = :order_index,
		    notes                     = :notes,
		    completion_outcome        = :completion_outcome,
		    completion_date           = :completion_date,
		    experience_rating         = :experience_rating,
		    reflection_text           = :reflection_text,
		    what_went_wrong           = :what_went_wrong,
		    what_would_do_differently = :what_would_do_differently,
		    long_reflection           = :long_reflection,
		    updated_date              = :updated_date
		WHERE id = :id
		  AND user_id = :user_id`,
		row,
	)
	if err != nil {
		return item.Item{}, errors.Wrap(err, "updating item")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return item.Item{}, item.ErrNotFound
	}
	return it, nil
}

func (repo itemRepository) CountSiblings(ctx context.Context, userID, parentID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM item WHERE user_id = $1 AND parent_project_id = $2", userID, parentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting sub-items")
	}
	return count, nil
}
