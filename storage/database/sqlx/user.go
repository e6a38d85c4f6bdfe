package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
	"github.com/gradahq/grada/core/user"
)

// coursesJSON stores a user's courses as a JSONB column.
type coursesJSON []user.Course

func (c coursesJSON) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *coursesJSON) Scan(src interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, c)
	case string:
		return json.Unmarshal([]byte(data), c)
	case nil:
		*c = nil
		return nil
	}
	return errors.Errorf("unsupported courses type %T", src)
}

type dbUser struct {
	ID                  string      `db:"id"`
	FullName            string      `db:"full_name"`
	Username            string      `db:"username"`
	Email               string      `db:"email"`
	IsActive            bool        `db:"is_active"`
	PasswordHash        []byte      `db:"password_hash"`
	SemesterGoal        string      `db:"semester_goal"`
	SemesterTerm        string      `db:"semester_term"`
	GoalChangesCount    int         `db:"goal_changes_count"`
	Courses             coursesJSON `db:"courses"`
	OnboardingCompleted bool        `db:"onboarding_completed"`
	CreatedAt           time.Time   `db:"created_date"`
	UpdatedAt           time.Time   `db:"updated_date"`
	LastLogin           time.Time   `db:"last_login"`
}

func (u dbUser) toCore() user.User {
	return user.User{
		ID:                  u.ID,
		FullName:            u.FullName,
		Username:            u.Username,
		Email:               u.Email,
		IsActive:            u.IsActive,
		PasswordHash:        u.PasswordHash,
		SemesterGoal:        u.SemesterGoal,
		SemesterTerm:        u.SemesterTerm,
		GoalChangesCount:    u.GoalChangesCount,
		Courses:             u.Courses,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
		LastLogin:           u.LastLogin,
	}
}

func fromCoreUser(usr user.User) dbUser {
	return dbUser{
		ID:                  usr.ID,
		FullName:            usr.FullName,
		Username:            usr.Username,
		Email:               usr.Email,
		IsActive:            usr.IsActive,
		PasswordHash:        usr.PasswordHash,
		SemesterGoal:        usr.SemesterGoal,
		SemesterTerm:        usr.SemesterTerm,
		GoalChangesCount:    usr.GoalChangesCount,
		Courses:             usr.Courses,
		OnboardingCompleted: usr.OnboardingCompleted,
		CreatedAt:           usr.CreatedAt,
		UpdatedAt:           usr.UpdatedAt,
		LastLogin:           usr.LastLogin,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	args := []interface{}{username}
	q := `SELECT username, email FROM "user" WHERE (username = $1`
	if email != "" {
		args = append(args, email)
		q += fmt.Sprintf(" OR email = $%d", len(args))
	}
	q += ")"
	for _, u := range excludedUsers {
		args = append(args, u.ID)
		q += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := fromCoreUser(usr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, full_name, username, email, is_active, password_hash,
		                    semester_goal, semester_term, goal_changes_count, courses,
		                    onboarding_completed, created_date, updated_date, last_login)
		VALUES (:id, :full_name, :username, :email, :is_active, :password_hash,
		        :semester_goal, :semester_term, :goal_changes_count, :courses,
		        :onboarding_completed, :created_date, :updated_date, :last_login)`,
		row,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUserBy(ctx context.Context, clause string, args ...interface{}) (user.User, error) {
	var row dbUser
	q := `SELECT * FROM "user" WHERE ` + clause
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.toCore(), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUserBy(ctx, "id = $1", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUserBy(ctx, "username = $1", username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUserBy(ctx, "email = $1", email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUserBy(ctx, "username = $1 OR email = $1", username)
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if filter.IsActive != nil {
		clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		clauses = append(clauses, "created_date >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		clauses = append(clauses, "created_date <= "+arg(filter.CreatedTo))
	}

	q := `SELECT * FROM "user"`
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += orderingClause(ordering, "created_date ASC")

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toCore())
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := fromCoreUser(usr)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user"
		SET full_name            = :full_name,
		    username             = :username,
		    email                = :email,
		    is_active            = :is_active,
		    password_hash        = :password_hash,
		    semester_goal        = :semester_goal,
		    semester_term        = :semester_term,
		    goal_changes_count   = :goal_changes_count,
		    courses              = :courses,
		    onboarding_completed = :onboarding_completed,
		    updated_date         = :updated_date,
		    last_login           = :last_login
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

// orderingClause renders an ORDER BY from the requested orderings,
// falling back to the provided default.
func orderingClause(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + fallback
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
