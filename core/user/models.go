package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/gradahq/grada/core"
)

// Semester terms
const (
	TermFall2025   = "fall-2025"
	TermSpring2026 = "spring-2026"
	TermSummer2025 = "summer-2025"
	TermWinter2025 = "winter-2025"
	TermCustom     = "custom"
)

// Course colors
const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorPurple = "purple"
	ColorOrange = "orange"
	ColorPink   = "pink"
	ColorYellow = "yellow"
	ColorRed    = "red"
	ColorCyan   = "cyan"
)

// Class days
const (
	DayMonday    = "monday"
	DayTuesday   = "tuesday"
	DayWednesday = "wednesday"
	DayThursday  = "thursday"
	DayFriday    = "friday"
	DaySaturday  = "saturday"
	DaySunday    = "sunday"
)

// GoalChangesLimit is the number of semester goal edits allowed per semester.
const GoalChangesLimit = 3

var (
	AllTerms = []string{TermFall2025, TermSpring2026, TermSummer2025, TermWinter2025, TermCustom}

	AllCourseColors = []string{
		ColorBlue, ColorGreen, ColorPurple, ColorOrange,
		ColorPink, ColorYellow, ColorRed, ColorCyan,
	}

	courseColorHex = map[string]string{
		ColorBlue:   "#3b82f6",
		ColorGreen:  "#10b981",
		ColorPurple: "#8b5cf6",
		ColorOrange: "#f97316",
		ColorPink:   "#ec4899",
		ColorYellow: "#eab308",
		ColorRed:    "#ef4444",
		ColorCyan:   "#06b6d4",
	}

	AllDays = []string{
		DayMonday, DayTuesday, DayWednesday, DayThursday,
		DayFriday, DaySaturday, DaySunday,
	}
)

// CourseColorHex maps a course color name to its display hex code;
// unknown names fall back to blue.
func CourseColorHex(color string) string {
	if hex, ok := courseColorHex[color]; ok {
		return hex
	}
	return courseColorHex[ColorBlue]
}

type ClassTime struct {
	Day       string `json:"day" validate:"required,classday"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type Course struct {
	Name          string      `json:"name" validate:"required"`
	Code          string      `json:"code"`
	Professor     string      `json:"professor"`
	Color         string      `json:"color" validate:"omitempty,coursecolor"`
	ClassTimes    []ClassTime `json:"class_times" validate:"omitempty,dive"`
	PersonalNotes string      `json:"personal_notes" validate:"max=200"`
}

type User struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	IsActive            bool      `json:"is_active"`
	PasswordHash        []byte    `json:"-"`
	SemesterGoal        string    `json:"semester_goal"`
	SemesterTerm        string    `json:"semester_term"`
	GoalChangesCount    int       `json:"goal_changes_count"`
	Courses             []Course  `json:"courses"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_date"` // UTC
	UpdatedAt           time.Time `json:"updated_date"` // UTC
	LastLogin           time.Time `json:"last_login"`   // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) GoalChangesRemaining() int {
	if left := GoalChangesLimit - u.GoalChangesCount; left > 0 {
		return left
	}
	return 0
}

// Course looks a course up by name; names are unique per user.
func (u *User) Course(name string) (Course, bool) {
	for _, c := range u.Courses {
		if c.Name == name {
			return c, true
		}
	}
	return Course{}, false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FullName        string `json:"full_name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// UpdateMyUserData defines what a user may change about their own profile.
// Nil pointer fields are left untouched.
type UpdateMyUserData struct {
	FullName     *string  `json:"full_name" validate:"omitempty,notblank"`
	SemesterGoal *string  `json:"semester_goal" validate:"omitempty,semgoal"`
	SemesterTerm *string  `json:"semester_term" validate:"omitempty,semterm"`
	Courses      []Course `json:"courses" validate:"omitempty,dive"`
}

func (ud *UpdateMyUserData) Validate(validate *validator.Validate) error {
	if ud.FullName != nil {
		name := core.CleanString(*ud.FullName)
		ud.FullName = &name
	}
	if ud.SemesterGoal != nil {
		goal := core.CleanString(*ud.SemesterGoal)
		ud.SemesterGoal = &goal
	}
	return validate.Struct(ud)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
