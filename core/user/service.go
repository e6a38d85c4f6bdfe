package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrUsernameExists  = errors.New("a user with this username already exists")
	errGoalChangesUsed = errors.New("you have reached the maximum number of goal changes this semester")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// User.FullName, User.Username or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsername(ctx context.Context, uname string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		UpdateLastLogin(ctx context.Context, usr User) (User, error)
		UpdateMyUserData(ctx context.Context, usr User, ud UpdateMyUserData) (User, error)
		CompleteOnboarding(ctx context.Context, usr User, data OnboardingData) (User, error)
	}

	service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *service {
	return &service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FullName:  nu.FullName,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter, ordering...)
}

func (svc *service) UpdateLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// UpdateMyUserData applies a profile patch. A semester goal different from
// the stored one counts against the per-semester change budget; once the
// budget is used up the whole patch is rejected and nothing is written.
func (svc *service) UpdateMyUserData(ctx context.Context, usr User, ud UpdateMyUserData) (User, error) {
	if ud.FullName != nil {
		usr.FullName = *ud.FullName
	}
	if ud.SemesterTerm != nil {
		usr.SemesterTerm = *ud.SemesterTerm
	}
	if ud.Courses != nil {
		usr.Courses = ud.Courses
	}
	if ud.SemesterGoal != nil && *ud.SemesterGoal != usr.SemesterGoal {
		if usr.GoalChangesCount >= GoalChangesLimit {
			return User{}, core.NewValidationError(errGoalChangesUsed,
				core.FieldError{Field: "semester_goal", Error: errGoalChangesUsed.Error()})
		}
		usr.SemesterGoal = *ud.SemesterGoal
		usr.GoalChangesCount++
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// CompleteOnboarding replays the submitted wizard data through the
// onboarding state machine; only a walk that reaches the final page
// persists. The initial goal set here does not count as a goal change.
func (svc *service) CompleteOnboarding(ctx context.Context, usr User, data OnboardingData) (User, error) {
	done, err := replayOnboarding(data)
	if err != nil {
		return User{}, err
	}

	usr.SemesterGoal = done.SemesterGoal
	usr.SemesterTerm = done.SemesterTerm
	usr.Courses = done.Courses
	if done.FullName != "" {
		usr.FullName = done.FullName
	}
	usr.OnboardingCompleted = true
	usr.UpdatedAt = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

// replayOnboarding drives a fresh wizard with the submitted data so the
// page gating applies server-side exactly as it did on screen.
func replayOnboarding(data OnboardingData) (OnboardingData, error) {
	w := NewOnboardingWizard()
	_ = w.Continue() // welcome -> how-it-works
	_ = w.Continue() // how-it-works -> goal-setting

	if strings.TrimSpace(data.SemesterGoal) == "" {
		_ = w.Skip() // goal-setting -> semester-setup
	} else {
		_ = w.Continue() // goal-setting -> goal-input
		w.SetSemesterGoal(data.SemesterGoal)
		if err := w.Continue(); err != nil {
			return OnboardingData{}, core.NewValidationError(err,
				core.FieldError{Field: "semester_goal", Error: semGoalText})
		}
	}

	// semester-setup
	if data.SemesterTerm != "" {
		w.SetSemesterTerm(data.SemesterTerm)
	}
	for _, c := range data.Courses {
		cts := c.ClassTimes
		c.ClassTimes = nil
		for _, ct := range cts {
			if !w.AddClassTime(ct) {
				return OnboardingData{}, core.NewValidationError(nil,
					core.FieldError{Field: "courses", Error: "class times require a day, a start time and an end time"})
			}
		}
		if !w.AddCourse(c) {
			return OnboardingData{}, core.NewValidationError(nil,
				core.FieldError{Field: "courses", Error: "course name is required"})
		}
	}
	_ = w.Continue() // semester-setup -> name-input

	w.SetFullName(data.FullName)
	if err := w.Continue(); err != nil {
		return OnboardingData{}, core.NewValidationError(err,
			core.FieldError{Field: "full_name", Error: "your name is required"})
	}
	_ = w.Continue() // greeting -> tutorial

	return w.Complete()
}

func (svc *service) sendWelcomeEmail(usr User) {
	if usr.Email == "" {
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: welcomeEmailData{User: usr},
	}
	if err := msg.Render(svc.conf); err == nil {
		svc.mailSvc.SendMessages(msg)
	}
}

type welcomeEmailData struct {
	User User
}
