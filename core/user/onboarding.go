package user

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/gradahq/grada/core"
)

// Onboarding wizard pages, in walk order.
const (
	PageWelcome       OnboardingPage = "welcome"
	PageHowItWorks    OnboardingPage = "how-it-works"
	PageGoalSetting   OnboardingPage = "goal-setting"
	PageGoalInput     OnboardingPage = "goal-input"
	PageSemesterSetup OnboardingPage = "semester-setup"
	PageNameInput     OnboardingPage = "name-input"
	PageGreeting      OnboardingPage = "greeting"
	PageTutorial      OnboardingPage = "tutorial"
)

var (
	ErrTransitionNotAllowed = errors.New("onboarding: transition not allowed")
	ErrPageIncomplete       = errors.New("onboarding: current page requirements not met")
	ErrWizardIncomplete     = errors.New("onboarding: wizard not finished")

	// onboardingNext maps each page to the page Continue lands on.
	onboardingNext = map[OnboardingPage]OnboardingPage{
		PageWelcome:       PageHowItWorks,
		PageHowItWorks:    PageGoalSetting,
		PageGoalSetting:   PageGoalInput,
		PageGoalInput:     PageSemesterSetup,
		PageSemesterSetup: PageNameInput,
		PageNameInput:     PageGreeting,
		PageGreeting:      PageTutorial,
	}

	// onboardingSkip maps the pages that may be skipped to their landing page.
	// Skipping goal setting jumps over the goal input entirely.
	onboardingSkip = map[OnboardingPage]OnboardingPage{
		PageGoalSetting:   PageSemesterSetup,
		PageSemesterSetup: PageNameInput,
	}
)

type (
	OnboardingPage string

	// OnboardingData is what the wizard accumulates; nothing persists
	// until the walk reaches the final page and Complete is called.
	OnboardingData struct {
		SemesterGoal string   `json:"semester_goal" validate:"omitempty,semgoal"`
		SemesterTerm string   `json:"semester_term" validate:"omitempty,semterm"`
		Courses      []Course `json:"courses" validate:"omitempty,dive"`
		FullName     string   `json:"full_name" validate:"required"`
	}

	// OnboardingWizard walks a user through first-time setup. Page moves
	// only happen through Continue and Skip so every path through the
	// wizard is a path through the transition tables above.
	OnboardingWizard struct {
		page        OnboardingPage
		data        OnboardingData
		draftCourse Course
	}
)

func (od *OnboardingData) Validate(validate *validator.Validate) error {
	od.SemesterGoal = core.CleanString(od.SemesterGoal)
	od.FullName = core.CleanString(od.FullName)
	return validate.Struct(od)
}

func NewOnboardingWizard() *OnboardingWizard {
	return &OnboardingWizard{
		page: PageWelcome,
		data: OnboardingData{SemesterTerm: TermFall2025},
	}
}

func (w *OnboardingWizard) Page() OnboardingPage { return w.page }
func (w *OnboardingWizard) Data() OnboardingData { return w.data }

// pageComplete gates forward movement off the data-entry pages.
func (w *OnboardingWizard) pageComplete() bool {
	switch w.page {
	case PageGoalInput:
		return SemesterGoalOK(w.data.SemesterGoal)
	case PageNameInput:
		return strings.TrimSpace(w.data.FullName) != ""
	}
	return true
}

// Continue moves to the next page.
func (w *OnboardingWizard) Continue() error {
	next, ok := onboardingNext[w.page]
	if !ok {
		return errors.Wrapf(ErrTransitionNotAllowed, "already on %q", w.page)
	}
	if !w.pageComplete() {
		return errors.Wrapf(ErrPageIncomplete, "on %q", w.page)
	}
	w.page = next
	return nil
}

// Skip jumps to the skip landing page, bypassing the current page's gating.
func (w *OnboardingWizard) Skip() error {
	next, ok := onboardingSkip[w.page]
	if !ok {
		return errors.Wrapf(ErrTransitionNotAllowed, "%q cannot be skipped", w.page)
	}
	w.page = next
	return nil
}

func (w *OnboardingWizard) SetSemesterGoal(goal string) {
	w.data.SemesterGoal = core.CleanString(goal)
}

func (w *OnboardingWizard) SetSemesterTerm(term string) {
	w.data.SemesterTerm = term
}

func (w *OnboardingWizard) SetFullName(name string) {
	w.data.FullName = core.CleanString(name)
}

// AddClassTime appends a class time to the course being drafted.
// All of day, start and end are required.
func (w *OnboardingWizard) AddClassTime(ct ClassTime) bool {
	if ct.Day == "" || ct.StartTime == "" || ct.EndTime == "" {
		return false
	}
	w.draftCourse.ClassTimes = append(w.draftCourse.ClassTimes, ct)
	return true
}

func (w *OnboardingWizard) RemoveClassTime(i int) {
	if i < 0 || i >= len(w.draftCourse.ClassTimes) {
		return
	}
	w.draftCourse.ClassTimes = append(w.draftCourse.ClassTimes[:i], w.draftCourse.ClassTimes[i+1:]...)
}

// AddCourse finalizes the drafted course. The course name is required;
// the color defaults to blue.
func (w *OnboardingWizard) AddCourse(c Course) bool {
	c.Name = core.CleanString(c.Name)
	if c.Name == "" {
		return false
	}
	if c.Color == "" {
		c.Color = ColorBlue
	}
	c.ClassTimes = append(c.ClassTimes, w.draftCourse.ClassTimes...)
	w.data.Courses = append(w.data.Courses, c)
	w.draftCourse = Course{}
	return true
}

func (w *OnboardingWizard) RemoveCourse(i int) {
	if i < 0 || i >= len(w.data.Courses) {
		return
	}
	w.data.Courses = append(w.data.Courses[:i], w.data.Courses[i+1:]...)
}

// Complete returns the accumulated data; it fails unless the walk
// reached the final page.
func (w *OnboardingWizard) Complete() (OnboardingData, error) {
	if w.page != PageTutorial {
		return OnboardingData{}, errors.Wrapf(ErrWizardIncomplete, "on %q", w.page)
	}
	return w.data, nil
}
