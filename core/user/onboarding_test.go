package user

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func advanceTo(t *testing.T, w *OnboardingWizard, page OnboardingPage) {
	t.Helper()
	for i := 0; w.Page() != page; i++ {
		if err := w.Continue(); err != nil {
			t.Fatalf("Continue() on %q: %v", w.Page(), err)
		}
		if i > 10 {
			t.Fatalf("never reached %q", page)
		}
	}
}

func Test_OnboardingWizard_fullWalk(t *testing.T) {
	w := NewOnboardingWizard()

	if w.Page() != PageWelcome {
		t.Fatalf("page = %q; want %q", w.Page(), PageWelcome)
	}
	if w.Data().SemesterTerm != TermFall2025 {
		t.Errorf("default term = %q; want %q", w.Data().SemesterTerm, TermFall2025)
	}

	advanceTo(t, w, PageGoalInput)

	// the goal input page gates on a valid goal
	if err := w.Continue(); errors.Cause(err) != ErrPageIncomplete {
		t.Errorf("Continue() err = %v; want %v", err, ErrPageIncomplete)
	}
	w.SetSemesterGoal("Finish the semester with a 3.8 GPA")
	if err := w.Continue(); err != nil {
		t.Fatalf("Continue(): %v", err)
	}

	// semester setup
	if w.Page() != PageSemesterSetup {
		t.Fatalf("page = %q; want %q", w.Page(), PageSemesterSetup)
	}
	w.SetSemesterTerm(TermSpring2026)
	if !w.AddClassTime(ClassTime{Day: DayMonday, StartTime: "09:00", EndTime: "10:30"}) {
		t.Error("AddClassTime() = false; want true")
	}
	if w.AddClassTime(ClassTime{Day: DayMonday, StartTime: "09:00"}) {
		t.Error("AddClassTime() without end time = true; want false")
	}
	if !w.AddCourse(Course{Name: "CS101", Professor: "Dr. Ada"}) {
		t.Error("AddCourse() = false; want true")
	}
	if w.AddCourse(Course{Name: "   "}) {
		t.Error("AddCourse() with blank name = true; want false")
	}

	// name input gates on a non-empty name
	if err := w.Continue(); err != nil {
		t.Fatalf("Continue(): %v", err)
	}
	if err := w.Continue(); errors.Cause(err) != ErrPageIncomplete {
		t.Errorf("Continue() err = %v; want %v", err, ErrPageIncomplete)
	}
	w.SetFullName("  Jordan Lee  ")
	advanceTo(t, w, PageTutorial)

	// the tutorial is the last page
	if err := w.Continue(); errors.Cause(err) != ErrTransitionNotAllowed {
		t.Errorf("Continue() err = %v; want %v", err, ErrTransitionNotAllowed)
	}

	data, err := w.Complete()
	if err != nil {
		t.Fatalf("Complete(): %v", err)
	}
	if data.FullName != "Jordan Lee" {
		t.Errorf("fullName = %q; want trimmed %q", data.FullName, "Jordan Lee")
	}
	if data.SemesterTerm != TermSpring2026 {
		t.Errorf("term = %q; want %q", data.SemesterTerm, TermSpring2026)
	}
	if len(data.Courses) != 1 {
		t.Fatalf("courses = %+v; want 1", data.Courses)
	}
	course := data.Courses[0]
	if course.Color != ColorBlue {
		t.Errorf("color = %q; want default %q", course.Color, ColorBlue)
	}
	if len(course.ClassTimes) != 1 {
		t.Errorf("classTimes = %+v; want 1", course.ClassTimes)
	}
}

func Test_OnboardingWizard_skips(t *testing.T) {
	t.Run("goal setting skips over goal input", func(t *testing.T) {
		w := NewOnboardingWizard()
		advanceTo(t, w, PageGoalSetting)
		if err := w.Skip(); err != nil {
			t.Fatalf("Skip(): %v", err)
		}
		if w.Page() != PageSemesterSetup {
			t.Errorf("page = %q; want %q", w.Page(), PageSemesterSetup)
		}
	})

	t.Run("semester setup skips to name input", func(t *testing.T) {
		w := NewOnboardingWizard()
		advanceTo(t, w, PageGoalSetting)
		_ = w.Skip()
		if err := w.Skip(); err != nil {
			t.Fatalf("Skip(): %v", err)
		}
		if w.Page() != PageNameInput {
			t.Errorf("page = %q; want %q", w.Page(), PageNameInput)
		}
	})

	t.Run("other pages cannot be skipped", func(t *testing.T) {
		w := NewOnboardingWizard()
		if err := w.Skip(); errors.Cause(err) != ErrTransitionNotAllowed {
			t.Errorf("Skip() err = %v; want %v", err, ErrTransitionNotAllowed)
		}
	})
}

func Test_OnboardingWizard_goalGating(t *testing.T) {
	tests := []struct {
		name string
		goal string
		ok   bool
	}{
		{name: "empty", goal: "", ok: false},
		{name: "whitespace only", goal: "   ", ok: false},
		{name: "simple goal", goal: "Pass all my classes", ok: true},
		{name: "15 words", goal: strings.Repeat("word ", 15), ok: true},
		{name: "16 words", goal: strings.Repeat("word ", 16), ok: false},
		{name: "100 chars", goal: strings.Repeat("a", 100), ok: true},
		{name: "101 chars", goal: strings.Repeat("a", 101), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewOnboardingWizard()
			advanceTo(t, w, PageGoalInput)
			w.SetSemesterGoal(tt.goal)
			err := w.Continue()
			if tt.ok && err != nil {
				t.Errorf("Continue(): %v", err)
			}
			if !tt.ok && errors.Cause(err) != ErrPageIncomplete {
				t.Errorf("Continue() err = %v; want %v", err, ErrPageIncomplete)
			}
		})
	}
}

func Test_OnboardingWizard_completeEarly(t *testing.T) {
	w := NewOnboardingWizard()
	if _, err := w.Complete(); errors.Cause(err) != ErrWizardIncomplete {
		t.Errorf("Complete() err = %v; want %v", err, ErrWizardIncomplete)
	}
}

func Test_OnboardingWizard_courseEditing(t *testing.T) {
	w := NewOnboardingWizard()
	_ = w.AddClassTime(ClassTime{Day: DayTuesday, StartTime: "10:00", EndTime: "11:00"})
	_ = w.AddClassTime(ClassTime{Day: DayThursday, StartTime: "10:00", EndTime: "11:00"})
	w.RemoveClassTime(0)
	if !w.AddCourse(Course{Name: "BIO201", Color: ColorGreen}) {
		t.Fatal("AddCourse() = false; want true")
	}
	if !w.AddCourse(Course{Name: "MATH150"}) {
		t.Fatal("AddCourse() = false; want true")
	}
	w.RemoveCourse(1)

	data := w.Data()
	if len(data.Courses) != 1 || data.Courses[0].Name != "BIO201" {
		t.Fatalf("courses = %+v", data.Courses)
	}
	cts := data.Courses[0].ClassTimes
	if len(cts) != 1 || cts[0].Day != DayThursday {
		t.Errorf("classTimes = %+v; want the thursday slot only", cts)
	}

	// the draft was consumed by the first AddCourse
	if len(data.Courses[0].ClassTimes) != 1 {
		t.Errorf("draft class times leaked: %+v", data.Courses[0].ClassTimes)
	}
}
