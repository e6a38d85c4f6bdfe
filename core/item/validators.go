package item

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/gradahq/grada/core"
)

var (
	itemTypeTag  = "itemtype"
	itemTypeText = "invalid item type"

	goalRequiredTag  = "goalrequired"
	goalRequiredText = "a goal is required for class and extracurricular items"
)

// InitValidators registers this package's custom validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(itemTypeTag, itemTypeValidation)
	core.RegisterCustomTranslation(validate, translator, itemTypeTag, itemTypeText)

	validate.RegisterStructValidation(newItemStructValidation, NewItem{})
	core.RegisterCustomTranslation(validate, translator, goalRequiredTag, goalRequiredText)
}

// Custom Validators

// GoalRequired reports whether items of the given type must carry a goal.
// Only admin items may omit it.
func GoalRequired(typ string) bool {
	return typ != TypeAdmin
}

func itemTypeValidation(fl validator.FieldLevel) bool {
	typ := fl.Field().String()
	sorted := make([]string, len(AllTypes))
	copy(sorted, AllTypes)
	sort.Strings(sorted)
	if idx := sort.SearchStrings(sorted, typ); idx < len(sorted) {
		return sorted[idx] == typ
	}
	return false
}

// newItemStructValidation enforces the goal rule on NewItem. Goals are
// cleaned before struct validation runs so a whitespace-only goal is empty
// by the time it gets here.
func newItemStructValidation(sl validator.StructLevel) {
	if ni, ok := sl.Current().Interface().(NewItem); ok {
		if GoalRequired(ni.Type) && ni.Goal == "" {
			sl.ReportError(ni.Goal, "goal", "Goal", goalRequiredTag, "")
		}
	}
}
