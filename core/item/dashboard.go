package item

// Dashboard is the home screen partition of a user's items. Completed
// items and sub-items never appear at the top level.
type Dashboard struct {
	RegularItems  []Item `json:"regular_items"`
	MajorProjects []Item `json:"major_projects"`
	PendingItems  []Item `json:"pending_items"`
	IsEmpty       bool   `json:"is_empty"`
}

// Partition splits items into the dashboard groups, preserving input
// order within each group:
//   - active, parentless, non-major -> RegularItems
//   - active, parentless, major    -> MajorProjects
//   - pending (any)                -> PendingItems
func Partition(items []Item) Dashboard {
	d := Dashboard{
		RegularItems:  []Item{},
		MajorProjects: []Item{},
		PendingItems:  []Item{},
	}
	for _, it := range items {
		switch {
		case it.Status == StatusActive && !it.IsSubItem() && it.IsMajorProject:
			d.MajorProjects = append(d.MajorProjects, it)
		case it.Status == StatusActive && !it.IsSubItem():
			d.RegularItems = append(d.RegularItems, it)
		case it.Status == StatusPending:
			d.PendingItems = append(d.PendingItems, it)
		}
	}
	d.IsEmpty = len(d.RegularItems) == 0 && len(d.MajorProjects) == 0 && len(d.PendingItems) == 0
	return d
}
