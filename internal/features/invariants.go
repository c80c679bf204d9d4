package features

import (
	"fmt"
	"slices"
)

// Violation describes one way an edited list broke the append-only rules.
type Violation struct {
	ID      int    `json:"id"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("feature %d: %s", v.ID, v.Message)
	}
	return fmt.Sprintf("feature %d %s: %s", v.ID, v.Field, v.Message)
}

// CheckInvariants compares an edited list against an earlier version.
// Entries may be added and passes may flip false to true; nothing else
// about an existing entry may change and no entry may disappear.
func CheckInvariants(before, after *List) []Violation {
	current := make(map[int]*Feature, len(after.Features))
	for i := range after.Features {
		current[after.Features[i].ID] = &after.Features[i]
	}

	var violations []Violation
	for _, old := range before.Features {
		f, ok := current[old.ID]
		if !ok {
			violations = append(violations, Violation{ID: old.ID, Message: "removed"})
			continue
		}
		if f.Category != old.Category {
			violations = append(violations, changed(old.ID, "category"))
		}
		if f.Description != old.Description {
			violations = append(violations, changed(old.ID, "description"))
		}
		if !slices.Equal(f.Steps, old.Steps) {
			violations = append(violations, changed(old.ID, "steps"))
		}
		if f.Priority != old.Priority {
			violations = append(violations, changed(old.ID, "priority"))
		}
		if old.Passes && !f.Passes {
			violations = append(violations, Violation{ID: old.ID, Field: "passes", Message: "reverted from true to false"})
		}
	}
	return violations
}

func changed(id int, field string) Violation {
	return Violation{ID: id, Field: field, Message: "changed"}
}
