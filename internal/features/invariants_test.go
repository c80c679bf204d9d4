package features

import "testing"

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l *List)
		want   []string
	}{
		{name: "unchanged", mutate: func(*List) {}},
		{
			name: "pass flipped and entry appended",
			mutate: func(l *List) {
				l.Features[0].Passes = true
				_, _ = l.Add(Feature{Category: "c", Description: "d", Steps: []string{"s"}})
			},
		},
		{
			name:   "description rewritten",
			mutate: func(l *List) { l.Features[1].Description = "Easier login" },
			want:   []string{"feature 2 description: changed"},
		},
		{
			name:   "step removed",
			mutate: func(l *List) { l.Features[1].Steps = l.Features[1].Steps[:1] },
			want:   []string{"feature 2 steps: changed"},
		},
		{
			name:   "entry deleted",
			mutate: func(l *List) { l.Features = l.Features[:1] },
			want:   []string{"feature 2: removed"},
		},
		{
			name: "category and priority changed",
			mutate: func(l *List) {
				l.Features[0].Category = "infra"
				l.Features[0].Priority = PriorityLow
			},
			want: []string{"feature 1 category: changed", "feature 1 priority: changed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := makeTestList()
			after := makeTestList()
			tt.mutate(after)

			got := CheckInvariants(before, after)
			if len(got) != len(tt.want) {
				t.Fatalf("CheckInvariants() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("violation %d = %q, want %q", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestCheckInvariants_PassReverted(t *testing.T) {
	before := makeTestList()
	before.Features[0].Passes = true
	after := makeTestList()

	got := CheckInvariants(before, after)
	if len(got) != 1 || got[0].Field != "passes" {
		t.Errorf("CheckInvariants() = %v, want one passes violation", got)
	}
}
