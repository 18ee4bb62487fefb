package services

import (
	"reflect"
	"testing"
)

func TestDedupeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []uint
		exp   []uint
	}{
		{
			name:  "no duplicates",
			input: []uint{1, 2, 3},
			exp:   []uint{1, 2, 3},
		},
		{
			name:  "duplicates keep first occurrence order",
			input: []uint{5, 3, 5, 1, 3, 3},
			exp:   []uint{5, 3, 1},
		},
		{
			name:  "all identical",
			input: []uint{7, 7, 7},
			exp:   []uint{7},
		},
		{
			name:  "empty input",
			input: nil,
			exp:   []uint{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := dedupeIDs(tc.input)
			if !reflect.DeepEqual(got, tc.exp) {
				t.Fatalf("expected %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestAttendanceAwardDefault(t *testing.T) {
	// Without loaded config the award falls back to the fixed default.
	if got := AttendanceAward(); got != 30 {
		t.Fatalf("expected default award 30, got %d", got)
	}
}
