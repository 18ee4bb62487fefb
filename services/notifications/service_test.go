package notifications

import (
	"reflect"
	"testing"
)

func TestNormalizeChannels(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		exp   []string
	}{
		{
			name:  "empty defaults to normal",
			input: nil,
			exp:   []string{"normal"},
		},
		{
			name:  "valid channels pass through",
			input: []string{"normal", "line"},
			exp:   []string{"normal", "line"},
		},
		{
			name:  "unknown channels dropped",
			input: []string{"sms", "popup", "email"},
			exp:   []string{"popup"},
		},
		{
			name:  "all unknown falls back to normal",
			input: []string{"sms", "email"},
			exp:   []string{"normal"},
		},
		{
			name:  "duplicates collapsed",
			input: []string{"line", "line", "normal"},
			exp:   []string{"line", "normal"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeChannels(tc.input)
			if !reflect.DeepEqual(got, tc.exp) {
				t.Fatalf("expected %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestQueued(t *testing.T) {
	n := Queued("Points awarded", "You earned 30 points", "info", "popup")
	if n.Title != "Points awarded" || n.Message != "You earned 30 points" || n.Type != "info" {
		t.Fatalf("unexpected payload: %+v", n)
	}
	if !reflect.DeepEqual(n.Channels, []string{"popup"}) {
		t.Fatalf("expected popup channel, got %v", n.Channels)
	}
	if n.Data != nil {
		t.Fatalf("plain Queued should carry no data payload")
	}
}

func TestQueuedWithData(t *testing.T) {
	data := map[string]any{"redemption_id": 12}
	n := QueuedWithData("Redemption", "Your redemption is ready", "success", data)
	if !reflect.DeepEqual(n.Channels, []string{"normal"}) {
		t.Fatalf("expected default normal channel, got %v", n.Channels)
	}
	if n.Data == nil {
		t.Fatalf("expected data payload to be kept")
	}
}
