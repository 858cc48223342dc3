package tui

import "testing"

func TestTabIndex(t *testing.T) {
	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"f1", 0, true},
		{"f12", 11, true},
		{"alt+3", 2, true},
		{"alt+a", 0, false},
		{"f0", 0, false},
		{"enter", 0, false},
		{"a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := tabIndex(tt.key)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("tabIndex(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
