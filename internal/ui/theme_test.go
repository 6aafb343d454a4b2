package ui

import (
	"testing"

	"github.com/five82/shopfront/internal/prefs"
)

func TestGetTheme(t *testing.T) {
	if got := GetTheme("DARK").Name; got != prefs.ThemeDark {
		t.Fatalf("GetTheme(DARK).Name = %q, want %q", got, prefs.ThemeDark)
	}
	if got := GetTheme("sepia").Name; got != prefs.ThemeLight {
		t.Fatalf("GetTheme(sepia).Name = %q, want %q", got, prefs.ThemeLight)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, height int
		start, end        int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.height)
		if start != tt.start || end != tt.end {
			t.Fatalf("window(%d, %d, %d) = %d, %d, want %d, %d", tt.cursor, tt.n, tt.height, start, end, tt.start, tt.end)
		}
	}
}
