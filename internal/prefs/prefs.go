// Package prefs handles the shopfront theme preference.
// The theme is stored under the "theme" key as "dark" or "light" and shared by
// every process that opens the same store.
package prefs

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/shop"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	defaultTheme = ThemeLight
)

// Themes lists the supported theme names.
func Themes() []string {
	return []string{ThemeLight, ThemeDark}
}

// Normalize maps a stored value to a supported theme name. Anything other
// than "dark" is light.
func Normalize(name string) string {
	if strings.EqualFold(strings.TrimSpace(name), ThemeDark) {
		return ThemeDark
	}
	return defaultTheme
}

// Service reads and writes the theme preference.
type Service struct {
	store  *kv.Store
	bus    *bus.Bus
	logger *slog.Logger
}

// NewService returns a theme service. logger may be nil.
func NewService(store *kv.Store, b *bus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, bus: b, logger: logger}
}

// Theme returns the stored theme, falling back to light when it is missing
// or unreadable.
func (s *Service) Theme() string {
	return Normalize(kv.Get(s.store, shop.KeyTheme, defaultTheme))
}

// Dark reports whether the dark theme is active.
func (s *Service) Dark() bool {
	return s.Theme() == ThemeDark
}

// Set stores name and publishes theme-changed.
func (s *Service) Set(name string) error {
	theme := Normalize(name)
	if err := s.store.Save(shop.KeyTheme, theme); err != nil {
		s.logger.Warn("theme save failed", "theme", theme, "error", err)
		return fmt.Errorf("save theme: %w", err)
	}
	bus.Publish(s.bus, shop.ThemeChanged, theme)
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (s *Service) Toggle() (string, error) {
	next := ThemeDark
	if s.Dark() {
		next = ThemeLight
	}
	if err := s.Set(next); err != nil {
		return s.Theme(), err
	}
	return next, nil
}
