// Package profile saves and validates the local customer profile.
package profile

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/shop"
)

// Form field names used as ValidationErrors keys.
const (
	FieldName  = "name"
	FieldEmail = "email"
)

// Notices shown after a save attempt.
const (
	NoticeSaved      = "Data saved"
	NoticeSaveFailed = "Error saving data"
)

// ValidationErrors maps a field name to its message. Each field is checked
// independently so one bad field never hides another's message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

// Validate checks every field of p.
func Validate(p shop.UserProfile) ValidationErrors {
	errs := ValidationErrors{}
	if msg := ValidateName(p.Name); msg != "" {
		errs[FieldName] = msg
	}
	if msg := ValidateEmail(p.Email); msg != "" {
		errs[FieldEmail] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateName returns the message for an invalid name, or "".
func ValidateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required"
	}
	return ""
}

// ValidateEmail returns the message for an invalid address, or "". An
// address needs an @ that is neither first nor last, and at most one dot
// after it that is neither first nor last in the domain.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "E-mail is required"
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "E-mail must contain @"
	}
	domain := email[at+1:]
	switch strings.Count(domain, ".") {
	case 0:
		return ""
	case 1:
		dot := strings.Index(domain, ".")
		if dot == 0 || dot == len(domain)-1 {
			return "E-mail format is invalid"
		}
		return ""
	default:
		return "E-mail format is invalid"
	}
}

// Service reads and writes shop.KeyUserProfile.
type Service struct {
	store  *kv.Store
	bus    *bus.Bus
	logger *slog.Logger
}

// NewService returns a profile service. logger may be nil.
func NewService(store *kv.Store, b *bus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, bus: b, logger: logger}
}

// Load returns the saved profile. ok is false until the first save.
func (s *Service) Load() (shop.UserProfile, bool) {
	var p shop.UserProfile
	ok := s.store.Load(shop.KeyUserProfile, &p)
	return p, ok
}

// Complete reports whether a saved profile has both name and email.
func (s *Service) Complete() bool {
	p, ok := s.Load()
	return ok && p.Complete()
}

// Save trims and validates p and, when valid, stores it and publishes
// profile-updated. Invalid input is reported through ValidationErrors and
// never written.
func (s *Service) Save(p shop.UserProfile) (ValidationErrors, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if errs := Validate(p); errs != nil {
		return errs, nil
	}
	if err := s.store.Save(shop.KeyUserProfile, p); err != nil {
		s.logger.Warn("profile save failed", "error", err)
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info("profile saved", "notifications", p.Notifications)
	bus.Publish(s.bus, shop.ProfileUpdated, p)
	return nil, nil
}
