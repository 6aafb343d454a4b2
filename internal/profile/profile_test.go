package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/shop"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", "E-mail is required"},
		{"   ", "E-mail is required"},
		{"plain", "E-mail must contain @"},
		{"@example.com", "E-mail must contain @"},
		{"ann@", "E-mail must contain @"},
		{"ann@localhost", ""},
		{"ann@example.com", ""},
		{" ann@example.com ", ""},
		{"ann@.com", "E-mail format is invalid"},
		{"ann@example.", "E-mail format is invalid"},
		{"ann@mail.example.com", "E-mail format is invalid"},
		{"first.last@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidate_FieldsAreIndependent(t *testing.T) {
	errs := Validate(shop.UserProfile{Name: " ", Email: "bad"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Name is required", errs[FieldName])
	assert.Equal(t, "E-mail must contain @", errs[FieldEmail])
	assert.Contains(t, errs.Error(), "email: E-mail must contain @; name: Name is required")

	assert.Nil(t, Validate(shop.UserProfile{Name: "Ann", Email: "ann@example.com"}))
}

func TestSave_InvalidIsNotWritten(t *testing.T) {
	b := bus.New()
	svc := NewService(kv.NewStore(kv.NewMemory()), b, nil)
	calls := 0
	bus.Subscribe(b, shop.ProfileUpdated, func(shop.UserProfile) { calls++ })

	errs, err := svc.Save(shop.UserProfile{Name: "Ann"})

	require.NoError(t, err)
	assert.Contains(t, errs, FieldEmail)
	_, ok := svc.Load()
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestSave_TrimsStoresAndPublishes(t *testing.T) {
	b := bus.New()
	svc := NewService(kv.NewStore(kv.NewMemory()), b, nil)
	var published shop.UserProfile
	bus.Subscribe(b, shop.ProfileUpdated, func(p shop.UserProfile) { published = p })

	assert.False(t, svc.Complete())
	errs, err := svc.Save(shop.UserProfile{Name: "  Ann ", Email: " ann@example.com", Notifications: true})

	require.NoError(t, err)
	assert.Nil(t, errs)
	want := shop.UserProfile{Name: "Ann", Email: "ann@example.com", Notifications: true}
	assert.Equal(t, want, published)
	got, ok := svc.Load()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, svc.Complete())
}
