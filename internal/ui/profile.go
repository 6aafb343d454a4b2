package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopfront/internal/profile"
	"github.com/five82/shopfront/internal/shop"
)

type formField int

const (
	fieldName formField = iota
	fieldEmail
	fieldNotifications
	fieldCount
)

// profileForm edits the stored profile. Fields are validated on save and
// each invalid field shows its own message.
type profileForm struct {
	editing       bool
	focus         formField
	name          textinput.Model
	email         textinput.Model
	notifications bool
	errors        profile.ValidationErrors
}

func newProfileForm() profileForm {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Your name"
	name.CharLimit = 80
	name.Width = 32

	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Width = 32

	return profileForm{name: name, email: email}
}

func (f *profileForm) load(p shop.UserProfile, _ bool) {
	f.name.SetValue(p.Name)
	f.email.SetValue(p.Email)
	f.notifications = p.Notifications
	f.errors = nil
}

func (f *profileForm) begin() tea.Cmd {
	f.editing = true
	f.focus = fieldName
	f.errors = nil
	return f.focusField()
}

func (f *profileForm) end() {
	f.editing = false
	f.name.Blur()
	f.email.Blur()
}

func (f *profileForm) focusField() tea.Cmd {
	f.name.Blur()
	f.email.Blur()
	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldEmail:
		return f.email.Focus()
	}
	return nil
}

func (f *profileForm) move(delta int) tea.Cmd {
	f.focus = formField((int(f.focus) + int(fieldCount) + delta) % int(fieldCount))
	return f.focusField()
}

func (f profileForm) value() shop.UserProfile {
	return shop.UserProfile{
		Name:          f.name.Value(),
		Email:         f.email.Value(),
		Notifications: f.notifications,
	}
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.form.editing {
		if key.Matches(msg, m.keys.Edit) {
			m.form.load(m.opts.Profile.Load())
			return m, m.form.begin()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.form.end()
		m.form.load(m.opts.Profile.Load())
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	}

	if key.Matches(msg, m.keys.Save) {
		return m, m.saveProfile()
	}

	var cmd tea.Cmd
	switch m.form.focus {
	case fieldName:
		m.form.name, cmd = m.form.name.Update(msg)
	case fieldEmail:
		m.form.email, cmd = m.form.email.Update(msg)
	case fieldNotifications:
		if key.Matches(msg, m.keys.Notify) {
			m.form.notifications = !m.form.notifications
		}
	}
	return m, cmd
}

// saveProfile validates and stores the form. Invalid fields keep the form
// open with focus on the first of them.
func (m *Model) saveProfile() tea.Cmd {
	invalid, err := m.opts.Profile.Save(m.form.value())
	if len(invalid) > 0 {
		m.form.errors = invalid
		if invalid[profile.FieldName] != "" {
			m.form.focus = fieldName
		} else {
			m.form.focus = fieldEmail
		}
		return m.form.focusField()
	}
	if err != nil {
		m.logger.Warn("profile save failed", "error", err)
		m.st.say(profile.NoticeSaveFailed)
		return nil
	}
	m.form.end()
	m.form.load(m.opts.Profile.Load())
	m.st.say(profile.NoticeSaved)
	return nil
}

func (m Model) renderProfile(styles Styles) string {
	f := m.form
	if !f.editing {
		// Follow saves from other processes while not editing.
		f.load(m.opts.Profile.Load())
	}

	label := func(text string, field formField) string {
		if f.editing && f.focus == field {
			return styles.AccentText.Bold(true).Render(padRight(text, 15))
		}
		return styles.MutedText.Render(padRight(text, 15))
	}
	value := func(in textinput.Model, empty string) string {
		if f.editing {
			return in.View()
		}
		if v := strings.TrimSpace(in.Value()); v != "" {
			return styles.Text.Render(v)
		}
		return styles.FaintText.Render(empty)
	}
	fieldError := func(field string) string {
		if msg := f.errors[field]; msg != "" {
			return "\n" + padRight("", 15) + styles.DangerText.Render(msg)
		}
		return ""
	}

	check := "[ ]"
	if f.notifications {
		check = "[x]"
	}

	lines := []string{
		styles.Text.Bold(true).Render("Profile"),
		"",
		label("Name", fieldName) + value(f.name, "not set") + fieldError(profile.FieldName),
		label("Email", fieldEmail) + value(f.email, "not set") + fieldError(profile.FieldEmail),
		label("Notifications", fieldNotifications) + styles.Text.Render(check),
		"",
	}
	if f.editing {
		lines = append(lines, styles.FaintText.Render("tab next field  space toggle  enter save  esc cancel"))
	} else {
		lines = append(lines, styles.FaintText.Render("e: edit"))
	}
	return strings.Join(lines, "\n")
}
