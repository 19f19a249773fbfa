// Package editor provides the interactive settings form of "settle edit".
//
// Every schema key gets one control bound to the store: check boxes for
// boolean keys, combo boxes for everything else. Changes are persisted as
// they happen. On exit the edited texts are remembered in per-key history
// lists, offered as combo box items the next time.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/raphi011/settle/internal/bind"
	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/ui/controls"
	"github.com/raphi011/settle/internal/ui/styles"
)

// Options configures an Editor.
type Options struct {
	Title string
	// Keys limits the form to these schema keys. Empty means all keys.
	Keys []string
	// Choices are fixed combo box items by key, listed before history.
	Choices map[string][]string
}

type field struct {
	key     string
	check   *controls.Checkbox
	combo   *controls.ComboBox
	initial string // combo text after binding
}

func (f *field) focus() tea.Cmd {
	if f.check != nil {
		f.check.Focus()
		return nil
	}
	return f.combo.Focus()
}

func (f *field) blur() {
	if f.check != nil {
		f.check.Blur()
		return
	}
	f.combo.Blur()
}

// Editor is a bubbletea model editing the settings of a store.
type Editor struct {
	store      *settings.Store
	title      string
	fields     []*field
	focused    int
	confirming bool
	done       bool
	writeErrs  map[string]error
}

// New builds the form and binds each control to its key.
func New(ctx context.Context, store *settings.Store, opts Options) (*Editor, error) {
	e := &Editor{
		store:     store,
		title:     opts.Title,
		writeErrs: make(map[string]error),
	}
	if e.title == "" {
		e.title = "Settings"
	}

	binder := bind.New(ctx, store,
		bind.WithErrorHandler(func(key string, err error) {
			e.writeErrs[key] = err
		}),
		bind.WithSavedHandler(func(key string) {
			delete(e.writeErrs, key)
		}),
	)

	keys := opts.Keys
	if len(keys) == 0 {
		keys = store.Schema().Keys()
	}

	for _, key := range keys {
		kind, err := store.Schema().KindOf(key)
		if err != nil {
			return nil, err
		}

		f := &field{key: key}
		if kind == settings.KindBool {
			f.check = controls.NewCheckbox(key)
			if err := binder.Attach(f.check, key); err != nil {
				return nil, err
			}
		} else {
			items, err := e.items(key, opts.Choices[key])
			if err != nil {
				return nil, err
			}
			f.combo = controls.NewComboBox(key, items)
			if err := binder.Attach(f.combo, key); err != nil {
				return nil, err
			}
			f.initial = f.combo.Text()
		}
		e.fields = append(e.fields, f)
	}

	if len(e.fields) == 0 {
		return nil, fmt.Errorf("no settings to edit")
	}
	e.fields[0].focus()

	log.FromContext(ctx).Debug("editor ready", "fields", len(e.fields))
	return e, nil
}

// items returns the fixed choices followed by the remembered history of key.
func (e *Editor) items(key string, choices []string) ([]string, error) {
	history, err := e.store.StringList(config.HistoryListPrefix + key)
	if err != nil {
		return nil, err
	}

	items := append([]string(nil), choices...)
	for _, h := range history {
		if !slices.Contains(items, h) {
			items = append(items, h)
		}
	}
	return items, nil
}

// Focused returns the key of the focused control.
func (e *Editor) Focused() string {
	return e.fields[e.focused].key
}

// Done reports whether the user left the editor.
func (e *Editor) Done() bool {
	return e.done
}

// WriteErrors returns the failed write per key. A later successful write
// of the key removes its entry.
func (e *Editor) WriteErrors() map[string]error {
	return e.writeErrs
}

// Finish remembers every changed combo box text in the history list of its
// key, bounded by the history length setting.
func (e *Editor) Finish() error {
	var errs []error
	for _, f := range e.fields {
		if f.combo == nil {
			continue
		}
		text := strings.TrimSpace(f.combo.Text())
		if text == "" || text == f.initial {
			continue
		}
		if err := e.store.PrependStringList(config.HistoryListPrefix+f.key, text, config.KeyHistoryLength); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.store.Sync(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run shows the editor on stderr until the user quits, then records history.
func (e *Editor) Run(ctx context.Context) error {
	// Detect color profile for stderr (handles piped output, NO_COLOR, etc.)
	profile := colorprofile.Detect(os.Stderr, os.Environ())

	p := tea.NewProgram(e,
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	if _, err := p.Run(); err != nil {
		return err
	}

	l := log.FromContext(ctx)
	for key, err := range e.writeErrs {
		l.Warn("could not save setting", "key", key, "err", err)
	}
	return e.Finish()
}

// ApplyTheme activates the theme and symbols chosen by the store settings,
// falling back to the configured theme.
func ApplyTheme(ctx context.Context, store *settings.Store) {
	applyTheme(ctx, store, lipgloss.HasDarkBackground(os.Stdin, os.Stderr))
}

func applyTheme(ctx context.Context, store *settings.Store, dark bool) {
	l := log.FromContext(ctx)

	name, err := store.String(config.KeyTheme)
	if err != nil || name == "" {
		name = config.FromContext(ctx).Theme
	}
	if name == "" {
		name = config.DefaultTheme
	}

	if err := styles.Init(name, dark); err != nil {
		l.Warn(err.Error())
	}

	nerdfont, _ := store.Bool(config.KeyNerdfont)
	styles.SetNerdfont(nerdfont)
}

func (e *Editor) Init() tea.Cmd {
	return e.fields[e.focused].focus()
}

func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return e, e.forward(msg)
	}

	if e.confirming {
		switch key.String() {
		case "y", "enter", "ctrl+c":
			e.done = true
			return e, tea.Quit
		}
		e.confirming = false
		return e, nil
	}

	f := e.fields[e.focused]
	switch key.String() {
	case "ctrl+c":
		return e.quit()
	case "esc":
		if f.combo != nil && f.combo.Expanded() {
			break
		}
		return e.quit()
	case "tab":
		return e, e.move(1)
	case "shift+tab":
		return e, e.move(-1)
	case "up", "down":
		// Combo boxes use the arrows for their item list
		if f.check != nil {
			if key.String() == "up" {
				return e, e.move(-1)
			}
			return e, e.move(1)
		}
	}
	return e, e.forward(key)
}

func (e *Editor) forward(msg tea.Msg) tea.Cmd {
	f := e.fields[e.focused]
	if f.check != nil {
		_, cmd := f.check.Update(msg)
		return cmd
	}
	_, cmd := f.combo.Update(msg)
	return cmd
}

func (e *Editor) move(delta int) tea.Cmd {
	e.fields[e.focused].blur()
	e.focused = (e.focused + delta + len(e.fields)) % len(e.fields)
	return e.fields[e.focused].focus()
}

func (e *Editor) quit() (tea.Model, tea.Cmd) {
	if confirm, err := e.store.Bool(config.KeyConfirmExit); err == nil && confirm {
		e.confirming = true
		return e, nil
	}
	e.done = true
	return e, tea.Quit
}

func (e *Editor) View() tea.View {
	return tea.NewView(e.render())
}

// render returns the form as text, or "" once the editor is done.
func (e *Editor) render() string {
	if e.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.PrimaryStyle.Bold(true).Render(e.title))
	b.WriteString("\n")

	for _, f := range e.fields {
		b.WriteString("\n")
		if f.check != nil {
			b.WriteString(f.check.View())
		} else {
			b.WriteString(f.combo.View())
		}
		if err, ok := e.writeErrs[f.key]; ok {
			b.WriteString("\n" + styles.WarningStyle.Render("  "+err.Error()))
		}
	}

	b.WriteString("\n\n")
	switch {
	case e.confirming:
		b.WriteString(styles.AccentStyle.Render("Quit? (y/n)"))
	case e.showHelp():
		b.WriteString(styles.MutedStyle.Render("tab next • shift+tab previous • space toggle • ↓ items • esc quit"))
	}

	return styles.RoundedBorder.Render(b.String())
}

func (e *Editor) showHelp() bool {
	show, err := e.store.Bool(config.KeyShowHelp)
	return err == nil && show
}
