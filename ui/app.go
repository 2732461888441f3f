package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deckclip/model"
	"deckclip/plugin"
	"deckclip/runner"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeEdit
	modeDelete
	modeTarget
	modeSearch
)

// copiedFor is how long the "copied" status stays up.
const copiedFor = 3 * time.Second

type App struct {
	plugin   *plugin.Plugin
	entries  []model.Entry
	filtered []model.Entry

	// copy writes to the system clipboard; swapped out in tests
	copy func(string) error

	// UI state
	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string
	copies int

	searchInput textinput.Model

	// Output
	output      viewport.Model
	outputLines []string
	running     bool
	outputChan  chan runner.OutputMsg
	cancelRun   context.CancelFunc

	// Form (add/edit)
	formInputs []textinput.Model
	formFocus  int
	editing    *model.Entry

	// Run target
	targetInput textinput.Model
	pending     *model.Entry
}

func NewApp(p *plugin.Plugin) (*App, error) {
	entries, err := p.GetEntries()
	if err != nil {
		return nil, err
	}

	search := textinput.New()
	search.Placeholder = "Search entries..."
	search.Focus()

	app := &App{
		plugin:      p,
		entries:     entries,
		filtered:    entries,
		copy:        clipboard.WriteAll,
		searchInput: search,
		output:      viewport.New(80, 10),
	}

	return app, nil
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

type outputMsg runner.OutputMsg

// clearCopiedMsg carries the copy sequence number it was scheduled for, so
// an older tick never clears a newer status.
type clearCopiedMsg int

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4
		a.height = msg.Height - 2
		a.output.Width = a.width - 4
		a.output.Height = a.height / 3
		return a, nil

	case clearCopiedMsg:
		if int(msg) == a.copies {
			a.status = ""
		}
		return a, nil

	case outputMsg:
		if msg.Done {
			a.finishRun()
			if msg.ErrMsg != "" {
				a.outputLines = append(a.outputLines, errorStyle.Render("Error: "+msg.ErrMsg))
			}
			a.output.SetContent(strings.Join(a.outputLines, "\n"))
			a.output.GotoBottom()
			return a, nil
		}
		line := msg.Line
		if msg.IsErr {
			line = errorStyle.Render(line)
		}
		a.outputLines = append(a.outputLines, line)
		a.output.SetContent(strings.Join(a.outputLines, "\n"))
		a.output.GotoBottom()
		return a, waitForOutput(a.outputChan)

	case tea.KeyMsg:
		a.err = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modeAdd, modeEdit:
			return a.updateForm(msg)
		case modeDelete:
			return a.updateDelete(msg)
		case modeTarget:
			return a.updateTarget(msg)
		case modeSearch:
			return a.updateSearch(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		a.stopRun()
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	case "enter":
		if len(a.filtered) > 0 {
			return a, a.copySelected()
		}

	case "r":
		if len(a.filtered) > 0 && !a.running {
			e := a.filtered[a.cursor]
			a.pending = &e
			a.mode = modeTarget
			a.targetInput = textinput.New()
			a.targetInput.Placeholder = "Program to launch (e.g. ./game.sh)"
			a.searchInput.Blur()
			return a, a.targetInput.Focus()
		}

	case "/":
		a.mode = modeSearch
		return a, a.searchInput.Focus()

	case "x":
		if a.running {
			a.stopRun()
			a.status = "Stopped"
		}

	case "a":
		a.mode = modeAdd
		a.initForm(nil)
		return a, nil

	case "e":
		if len(a.filtered) > 0 {
			a.mode = modeEdit
			e := a.filtered[a.cursor]
			a.editing = &e
			a.initForm(&e)
		}
		return a, nil

	case "d":
		if len(a.filtered) > 0 {
			a.mode = modeDelete
		}
		return a, nil

	case "esc":
		a.searchInput.SetValue("")
		a.filterEntries()

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterEntries()
		return a, cmd
	}

	return a, nil
}

// updateSearch sends every printable key to the search box, so letters bound
// to actions can be searched for.
func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.stopRun()
		return a, tea.Quit

	case "esc":
		a.searchInput.SetValue("")
		a.filterEntries()
		a.mode = modeNormal

	case "enter":
		a.mode = modeNormal

	case "up":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterEntries()
		return a, cmd
	}

	return a, nil
}

func (a *App) copySelected() tea.Cmd {
	e := a.filtered[a.cursor]
	if err := a.copy(e.Command); err != nil {
		a.err = "Unable to copy to clipboard: " + err.Error()
		return nil
	}

	a.copies++
	a.status = "Copied to clipboard"
	seq := a.copies
	return tea.Tick(copiedFor, func(time.Time) tea.Msg {
		return clearCopiedMsg(seq)
	})
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.stopRun()
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.searchInput.Focus()
		return a, nil

	case "tab", "down":
		a.formFocus = (a.formFocus + 1) % len(a.formInputs)
		return a, a.focusFormInput()

	case "shift+tab", "up":
		a.formFocus--
		if a.formFocus < 0 {
			a.formFocus = len(a.formInputs) - 1
		}
		return a, a.focusFormInput()

	case "enter":
		return a.submitForm()

	default:
		var cmd tea.Cmd
		a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
		return a, cmd
	}
}

func (a *App) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if len(a.filtered) > 0 {
			e := a.filtered[a.cursor]
			if _, err := a.plugin.DeleteEntry(e.ID); err != nil {
				a.err = err.Error()
			} else {
				a.status = "Deleted!"
				a.refreshEntries()
				if a.cursor >= len(a.filtered) && a.cursor > 0 {
					a.cursor--
				}
			}
		}
		a.mode = modeNormal
		return a, nil

	case "n", "N", "esc":
		a.mode = modeNormal
		return a, nil
	}

	return a, nil
}

func (a *App) updateTarget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.pending = nil
		return a, a.searchInput.Focus()

	case "enter":
		return a.launch(a.targetInput.Value())

	default:
		var cmd tea.Cmd
		a.targetInput, cmd = a.targetInput.Update(msg)
		return a, cmd
	}
}

func (a *App) launch(target string) (tea.Model, tea.Cmd) {
	final := runner.Expand(a.pending.Command, target)
	a.pending = nil
	a.mode = modeNormal

	a.running = true
	a.outputLines = []string{cmdPreviewStyle.Render("$ " + final), ""}
	a.output.SetContent(strings.Join(a.outputLines, "\n"))

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelRun = cancel
	a.outputChan = make(chan runner.OutputMsg)
	go runner.Run(ctx, final, a.outputChan)

	return a, tea.Batch(a.searchInput.Focus(), waitForOutput(a.outputChan))
}

func (a *App) finishRun() {
	a.running = false
	a.outputChan = nil
	if a.cancelRun != nil {
		a.cancelRun()
		a.cancelRun = nil
	}
}

func (a *App) stopRun() {
	if a.cancelRun != nil {
		a.cancelRun()
	}
}

func waitForOutput(ch chan runner.OutputMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return outputMsg{Done: true}
		}
		return outputMsg(msg)
	}
}

func (a *App) initForm(e *model.Entry) {
	nameInput := textinput.New()
	nameInput.Placeholder = "Name (e.g., SteamDeck=0)"
	nameInput.Focus()

	cmdInput := textinput.New()
	cmdInput.Placeholder = "Command (e.g., SteamDeck=0 %command%)"

	if e != nil {
		nameInput.SetValue(e.Name)
		cmdInput.SetValue(e.Command)
	}

	a.formInputs = []textinput.Model{nameInput, cmdInput}
	a.formFocus = 0
	a.searchInput.Blur()
}

func (a *App) focusFormInput() tea.Cmd {
	for i := range a.formInputs {
		a.formInputs[i].Blur()
	}
	return a.formInputs[a.formFocus].Focus()
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(a.formInputs[0].Value())
	command := strings.TrimSpace(a.formInputs[1].Value())

	if name == "" || command == "" {
		a.err = "Name and command are required"
		return a, nil
	}

	if a.mode == modeAdd {
		if _, err := a.plugin.AddEntry(name, command); err != nil {
			a.err = err.Error()
			return a, nil
		}
		a.status = "Added!"
	} else {
		e, err := a.plugin.UpdateEntry(a.editing.ID, name, command)
		if err != nil {
			a.err = err.Error()
			return a, nil
		}
		if e == nil {
			a.err = fmt.Sprintf("Entry %s no longer exists", a.editing.ID)
		} else {
			a.status = "Updated!"
		}
	}

	a.editing = nil
	a.refreshEntries()
	a.mode = modeNormal
	return a, a.searchInput.Focus()
}

func (a *App) refreshEntries() {
	entries, err := a.plugin.GetEntries()
	if err != nil {
		a.err = err.Error()
		return
	}
	a.entries = entries
	a.filterEntries()
}

func (a *App) filterEntries() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.entries
	} else {
		targets := make([]string, 0, len(a.entries))
		for _, e := range a.entries {
			targets = append(targets, e.Name+" "+e.Command)
		}

		matches := fuzzy.Find(query, targets)
		a.filtered = make([]model.Entry, len(matches))
		for i, m := range matches {
			a.filtered[i] = a.entries[m.Index]
		}
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("deckclip"))
	b.WriteString("\n\n")

	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := (a.height - a.output.Height - 10) / 2
	if listHeight < 3 {
		listHeight = 3
	}

	if a.mode == modeAdd || a.mode == modeEdit {
		b.WriteString(a.renderForm())
	} else {
		b.WriteString(a.renderList(listHeight))
	}

	if a.mode == modeDelete && len(a.filtered) > 0 {
		e := a.filtered[a.cursor]
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("Delete '%s'? (y/n)", e.Name)))
		b.WriteString("\n")
	}

	if a.mode == modeTarget && a.pending != nil {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Launch with %s: ", a.pending.Name)))
		b.WriteString(a.targetInput.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(outputTitleStyle.Render("OUTPUT"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Width(a.width - 4).Render(a.output.View()))
	b.WriteString("\n")

	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

func (a *App) renderList(height int) string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("No entries found. Press 'a' to add one.\n")
	}

	var lines []string
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := min(start+height, len(a.filtered))

	for i := start; i < end; i++ {
		e := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		name := style.Render(prefix + e.Name)
		if env := runner.EnvAssignments(e.Command); len(env) > 0 {
			name += " " + envStyle.Render(strings.Join(env, " "))
		}
		preview := cmdPreviewStyle.Render("  " + truncate(e.Command, a.width-10))
		lines = append(lines, name, preview)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderForm() string {
	var b strings.Builder

	title := "Add Entry"
	if a.mode == modeEdit {
		title = "Edit Entry"
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n\n")

	labels := []string{"Name", "Command"}
	for i, input := range a.formInputs {
		b.WriteString(labelStyle.Render(labels[i] + ": "))
		style := inputStyle
		if i == a.formFocus {
			style = focusedInputStyle
		}
		b.WriteString(style.Width(a.width - 20).Render(input.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderHelp() string {
	if a.mode == modeSearch {
		return helpStyle.Render("type to filter • enter: keep filter • esc: clear")
	}
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "copy"},
		{"/", "search"},
		{"r", "run"},
		{"a", "add"},
		{"e", "edit"},
		{"d", "delete"},
		{"q", "quit"},
	}
	if a.running {
		keys = append(keys, struct{ key, desc string }{"x", "stop"})
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
