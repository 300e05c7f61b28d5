package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
)

const searchDelay = 300 * time.Millisecond

// files opens the leaves of the catalog
type files interface {
	Download(ctx context.Context, id uuid.UUID) (resources.Ticket, error)
	Article(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error)
}

type (
	snapshotMsg struct {
		snap navigator.Snapshot
		err  error
	}
	searchMsg   search.Response
	downloadMsg struct {
		ticket resources.Ticket
		err    error
	}
	articleMsg struct {
		article model.SolvedArticle
		err     error
	}
)

// row is one selectable line of the current screen
type row struct {
	label       string
	openCatalog bool
	entity      *catalog.Entity
	listing     *resources.Listing
}

type tuiModel struct {
	ctx     context.Context
	machine *navigator.Machine
	files   files
	session *search.Session
	results <-chan search.Response
	styles  styles

	snap      navigator.Snapshot
	cursor    int
	input     textinput.Model
	searching bool
	found     []resources.Listing
	foundSeq  uint64
	searchErr error
	busy      bool
	status    string
	err       error
}

func newTUIModel(ctx context.Context, machine *navigator.Machine, f files, session *search.Session, results <-chan search.Response) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Search papers, subjects, years..."
	ti.CharLimit = 100
	ti.Prompt = "/ "

	return tuiModel{
		ctx:     ctx,
		machine: machine,
		files:   f,
		session: session,
		results: results,
		styles:  defaultStyles(),
		snap:    machine.Snapshot(),
		input:   ti,
	}
}

func runTUI(ctx context.Context, opts *options) error {
	b, err := opts.backend()
	if err != nil {
		return err
	}
	defer b.close()

	ctx, cancel := context.WithCancel(ctx)
	results := make(chan search.Response, 1)
	session := search.NewSession(ctx, b.api, searchDelay, func(r search.Response) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	}, b.log)
	defer session.Close()
	defer cancel()

	machine, err := navigator.New(ctx, b.fetcher, b.api, navigator.ViewHome)
	if err != nil {
		return err
	}

	// the home page opens with the recent uploads
	session.Submit("")

	p := tea.NewProgram(newTUIModel(ctx, machine, b.api, session, results), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func (m tuiModel) Init() tea.Cmd {
	return waitForSearch(m.results)
}

func waitForSearch(results <-chan search.Response) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return searchMsg(r)
	}
}

// transition runs a navigator step off the UI goroutine
func (m tuiModel) transition(step func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := step(m.ctx)
		return snapshotMsg{snap: m.machine.Snapshot(), err: err}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.busy = false
		m.err = msg.err
		m.snap = msg.snap
		m.cursor = 0
		m.status = ""
		return m, nil

	case searchMsg:
		if msg.Seq < m.foundSeq {
			return m, waitForSearch(m.results)
		}
		m.foundSeq = msg.Seq
		m.found = msg.Listings
		m.searchErr = msg.Err
		if m.snap.View == navigator.ViewHome {
			m.clampCursor()
		}
		return m, waitForSearch(m.results)

	case downloadMsg:
		m.busy = false
		if msg.err != nil {
			m.status = m.styles.Error.Render("Download failed: " + msg.err.Error())
		} else {
			m.status = fmt.Sprintf("%s\n%s", msg.ticket.Filename, msg.ticket.URL)
		}
		return m, nil

	case articleMsg:
		m.busy = false
		if msg.err != nil {
			m.status = m.styles.Error.Render("Could not open article: " + msg.err.Error())
		} else {
			m.status = fmt.Sprintf("%s (%s)\n%s", msg.article.Title, msg.article.Year, msg.article.Description)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.session.Submit(m.input.Value())
		m.searching = false
		m.input.Blur()
		m.cursor = 0
		return m, nil
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.session.Type(v)
	}
	return m, cmd
}

func (m tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil
	case "/":
		if m.snap.View != navigator.ViewHome {
			return m, nil
		}
		m.searching = true
		return m, m.input.Focus()
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc", "backspace", "left", "h":
		m.busy = true
		return m, m.transition(m.machine.Back)
	case "r":
		m.busy = true
		return m, m.transition(func(ctx context.Context) error {
			m.machine.Refresh(ctx)
			return nil
		})
	case "enter", "right", "l":
		return m.open()
	}
	return m, nil
}

// open acts on the row under the cursor
func (m tuiModel) open() (tea.Model, tea.Cmd) {
	rows := m.rows()
	if m.cursor >= len(rows) {
		return m, nil
	}
	r := rows[m.cursor]

	switch {
	case r.openCatalog:
		m.busy = true
		return m, m.transition(m.machine.OpenCatalog)
	case r.entity != nil:
		e := *r.entity
		m.busy = true
		return m, m.transition(func(ctx context.Context) error {
			return m.machine.Select(ctx, e)
		})
	case r.listing != nil && r.listing.Kind == resources.KindArticle:
		id := r.listing.ID
		m.busy = true
		m.status = "Opening article..."
		return m, func() tea.Msg {
			a, err := m.files.Article(m.ctx, id)
			return articleMsg{article: a, err: err}
		}
	case r.listing != nil:
		id := r.listing.ID
		m.busy = true
		m.status = "Preparing download..."
		return m, func() tea.Msg {
			t, err := m.files.Download(m.ctx, id)
			return downloadMsg{ticket: t, err: err}
		}
	}
	return m, nil
}

func (m tuiModel) rows() []row {
	var out []row
	switch {
	case m.snap.View == navigator.ViewHome:
		out = append(out, row{label: "Browse universities", openCatalog: true})
		for i := range m.found {
			out = append(out, row{label: listingLabel(m.found[i]), listing: &m.found[i]})
		}
	case m.snap.Items != nil:
		for _, e := range m.snap.Items.Items() {
			out = append(out, row{label: e.Label(), entity: &e})
		}
	case m.snap.Resources != nil:
		for i := range m.snap.Resources.Items {
			l := m.snap.Resources.Items[i]
			out = append(out, row{label: listingLabel(l), listing: &l})
		}
	}
	return out
}

func (m *tuiModel) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func listingLabel(l resources.Listing) string {
	if l.Year != "" {
		return fmt.Sprintf("%s · %s", l.Title, l.Year)
	}
	return l.Title
}

func (m tuiModel) View() string {
	s := m.styles
	var sb strings.Builder

	sb.WriteString(s.Title.Render("ExamAce Vault"))
	sb.WriteString("\n")
	if crumbs := breadcrumbs(m.snap); crumbs != "" {
		sb.WriteString(s.Crumbs.Render(crumbs))
		sb.WriteString("\n")
	}
	if m.snap.Header != "" {
		sb.WriteString(s.Header.Render(m.snap.Header))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(s.Error.Render(m.err.Error()))
		sb.WriteString("\n\n")
	}

	if m.snap.View == navigator.ViewHome {
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		if m.searchErr != nil {
			sb.WriteString(s.Error.Render("Search failed: " + m.searchErr.Error()))
			sb.WriteString("\n")
		}
	}

	if msg := m.stateText(); msg != "" {
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	for i, r := range m.rows() {
		if i == m.cursor {
			sb.WriteString(s.Selected.Render("> " + r.label))
		} else {
			sb.WriteString(s.Normal.Render("  " + r.label))
		}
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(s.Status.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(s.Dim.Render(m.help()))
	return sb.String()
}

// stateText is the line shown when a level has no cards to render; a
// failed load reads differently from an empty one
func (m tuiModel) stateText() string {
	s := m.styles
	switch {
	case m.busy && m.status == "":
		return s.Dim.Render("Loading...")
	case m.snap.Items != nil:
		res := m.snap.Items
		switch res.Status {
		case catalog.StatusFailed:
			return s.Error.Render(failedText(res.Kind.Plural(), res.Reason) + " (press r to retry)")
		case catalog.StatusEmpty, catalog.StatusSkipped:
			return s.Dim.Render(emptyText(res.Kind))
		}
	case m.snap.Resources != nil:
		switch m.snap.Resources.Status {
		case catalog.StatusFailed:
			return s.Error.Render(failedText("resources", m.snap.Resources.Reason) + " (press r to retry)")
		case catalog.StatusEmpty, catalog.StatusSkipped:
			return s.Dim.Render("No resources found")
		}
	}
	return ""
}

func (m tuiModel) help() string {
	if m.searching {
		return "enter search · esc cancel"
	}
	if m.snap.View == navigator.ViewHome {
		return "↑/↓ move · enter open · / search · q quit"
	}
	return "↑/↓ move · enter open · esc back · r reload · q quit"
}
