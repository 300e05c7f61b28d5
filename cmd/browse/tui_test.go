package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/catalog/catalogtest"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
)

type subjectListings []resources.Listing

func (l subjectListings) ListSubject(ctx context.Context, subjectID uuid.UUID) ([]resources.Listing, error) {
	return l, nil
}

type fakeFiles struct{}

func (fakeFiles) Download(ctx context.Context, id uuid.UUID) (resources.Ticket, error) {
	return resources.Ticket{ResourceID: id, URL: "https://cdn.example.com/" + id.String() + ".pdf", Filename: "paper.pdf"}, nil
}

func (fakeFiles) Article(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	return model.SolvedArticle{ID: id, Title: "Solved AI 2023", Year: "2023"}, nil
}

type noSearch struct{}

func (noSearch) SearchResources(ctx context.Context, c search.Criteria) ([]model.Resource, error) {
	return nil, nil
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, store catalog.Store, listings subjectListings) tuiModel {
	t.Helper()
	ctx := context.Background()
	results := make(chan search.Response, 1)
	session := search.NewSession(ctx, noSearch{}, time.Millisecond, func(search.Response) {}, zerolog.Nop())
	t.Cleanup(session.Close)

	machine, err := navigator.New(ctx, catalog.NewFetcher(store, zerolog.Nop()), listings, navigator.ViewHome)
	require.NoError(t, err)
	return newTUIModel(ctx, machine, fakeFiles{}, session, results)
}

// press feeds a key and runs the command it returns, feeding back the
// navigator and file results
func press(t *testing.T, m tuiModel, key tea.KeyMsg) tuiModel {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(tuiModel)
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case snapshotMsg, downloadMsg, articleMsg:
		next, _ = m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func TestDrillDownToResources(t *testing.T) {
	tree := catalogtest.NewTree()
	paper := resources.Listing{Kind: resources.KindFile, ID: uuid.New(), SubjectID: tree.Subject.ID, Title: "AI Question Paper", Year: "2023"}
	m := newTestModel(t, tree.Store, subjectListings{paper})

	assert.Contains(t, m.View(), "Browse universities")

	m = press(t, m, enter)
	assert.Equal(t, navigator.ViewUniversities, m.snap.View)
	assert.Contains(t, m.View(), tree.University.Name)

	for _, want := range []navigator.View{navigator.ViewDegrees, navigator.ViewSemesters, navigator.ViewSubjects, navigator.ViewResources} {
		m = press(t, m, enter)
		require.NoError(t, m.err)
		require.Equal(t, want, m.snap.View)
	}

	view := m.View()
	assert.Contains(t, view, "MCA - Semester 3 - Artificial Intelligence")
	assert.Contains(t, view, "AI Question Paper · 2023")
	assert.Contains(t, view, tree.University.Name+crumbSeparator+tree.Degree.Name)

	m = press(t, m, enter)
	assert.Contains(t, m.status, paper.ID.String()+".pdf")

	m = press(t, m, esc)
	assert.Equal(t, navigator.ViewSubjects, m.snap.View)
	assert.Contains(t, m.View(), tree.Subject.Name)
}

func TestFailedLevelIsNotRenderedAsEmpty(t *testing.T) {
	tree := catalogtest.NewTree()
	tree.Store.ListErr = errors.New("connection refused")
	m := newTestModel(t, tree.Store, nil)

	m = press(t, m, enter)
	view := m.View()
	assert.Contains(t, view, "Failed to load universities")
	assert.Contains(t, view, "press r to retry")
	assert.NotContains(t, view, "No universities found")

	tree.Store.ListErr = nil
	m = press(t, m, runes("r"))
	assert.Len(t, m.rows(), 1)
	assert.NotContains(t, m.View(), "Failed to load")
}

func TestEmptyLevel(t *testing.T) {
	m := newTestModel(t, catalogtest.NewStore(), nil)

	m = press(t, m, enter)
	assert.Contains(t, m.View(), "No universities found")
	assert.Empty(t, m.rows())
}

func TestHomeShowsSearchResults(t *testing.T) {
	m := newTestModel(t, catalogtest.NewStore(), nil)
	article := resources.Listing{Kind: resources.KindArticle, ID: uuid.New(), Title: "Solved AI 2023"}

	next, _ := m.Update(searchMsg{Seq: 1, Listings: []resources.Listing{article}})
	m = next.(tuiModel)
	require.Len(t, m.rows(), 2)

	m = press(t, m, down)
	m = press(t, m, enter)
	assert.Contains(t, m.status, "Solved AI 2023 (2023)")
}

func TestOlderSearchResultsAreIgnored(t *testing.T) {
	m := newTestModel(t, catalogtest.NewStore(), nil)
	networks := resources.Listing{Kind: resources.KindFile, ID: uuid.New(), Title: "Networks"}
	operating := resources.Listing{Kind: resources.KindFile, ID: uuid.New(), Title: "Operating Systems"}

	next, _ := m.Update(searchMsg{Seq: 2, Term: "networks", Listings: []resources.Listing{networks}})
	m = next.(tuiModel)
	next, _ = m.Update(searchMsg{Seq: 1, Term: "operating", Listings: []resources.Listing{operating}})
	m = next.(tuiModel)

	rows := m.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Networks", rows[1].label)
}

func TestSearchKeysStayInInput(t *testing.T) {
	m := newTestModel(t, catalogtest.NewStore(), nil)

	next, _ := m.Update(runes("/"))
	m = next.(tuiModel)
	require.True(t, m.searching)

	next, _ = m.Update(runes("q"))
	m = next.(tuiModel)
	assert.Equal(t, "q", m.input.Value())
	assert.True(t, m.searching)

	next, _ = m.Update(esc)
	m = next.(tuiModel)
	assert.False(t, m.searching)
}

func TestRenderPlain(t *testing.T) {
	failed := navigator.Snapshot{
		View:  navigator.ViewDegrees,
		Items: &catalog.Result{Kind: catalog.KindDegree, Status: catalog.StatusFailed, Reason: "timeout"},
	}
	assert.Equal(t, "Failed to load degrees: timeout\n", renderPlain(failed))

	empty := navigator.Snapshot{
		View:  navigator.ViewDegrees,
		Items: &catalog.Result{Kind: catalog.KindDegree, Status: catalog.StatusEmpty},
	}
	assert.Equal(t, "No degrees found\n", renderPlain(empty))
}
