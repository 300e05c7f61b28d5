package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/catalog/catalogtest"
	"github.com/sahilchouksey/examace-vault/database"
	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/utils/middleware"
	"github.com/sahilchouksey/examace-vault/utils/response"
)

type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Error   *response.ErrorDetail `json:"error"`
}

type healthyDB struct{}

func (healthyDB) HealthCheck(ctx context.Context) error { return nil }

type resourceStore struct {
	mu         sync.Mutex
	rows       []model.Resource
	articles   []model.SolvedArticle
	increments map[uuid.UUID]int
}

func (s *resourceStore) ListResources(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.Resource, error) {
	var out []model.Resource
	for _, r := range s.rows {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *resourceStore) ListSolvedArticles(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.SolvedArticle, error) {
	var out []model.SolvedArticle
	for _, a := range s.articles {
		if a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *resourceStore) GetResource(ctx context.Context, id uuid.UUID) (model.Resource, error) {
	for _, r := range s.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Resource{}, resources.ErrNotFound
}

func (s *resourceStore) GetArticle(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return model.SolvedArticle{}, resources.ErrNotFound
}

func (s *resourceStore) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments[id]++
	return nil
}

func (s *resourceStore) SearchResources(ctx context.Context, c search.Criteria) ([]model.Resource, error) {
	var out []model.Resource
	for _, r := range s.rows {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *resourceStore) CountActive(ctx context.Context, kind catalog.Kind) (int64, error) {
	return 1, nil
}

func (s *resourceStore) ResourceTotals(ctx context.Context) (database.Totals, error) {
	return database.Totals{Resources: int64(len(s.rows)), TotalDownloads: 42}, nil
}

type subscribers struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *subscribers) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[sub.Email] {
		return &pgconn.PgError{Code: database.CodeUniqueViolation}
	}
	s.seen[sub.Email] = true
	return nil
}

type contacts struct{}

func (contacts) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	msg.ID = uuid.New()
	return nil
}

func (contacts) UpdateContactStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus, errMsg string) error {
	return nil
}

type mailbox struct{ err error }

func (m mailbox) Send(ctx context.Context, mail services.Mail) error { return m.err }

type fixture struct {
	app    *fiber.App
	tree   catalogtest.Tree
	store  *resourceStore
	lister *resources.Lister
	paper  model.Resource
	notes  model.Resource
}

func newFixture(t *testing.T, mailErr error) fixture {
	t.Helper()
	tree := catalogtest.NewTree()
	store := &resourceStore{increments: map[uuid.UUID]int{}}
	paper := model.Resource{
		ID: uuid.New(), SubjectID: tree.Subject.ID, Title: "AI May 2024",
		Subject: "Artificial Intelligence", Course: "MCA",
		ResourceType: model.ResourceTypeQuestionPaper, FilePath: "https://cdn.example.com/ai-2024.pdf",
		IsPublished: true, CreatedAt: time.Now().Add(-time.Hour),
	}
	notes := model.Resource{
		ID: uuid.New(), SubjectID: tree.Subject.ID, Title: "Search algorithms notes",
		ResourceType: model.ResourceTypeNotes, FilePath: "https://cdn.example.com/notes.pdf",
		IsPublished: true, CreatedAt: time.Now(),
	}
	store.rows = []model.Resource{paper, notes}

	lister := resources.NewLister(store, nil, resources.Options{PublishedOnly: true}, zerolog.Nop())
	t.Cleanup(lister.Wait)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorBoundary(zerolog.Nop())})
	SetupRoutes(app, Dependencies{
		DB:            healthyDB{},
		Loader:        catalog.NewFetcher(tree.Store, zerolog.Nop()),
		Lister:        lister,
		Search:        store,
		Stats:         services.NewStatsService(store, store, nil, time.Minute, zerolog.Nop()),
		Subscriptions: services.NewSubscriptionService(&subscribers{seen: map[string]bool{}}, zerolog.Nop()),
		Contact:       services.NewContactService(contacts{}, mailbox{err: mailErr}, "", zerolog.Nop()),
		FormLimit:     100,
		FormWindow:    time.Minute,
		AccessLog:     io.Discard,
		Logger:        zerolog.Nop(),
	})
	return fixture{app: app, tree: tree, store: store, lister: lister, paper: paper, notes: notes}
}

func (f fixture) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func TestPing(t *testing.T) {
	f := newFixture(t, nil)
	resp, env := f.do(t, "GET", "/ping", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"ok","cache":"disabled"}`, string(env.Data))
}

func TestCatalogDrillDown(t *testing.T) {
	f := newFixture(t, nil)

	resp, env := f.do(t, "GET", "/api/v1/universities", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var unis []catalog.Entity
	require.NoError(t, json.Unmarshal(env.Data, &unis))
	require.Len(t, unis, 1)
	assert.Equal(t, f.tree.University.ID, unis[0].ID)

	resp, env = f.do(t, "GET", "/api/v1/semesters/"+f.tree.Semester.ID.String()+"/subjects", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var subjects []catalog.Entity
	require.NoError(t, json.Unmarshal(env.Data, &subjects))
	require.Len(t, subjects, 1)
	assert.Equal(t, "Artificial Intelligence", subjects[0].Name)

	resp, _ = f.do(t, "GET", "/api/v1/degrees/"+f.tree.Degree.ID.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestEmptyLevelIsNotAFailure(t *testing.T) {
	f := newFixture(t, nil)

	resp, env := f.do(t, "GET", "/api/v1/universities/"+uuid.NewString()+"/degrees", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))

	f.tree.Store.ListErr = errors.New("connection refused")
	resp, env = f.do(t, "GET", "/api/v1/universities", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeFetchFailed, env.Error.Code)
}

func TestBadAndUnknownIDs(t *testing.T) {
	f := newFixture(t, nil)

	resp, _ := f.do(t, "GET", "/api/v1/degrees/not-a-uuid/semesters", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/subjects/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubjectResourcesWithTypeFilter(t *testing.T) {
	f := newFixture(t, nil)
	base := "/api/v1/subjects/" + f.tree.Subject.ID.String() + "/resources"

	_, env := f.do(t, "GET", base, nil)
	var all []resources.Listing
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 2)
	assert.Equal(t, f.notes.ID, all[0].ID, "newest first")

	_, env = f.do(t, "GET", base+"?type=question_paper", nil)
	var papers []resources.Listing
	require.NoError(t, json.Unmarshal(env.Data, &papers))
	require.Len(t, papers, 1)
	assert.Equal(t, f.paper.ID, papers[0].ID)

	resp, _ := f.do(t, "GET", base+"?type=slides", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownloadRedirectsAndCounts(t *testing.T) {
	f := newFixture(t, nil)

	resp, _ := f.do(t, "GET", "/api/v1/resources/"+f.paper.ID.String()+"/download", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, f.paper.FilePath, resp.Header.Get("Location"))
	assert.Empty(t, resp.Header.Get(fiber.HeaderContentDisposition))

	resp, env := f.do(t, "GET", "/api/v1/resources/"+f.paper.ID.String()+"/download?redirect=false", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ticket resources.Ticket
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	assert.Equal(t, "AI May 2024.pdf", ticket.Filename)

	resp, _ = f.do(t, "POST", "/api/v1/resources/"+f.paper.ID.String()+"/downloads", nil)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/resources/"+uuid.NewString()+"/download", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	f.lister.Wait()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Equal(t, 3, f.store.increments[f.paper.ID])
}

func TestSearchAndStats(t *testing.T) {
	f := newFixture(t, nil)

	_, env := f.do(t, "GET", "/api/v1/resources/search?q=artificial", nil)
	var hits []resources.Listing
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, f.paper.ID, hits[0].ID)

	_, env = f.do(t, "GET", "/api/v1/stats", nil)
	var stats services.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalResources)
	assert.Equal(t, int64(42), stats.TotalDownloads)
}

func TestSubscribeTwice(t *testing.T) {
	f := newFixture(t, nil)
	body := map[string]string{"email": "reader@example.com"}

	resp, env := f.do(t, "POST", "/api/v1/subscriptions", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var notice response.Notice
	require.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, "Success!", notice.Title)
	assert.True(t, notice.CloseDialog)

	resp, env = f.do(t, "POST", "/api/v1/subscriptions", body)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, "Already Subscribed", notice.Title)
	assert.False(t, notice.CloseDialog)

	resp, _ = f.do(t, "POST", "/api/v1/subscriptions", map[string]string{"email": ""})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestContact(t *testing.T) {
	body := map[string]string{
		"name":    "Asha",
		"email":   "asha@example.com",
		"subject": "Missing paper",
		"message": "Please add the 2023 AI paper.",
	}

	resp, env := newFixture(t, nil).do(t, "POST", "/api/v1/contact", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Message sent successfully!", env.Message)

	resp, env = newFixture(t, errors.New("smtp down")).do(t, "POST", "/api/v1/contact", body)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	var notice response.Notice
	require.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Contains(t, notice.Description, "edumasters41@gmail.com")
}

func TestNavigateDeepLink(t *testing.T) {
	f := newFixture(t, nil)
	path := "/api/v1/navigate/universities/" + f.tree.University.ID.String() +
		"/degrees/" + f.tree.Degree.ID.String() +
		"/semesters/" + f.tree.Semester.ID.String()

	resp, env := f.do(t, "GET", path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap struct {
		View        string `json:"view"`
		Breadcrumbs []struct {
			Label string `json:"label"`
		} `json:"breadcrumbs"`
		Items struct {
			Status string           `json:"status"`
			Items  []catalog.Entity `json:"items"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "subjects", snap.View)
	assert.Len(t, snap.Breadcrumbs, 3)
	require.Len(t, snap.Items.Items, 1)
	assert.Equal(t, f.tree.Subject.ID, snap.Items.Items[0].ID)
	assert.Equal(t, 3, f.tree.Store.TotalGetCalls())

	resp, _ = f.do(t, "GET", "/api/v1/navigate/universities/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/v1/navigate/about", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	resp, env := newFixture(t, nil).do(t, "GET", "/api/v1/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeNotFound, env.Error.Code)
}
