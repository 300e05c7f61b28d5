package resources

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sahilchouksey/examace-vault/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu           sync.Mutex
	resources    []model.Resource
	articles     []model.SolvedArticle
	listErr      error
	articleErr   error
	incrementErr error
	increments   map[uuid.UUID]int
	block        chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{increments: map[uuid.UUID]int{}}
}

func (s *fakeStore) ListResources(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.Resource, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Resource
	for _, r := range s.resources {
		if r.SubjectID == subjectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListSolvedArticles(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.SolvedArticle, error) {
	if s.articleErr != nil {
		return nil, s.articleErr
	}
	var out []model.SolvedArticle
	for _, a := range s.articles {
		if a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetResource(ctx context.Context, id uuid.UUID) (model.Resource, error) {
	for _, r := range s.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Resource{}, ErrNotFound
}

func (s *fakeStore) GetArticle(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return model.SolvedArticle{}, ErrNotFound
}

func (s *fakeStore) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incrementErr != nil {
		return s.incrementErr
	}
	s.increments[id]++
	return nil
}

func (s *fakeStore) count(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.increments[id]
}

type bucketResolver struct{ base string }

func (b bucketResolver) Resolve(key string) (string, error) {
	return b.base + "/" + key, nil
}

var subjectID = uuid.New()

func resource(title string, typ model.ResourceType, age time.Duration, published bool) model.Resource {
	return model.Resource{
		ID:           uuid.New(),
		SubjectID:    subjectID,
		Title:        title,
		ResourceType: typ,
		FilePath:     "papers/" + title + ".pdf",
		IsPublished:  published,
		CreatedAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	}
}

func TestListResourcesNewestFirstAndPublishedPolicy(t *testing.T) {
	store := newFakeStore()
	store.resources = []model.Resource{
		resource("old", model.ResourceTypeQuestionPaper, 48*time.Hour, true),
		resource("new", model.ResourceTypeNotes, 0, true),
		resource("draft", model.ResourceTypeNotes, time.Hour, false),
	}

	published := NewLister(store, nil, Options{PublishedOnly: true}, zerolog.Nop())
	got, err := published.ListResources(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Title)
	assert.Equal(t, "old", got[1].Title)

	everything := NewLister(store, nil, Options{PublishedOnly: false}, zerolog.Nop())
	got, err = everything.ListResources(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListSubjectMergesArticlesWithDiscriminant(t *testing.T) {
	store := newFakeStore()
	store.resources = []model.Resource{resource("paper", model.ResourceTypeQuestionPaper, time.Hour, true)}
	store.articles = []model.SolvedArticle{{
		ID: uuid.New(), SubjectID: subjectID, Title: "AI May 2024 solved", IsPublished: true,
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}}

	l := NewLister(store, nil, Options{PublishedOnly: true}, zerolog.Nop())
	got, err := l.ListSubject(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, KindArticle, got[0].Kind)
	assert.Equal(t, model.ResourceTypeSolvedPaper, got[0].ResourceType)
	assert.Empty(t, got[0].FilePath)
	assert.Equal(t, KindFile, got[1].Kind)

	solved := FilterByType(got, string(model.ResourceTypeSolvedPaper))
	require.Len(t, solved, 1)
	assert.Equal(t, KindArticle, solved[0].Kind)
}

func TestListSubjectFailsWhollyWhenArticlesFail(t *testing.T) {
	store := newFakeStore()
	store.resources = []model.Resource{resource("paper", model.ResourceTypeQuestionPaper, 0, true)}
	store.articleErr = errors.New("relation does not exist")

	l := NewLister(store, nil, Options{}, zerolog.Nop())
	got, err := l.ListSubject(context.Background(), subjectID)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestFilterByTypeAllIsIdentity(t *testing.T) {
	listings := []Listing{
		FromResource(resource("a", model.ResourceTypeNotes, 0, true)),
		FromResource(resource("b", model.ResourceTypeQuestionPaper, 0, true)),
	}
	assert.Equal(t, listings, FilterByType(listings, TypeAll))
	assert.Equal(t, listings, FilterByType(listings, ""))
	assert.Nil(t, FilterByType(nil, TypeAll))
}

func TestFilterByTypeIsIdempotent(t *testing.T) {
	var listings []Listing
	for i, typ := range []model.ResourceType{model.ResourceTypeNotes, model.ResourceTypeSolvedPaper, model.ResourceTypeNotes, model.ResourceTypeQuestionPaper} {
		listings = append(listings, FromResource(resource(string(rune('a'+i)), typ, 0, true)))
	}

	for _, typ := range []string{"notes", "solved_paper", "question_paper", "unknown"} {
		once := FilterByType(listings, typ)
		twice := FilterByType(once, typ)
		assert.Equal(t, once, twice, typ)
		for _, l := range once {
			assert.Equal(t, typ, string(l.ResourceType))
		}
	}
	assert.Len(t, FilterByType(listings, "notes"), 2)
	assert.Empty(t, FilterByType(listings, "unknown"))
}

func TestResolveURLKeepsAbsolutePaths(t *testing.T) {
	got, err := ResolveURL("https://x/y.pdf", bucketResolver{base: "https://cdn.example"})
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.pdf", got)

	got, err = ResolveURL("http://files.example/a.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://files.example/a.pdf", got)
}

func TestResolveURLUsesBucketForRelativePaths(t *testing.T) {
	got, err := ResolveURL("/2024/mca-302.pdf", bucketResolver{base: "https://question-papers.blr1.cdn.example"})
	require.NoError(t, err)
	assert.Equal(t, "https://question-papers.blr1.cdn.example/2024/mca-302.pdf", got)

	_, err = ResolveURL("2024/mca-302.pdf", nil)
	assert.ErrorIs(t, err, ErrUnresolvable)

	_, err = ResolveURL("  ", nil)
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestDownloadIncrementsInBackground(t *testing.T) {
	store := newFakeStore()
	id := uuid.New()
	l := NewLister(store, nil, Options{}, zerolog.Nop())

	ticket, err := l.Download(context.Background(), id, "https://x/y.pdf", "AI May 2024")
	require.NoError(t, err)
	l.Wait()

	assert.Equal(t, "https://x/y.pdf", ticket.URL)
	assert.Equal(t, "AI May 2024.pdf", ticket.Filename)
	assert.Equal(t, 1, store.count(id))
}

func TestDownloadSucceedsWhenIncrementFails(t *testing.T) {
	store := newFakeStore()
	store.incrementErr = errors.New("rpc failed")
	l := NewLister(store, nil, Options{}, zerolog.Nop())

	ticket, err := l.Download(context.Background(), uuid.New(), "https://x/y.pdf", "Notes")
	l.Wait()

	require.NoError(t, err)
	assert.Equal(t, "https://x/y.pdf", ticket.URL)
}

func TestDownloadDoesNotWaitForIncrement(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	id := uuid.New()
	l := NewLister(store, nil, Options{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	ticket, err := l.Download(ctx, id, "https://x/y.pdf", "Notes")
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.URL)

	// the request context ending must not abort the counter update
	cancel()
	assert.Equal(t, 0, store.count(id))
	close(store.block)
	l.Wait()
	assert.Equal(t, 1, store.count(id))
}

func TestDownloadByIDHonoursPublishedPolicy(t *testing.T) {
	store := newFakeStore()
	draft := resource("draft", model.ResourceTypeNotes, 0, false)
	store.resources = []model.Resource{draft}

	l := NewLister(store, bucketResolver{base: "https://cdn"}, Options{PublishedOnly: true}, zerolog.Nop())
	_, err := l.DownloadByID(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	l = NewLister(store, bucketResolver{base: "https://cdn"}, Options{}, zerolog.Nop())
	ticket, err := l.DownloadByID(context.Background(), draft.ID)
	require.NoError(t, err)
	l.Wait()
	assert.Equal(t, "https://cdn/papers/draft.pdf", ticket.URL)
	assert.Equal(t, 1, store.count(draft.ID))
}

func TestSuggestedFilename(t *testing.T) {
	assert.Equal(t, "MCA-302 AI.pdf", SuggestedFilename("MCA-302 AI", "https://x/a.pdf"))
	assert.Equal(t, "notes.docx", SuggestedFilename("notes", "https://x/a.docx"))
	assert.Equal(t, "a-b.pdf", SuggestedFilename("a/b", "https://x/file"))
	assert.Equal(t, "resource.pdf", SuggestedFilename(" ", "https://x/file"))
	assert.Equal(t, "paper.pdf", SuggestedFilename("paper.pdf", "https://x/paper.pdf"))
}

func TestValidFilter(t *testing.T) {
	assert.True(t, ValidFilter("all"))
	assert.True(t, ValidFilter("notes"))
	assert.False(t, ValidFilter("slides"))
}

func TestRecordDownload(t *testing.T) {
	store := newFakeStore()
	live := resource("live", model.ResourceTypeQuestionPaper, 0, true)
	draft := resource("draft", model.ResourceTypeNotes, 0, false)
	store.resources = []model.Resource{live, draft}
	l := NewLister(store, nil, Options{PublishedOnly: true}, zerolog.Nop())

	require.NoError(t, l.RecordDownload(context.Background(), live.ID))
	assert.ErrorIs(t, l.RecordDownload(context.Background(), draft.ID), ErrNotFound)
	assert.ErrorIs(t, l.RecordDownload(context.Background(), uuid.New()), ErrNotFound)
	l.Wait()

	assert.Equal(t, 1, store.count(live.ID))
	assert.Equal(t, 0, store.count(draft.ID))
}
