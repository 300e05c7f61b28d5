package resources

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sahilchouksey/examace-vault/model"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnresolvable = errors.New("file path cannot be resolved to a URL")
)

// Store is the data backend for resources and solved articles
type Store interface {
	ListResources(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.Resource, error)
	ListSolvedArticles(ctx context.Context, subjectID uuid.UUID, publishedOnly bool) ([]model.SolvedArticle, error)
	GetResource(ctx context.Context, id uuid.UUID) (model.Resource, error)
	GetArticle(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}

// URLResolver turns a storage key into a publicly fetchable URL
type URLResolver interface {
	Resolve(key string) (string, error)
}

// Options tunes the lister
type Options struct {
	// PublishedOnly hides unpublished resources and articles
	PublishedOnly bool
	// IncrementTimeout bounds the background counter update
	IncrementTimeout time.Duration
}

// Ticket is everything a client needs to fetch a file
type Ticket struct {
	ResourceID uuid.UUID `json:"resource_id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
}

// Lister serves the leaf level of the catalog
type Lister struct {
	store    Store
	resolver URLResolver
	opts     Options
	log      zerolog.Logger
	pending  sync.WaitGroup
}

// NewLister creates a lister; resolver may be nil when every file path is absolute
func NewLister(store Store, resolver URLResolver, opts Options, logger zerolog.Logger) *Lister {
	if opts.IncrementTimeout <= 0 {
		opts.IncrementTimeout = 10 * time.Second
	}
	return &Lister{
		store:    store,
		resolver: resolver,
		opts:     opts,
		log:      logger.With().Str("component", "resources").Logger(),
	}
}

// ListResources returns the downloadable files of a subject, newest first
func (l *Lister) ListResources(ctx context.Context, subjectID uuid.UUID) ([]Listing, error) {
	rows, err := l.store.ListResources(ctx, subjectID, l.opts.PublishedOnly)
	if err != nil {
		l.log.Error().Err(err).Str("subject_id", subjectID.String()).Msg("failed to list resources")
		return nil, fmt.Errorf("list resources: %w", err)
	}

	out := make([]Listing, 0, len(rows))
	for _, r := range rows {
		if l.opts.PublishedOnly && !r.IsPublished {
			continue
		}
		out = append(out, FromResource(r))
	}
	sortNewestFirst(out)
	return out, nil
}

// ListSolvedArticles returns a subject's solved articles as listings
func (l *Lister) ListSolvedArticles(ctx context.Context, subjectID uuid.UUID) ([]Listing, error) {
	rows, err := l.store.ListSolvedArticles(ctx, subjectID, l.opts.PublishedOnly)
	if err != nil {
		l.log.Error().Err(err).Str("subject_id", subjectID.String()).Msg("failed to list solved articles")
		return nil, fmt.Errorf("list solved articles: %w", err)
	}

	out := make([]Listing, 0, len(rows))
	for _, a := range rows {
		if l.opts.PublishedOnly && !a.IsPublished {
			continue
		}
		out = append(out, FromArticle(a))
	}
	sortNewestFirst(out)
	return out, nil
}

// ListSubject merges files and articles into one listing. Either both
// loads succeed or the whole listing fails.
func (l *Lister) ListSubject(ctx context.Context, subjectID uuid.UUID) ([]Listing, error) {
	files, err := l.ListResources(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	articles, err := l.ListSolvedArticles(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	out := append(files, articles...)
	sortNewestFirst(out)
	return out, nil
}

// GetArticle loads one solved article for the article page
func (l *Lister) GetArticle(ctx context.Context, id uuid.UUID) (model.SolvedArticle, error) {
	article, err := l.store.GetArticle(ctx, id)
	if err != nil {
		return model.SolvedArticle{}, err
	}
	if l.opts.PublishedOnly && !article.IsPublished {
		return model.SolvedArticle{}, ErrNotFound
	}
	return article, nil
}

// DownloadByID looks the file path up before downloading
func (l *Lister) DownloadByID(ctx context.Context, id uuid.UUID) (Ticket, error) {
	r, err := l.store.GetResource(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if l.opts.PublishedOnly && !r.IsPublished {
		return Ticket{}, ErrNotFound
	}
	return l.Download(ctx, r.ID, r.FilePath, r.Title)
}

// Download resolves the file URL and records the download. The counter
// update runs in the background; its failure never blocks the download.
func (l *Lister) Download(ctx context.Context, id uuid.UUID, filePath, title string) (Ticket, error) {
	fileURL, err := ResolveURL(filePath, l.resolver)
	if err != nil {
		return Ticket{}, err
	}

	if id != uuid.Nil {
		l.pending.Add(1)
		go l.increment(context.WithoutCancel(ctx), id)
	}

	return Ticket{
		ResourceID: id,
		URL:        fileURL,
		Filename:   SuggestedFilename(title, fileURL),
	}, nil
}

// RecordDownload only bumps the counter, for clients that resolved the URL
// themselves. The resource must exist and be visible.
func (l *Lister) RecordDownload(ctx context.Context, id uuid.UUID) error {
	r, err := l.store.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if l.opts.PublishedOnly && !r.IsPublished {
		return ErrNotFound
	}
	l.pending.Add(1)
	go l.increment(context.WithoutCancel(ctx), r.ID)
	return nil
}

// Wait blocks until every background counter update has finished
func (l *Lister) Wait() {
	l.pending.Wait()
}

func (l *Lister) increment(ctx context.Context, id uuid.UUID) {
	defer l.pending.Done()

	ctx, cancel := context.WithTimeout(ctx, l.opts.IncrementTimeout)
	defer cancel()

	if err := l.store.IncrementDownloads(ctx, id); err != nil {
		l.log.Warn().Err(err).Str("resource_id", id.String()).Msg("failed to increment download count")
	}
}

// ResolveURL returns filePath unchanged when it is already an absolute
// http(s) URL, otherwise asks the storage resolver.
func ResolveURL(filePath string, resolver URLResolver) (string, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return "", ErrUnresolvable
	}
	if IsAbsoluteURL(filePath) {
		return filePath, nil
	}
	if resolver == nil {
		return "", fmt.Errorf("%w: %q", ErrUnresolvable, filePath)
	}
	resolved, err := resolver.Resolve(strings.TrimPrefix(filePath, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	return resolved, nil
}

// IsAbsoluteURL reports whether s is an http or https URL
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SuggestedFilename builds a download name from the title and the URL extension
func SuggestedFilename(title, fileURL string) string {
	ext := ".pdf"
	if u, err := url.Parse(fileURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}

	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "resource"
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

func sortNewestFirst(listings []Listing) {
	slices.SortStableFunc(listings, func(a, b Listing) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
}
