package storage

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/examace-vault/resources"
)

func newClient(t *testing.T, cfg SpacesConfig) *SpacesClient {
	t.Helper()
	cfg.AccessKey = "DO00TESTKEY"
	cfg.SecretKey = "test-secret"
	if cfg.Bucket == "" {
		cfg.Bucket = "question-papers"
	}
	if cfg.Region == "" {
		cfg.Region = "blr1"
	}
	c, err := NewSpacesClient(cfg)
	require.NoError(t, err)
	return c
}

func TestGetFileURL(t *testing.T) {
	plain := newClient(t, SpacesConfig{})
	assert.Equal(t, "https://question-papers.blr1.digitaloceanspaces.com/2024/ai.pdf", plain.GetFileURL("/2024/ai.pdf"))

	cdn := newClient(t, SpacesConfig{CDNURL: "https://cdn.examace.test/"})
	assert.Equal(t, "https://cdn.examace.test/2024/ai.pdf", cdn.GetFileURL("2024/ai.pdf"))
}

func TestResolveSatisfiesResourceResolver(t *testing.T) {
	var resolver resources.URLResolver = newClient(t, SpacesConfig{Endpoint: "https://blr1.digitaloceanspaces.com"})

	got, err := resources.ResolveURL("papers/mca-302.pdf", resolver)
	require.NoError(t, err)
	assert.Equal(t, "https://question-papers.blr1.digitaloceanspaces.com/papers/mca-302.pdf", got)

	got, err = resources.ResolveURL("https://x/y.pdf", resolver)
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.pdf", got)

	_, err = newClient(t, SpacesConfig{}).Resolve(" / ")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestResolvePresignsWhenConfigured(t *testing.T) {
	c := newClient(t, SpacesConfig{PresignTTL: 15 * time.Minute})

	signed, err := c.Resolve("private/ai.pdf")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/private/ai.pdf"), u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestNewSpacesClientRequiresBucket(t *testing.T) {
	_, err := NewSpacesClient(SpacesConfig{Region: "blr1"})
	assert.Error(t, err)
}
