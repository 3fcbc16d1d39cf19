package wiki

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	apiPattern  = `=~^https://en\.wikipedia\.org/w/api\.php`
	restPattern = `=~^https://en\.wikipedia\.org/api/rest_v1/page/summary/`
)

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func newTestClient() *Client {
	return NewClient(Options{AppVersion: "1.2.3", Timeout: 5 * time.Second})
}

const tigerResponse = `{
  "batchcomplete": true,
  "query": {
    "pages": [
      {
        "pageid": 30046,
        "ns": 0,
        "title": "Tiger",
        "extract": "The tiger is the largest living cat species. It is threatened by poaching."
      }
    ]
  }
}`

func TestArticle(t *testing.T) {
	setupHTTPMock(t)

	var gotQuery map[string]string
	var gotUA string
	httpmock.RegisterResponder("GET", apiPattern, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		gotQuery = map[string]string{
			"action":        q.Get("action"),
			"prop":          q.Get("prop"),
			"explaintext":   q.Get("explaintext"),
			"redirects":     q.Get("redirects"),
			"formatversion": q.Get("formatversion"),
			"titles":        q.Get("titles"),
		}
		gotUA = req.Header.Get("User-Agent")
		return httpmock.NewStringResponse(http.StatusOK, tigerResponse), nil
	})

	client := newTestClient()
	text, err := client.Article(context.Background(), "Panthera tigris")
	require.NoError(t, err)
	assert.Contains(t, text, "largest living cat")

	assert.Equal(t, map[string]string{
		"action":        "query",
		"prop":          "extracts",
		"explaintext":   "1",
		"redirects":     "1",
		"formatversion": "2",
		"titles":        "Panthera tigris",
	}, gotQuery)
	assert.True(t, strings.HasPrefix(gotUA, "Wildlife-Threat-API/1.2.3 ("), gotUA)
}

func TestArticleIsCached(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", apiPattern, httpmock.NewStringResponder(http.StatusOK, tigerResponse))

	client := newTestClient()
	for i := 0; i < 3; i++ {
		_, err := client.Article(context.Background(), "Panthera tigris")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestArticleMissing(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", apiPattern, httpmock.NewStringResponder(http.StatusOK,
		`{"batchcomplete": true, "query": {"pages": [{"ns": 0, "title": "Unicorn rex", "missing": true}]}}`))

	_, err := newTestClient().Article(context.Background(), "Unicorn rex")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"server_error", http.StatusInternalServerError, "boom", false},
		{"invalid_json", http.StatusOK, "{invalid json", false},
		{"no_pages", http.StatusOK, `{"batchcomplete": true}`, true},
		{"invalid_title", http.StatusOK, `{"query": {"pages": [{"title": "", "invalid": true}]}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder("GET", apiPattern, httpmock.NewStringResponder(tt.status, tt.body))

			text, err := newTestClient().Article(context.Background(), "Panthera tigris")
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, tt.notFound, err == ErrNotFound, err)
		})
	}
}

func TestArticleEmptyTitle(t *testing.T) {
	_, err := newTestClient().Article(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThumbnail(t *testing.T) {
	setupHTTPMock(t)

	var gotPath string
	httpmock.RegisterResponder("GET", restPattern, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.EscapedPath()
		return httpmock.NewStringResponse(http.StatusOK,
			`{"title": "Tiger", "thumbnail": {"source": "https://upload.wikimedia.org/tiger.jpg", "width": 320}}`), nil
	})

	src, err := newTestClient().Thumbnail(context.Background(), "Panthera tigris")
	require.NoError(t, err)
	assert.Equal(t, "https://upload.wikimedia.org/tiger.jpg", src)
	assert.Equal(t, "/api/rest_v1/page/summary/Panthera_tigris", gotPath)
}

func TestThumbnailAbsent(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", restPattern, httpmock.NewStringResponder(http.StatusOK, `{"title": "Bufo bufo"}`))

	src, err := newTestClient().Thumbnail(context.Background(), "Bufo bufo")
	require.NoError(t, err)
	assert.Empty(t, src)
}

func TestThumbnailNotFound(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", restPattern, httpmock.NewStringResponder(http.StatusNotFound, `{"type": "not_found"}`))

	_, err := newTestClient().Thumbnail(context.Background(), "Unicorn")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder("GET", apiPattern, httpmock.NewStringResponder(http.StatusOK, tigerResponse))

	client := NewClient(Options{RateLimit: 0.001})
	_, err := client.Article(context.Background(), "Panthera tigris")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Article(ctx, "Aquila chrysaetos")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
