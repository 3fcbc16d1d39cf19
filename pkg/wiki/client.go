// Package wiki fetches plain-text articles and page thumbnails from Wikipedia.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wildlife-threat-api/pkg/logger"
)

// ErrNotFound means Wikipedia has no page for the title.
var ErrNotFound = errors.New("wikipedia page not found")

const (
	// User-Agent parts required by the Wikimedia robot policy.
	userAgentName    = "Wildlife-Threat-API"
	userAgentContact = "https://github.com/wildlife-threat-api/wildlife-threat-api"
	userAgentLibrary = "Go-HTTP-Client"

	defaultAPIURL  = "https://en.wikipedia.org/w/api.php"
	defaultRESTURL = "https://en.wikipedia.org/api/rest_v1"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIURL     string
	RESTURL    string
	AppVersion string
	Timeout    time.Duration
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64
	CacheTTL  time.Duration
}

// Client talks to the MediaWiki Action API and the REST summary endpoint.
type Client struct {
	apiURL     string
	restURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache
}

// NewClient builds a client with its own rate limiter and article cache.
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.RESTURL == "" {
		opts.RESTURL = defaultRESTURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		apiURL:     opts.APIURL,
		restURL:    strings.TrimRight(opts.RESTURL, "/"),
		userAgent:  buildUserAgent(opts.AppVersion),
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		cache:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
	}
}

// buildUserAgent formats <client>/<version> (<contact>) <library>/<go version>.
func buildUserAgent(appVersion string) string {
	if appVersion == "" {
		appVersion = "unknown"
	}
	return fmt.Sprintf("%s/%s (%s) %s/%s",
		userAgentName, appVersion, userAgentContact, userAgentLibrary, runtime.Version())
}

// UserAgent returns the header value sent with every request.
func (c *Client) UserAgent() string { return c.userAgent }

// Article returns the plain-text extract of the page, following redirects.
func (c *Client) Article(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrNotFound
	}
	key := "article:" + title
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("titles", title)

	obj, err := c.getJSON(ctx, c.apiURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	pages, err := obj.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return "", ErrNotFound
	}
	page := pages[0]
	if missing, _ := page.GetBoolean("missing"); missing {
		return "", ErrNotFound
	}
	if invalid, _ := page.GetBoolean("invalid"); invalid {
		return "", ErrNotFound
	}

	extract, _ := page.GetString("extract")
	c.cache.Set(key, extract, cache.DefaultExpiration)
	logger.Debug("Fetched Wikipedia article",
		zap.String("title", title),
		zap.Int("length", len(extract)))
	return extract, nil
}

// Thumbnail returns the page summary thumbnail URL, or "" when the page has none.
func (c *Client) Thumbnail(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrNotFound
	}
	key := "thumb:" + title
	if v, ok := c.cache.Get(key); ok {
		return v.(string), nil
	}

	endpoint := c.restURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	obj, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return "", err
	}

	source, _ := obj.GetString("thumbnail", "source")
	c.cache.Set(key, source, cache.DefaultExpiration)
	return source, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (*jason.Object, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wikipedia rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wikipedia returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	obj, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wikipedia response: %w", err)
	}
	return obj, nil
}
