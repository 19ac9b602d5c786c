package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const wikipediaBase = "https://pt.wikipedia.org"

type Wikipedia struct {
	BaseURL   string
	Client    *http.Client
	ThumbSize int
	Timeout   time.Duration
}

func NewWikipedia(baseURL string) *Wikipedia {
	if baseURL == "" {
		baseURL = wikipediaBase
	}
	return &Wikipedia{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Client:    newHTTPClient(DefaultTimeout),
		ThumbSize: 400,
		Timeout:   DefaultTimeout,
	}
}

func (w *Wikipedia) Name() string { return "wikipedia" }

// PageImage returns the thumbnail of the page titled title, or "" when the
// page has none.
//
//	GET {BaseURL}/w/api.php?action=query&prop=pageimages&format=json&titles=Onça-pintada&pithumbsize=400
//	{"query": {"pages": {"123": {"title": "...", "thumbnail": {"source": "https://..."}}}}}
func (w *Wikipedia) PageImage(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrNoQuery
	}

	u, err := url.Parse(w.BaseURL + "/w/api.php")
	if err != nil {
		return "", fmt.Errorf("wikipedia: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("action", "query")
	q.Set("prop", "pageimages")
	q.Set("format", "json")
	q.Set("redirects", "1")
	q.Set("titles", title)
	size := w.ThumbSize
	if size <= 0 {
		size = 400
	}
	q.Set("pithumbsize", strconv.Itoa(size))
	u.RawQuery = q.Encode()

	client := w.Client
	if client == nil {
		client = newHTTPClient(w.Timeout)
	}

	var body map[string]any
	if err := getJSON(ctx, client, w.Name(), u.String(), w.Timeout, &body); err != nil {
		return "", err
	}

	pages, ok := RawItem(body).Object("query.pages")
	if !ok {
		return "", nil
	}
	for _, p := range pages {
		page, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if src := RawItem(page).String("thumbnail.source"); src != "" {
			return src, nil
		}
	}
	return "", nil
}
