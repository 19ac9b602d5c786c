package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"biodex/internal/query"
)

const gbifBase = "https://api.gbif.org"

// GBIF searches the species checklist. It only answers text queries.
type GBIF struct {
	BaseURL  string
	Client   *http.Client
	Limit    int
	Kingdom  string
	Language string // ISO 639-2 code for preferred vernacular names
	Timeout  time.Duration
}

func NewGBIF(baseURL string) *GBIF {
	if baseURL == "" {
		baseURL = gbifBase
	}
	return &GBIF{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   newHTTPClient(DefaultTimeout),
		Limit:    30,
		Kingdom:  "Animalia",
		Language: "por",
		Timeout:  DefaultTimeout,
	}
}

func (s *GBIF) Name() string { return "gbif" }

// Search runs a species search.
//
//	GET {BaseURL}/v1/species/search?q=lobo&kingdom=Animalia&limit=30
//	{"results": [{"key": 5219173, "canonicalName": "Canis lupus", "class": "Mammalia",
//	  "vernacularNames": [{"vernacularName": "Lobo", "language": "por"}]}]}
func (s *GBIF) Search(ctx context.Context, spec query.Spec) ([]RawItem, error) {
	if spec.Empty() {
		return nil, ErrNoQuery
	}
	if spec.Mode != query.ModeText {
		return nil, &FetchError{Provider: s.Name(), Kind: KindUnsupported, Err: errors.New("species search needs a text query")}
	}

	u, err := url.Parse(s.BaseURL + "/v1/species/search")
	if err != nil {
		return nil, fmt.Errorf("gbif: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", spec.Term)
	if s.Kingdom != "" {
		q.Set("kingdom", s.Kingdom)
	}
	q.Set("limit", strconv.Itoa(clampPageSize(s.Limit)))
	u.RawQuery = q.Encode()

	client := s.Client
	if client == nil {
		client = newHTTPClient(s.Timeout)
	}
	items, err := getResults(ctx, client, s.Name(), u.String(), s.Timeout)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		preferVernacular(it, s.Language)
	}
	return items, nil
}

// preferVernacular copies the first vernacular name in lang (or, failing
// that, the first one at all) to the item's top-level "vernacularName".
func preferVernacular(it RawItem, lang string) {
	if it.String("vernacularName") != "" {
		return
	}
	list, ok := it["vernacularNames"].([]any)
	if !ok {
		return
	}

	var fallback string
	for _, v := range list {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name := RawItem(entry).String("vernacularName")
		if name == "" {
			continue
		}
		if lang != "" && strings.EqualFold(RawItem(entry).String("language"), lang) {
			it["vernacularName"] = name
			return
		}
		if fallback == "" {
			fallback = name
		}
	}
	if fallback != "" {
		it["vernacularName"] = fallback
	}
}
