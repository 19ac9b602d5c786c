package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"biodex/internal/query"
)

const inaturalistBase = "https://api.inaturalist.org"

// INaturalist searches research observations of animals (taxon 1) and
// looks up taxa by name for imagery.
type INaturalist struct {
	BaseURL string
	Client  *http.Client
	PerPage int
	Locale  string
	TaxonID int
	Timeout time.Duration
}

func NewINaturalist(baseURL string) *INaturalist {
	if baseURL == "" {
		baseURL = inaturalistBase
	}
	return &INaturalist{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(DefaultTimeout),
		PerPage: 30,
		Locale:  "pt-BR",
		TaxonID: 1,
		Timeout: DefaultTimeout,
	}
}

func (s *INaturalist) Name() string { return "inaturalist" }

// Search returns one page of observations ordered by votes.
//
//	GET {BaseURL}/v1/observations?lat=..&lng=..&radius=500&taxon_id=1&per_page=30&order=desc&order_by=votes&locale=pt-BR
//	{"total_results": 1234, "results": [{"id": 1, "taxon": {...}}, ...]}
func (s *INaturalist) Search(ctx context.Context, spec query.Spec) ([]RawItem, error) {
	if spec.Empty() {
		return nil, ErrNoQuery
	}

	u, err := url.Parse(s.BaseURL + "/v1/observations")
	if err != nil {
		return nil, fmt.Errorf("inaturalist: parse base url: %w", err)
	}
	q := spec.Params()
	if s.TaxonID > 0 {
		q.Set("taxon_id", strconv.Itoa(s.TaxonID))
	}
	q.Set("per_page", strconv.Itoa(clampPageSize(s.PerPage)))
	q.Set("order", "desc")
	q.Set("order_by", "votes")
	if s.Locale != "" {
		q.Set("locale", s.Locale)
	}
	u.RawQuery = q.Encode()

	return getResults(ctx, s.client(), s.Name(), u.String(), s.Timeout)
}

// Taxa searches taxa by name and returns at most limit results.
//
//	GET {BaseURL}/v1/taxa?q=Panthera+onca&per_page=1
//	{"results": [{"id": 41970, "name": "Panthera onca", "default_photo": {"medium_url": "..."}}]}
func (s *INaturalist) Taxa(ctx context.Context, name string, limit int) ([]RawItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoQuery
	}
	if limit <= 0 {
		limit = 1
	}

	u, err := url.Parse(s.BaseURL + "/v1/taxa")
	if err != nil {
		return nil, fmt.Errorf("inaturalist: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", name)
	q.Set("per_page", strconv.Itoa(limit))
	if s.Locale != "" {
		q.Set("locale", s.Locale)
	}
	u.RawQuery = q.Encode()

	return getResults(ctx, s.client(), s.Name(), u.String(), s.Timeout)
}

func (s *INaturalist) client() *http.Client {
	if s.Client == nil {
		return newHTTPClient(s.Timeout)
	}
	return s.Client
}
