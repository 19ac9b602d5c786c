package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/internal/query"
)

func serveJSON(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestINaturalistSearchCoordinates(t *testing.T) {
	var got url2
	srv := serveJSON(t, http.StatusOK, `{"total_results":2,"results":[{"id":1,"taxon":{"id":41970,"name":"Panthera onca"}},{"id":2},"junk"]}`,
		func(r *http.Request) {
			got = url2{path: r.URL.Path, q: r.URL.Query()}
		})

	src := NewINaturalist(srv.URL)
	items, err := src.Search(context.Background(), query.FromCoordinates(-3.4653, -62.2159))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "41970", items[0].ID("taxon.id"))

	assert.Equal(t, "/v1/observations", got.path)
	assert.Equal(t, "-3.4653", got.q.Get("lat"))
	assert.Equal(t, "-62.2159", got.q.Get("lng"))
	assert.Equal(t, "500", got.q.Get("radius"))
	assert.Equal(t, "1", got.q.Get("taxon_id"))
	assert.Equal(t, "30", got.q.Get("per_page"))
	assert.Equal(t, "desc", got.q.Get("order"))
	assert.Equal(t, "votes", got.q.Get("order_by"))
	assert.Equal(t, "pt-BR", got.q.Get("locale"))
}

func TestINaturalistSearchText(t *testing.T) {
	var q string
	srv := serveJSON(t, http.StatusOK, `{"results":[]}`, func(r *http.Request) { q = r.URL.Query().Get("q") })

	items, err := NewINaturalist(srv.URL).Search(context.Background(), query.FromTerm("onça pintada"))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "onça pintada", q)
}

func TestSearchEmptySpecDoesNotCallNetwork(t *testing.T) {
	called := false
	srv := serveJSON(t, http.StatusOK, `{"results":[]}`, func(*http.Request) { called = true })

	_, err := NewINaturalist(srv.URL).Search(context.Background(), query.FromTerm(""))
	assert.ErrorIs(t, err, ErrNoQuery)
	_, err = NewGBIF(srv.URL).Search(context.Background(), query.Spec{})
	assert.ErrorIs(t, err, ErrNoQuery)
	assert.False(t, called)
}

func TestFetchFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   FailureKind
	}{
		{"non-2xx", http.StatusServiceUnavailable, `{}`, KindStatus},
		{"malformed json", http.StatusOK, `{"results": [`, KindDecode},
		{"missing results", http.StatusOK, `{"total_results": 0}`, KindShape},
		{"results not array", http.StatusOK, `{"results": {"a": 1}}`, KindShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.status, tt.body, nil)
			_, err := NewINaturalist(srv.URL).Search(context.Background(), query.FromTerm("lobo"))
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, "inaturalist", fe.Provider)
			if tt.kind == KindStatus {
				assert.Equal(t, tt.status, fe.Status)
			}
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	src := NewINaturalist(srv.URL)
	src.Timeout = 50 * time.Millisecond
	_, err := src.Search(context.Background(), query.FromTerm("lobo"))
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewINaturalist(base).Search(context.Background(), query.FromTerm("lobo"))
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestINaturalistTaxa(t *testing.T) {
	var q string
	srv := serveJSON(t, http.StatusOK, `{"results":[{"id":41970,"default_photo":{"medium_url":"https://img/onca.jpg"}}]}`,
		func(r *http.Request) { q = r.URL.RawQuery })

	items, err := NewINaturalist(srv.URL).Taxa(context.Background(), "Panthera onca", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://img/onca.jpg", items[0].String("default_photo.medium_url"))
	assert.Contains(t, q, "per_page=1")
}

func TestGBIFSearch(t *testing.T) {
	var kingdom string
	srv := serveJSON(t, http.StatusOK, `{"results":[
		{"key":5219173,"canonicalName":"Canis lupus","class":"Mammalia",
		 "vernacularNames":[{"vernacularName":"Wolf","language":"eng"},{"vernacularName":"Lobo","language":"por"}]},
		{"key":1,"canonicalName":"Vulpes vulpes","vernacularNames":[{"vernacularName":"Red Fox","language":"eng"}]}
	]}`, func(r *http.Request) { kingdom = r.URL.Query().Get("kingdom") })

	items, err := NewGBIF(srv.URL).Search(context.Background(), query.FromTerm("lobo"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Animalia", kingdom)
	assert.Equal(t, "Lobo", items[0].String("vernacularName"))
	assert.Equal(t, "Red Fox", items[1].String("vernacularName"))
	assert.Equal(t, "5219173", items[0].ID("key"))
}

func TestGBIFRejectsCoordinates(t *testing.T) {
	_, err := NewGBIF("http://127.0.0.1:1").Search(context.Background(), query.FromCoordinates(0, 0))
	assert.Equal(t, KindUnsupported, KindOf(err))
}

func TestWikipediaPageImage(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"query":{"pages":{"-1":{"title":"x","missing":""},"123":{"title":"Onça","thumbnail":{"source":"https://upload/onca.jpg"}}}}}`,
		func(r *http.Request) {
			assert.Equal(t, "pageimages", r.URL.Query().Get("prop"))
			assert.Equal(t, "Onça", r.URL.Query().Get("titles"))
		})

	src, err := NewWikipedia(srv.URL).PageImage(context.Background(), "Onça")
	require.NoError(t, err)
	assert.Equal(t, "https://upload/onca.jpg", src)

	empty := serveJSON(t, http.StatusOK, `{"batchcomplete":""}`, nil)
	src, err = NewWikipedia(empty.URL).PageImage(context.Background(), "Onça")
	require.NoError(t, err)
	assert.Empty(t, src)
}
