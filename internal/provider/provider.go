// Package provider talks to the public species-observation APIs. Each call
// is a single GET with a fixed timeout; failures are returned as *FetchError
// and never retried.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"biodex/internal/metrics"
	"biodex/internal/query"
)

// DefaultTimeout bounds every outbound request.
const DefaultTimeout = 10 * time.Second

// ErrNoQuery is returned for a spec with nothing to search for. Callers
// short-circuit on it without touching the network.
var ErrNoQuery = errors.New("no query")

// RawItem is one schema-loose entry from a provider's "results" array.
type RawItem map[string]any

// Source is implemented by each observation provider.
type Source interface {
	Name() string
	Search(ctx context.Context, spec query.Spec) ([]RawItem, error)
}

type FailureKind string

const (
	KindNetwork     FailureKind = "network"
	KindTimeout     FailureKind = "timeout"
	KindStatus      FailureKind = "status"
	KindDecode      FailureKind = "decode"
	KindShape       FailureKind = "shape"
	KindUnsupported FailureKind = "unsupported"
)

type FetchError struct {
	Provider string
	Kind     FailureKind
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" if err is not a FetchError.
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs one GET and decodes the body into out, classifying
// every failure.
func getJSON(ctx context.Context, client *http.Client, provider, endpoint string, timeout time.Duration, out any) (err error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	metrics.ProviderRequestsTotal.WithLabelValues(provider).Inc()
	defer func() {
		metrics.ProviderDurationMs.WithLabelValues(provider).Observe(float64(time.Since(start).Milliseconds()))
		if kind := KindOf(err); kind != "" {
			metrics.ProviderFailTotal.WithLabelValues(provider, string(kind)).Inc()
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Provider: provider, Kind: KindNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "biodex/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return &FetchError{Provider: provider, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{Provider: provider, Kind: KindStatus, Status: resp.StatusCode}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if isTimeout(err) {
			return &FetchError{Provider: provider, Kind: KindTimeout, Err: err}
		}
		return &FetchError{Provider: provider, Kind: KindDecode, Err: err}
	}
	return nil
}

// getResults fetches endpoint and returns its top-level "results" array.
func getResults(ctx context.Context, client *http.Client, provider, endpoint string, timeout time.Duration) ([]RawItem, error) {
	var body map[string]any
	if err := getJSON(ctx, client, provider, endpoint, timeout, &body); err != nil {
		return nil, err
	}

	raw, ok := body["results"]
	if !ok {
		return nil, &FetchError{Provider: provider, Kind: KindShape, Err: errors.New(`missing "results"`)}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &FetchError{Provider: provider, Kind: KindShape, Err: errors.New(`"results" is not an array`)}
	}

	items := make([]RawItem, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			items = append(items, RawItem(m))
		}
	}
	return items, nil
}

func classify(err error) FailureKind {
	if isTimeout(err) {
		return KindTimeout
	}
	return KindNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return 30
	case n > 200:
		return 200
	}
	return n
}
