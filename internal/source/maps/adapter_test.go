package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
)

const searchFixture = `{
  "status": "OK",
  "results": [
    {
      "name": "Cafe A",
      "formatted_address": "1 Main St, Springfield",
      "formatted_phone_number": "(555) 010-0001",
      "website": "https://cafe-a.example",
      "rating": 4.6,
      "user_ratings_total": 210,
      "price_level": 2,
      "types": ["point_of_interest", "cafe", "establishment"],
      "opening_hours": {"weekday_text": ["Mon: 8-16", "Tue: 8-16"]},
      "editorial_summary": {"overview": "Cozy espresso bar."}
    },
    {
      "name": "",
      "formatted_address": "nameless place"
    },
    {
      "name": "Cafe B",
      "vicinity": "2 Side St",
      "user_ratings_total": 3
    },
    {
      "name": "Cafe C",
      "formatted_phone_number": "555-010-0003"
    }
  ]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Key: "test-key", TimeoutSecs: 2, MinDelayMs: 1})
}

func TestFetchMapsResults(t *testing.T) {
	t.Parallel()

	var gotQuery string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchFixture))
	})

	got, err := a.Fetch(context.Background(), source.Query{Term: "cafe", Location: "Springfield", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "cafe in Springfield", gotQuery)

	// Nameless result is dropped, three valid survive.
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, "Cafe A", first.BusinessName)
	assert.Equal(t, "(555) 010-0001", first.Phone)
	assert.Equal(t, "https://cafe-a.example", first.Website)
	assert.Equal(t, "1 Main St, Springfield", first.Address)
	assert.Equal(t, "Springfield", first.City)
	assert.Equal(t, "cafe", first.Category)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4.6, *first.Rating)
	assert.Equal(t, 210, first.ReviewCount)
	assert.Equal(t, "$$", first.PriceTier)
	assert.Equal(t, "Cozy espresso bar.", first.Description)
	assert.Len(t, first.OpeningHours, 2)
	assert.Equal(t, model.SourceMapListing, first.Source)

	// Fallback to vicinity when formatted address is absent.
	assert.Equal(t, "2 Side St", got[1].Address)
	assert.Nil(t, got[1].Rating)
}

func TestFetchCapsAtLimit(t *testing.T) {
	t.Parallel()

	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchFixture))
	})

	got, err := a.Fetch(context.Background(), source.Query{Term: "cafe", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetchZeroResultsIsNotAnError(t *testing.T) {
	t.Parallel()

	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	got, err := a.Fetch(context.Background(), source.Query{Term: "cafe", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchServerErrorFails(t *testing.T) {
	t.Parallel()

	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := a.Fetch(context.Background(), source.Query{Term: "cafe", Limit: 5})
	assert.Error(t, err)
}

func TestFetchAPIStatusErrorFails(t *testing.T) {
	t.Parallel()

	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "results": []}`))
	})

	_, err := a.Fetch(context.Background(), source.Query{Term: "cafe", Limit: 5})
	assert.Error(t, err)
}

func TestFetchRejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	a := New(Config{BaseURL: "http://unused.example"})
	_, err := a.Fetch(context.Background(), source.Query{Term: "", Limit: 5})
	assert.Error(t, err)
}

func TestAdapterIdentity(t *testing.T) {
	t.Parallel()

	a := New(Config{})
	assert.Equal(t, "maps", a.Name())
	assert.Equal(t, model.SourceMapListing, a.Tag())
}
