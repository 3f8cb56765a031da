package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/errors"
	"github.com/gcbaptista/space-chatbot/model"
)

func newTestFetcher(name string) *Fetcher {
	return NewFetcher(FetcherConfig{Name: name, Timeout: time.Second, MaxRetries: 2, Backoff: time.Millisecond})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestFetcherRetriesGatewayErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	var out map[string]string
	err := newTestFetcher("test").GetJSON(context.Background(), server.URL, nil, nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetcherDoesNotRetryOtherErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var failures []string
	f := NewFetcher(FetcherConfig{Name: "test", MaxRetries: 2, Backoff: time.Millisecond},
		WithFailureObserver(func(provider string, err error) { failures = append(failures, provider) }))

	var out map[string]any
	err := f.GetJSON(context.Background(), server.URL, nil, nil, &out)

	assert.ErrorIs(t, err, errors.ErrProviderUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"test"}, failures)
}

func TestFetcherNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	var out map[string]any
	err := newTestFetcher("test").GetJSON(context.Background(), server.URL, nil, nil, &out)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestFetcherCircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f := NewFetcher(FetcherConfig{Name: "flaky", MaxRetries: 0})
	var out map[string]any
	for i := 0; i < 5; i++ {
		_ = f.GetJSON(context.Background(), server.URL, nil, nil, &out)
	}

	err := f.GetJSON(context.Background(), server.URL, nil, nil, &out)
	assert.ErrorIs(t, err, errors.ErrProviderUnavailable)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls), "open breaker must not reach the server")
}

func TestFetcherSendsHeadersAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "mars", r.URL.Query().Get("q"))
		writeJSON(t, w, map[string]string{})
	}))
	defer server.Close()

	var out map[string]string
	err := newTestFetcher("test").GetJSON(context.Background(), server.URL,
		map[string][]string{"q": {"mars"}}, map[string]string{"Authorization": "Bearer secret"}, &out)
	require.NoError(t, err)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		query string
		want  AstronomyCategory
	}{
		{"Có tiểu hành tinh nào gần Trái Đất không?", CategoryAsteroids},
		{"Cho tôi xem ảnh sao Hỏa mới nhất", CategoryMarsImagery},
		{"ảnh thiên văn hôm nay là gì", CategoryDailyImage},
		{"Bão mặt trời có nguy hiểm không?", CategorySpaceWeather},
		{"Sao Mộc có bao nhiêu vệ tinh?", CategoryNone},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.query))
		})
	}
}

func TestImageSearchTerm(t *testing.T) {
	assert.Equal(t, "jupiter", ImageSearchTerm("Sao Mộc trông như thế nào?"))
	assert.Equal(t, "solar system", ImageSearchTerm("hệ mặt trời"))
	assert.Equal(t, "quasar xa xoi", ImageSearchTerm("Quasar xa xôi"))
}

func TestNASAEnrichRoutesByCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/neo/rest/v1/feed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		writeJSON(t, w, map[string]any{
			"near_earth_objects": map[string]any{
				"2025-06-01": []map[string]any{{
					"name":                              "(2025 AB)",
					"is_potentially_hazardous_asteroid": true,
					"estimated_diameter": map[string]any{
						"kilometers": map[string]any{"estimated_diameter_min": 0.1, "estimated_diameter_max": 0.3},
					},
				}},
			},
		})
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "saturn", r.URL.Query().Get("q"))
		writeJSON(t, w, map[string]any{
			"collection": map[string]any{
				"items": []map[string]any{{
					"data":  []map[string]any{{"title": "Saturn Rings", "description": "Cassini view", "nasa_id": "PIA1"}},
					"links": []map[string]any{{"href": "https://images/saturn.jpg", "rel": "preview"}},
				}},
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	nasa := NewNASA(NASAConfig{APIKey: "test-key", BaseURL: server.URL, ImagesURL: server.URL}, newTestFetcher("nasa"))
	nasa.clock = clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	records, err := nasa.Enrich(context.Background(), "tiểu hành tinh nguy hiểm")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "(2025 AB)", records[0].Name)
	assert.Equal(t, model.SourceNASA, records[0].Source)
	assert.Contains(t, records[0].Description, "có khả năng nguy hiểm")

	records, err = nasa.Enrich(context.Background(), "Sao Thổ đẹp không")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Saturn Rings", records[0].Name)
	assert.Equal(t, "https://images/saturn.jpg", records[0].ImageURL)
}

func TestSolarSystemRecognize(t *testing.T) {
	s := NewSolarSystem("", "", newTestFetcher("solar_system"))

	tests := []struct {
		name    string
		query   string
		wantID  string
		wantHit bool
	}{
		{"vietnamese name", "Sao Hỏa nặng bao nhiêu?", "mars", true},
		{"folded vietnamese name", "sao moc co bao nhieu ve tinh", "jupiter", true},
		{"english name", "Tell me about Saturn", "saturne", true},
		{"english name with one typo", "how big is jupitr", "jupiter", true},
		{"short names need exact match", "mrs", "", false},
		{"no body", "Phạm Tuân là ai?", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, _, ok := s.Recognize(tt.query)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestSolarSystemLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bodies/mars", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]any{
			"id": "mars", "name": "Mars", "englishName": "Mars",
			"mass":    map[string]any{"massValue": 6.41712, "massExponent": 23},
			"gravity": 3.71, "meanRadius": 3389.5, "avgTemp": 210, "sideralOrbit": 686.98,
			"moons": []map[string]string{{"moon": "Phobos"}, {"moon": "Deïmos"}},
		})
	}))
	defer server.Close()

	s := NewSolarSystem(server.URL+"/bodies/", "token", newTestFetcher("solar_system"))
	body, err := s.Lookup(context.Background(), "mars")
	require.NoError(t, err)
	assert.Equal(t, "6.41712 × 10^23", body.Mass)
	assert.Equal(t, 2, body.Moons)

	ctx := body.Context("Sao Hỏa")
	assert.Equal(t, "Sao Hỏa", ctx.Name)
	assert.Equal(t, model.SourceSolarSystem, ctx.Source)
	assert.Contains(t, ctx.Description, "2 vệ tinh tự nhiên")
}

func TestWikipediaSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Lỗ_đen":
			writeJSON(t, w, map[string]any{
				"type":         "standard",
				"title":        "Lỗ đen",
				"extract":      "Lỗ đen là một vùng không-thời gian.",
				"content_urls": map[string]any{"desktop": map[string]any{"page": "https://vi.wikipedia.org/wiki/Lỗ_đen"}},
				"thumbnail":    map[string]any{"source": "https://img/blackhole.png"},
			})
		case "/Sao":
			writeJSON(t, w, map[string]any{"type": "disambiguation", "title": "Sao", "extract": "Sao có thể là"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	wiki := NewWikipedia(server.URL, newTestFetcher("wikipedia"))

	summary, err := wiki.Summarize(context.Background(), "Lỗ đen")
	require.NoError(t, err)
	assert.Equal(t, "Lỗ đen", summary.Title)
	assert.Equal(t, "https://img/blackhole.png", summary.Image)
	assert.Equal(t, model.SourceWikipedia, summary.Context().Source)

	_, err = wiki.Summarize(context.Background(), "Sao")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = wiki.Summarize(context.Background(), "Không tồn tại")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = wiki.Summarize(context.Background(), "  ")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
