package nominatim

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/brandonbuckley/uber-top100-POIs/internal/resilience"
)

func noWait() Option {
	return WithLimiter(rate.NewLimiter(rate.Inf, 1))
}

func noBackoffRetry(attempts int) Option {
	return WithRetry(resilience.RetryConfig{
		MaxAttempts: attempts,
		Backoff:     0,
		OnRetry:     func(int, error) {},
	})
}

func TestReverse_ParsesResult(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		assert.Equal(t, "/reverse", r.URL.Path)
		fmt.Fprint(w, `{
			"osm_id": 123456,
			"name": "Theater District Parking Garage",
			"display_name": "Theater District Parking Garage, 1200 Smith St, Houston, TX",
			"category": "amenity",
			"type": "parking",
			"address": {
				"house_number": "1200",
				"road": "Smith Street",
				"city": "Houston",
				"state": "Texas",
				"postcode": "77002"
			}
		}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithUserAgent("test-agent/1.0"), noWait())

	res, err := c.Reverse(context.Background(), 29.7604, -95.3698)
	require.NoError(t, err)

	assert.True(t, res.Matched)
	assert.Equal(t, int64(123456), res.OSMID)
	assert.Equal(t, "Theater District Parking Garage", res.Name)
	assert.Equal(t, "amenity", res.Category)
	assert.Equal(t, "parking", res.PlaceType)
	assert.Equal(t, "Houston", res.Address.City)

	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, "jsonv2", gotQuery["format"])
	assert.Equal(t, "29.7604", gotQuery["lat"])
	assert.Equal(t, "-95.3698", gotQuery["lon"])
	assert.Equal(t, "18", gotQuery["zoom"])
	assert.Equal(t, "1", gotQuery["addressdetails"])
}

func TestReverse_UnableToGeocodeIsUnmatched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "Unable to geocode"}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), noWait())

	res, err := c.Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Empty(t, res.Name)
}

func TestReverse_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"osm_id": 1, "name": "City Garage", "category": "amenity", "type": "parking"}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), noWait(), noBackoffRetry(3))

	res, err := c.Reverse(context.Background(), 29.75, -95.36)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "City Garage", res.Name)
}

func TestReverse_RetriesRateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"osm_id": 2, "name": "Lot B"}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), noWait(), noBackoffRetry(3))

	res, err := c.Reverse(context.Background(), 29.75, -95.36)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Lot B", res.Name)
}

func TestReverse_DoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), noWait(), noBackoffRetry(3))

	_, err := c.Reverse(context.Background(), 29.75, -95.36)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "403")
}

func TestReverse_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), noWait(), noBackoffRetry(1))

	_, err := c.Reverse(context.Background(), 29.75, -95.36)
	require.Error(t, err)
}

func TestReverse_RequestsAreSpaced(t *testing.T) {
	interval := 40 * time.Millisecond
	var mu sync.Mutex
	var stamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		fmt.Fprint(w, `{"osm_id": 1, "name": "Garage"}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithInterval(interval))

	for i := 0; i < 3; i++ {
		_, err := c.Reverse(context.Background(), 29.75, -95.36)
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond,
			"request %d arrived %v after previous, want >= %v", i, gap, interval)
	}
}

func TestReverse_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"osm_id": 1}`)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithInterval(time.Hour))

	// First call consumes the burst token; the second blocks on the limiter.
	_, err := c.Reverse(context.Background(), 29.75, -95.36)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Reverse(ctx, 29.75, -95.36)
	require.Error(t, err)
}

func TestAddressFormat(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want string
	}{
		{
			name: "full",
			addr: Address{HouseNumber: "1200", Road: "Smith St", City: "Houston", State: "Texas", Postcode: "77002"},
			want: "1200 Smith St, Houston, Texas 77002",
		},
		{
			name: "town fallback",
			addr: Address{Road: "Main St", Town: "Katy", State: "Texas"},
			want: "Main St, Katy, Texas",
		},
		{
			name: "empty",
			addr: Address{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.Format())
		})
	}
}
