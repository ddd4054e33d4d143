package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkjarvis/darkjarvis/internal/config"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.WeatherConfig{
		APIKey:   key,
		BaseURL:  srv.URL + "/data/2.5/",
		Units:    "metric",
		Language: "tr",
	}, srv.Client())
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "İstanbul", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "tr", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(`{"name":"Istanbul","weather":[{"description":"parçalı bulutlu"}],"main":{"temp":18.4,"feels_like":17.9,"humidity":72},"wind":{"speed":4.1},"sys":{"country":"TR"}}`))
	})

	r, err := c.Current(context.Background(), "İstanbul")
	require.NoError(t, err)
	assert.Equal(t, "Istanbul", r.City)
	assert.Equal(t, "parçalı bulutlu", r.Description)
	assert.InDelta(t, 18.4, r.Temperature, 0.001)
	assert.Equal(t, 72, r.Humidity)
	assert.Contains(t, r.Format(), "Istanbul, TR")
}

func TestCurrentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: ErrCityNotFound},
		{name: "bad key", status: http.StatusUnauthorized, wantErr: ErrInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, "key", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.Current(context.Background(), "Atlantis")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, "key", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.Current(context.Background(), "Ankara")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCityNotFound)
	})
}

func TestCurrentNotConfigured(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c := newTestClient(t, "", func(http.ResponseWriter, *http.Request) { hits.Add(1) })

	_, err := c.Current(context.Background(), "İzmir")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, hits.Load())
}
