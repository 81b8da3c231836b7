package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoConfig(url string) config.GeoConfig {
	return config.GeoConfig{
		NominatimURL:    url,
		OpenMeteoURL:    url,
		UserAgent:       "KisanSetu-App/1.0",
		GeocodeCacheTTL: time.Hour,
		WeatherCacheTTL: time.Hour,
		HTTPTimeout:     time.Second,
	}
}

func TestReversePlacePriority(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "KisanSetu-App/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "18", r.URL.Query().Get("zoom"))
		w.Write([]byte(`{"address":{"city":"Guntur","village":"Pedakakani","state":"Andhra Pradesh"}}`))
	}))
	defer srv.Close()

	svc := NewLocationService(geoConfig(srv.URL), logger.NewNopLogger())

	place, err := svc.ReversePlace(context.Background(), 16.2991, 80.4575, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, "Pedakakani", place.Name)
	assert.True(t, place.Resolved)

	_, err = svc.ReversePlace(context.Background(), 16.2991, 80.4575, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second lookup served from cache")
}

func TestReversePlaceFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewLocationService(geoConfig(srv.URL), logger.NewNopLogger())

	place, err := svc.ReversePlace(context.Background(), 1, 2, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, "Ravi's Location", place.Name)
	assert.False(t, place.Resolved)

	place, err = svc.ReversePlace(context.Background(), 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, UnknownLocation, place.Name)
}

func TestCurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Write([]byte(`{"current_weather":{"temperature":31.6,"weathercode":61}}`))
	}))
	defer srv.Close()

	w, err := NewLocationService(geoConfig(srv.URL), logger.NewNopLogger()).CurrentWeather(context.Background(), 16.3, 80.4)
	require.NoError(t, err)
	assert.Equal(t, "32°C", w.Temperature)
	assert.Equal(t, "Rainy", w.Condition)
	assert.Equal(t, "🌧️", w.Emoji)
	assert.False(t, w.Estimated)
}

func TestCurrentWeatherEstimateOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w, err := NewLocationService(geoConfig(srv.URL), logger.NewNopLogger()).CurrentWeather(context.Background(), 16.3, 80.4)
	require.NoError(t, err)
	assert.True(t, w.Estimated)
	assert.Equal(t, "28°C", w.Temperature)
	assert.Equal(t, "Sunny", w.Condition)
}

func TestWeatherCondition(t *testing.T) {
	cases := map[int]string{
		0:   "Clear",
		2:   "Partly Cloudy",
		45:  "Foggy",
		63:  "Rainy",
		75:  "Snowy",
		81:  "Rainy",
		95:  "Stormy",
		100: "Sunny",
	}
	for code, want := range cases {
		assert.Equal(t, want, WeatherCondition(code), code)
	}
	assert.Equal(t, "🌤️", WeatherEmoji("Snowy"))
}

func TestLocationCachesPurgeExpiredEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reverse" {
			w.Write([]byte(`{"address":{"village":"Pedakakani"}}`))
			return
		}
		w.Write([]byte(`{"current_weather":{"temperature":31.4,"weathercode":0}}`))
	}))
	defer srv.Close()

	cfg := geoConfig(srv.URL)
	cfg.GeocodeCacheTTL = 50 * time.Millisecond
	cfg.WeatherCacheTTL = 50 * time.Millisecond
	svc := NewLocationService(cfg, logger.NewNopLogger()).(*locationService)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		lat := 10 + float64(i)*0.01
		_, err := svc.CurrentWeather(ctx, lat, 80)
		require.NoError(t, err)
		_, err = svc.ReversePlace(ctx, lat, 80, "")
		require.NoError(t, err)
	}
	assert.NotZero(t, svc.weather.ItemCount()+svc.places.ItemCount())

	require.Eventually(t, func() bool {
		return svc.weather.ItemCount() == 0 && svc.places.ItemCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
