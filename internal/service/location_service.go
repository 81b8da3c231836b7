package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

const (
	locationModule = "LOCATION"

	UnknownLocation = "Unknown Location"

	// Served when the weather API cannot be reached.
	estimatedTemperatureC = 28.0
	estimatedCondition    = "Sunny"

	defaultLookupTTL = 30 * time.Minute
)

type ILocationService interface {
	ReversePlace(ctx context.Context, lat, lng float64, ownerName string) (*dto.PlaceResponse, error)
	CurrentWeather(ctx context.Context, lat, lng float64) (*dto.WeatherResponse, error)
}

type locationService struct {
	httpClient   *http.Client
	nominatimURL string
	openMeteoURL string
	userAgent    string
	logger       logger.ILogger
	places       *cache.Cache
	weather      *cache.Cache
}

func NewLocationService(cfg config.GeoConfig, log logger.ILogger) ILocationService {
	return &locationService{
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		nominatimURL: strings.TrimRight(cfg.NominatimURL, "/"),
		openMeteoURL: strings.TrimRight(cfg.OpenMeteoURL, "/"),
		userAgent:    cfg.UserAgent,
		logger:       log,
		places:       newLookupCache(cfg.GeocodeCacheTTL),
		weather:      newLookupCache(cfg.WeatherCacheTTL),
	}
}

// newLookupCache purges expired entries every ttl, since keys come from client
// coordinates and are rarely read twice.
func newLookupCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		ttl = defaultLookupTTL
	}
	return cache.New(ttl, ttl)
}

// cacheKey rounds to about 100m so nearby lookups share an entry.
func cacheKey(kind string, lat, lng float64) string {
	return fmt.Sprintf("%s:%.3f:%.3f", kind, lat, lng)
}

// --- Reverse geocoding ---

type nominatimAddress struct {
	Town          string `json:"town"`
	Village       string `json:"village"`
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Locality      string `json:"locality"`
	City          string `json:"city"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	State         string `json:"state"`
}

// singleName picks the most local name the address has.
func (a nominatimAddress) singleName() string {
	for _, name := range []string{
		a.Town, a.Village, a.Suburb, a.Neighbourhood, a.Locality,
		a.City, a.Municipality, a.County, a.State,
	} {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return ""
}

// ReversePlace never fails on geocoder errors; it falls back to "<owner>'s Location".
func (s *locationService) ReversePlace(ctx context.Context, lat, lng float64, ownerName string) (*dto.PlaceResponse, error) {
	key := cacheKey("place", lat, lng)
	if val, ok := s.places.Get(key); ok {
		return val.(*dto.PlaceResponse), nil
	}

	name, err := s.reverseGeocode(ctx, lat, lng)
	if err != nil || name == "" {
		details := map[string]interface{}{"lat": lat, "lng": lng}
		if err != nil {
			details["error"] = err.Error()
		}
		s.logger.Warn(locationModule, "Reverse geocoding gave no name", details)
		return &dto.PlaceResponse{Name: fallbackPlace(ownerName), Latitude: lat, Longitude: lng}, nil
	}

	res := &dto.PlaceResponse{Name: name, Latitude: lat, Longitude: lng, Resolved: true}
	s.places.SetDefault(key, res)
	return res, nil
}

func fallbackPlace(ownerName string) string {
	if strings.TrimSpace(ownerName) == "" {
		return UnknownLocation
	}
	return ownerName + "'s Location"
}

func (s *locationService) reverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Add("accept-language", "en")
	params.Add("zoom", "18")
	params.Add("addressdetails", "1")

	var result struct {
		Address *nominatimAddress `json:"address"`
	}
	if err := s.getJSON(ctx, s.nominatimURL+"/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if result.Address == nil {
		return "", nil
	}
	return result.Address.singleName(), nil
}

// --- Weather ---

// WeatherCondition maps a WMO weather code onto the label shown to farmers.
func WeatherCondition(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly Cloudy"
	case code <= 48:
		return "Foggy"
	case code <= 67:
		return "Rainy"
	case code <= 77:
		return "Snowy"
	case code <= 82:
		return "Rainy"
	case code <= 99:
		return "Stormy"
	default:
		return "Sunny"
	}
}

func WeatherEmoji(condition string) string {
	switch strings.ToLower(condition) {
	case "sunny", "clear":
		return "☀️"
	case "rainy":
		return "🌧️"
	case "stormy":
		return "⛈️"
	case "cloudy", "partly cloudy":
		return "☁️"
	case "foggy":
		return "🌫️"
	default:
		return "🌤️"
	}
}

// CurrentWeather never fails on API errors; it serves a fixed estimate flagged as such.
func (s *locationService) CurrentWeather(ctx context.Context, lat, lng float64) (*dto.WeatherResponse, error) {
	key := cacheKey("weather", lat, lng)
	if val, ok := s.weather.Get(key); ok {
		return val.(*dto.WeatherResponse), nil
	}

	params := url.Values{}
	params.Add("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Add("current_weather", "true")
	params.Add("temperature_unit", "celsius")

	var result struct {
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	err := s.getJSON(ctx, s.openMeteoURL+"/v1/forecast?"+params.Encode(), &result)
	if err != nil || result.CurrentWeather == nil {
		details := map[string]interface{}{"lat": lat, "lng": lng}
		if err != nil {
			details["error"] = err.Error()
		}
		s.logger.Warn(locationModule, "Weather lookup failed, serving estimate", details)
		return estimatedWeather(), nil
	}

	condition := WeatherCondition(result.CurrentWeather.WeatherCode)
	res := &dto.WeatherResponse{
		TemperatureC: result.CurrentWeather.Temperature,
		Temperature:  fmt.Sprintf("%d°C", int(math.Round(result.CurrentWeather.Temperature))),
		Condition:    condition,
		Emoji:        WeatherEmoji(condition),
		WeatherCode:  result.CurrentWeather.WeatherCode,
	}
	s.weather.SetDefault(key, res)
	return res, nil
}

func estimatedWeather() *dto.WeatherResponse {
	return &dto.WeatherResponse{
		TemperatureC: estimatedTemperatureC,
		Temperature:  fmt.Sprintf("%d°C", int(estimatedTemperatureC)),
		Condition:    estimatedCondition,
		Emoji:        WeatherEmoji(estimatedCondition),
		Estimated:    true,
	}
}

func (s *locationService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return json.Unmarshal(body, out)
}
