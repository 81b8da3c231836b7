package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Advisory AdvisoryConfig
	Voice    VoiceConfig
	Geo      GeoConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	JWTTTL             time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	Relay        string
}

type AIConfig struct {
	LLMProvider      string // "gemini", "huggingface", "ollama", "relay"
	LLMModel         string
	LLMBaseURL       string
	AudioProvider    string // "gemini" or "relay"
	AudioModel       string
	HFDiseaseModel   string
	HFInferenceURL   string
	OllamaBaseURL    string
	RelayEndpointURL string
}

type AdvisoryConfig struct {
	MaxHistoryTurns int
	SessionTTL      time.Duration
}

type VoiceConfig struct {
	ProcessingTimeout time.Duration
	SpeechTimeout     time.Duration
	LocationHint      string
	MaxUploadBytes    int
}

type GeoConfig struct {
	DefaultLat      float64
	DefaultLng      float64
	UseDefault      bool
	NominatimURL    string
	OpenMeteoURL    string
	UserAgent       string
	GeocodeCacheTTL time.Duration
	WeatherCacheTTL time.Duration
	NearbyRadiusKm  float64
	HTTPTimeout     time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "ws.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTTTL:             getEnvAsDuration("JWT_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Relay:        getEnv("RELAY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:         getEnv("LLM_MODEL", "gemini-2.0-flash"),
			LLMBaseURL:       getEnv("LLM_BASE_URL", ""),
			AudioProvider:    getEnv("AUDIO_PROVIDER", "gemini"),
			AudioModel:       getEnv("AUDIO_MODEL", "gemini-2.0-flash"),
			HFDiseaseModel:   getEnv("HF_DISEASE_MODEL", "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification"),
			HFInferenceURL:   getEnv("HF_INFERENCE_URL", ""),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RelayEndpointURL: getEnv("RELAY_ENDPOINT_URL", ""),
		},
		Advisory: AdvisoryConfig{
			MaxHistoryTurns: getEnvAsInt("ADVISORY_MAX_HISTORY_TURNS", 10),
			SessionTTL:      getEnvAsDuration("ADVISORY_SESSION_TTL", time.Hour),
		},
		Voice: VoiceConfig{
			ProcessingTimeout: getEnvAsDuration("VOICE_PROCESSING_TIMEOUT", 30*time.Second),
			SpeechTimeout:     getEnvAsDuration("VOICE_SPEECH_TIMEOUT", 15*time.Second),
			LocationHint:      getEnv("VOICE_LOCATION_HINT", "India"),
			MaxUploadBytes:    getEnvAsInt("VOICE_MAX_UPLOAD_BYTES", 10<<20),
		},
		Geo: GeoConfig{
			DefaultLat:      getEnvAsFloat("GEO_DEFAULT_LAT", 16.2991),
			DefaultLng:      getEnvAsFloat("GEO_DEFAULT_LNG", 80.4575),
			UseDefault:      getEnvAsBool("GEO_USE_DEFAULT", true),
			NominatimURL:    getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			OpenMeteoURL:    getEnv("OPEN_METEO_URL", "https://api.open-meteo.com"),
			UserAgent:       getEnv("GEO_USER_AGENT", "KisanSetu-App/1.0"),
			GeocodeCacheTTL: getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
			WeatherCacheTTL: getEnvAsDuration("WEATHER_CACHE_TTL", 30*time.Minute),
			NearbyRadiusKm:  getEnvAsFloat("NEARBY_RADIUS_KM", 10),
			HTTPTimeout:     getEnvAsDuration("GEO_HTTP_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("30s", "1h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
