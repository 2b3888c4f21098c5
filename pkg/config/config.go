package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName  string
	Debug    bool
	Port     string
	LogLevel string
	LogJSON  bool

	// Storage
	StoreBackend string // "postgres" or "jsonfile"
	DatabaseURL  string
	DataDir      string // JSON-file store location

	// Uploads
	UploadsDir  string
	MaxUploadMB int64

	// Analyzer (external video -> hand history process)
	AnalyzerCommand        string
	AnalyzerTimeoutSeconds int
}

// Load loads configuration from environment
func Load() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	return &Config{
		AppName:  getEnv("APP_NAME", "HandVault"),
		Debug:    getEnvBool("DEBUG", true),
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DataDir:      getEnv("DATA_DIR", "./data"),

		UploadsDir:  getEnv("UPLOADS_DIR", "./uploads"),
		MaxUploadMB: int64(getEnvInt("MAX_UPLOAD_MB", 150)),

		AnalyzerCommand:        getEnv("ANALYZER_COMMAND", "python3 scripts/process_video.py"),
		AnalyzerTimeoutSeconds: getEnvInt("ANALYZER_TIMEOUT_SECONDS", 300),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Invalid boolean for %s, using default: %v", key, defaultValue)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Invalid integer for %s, using default: %d", key, defaultValue)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}
