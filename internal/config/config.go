package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string

	// External annotation services
	DeepLKey        string
	OpenAIKey       string
	TranslateEngine string // "deepl" or "openai"

	// Optional shared annotation cache
	RedisURL string

	// Bound on concurrent external calls per build
	AnnotateConcurrency int
}

func Load() *Config {
	// Local development convenience; absent .env is fine.
	godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	concurrency, _ := strconv.Atoi(getEnv("ANNOTATE_CONCURRENCY", "3"))

	return &Config{
		Port:                port,
		DataPath:            dataPath,
		DBPath:              getEnv("DB_PATH", dataPath+"/lyrilearn.db"),
		JWTSecret:           jwtSecret,
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:         corsOrigins,
		DeepLKey:            os.Getenv("DEEPL_API_KEY"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		TranslateEngine:     getEnv("TRANSLATE_ENGINE", ""),
		RedisURL:            os.Getenv("REDIS_URL"),
		AnnotateConcurrency: concurrency,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
