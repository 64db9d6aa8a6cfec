package config

import (
	"os"
	"strconv"
)

// Config carries all runtime settings, loaded from the environment.
type Config struct {
	ListenAddr string
	Bucket     string
	Prefix     string
	Region     string
	Endpoint   string
	DBPath     string
	CacheDir   string
	AuthToken  string
	// PresignTTLSeconds bounds presigned URL lifetime. Kept short: the
	// URLs are for immediate one-shot display, not redistribution.
	PresignTTLSeconds int
}

func Load() *Config {
	return &Config{
		ListenAddr:        getEnv("MS_LISTEN_ADDR", ":8080"),
		Bucket:            getEnv("MS_BUCKET", ""),
		Prefix:            getEnv("MS_PREFIX", "movies-series-images"),
		Region:            getEnv("MS_REGION", ""),
		Endpoint:          getEnv("MS_ENDPOINT", ""),
		DBPath:            getEnv("MS_DB_PATH", "mediashelf.db"),
		CacheDir:          getEnv("MS_CACHE_DIR", ".images-tmp-local"),
		AuthToken:         getEnv("MS_AUTH_TOKEN", ""),
		PresignTTLSeconds: getEnvInt("MS_PRESIGN_TTL", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
