package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	ResolveRateMax int
}

func Load() Config {
	// Best effort: a missing .env is normal outside dev.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "equiform.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")

	rateMax := 60
	if v := os.Getenv("RESOLVE_RATE_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateMax = n
		}
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, ResolveRateMax: rateMax}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s RESOLVE_RATE_MAX=%d", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.ResolveRateMax)
	return cfg
}
