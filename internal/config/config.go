package config

import (
	"os"

	"github.com/ATU2119/Reservation-System/internal/db"
)

type Config struct {
	DBPath      string
	ForeignKeys bool
	LogLevel    string
	LogFile     string
}

func Load() *Config {
	return &Config{
		DBPath:      getEnv("RESERVATIONS_DB_PATH", "reservations.db"),
		ForeignKeys: os.Getenv("RESERVATIONS_FOREIGN_KEYS") == "1",
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
	}
}

// Location is the storage location every store operation is bound to.
func (c *Config) Location() db.Location {
	return db.Location{Path: c.DBPath, ForeignKeys: c.ForeignKeys}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
