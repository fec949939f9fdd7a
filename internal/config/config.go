package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	DBPath    string
	BackupDir string
	Backup    BackupConfig
}

type BackupConfig struct {
	DefaultFrequency string
	DefaultKeepCount int
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	keepCount, _ := strconv.Atoi(getEnv("POS_BACKUP_KEEP_COUNT", "7"))

	return &Config{
		Env:       getEnv("ENV", "development"),
		DBPath:    getEnv("POS_DB_PATH", "pos.db"),
		BackupDir: getEnv("POS_BACKUP_DIR", "."),
		Backup: BackupConfig{
			DefaultFrequency: getEnv("POS_BACKUP_FREQUENCY", "daily"),
			DefaultKeepCount: keepCount,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
