package logger

import (
	"os"
	"strconv"
)

// ConfigFromEnv reads the logger configuration from LOG_* variables.
//
//	LOG_LEVEL        debug, info, warn, error (info)
//	LOG_FORMAT       json, text (json)
//	LOG_FILE         rotated log file; empty disables file output
//	LOG_FILE_ONLY    skip stdout when a file is configured
//	LOG_MAX_SIZE     MB before rotation (100)
//	LOG_MAX_BACKUPS  rotated files kept (7)
//	LOG_MAX_AGE      days rotated files are kept (30)
//	LOG_COMPRESS     gzip rotated files (true)
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Level = envString("LOG_LEVEL", cfg.Level)
	cfg.Format = envString("LOG_FORMAT", cfg.Format)
	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.File = envString("LOG_FILE", "")
	cfg.FileOnly = envBool("LOG_FILE_ONLY", false)
	cfg.Rotation = Rotation{
		MaxSize:    envInt("LOG_MAX_SIZE", 100),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 7),
		MaxAge:     envInt("LOG_MAX_AGE", 30),
		Compress:   envBool("LOG_COMPRESS", true),
	}
	return cfg
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return i
}
