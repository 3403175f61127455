// Package config provides environment-driven configuration for the vidfetch service,
// including log settings, storage locations, session secrets and collaborator options.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const envPrefix = "VIDFETCH_"

// LoadEnv reads variables from the given .env files (".env" when none are given).
// Variables already present in the process environment win. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func getEnvDefault(key, def string) string {
	if v := getEnv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string) bool {
	b, _ := strconv.ParseBool(getEnv(key))
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := getEnv("LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return getEnvBool("DEBUG")
}

func GetDBFolderPath() string {
	return getEnvDefault("DB_FOLDER", "/etc/vidfetch")
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	return getEnvDefault("LOG_FOLDER", "/var/log")
}

func GetListen() string {
	return getEnv("LISTEN")
}

func GetPort() int {
	return getEnvInt("PORT", 5000)
}

// GetSessionSecret returns the cookie signing secret. An empty value means the
// caller has to generate one, which invalidates sessions on every restart.
func GetSessionSecret() string {
	return getEnv("SESSION_SECRET")
}

// GetSessionMaxAge returns the session lifetime in minutes.
func GetSessionMaxAge() int {
	return getEnvInt("SESSION_MAX_AGE", 60*24)
}

func GetJWTSecret() string {
	if s := getEnv("JWT_SECRET"); s != "" {
		return s
	}
	return GetSessionSecret()
}

// GetRedisAddr returns the external redis address. Empty means an embedded instance.
func GetRedisAddr() string {
	return getEnv("REDIS_ADDR")
}

func GetScratchDir() string {
	return getEnvDefault("SCRATCH_DIR", os.TempDir())
}

func GetScratchTTL() time.Duration {
	return getEnvDuration("SCRATCH_TTL", time.Hour)
}

func GetYtDlpPath() string {
	return getEnv("YTDLP_PATH")
}

// IsYtDlpInstall reports whether a missing yt-dlp binary should be downloaded at startup.
func IsYtDlpInstall() bool {
	return getEnvBool("YTDLP_INSTALL")
}

func IsStrictURLs() bool {
	return getEnvBool("STRICT_URLS")
}

// GetRateLimit returns the allowed /info and /download requests per minute per client. 0 disables.
func GetRateLimit() int {
	return getEnvInt("RATE_LIMIT", 30)
}

// GetTrustedProxies returns the proxy addresses or CIDRs whose forwarding
// headers are believed. None by default.
func GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(getEnv("TRUSTED_PROXIES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

func GetProbeTimeout() time.Duration {
	return getEnvDuration("PROBE_TIMEOUT", 60*time.Second)
}

// GetDownloadTimeout returns the materialize timeout. 0 leaves it bounded only by the request.
func GetDownloadTimeout() time.Duration {
	return getEnvDuration("DOWNLOAD_TIMEOUT", 0)
}

func GetAdminUsername() string {
	return getEnvDefault("ADMIN_USERNAME", "admin")
}

func GetAdminPassword() string {
	return getEnvDefault("ADMIN_PASSWORD", "admin123")
}
