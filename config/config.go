package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Configuration values for the application, populated by Load
var (
	// Cassandra configuration
	CassandraHost     string
	CassandraUsername string
	CassandraPassword string
	CassandraKeyspace string
	CassandraPort     int

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// MongoDB configuration
	MongoURI                string
	MongoDatabase           string
	MongoProfilesCollection string

	// ServerPort is the port on which the server will run
	ServerPort int

	// Identity tokens
	JWTSecret string

	// Video-call provider credentials
	CallAPIKey    string
	CallAPISecret string
	CallTokenTTL  time.Duration

	// FeedAPIKey guards the matcher webhooks
	FeedAPIKey string

	// Client navigation targets
	DashboardPath string
	CallPath      string
	SchedulePath  string

	// Background jobs
	WaitPollInterval   time.Duration
	CleanupInterval    time.Duration
	SessionMaxIdle     time.Duration
	SessionSnapshotTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Application configuration
	AppName    = "matchcall"
	AppVersion = "1.0.0"
)

// Load reads .env (if present) and the environment into the package variables
func Load() {
	// Load .env file
	_ = godotenv.Load()

	// Cassandra configuration
	CassandraHost = getEnv("CASSANDRA_HOST", "localhost")
	CassandraUsername = getEnv("CASSANDRA_USERNAME", "cassandra")
	CassandraPassword = getEnv("CASSANDRA_PASSWORD", "cassandra")
	CassandraKeyspace = getEnv("CASSANDRA_KEYSPACE", "matchcall")
	CassandraPort = getEnvInt("CASSANDRA_PORT", 9042)

	// Server configuration
	ServerPort = getEnvInt("SERVER_PORT", 8088)

	// Redis configuration
	RedisURL = getEnv("REDIS_URL", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	RedisDB = getEnvInt("REDIS_DB", 0)

	// MongoDB configuration
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MongoDatabase = getEnv("MONGO_DATABASE", "matchcall")
	MongoProfilesCollection = getEnv("MONGO_PROFILES_COLLECTION", "profiles")

	JWTSecret = getEnv("JWT_SECRET", "")

	CallAPIKey = getEnv("CALL_API_KEY", "")
	CallAPISecret = getEnv("CALL_API_SECRET", "")
	CallTokenTTL = getEnvDuration("CALL_TOKEN_TTL", time.Hour)

	FeedAPIKey = getEnv("FEED_API_KEY", "")

	DashboardPath = getEnv("DASHBOARD_PATH", "/dashboard")
	CallPath = getEnv("CALL_PATH", "/call")
	SchedulePath = getEnv("SCHEDULE_PATH", "/schedule")

	WaitPollInterval = getEnvDuration("WAIT_POLL_INTERVAL", 5*time.Second)
	CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", time.Minute)
	SessionMaxIdle = getEnvDuration("SESSION_MAX_IDLE", 10*time.Minute)
	SessionSnapshotTTL = getEnvDuration("SESSION_SNAPSHOT_TTL", 30*time.Minute)

	LogLevel = getEnv("LOG_LEVEL", "info")
	LogFormat = getEnv("LOG_FORMAT", "text")
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil && value >= 0 {
		return value
	}
	return defaultValue
}
