package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Database     DatabaseConfig
	Mongo        MongoConfig
	JWT          JWTConfig
	App          AppConfig
	CORS         CORSConfig
	Attendance   AttendanceConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type MongoConfig struct {
	URI  string
	Name string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string
	AcceptableSkew time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AttendanceConfig holds the time-accounting policy and the background sweep.
type AttendanceConfig struct {
	Policy attendance.Policy

	// SweepInterval runs the day-boundary close periodically. Zero disables it.
	SweepInterval time.Duration
}

type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

// policyFile is the YAML shape of the optional attendance policy override.
type policyFile struct {
	StartThreshold string `yaml:"start_threshold"`
	FullDayMinutes *int   `yaml:"full_day_minutes"`
	AutoCloseAt    string `yaml:"auto_close_at"`
	SystemActor    string `yaml:"system_actor"`
}

// Load reads envFile (if present) into the environment, builds the configuration
// from it and applies the YAML policy override when policyPath is set.
func Load(envFile, policyPath string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	config.Mongo = MongoConfig{
		URI:  getEnv("MONGO_URI", ""),
		Name: getEnv("MONGO_DB", "cmlabs-attendance"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	jwtSkew, err := time.ParseDuration(getEnv("JWT_ACCEPTABLE_SKEW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCEPTABLE_SKEW: %w", err)
	}
	config.JWT = JWTConfig{
		Secret:         getEnv("JWT_SECRET_KEY", ""),
		AcceptableSkew: jwtSkew,
	}

	config.CORS = CORSConfig{
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// Attendance policy
	policy, err := policyFromEnv()
	if err != nil {
		return nil, err
	}
	if policyPath != "" {
		if policy, err = LoadPolicyFile(policyPath, policy); err != nil {
			return nil, err
		}
	}

	sweep, err := time.ParseDuration(getEnv("AUTO_CLOSE_SWEEP_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTO_CLOSE_SWEEP_INTERVAL: %w", err)
	}
	config.Attendance = AttendanceConfig{
		Policy:        policy,
		SweepInterval: sweep,
	}

	// Notification queue
	notif := NotificationConfig{}
	if notif.BatchSize, err = strconv.Atoi(getEnv("NOTIFICATION_BATCH_SIZE", "100")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_BATCH_SIZE: %w", err)
	}
	if notif.WorkerCount, err = strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "2")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_WORKERS: %w", err)
	}
	if notif.QueueSize, err = strconv.Atoi(getEnv("NOTIFICATION_QUEUE_SIZE", "1000")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_QUEUE_SIZE: %w", err)
	}
	if notif.FlushInterval, err = time.ParseDuration(getEnv("NOTIFICATION_FLUSH_INTERVAL", "1s")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_FLUSH_INTERVAL: %w", err)
	}
	config.Notification = notif

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func policyFromEnv() (attendance.Policy, error) {
	policy := attendance.DefaultPolicy()

	hour, minute, ok := validator.IsValidClockTime(getEnv("ATTENDANCE_START_THRESHOLD", "09:30"))
	if !ok {
		return policy, fmt.Errorf("invalid ATTENDANCE_START_THRESHOLD: expected HH:MM")
	}
	policy.StartThresholdMinutes = hour*60 + minute

	fullDay, err := strconv.Atoi(getEnv("ATTENDANCE_FULL_DAY_MINUTES", "600"))
	if err != nil || fullDay <= 0 {
		return policy, fmt.Errorf("invalid ATTENDANCE_FULL_DAY_MINUTES: must be a positive integer")
	}
	policy.FullDayMinutes = fullDay

	hour, minute, ok = validator.IsValidClockTime(getEnv("ATTENDANCE_AUTO_CLOSE_AT", "19:00"))
	if !ok {
		return policy, fmt.Errorf("invalid ATTENDANCE_AUTO_CLOSE_AT: expected HH:MM")
	}
	policy.AutoCloseHour = hour
	policy.AutoCloseMinute = minute

	policy.SystemActor = getEnv("ATTENDANCE_SYSTEM_ACTOR", "system")

	return policy, nil
}

// LoadPolicyFile overrides base with the fields set in the YAML file at path.
func LoadPolicyFile(path string, base attendance.Policy) (attendance.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	policy := base
	if file.StartThreshold != "" {
		hour, minute, ok := validator.IsValidClockTime(file.StartThreshold)
		if !ok {
			return base, fmt.Errorf("invalid start_threshold %q: expected HH:MM", file.StartThreshold)
		}
		policy.StartThresholdMinutes = hour*60 + minute
	}
	if file.FullDayMinutes != nil {
		if *file.FullDayMinutes <= 0 {
			return base, fmt.Errorf("invalid full_day_minutes %d: must be positive", *file.FullDayMinutes)
		}
		policy.FullDayMinutes = *file.FullDayMinutes
	}
	if file.AutoCloseAt != "" {
		hour, minute, ok := validator.IsValidClockTime(file.AutoCloseAt)
		if !ok {
			return base, fmt.Errorf("invalid auto_close_at %q: expected HH:MM", file.AutoCloseAt)
		}
		policy.AutoCloseHour = hour
		policy.AutoCloseMinute = minute
	}
	if file.SystemActor != "" {
		policy.SystemActor = file.SystemActor
	}

	return policy, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMongo, c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.SweepInterval < 0 {
		return fmt.Errorf("AUTO_CLOSE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
