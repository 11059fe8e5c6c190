package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig configures the time grid and the constraint solver's
// runtime bounds. WeekDays/DayStart/DayEnd/SlotMinutes/LunchStart/LunchEnd
// define the grid; the rest tune the solve itself.
type SchedulerConfig struct {
	WeekDays    []string
	DayStart    time.Duration
	DayEnd      time.Duration
	SlotMinutes int
	LunchStart  time.Duration
	LunchEnd    time.Duration

	SolveTimeout       time.Duration
	MaxPairPenaltyVars int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		WeekDays:    splitAndTrim(v.GetString("WEEK_DAYS")),
		DayStart:    parseClock(v.GetString("DAY_START"), 8*time.Hour),
		DayEnd:      parseClock(v.GetString("DAY_END"), 18*time.Hour),
		SlotMinutes: v.GetInt("SLOT_MINUTES"),
		LunchStart:  parseClock(v.GetString("LUNCH_START"), 12*time.Hour),
		LunchEnd:    parseClock(v.GetString("LUNCH_END"), 13*time.Hour),

		SolveTimeout:       parseDuration(v.GetString("SCHEDULER_SOLVE_TIMEOUT"), 20*time.Second),
		MaxPairPenaltyVars: v.GetInt("SCHEDULER_MAX_PAIR_PENALTY_VARS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WEEK_DAYS", "MON,TUE,WED,THU,FRI")
	v.SetDefault("DAY_START", "08:00")
	v.SetDefault("DAY_END", "18:00")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("LUNCH_START", "12:00")
	v.SetDefault("LUNCH_END", "13:00")

	v.SetDefault("SCHEDULER_SOLVE_TIMEOUT", "20s")
	v.SetDefault("SCHEDULER_MAX_PAIR_PENALTY_VARS", 5000)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseClock parses an "HH:MM" wall-clock value into a duration since
// midnight. Falls back when the value is absent or malformed.
func parseClock(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return fallback
	}

	h, err := time.ParseDuration(parts[0] + "h")
	if err != nil {
		return fallback
	}
	m, err := time.ParseDuration(parts[1] + "m")
	if err != nil {
		return fallback
	}

	return h + m
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
