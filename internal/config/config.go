package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/fitgrid/classbooking/internal/domain"
)

// Config is the process configuration, read from the environment. A local
// .env file is honored when present but never overrides real env vars.
type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	DatabaseURL string   `envconfig:"DATABASE_URL" required:"true"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	JWTSecret   string   `envconfig:"JWT_SECRET" required:"true"`

	// Booking policy. Session length doubles as the minimum separation
	// between a member's session start times.
	SessionLengthMinutes int    `envconfig:"SESSION_LENGTH_MINUTES" default:"120"`
	DailyClassLimit      int    `envconfig:"DAILY_CLASS_LIMIT" default:"2"`
	BookingTimezone      string `envconfig:"BOOKING_TIMEZONE" default:"UTC"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the configuration, sourcing a .env file first when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return c, nil
}

// SchedulePolicy builds the booking policy from the configured values.
func (c Config) SchedulePolicy() (domain.SchedulePolicy, error) {
	loc, err := time.LoadLocation(c.BookingTimezone)
	if err != nil {
		return domain.SchedulePolicy{}, fmt.Errorf("booking timezone %q: %w", c.BookingTimezone, err)
	}
	return domain.SchedulePolicy{
		SessionLength: time.Duration(c.SessionLengthMinutes) * time.Minute,
		DailyLimit:    c.DailyClassLimit,
		DayLocation:   loc,
	}, nil
}
