package utils

import (
	"log/slog"
	"os"
	"time"

	"skej/src-cal/model"
)

type Config struct {
	port string

	allDayStart   model.TimeOfDay
	allDayEnd     model.TimeOfDay
	defaultStatus model.Status

	location *time.Location
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		allDayStart: func() model.TimeOfDay {
			raw := os.Getenv("SKEJ_ALLDAY_START")
			if raw == "" {
				return model.TimeOfDay{Hour: 8}
			}
			tod, err := model.ParseTimeOfDay(raw)
			if err != nil {
				slog.Error("invalid SKEJ_ALLDAY_START", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SKEJ_ALLDAY_START", raw)
			return tod
		}(),
		allDayEnd: func() model.TimeOfDay {
			raw := os.Getenv("SKEJ_ALLDAY_END")
			if raw == "" {
				return model.TimeOfDay{Hour: 17}
			}
			tod, err := model.ParseTimeOfDay(raw)
			if err != nil {
				slog.Error("invalid SKEJ_ALLDAY_END", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SKEJ_ALLDAY_END", raw)
			return tod
		}(),
		defaultStatus: func() model.Status {
			raw := os.Getenv("SKEJ_DEFAULT_STATUS")
			if raw == "" {
				return model.StatusPublic
			}
			status, err := model.ParseStatus(raw)
			if err != nil {
				slog.Error("invalid SKEJ_DEFAULT_STATUS", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SKEJ_DEFAULT_STATUS", raw)
			return status
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("SKEJ_ZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("SKEJ_ZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "SKEJ_ZONE", timezoneStr)
			return loc
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SKEJ_ZONE env, the zone new calendars default to
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// The engine policy assembled from SKEJ_ALLDAY_START, SKEJ_ALLDAY_END and
// SKEJ_DEFAULT_STATUS
func (c *Config) GetPolicy() model.Policy {
	return model.Policy{
		AllDayStart:   c.allDayStart,
		AllDayEnd:     c.allDayEnd,
		DefaultStatus: c.defaultStatus,
	}
}
