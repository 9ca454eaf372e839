package internal

import (
	"errors"
	"fmt"
	"groupchat/auth"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	StoreDriver          string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger"`
	PostgresDSN          string        `env:"POSTGRES_DSN"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	LogFile              string        `env:"LOG_FILE"`
	Host                 string        `env:"HOST,default=0.0.0.0"`
	GRPCPort             int           `env:"GRPC_PORT,default=8080"`
	HTTPPort             int           `env:"HTTP_PORT,default=8000"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=8"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,default=4"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT,default=250ms"`
	Argon2Memory         int           `env:"ARGON2_MEMORY,default=65536"`
	Argon2Iterations     int           `env:"ARGON2_ITERATIONS,default=3"`
	Argon2Parallelism    int           `env:"ARGON2_PARALLELISM,default=2"`
	PasswordMinLength    int           `env:"PASSWORD_MIN_LENGTH,default=12"`
	WSOriginPatterns     string        `env:"WS_ORIGIN_PATTERNS"`
}

// LoadConfig reads the optional .env files then the environment.
// Variables already set in the environment win over the files.
// A missing file is skipped, an unreadable or malformed one is an error.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("unable to load %s: %w", file, err)
		}
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required with the %s driver", DriverBadger)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required with the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverBadger, DriverPostgres, c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.AuthTokenDuration <= 0 || c.SinkTimeout <= 0 || c.RestartInterval <= 0 {
		return fmt.Errorf("AUTH_TOKEN_DURATION, SINK_TIMEOUT and RESTART_INTERVAL must be positive")
	}
	if c.BufferSize <= 0 || c.ConnectionBufferSize <= 0 || c.NumberOfWorkers <= 0 {
		return fmt.Errorf("BUFFER_SIZE, CONNECTION_BUFFER_SIZE and NUMBER_OF_WORKERS must be positive")
	}
	if c.PublishTimeout < 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must not be negative")
	}
	if c.Argon2Memory < 8*c.Argon2Parallelism || c.Argon2Iterations < 1 || c.Argon2Parallelism < 1 || c.Argon2Parallelism > 255 {
		return fmt.Errorf("ARGON2_MEMORY must be at least 8 KiB per lane, ARGON2_ITERATIONS at least 1, ARGON2_PARALLELISM within 1..255")
	}
	if c.PasswordMinLength < 8 || c.PasswordMinLength > 72 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be within 8..72, got %d", c.PasswordMinLength)
	}
	return nil
}

func (c Config) Argon2Params() auth.Argon2Params {
	params := auth.DefaultArgon2Params()
	params.Memory = uint32(c.Argon2Memory)
	params.Iterations = uint32(c.Argon2Iterations)
	params.Parallelism = uint8(c.Argon2Parallelism)
	return params
}

// OriginPatterns splits WS_ORIGIN_PATTERNS, a comma separated list of hosts.
func (c Config) OriginPatterns() []string {
	patterns := lo.Map(strings.Split(c.WSOriginPatterns, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(patterns)
}
