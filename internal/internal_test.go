package internal

import (
	"context"
	"groupchat/auth"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "secret")

		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		req.NoError(err)
		req.Equal(DriverBadger, config.StoreDriver)
		req.Equal(8080, config.GRPCPort)
		req.Equal(8000, config.HTTPPort)
		req.Equal(24*time.Hour, config.AuthTokenDuration)
		req.Equal(2*time.Second, config.SinkTimeout)
		req.Equal(auth.DefaultArgon2Params(), config.Argon2Params())
		req.Equal(12, config.PasswordMinLength)
		req.Empty(config.OriginPatterns())
	})

	t.Run("should read the security settings", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("ARGON2_MEMORY", "19456")
		t.Setenv("ARGON2_ITERATIONS", "2")
		t.Setenv("ARGON2_PARALLELISM", "1")
		t.Setenv("PASSWORD_MIN_LENGTH", "16")
		t.Setenv("WS_ORIGIN_PATTERNS", " chat.example.com, *.example.org ,")

		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		req.NoError(err)
		params := config.Argon2Params()
		req.Equal(uint32(19456), params.Memory)
		req.Equal(uint32(2), params.Iterations)
		req.Equal(uint8(1), params.Parallelism)
		req.Equal(uint32(32), params.KeyLength)
		req.Equal(16, config.PasswordMinLength)
		req.Equal([]string{"chat.example.com", "*.example.org"}, config.OriginPatterns())
	})

	t.Run("should read a .env file without overriding the environment", func(t *testing.T) {
		req := require.New(t)
		file := filepath.Join(t.TempDir(), ".env")
		req.NoError(os.WriteFile(file, []byte("JWT_SECRET=from-file\nGRPC_PORT=9090\nHTTP_PORT=9000\n"), 0o600))
		t.Setenv("HTTP_PORT", "7000")
		t.Cleanup(func() {
			_ = os.Unsetenv("JWT_SECRET")
			_ = os.Unsetenv("GRPC_PORT")
		})

		config, err := LoadConfig(file)

		req.NoError(err)
		req.Equal("from-file", config.JWTSecret)
		req.Equal(9090, config.GRPCPort)
		req.Equal(7000, config.HTTPPort)
	})

	t.Run("should reject a malformed .env file", func(t *testing.T) {
		req := require.New(t)
		file := filepath.Join(t.TempDir(), ".env")
		req.NoError(os.WriteFile(file, []byte("GRPC_PORT=9090\nJWT_SECRET=\"unterminated\n"), 0o600))
		t.Setenv("JWT_SECRET", "secret")
		t.Cleanup(func() { _ = os.Unsetenv("GRPC_PORT") })

		_, err := LoadConfig(file)

		req.ErrorContains(err, file)
	})

	t.Run("should require a DSN for postgres", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORE_DRIVER", DriverPostgres)

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		req.ErrorContains(err, "POSTGRES_DSN")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		StoreDriver: DriverBadger, BadgerFilepath: "./data", JWTSecret: "s",
		AuthTokenDuration: time.Hour, SinkTimeout: time.Second, RestartInterval: time.Second,
		BufferSize: 1, ConnectionBufferSize: 1, NumberOfWorkers: 1,
		Argon2Memory: 65536, Argon2Iterations: 3, Argon2Parallelism: 2, PasswordMinLength: 12,
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		valid  bool
	}{
		{"Valid config", func(c *Config) {}, true},
		{"Unknown driver", func(c *Config) { c.StoreDriver = "mysql" }, false},
		{"Empty secret", func(c *Config) { c.JWTSecret = "" }, false},
		{"No workers", func(c *Config) { c.NumberOfWorkers = 0 }, false},
		{"Negative sink timeout", func(c *Config) { c.SinkTimeout = -time.Second }, false},
		{"Negative publish timeout", func(c *Config) { c.PublishTimeout = -time.Second }, false},
		{"Zero argon2 iterations", func(c *Config) { c.Argon2Iterations = 0 }, false},
		{"Too many argon2 lanes", func(c *Config) { c.Argon2Parallelism = 256 }, false},
		{"Weak password policy", func(c *Config) { c.PasswordMinLength = 4 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNewLogger_writes_json_to_file(t *testing.T) {
	req := require.New(t)
	file := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, closer, err := NewLogger("DEBUG", file)
	req.NoError(err)
	logger.With("component", "test").Info("hello", "chat_id", "c1")
	req.True(logger.Enabled(context.Background(), slog.LevelDebug))
	req.NoError(closer.Close())

	content, err := os.ReadFile(file)
	req.NoError(err)
	req.Contains(string(content), `"msg":"hello"`)
	req.Contains(string(content), `"component":"test"`)
	req.Contains(string(content), `"chat_id":"c1"`)
}

func TestRecordMapper(t *testing.T) {
	req := require.New(t)

	row := RecordMapper("email:a@example.com", []byte("user-1"))
	req.Equal("EMAIL", row.Type)
	req.Equal("user-1", row.Detail)

	row = RecordMapper("chat:broken", []byte{0xff, 0xff})
	req.Equal("Error: decode failed", row.Detail)
}
