// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Store.FormLookupTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TenantTTL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "tenantforms", cfg.Observability.ServiceName)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "STORE_DRIVER=memory\nJWT_SECRET=" + testSecret + "\nSERVER_PORT=9090\nRATELIMIT_RPS=2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv never overrides the real environment; register cleanup for
	// the keys the file sets so they do not leak into other tests.
	for _, k := range []string{"STORE_DRIVER", "JWT_SECRET", "SERVER_PORT", "RATELIMIT_RPS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

// TestPurpose: Validates that unsafe configurations are rejected at startup.
// Scope: Unit Test
// Security: Weak token signing secrets (CWE-326)
// Expected: Validate fails for short secrets, unknown drivers and postgres without credentials.
// Test Case ID: CFG-01
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:     StoreConfig{Driver: DriverPostgres},
			Database:  DatabaseConfig{Password: "pw"},
			Auth:      AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
			RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "url instead of password", mutate: func(c *Config) { c.Database.Password = ""; c.Database.URL = "postgres://x" }},
		{name: "memory needs no database", mutate: func(c *Config) { c.Store.Driver = DriverMemory; c.Database.Password = "" }},
		{name: "postgres without credentials", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: "STORE_DRIVER"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: "JWT_SECRET"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: "JWT_TTL"},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }, wantErr: "RATELIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
