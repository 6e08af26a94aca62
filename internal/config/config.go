/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package config loads the bot configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/mikelane/commandbot/internal/git"
)

// Config is the complete runtime configuration.
type Config struct {
	Port        int    `env:"PORT,default=3000"`
	Addr        string `env:"ADDR"`
	WebhookPath string `env:"WEBHOOK_PATH,default=/api/github/webhooks"`

	// GitHub App registration
	AppID          int64  `env:"GH_APP_ID,required"`
	AppName        string `env:"GH_APP_NAME,required"`
	AppUserID      int64  `env:"GH_APP_USER_ID,required"`
	InstallationID int64  `env:"GH_APP_INSTALLATION_ID,required"`
	PrivateKey     string `env:"GH_APP_PRIVATE_KEY,required"`
	WebhookSecret  string `env:"GH_APP_WEBHOOK_SECRET,required"`

	WorkspaceRoot          string        `env:"WORKSPACE_ROOT"`
	WorkspaceMaxAge        time.Duration `env:"WORKSPACE_MAX_AGE,default=1h"`
	WorkspaceSweepInterval time.Duration `env:"WORKSPACE_SWEEP_INTERVAL,default=10m"`

	OpticBinary  string `env:"OPTIC_BIN,default=optic"`
	SpecPath     string `env:"OAS_FILE_PATH,default=openapi/oas.yaml"`
	DummyJSONURL string `env:"DUMMYJSON_URL,default=https://dummyjson.com"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND,default=10"`

	LogLevel       string `env:"LOG_LEVEL,default=info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT,default=false"`
}

// Identity returns the git identity of the app.
func (c *Config) Identity() git.Identity {
	return git.Identity{AppName: c.AppName, AppID: c.AppID, UserID: c.AppUserID}
}

// Load reads envFile, when it exists, and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context, envFile string) (*Config, error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	return load(ctx, envconfig.MultiLookuper(
		envconfig.OsLookuper(),
		envconfig.MapLookuper(fileVars),
	))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", withVariable(err))
	}

	// Keys pasted into a single-line variable keep their newlines escaped.
	cfg.PrivateKey = strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// withVariable prefixes err with the environment variable of the field it
// reports on. Decoding errors otherwise only name the Go field.
func withVariable(err error) error {
	msg := err.Error()
	t := reflect.TypeFor[Config]()
	for i := range t.NumField() {
		field := t.Field(i)
		if !strings.HasPrefix(msg, field.Name+":") {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" || strings.Contains(msg, key) {
			return err
		}
		return fmt.Errorf("%s: %w", key, err)
	}
	return err
}

func (c *Config) validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		errs = append(errs, fmt.Errorf("WEBHOOK_PATH %q must start with /", c.WebhookPath))
	}
	if c.WorkspaceMaxAge <= 0 {
		errs = append(errs, errors.New("WORKSPACE_MAX_AGE must be positive"))
	}
	if c.WorkspaceSweepInterval <= 0 {
		errs = append(errs, errors.New("WORKSPACE_SWEEP_INTERVAL must be positive"))
	}
	if c.RateLimitPerSecond <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_SECOND must be positive"))
	}
	return errors.Join(errs...)
}
