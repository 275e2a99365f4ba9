package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix starts every docmerge-specific environment variable.
const EnvPrefix = "DOCMERGE_"

// Google credential variables shared with other service-account tooling.
const (
	EnvServiceAccountEmail = "GOOGLE_SERVICE_ACCOUNT_EMAIL"
	EnvPrivateKey          = "GOOGLE_PRIVATE_KEY"
	EnvProjectID           = "GOOGLE_PROJECT_ID"
	EnvFolderID            = "GOOGLE_DRIVE_FOLDER_ID"
)

// EnvConfig names the config file when --config is not given. It is read by
// the CLI before ApplyEnv runs.
const EnvConfig = EnvPrefix + "CONFIG"

type envSetter func(c *Config, value string) error

func stringSetter(field func(c *Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func durationSetter(field func(c *Config) *time.Duration) envSetter {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func int64Setter(field func(c *Config) *int64) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

// envSetters maps every recognized variable to the field it overrides.
var envSetters = map[string]envSetter{
	EnvServiceAccountEmail: stringSetter(func(c *Config) *string { return &c.Google.ServiceAccountEmail }),
	EnvPrivateKey:          stringSetter(func(c *Config) *string { return &c.Google.PrivateKey }),
	EnvProjectID:           stringSetter(func(c *Config) *string { return &c.Google.ProjectID }),
	EnvFolderID:            stringSetter(func(c *Config) *string { return &c.Google.FolderID }),

	EnvPrefix + "PRIVATE_KEY_FILE": stringSetter(func(c *Config) *string { return &c.Google.PrivateKeyFile }),
	EnvPrefix + "BACKEND":          stringSetter(func(c *Config) *string { return &c.Store.Backend }),
	EnvPrefix + "TEMPLATE_DIR":     stringSetter(func(c *Config) *string { return &c.Store.TemplateDir }),
	EnvPrefix + "SCRATCH_PREFIX":   stringSetter(func(c *Config) *string { return &c.Store.ScratchPrefix }),
	EnvPrefix + "ADDR":             stringSetter(func(c *Config) *string { return &c.Server.Addr }),
	EnvPrefix + "LOG_LEVEL":        stringSetter(func(c *Config) *string { return &c.Log.Level }),
	EnvPrefix + "LOG_FORMAT":       stringSetter(func(c *Config) *string { return &c.Log.Format }),
	EnvPrefix + "TIMEOUT":          durationSetter(func(c *Config) *time.Duration { return &c.Server.Timeout }),
	EnvPrefix + "SWEEP_INTERVAL":   durationSetter(func(c *Config) *time.Duration { return &c.Server.SweepInterval }),
	EnvPrefix + "MAX_BODY_BYTES":   int64Setter(func(c *Config) *int64 { return &c.Server.MaxBodyBytes }),
}

// ApplyEnv overrides c from environ entries ("KEY=value"). Empty values are
// ignored. It returns a warning for every unrecognized DOCMERGE_ variable so
// typos do not go unnoticed.
func (c *Config) ApplyEnv(environ []string) (warnings []string, err error) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		set, known := envSetters[key]
		if !known {
			if strings.HasPrefix(key, EnvPrefix) && key != EnvConfig {
				warnings = append(warnings, fmt.Sprintf("unknown environment variable %s", key))
			}
			continue
		}
		if err := set(c, value); err != nil {
			return warnings, fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
	}
	sort.Strings(warnings)
	return warnings, nil
}
