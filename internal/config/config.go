// Package config holds the small set of operator-tunable engine settings:
// the grace window given to a child after a forwarded termination signal,
// and the base directory under which per-run tmp directories are created.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds engine runtime settings.
type Config struct {
	// GracePeriod is how long the executor waits for a child to exit after
	// forwarding a termination signal before giving up.
	GracePeriod time.Duration

	// TmpBase is the directory under which each run's tmp-scope root is
	// created, as a fresh uniquely-named subdirectory per run.
	TmpBase string
}

// Load reads settings from environment variables (STEPWISE_GRACE_PERIOD,
// STEPWISE_TMP_ROOT), falling back to defaults. No command-line flag is
// bound to these settings.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix("stepwise")
	v.AutomaticEnv()
	v.SetDefault("grace_period", 5*time.Second)
	v.SetDefault("tmp_root", os.TempDir())

	return &Config{
		GracePeriod: v.GetDuration("grace_period"),
		TmpBase:     v.GetString("tmp_root"),
	}, nil
}
