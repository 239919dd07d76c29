package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("15s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// JsonConfig mirrors Config for unmarshalling. Absent fields keep the values
// of the lower layers.
type JsonConfig struct {
	ListenAddr      *string   `json:"listen_addr"`
	Storage         *string   `json:"storage"`
	DatabaseDSN     *string   `json:"database_dsn"`
	DBMaxConns      *int32    `json:"db_max_conns"`
	DBMinConns      *int32    `json:"db_min_conns"`
	RunMigration    *bool     `json:"run_migrations"`
	SecretKey       *string   `json:"secret_key"`
	TimeZone        *string   `json:"time_zone"`
	LogLevel        *string   `json:"log_level"`
	ReadTimeout     *Duration `json:"read_timeout"`
	WriteTimeout    *Duration `json:"write_timeout"`
	IdleTimeout     *Duration `json:"idle_timeout"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config into config. A missing flag
// means no file; an unreadable or malformed file panics, as there is no
// sensible way to start with half a configuration.
func parseJson(config *Config) {
	path := jsonConfigFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.ListenAddr, c.ListenAddr)
	setIf(&config.Storage, c.Storage)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.DBMaxConns, c.DBMaxConns)
	setIf(&config.DBMinConns, c.DBMinConns)
	setIf(&config.RunMigration, c.RunMigration)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.TimeZone, c.TimeZone)
	setIf(&config.LogLevel, c.LogLevel)
	setDuration(&config.ReadTimeout, c.ReadTimeout)
	setDuration(&config.WriteTimeout, c.WriteTimeout)
	setDuration(&config.IdleTimeout, c.IdleTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
