package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the server reads, e.g.
// GOPHAUTH_SECRET_KEY.
const EnvPrefix = "GOPHAUTH"

// parseFile overlays values from the config file at path (JSON or YAML,
// detected by extension) and from GOPHAUTH_* environment variables. Keys not
// present in either source keep their current value. An empty path skips the
// file but still reads the environment.
func parseFile(cfg *Config, path string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// current values become viper defaults so unset keys survive Unmarshal
	for key, value := range settings(cfg) {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// settings flattens cfg into mapstructure key -> value pairs.
func settings(cfg *Config) map[string]any {
	out := map[string]any{}
	rv := reflect.ValueOf(cfg).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		out[tag] = rv.Field(i).Interface()
	}
	return out
}
