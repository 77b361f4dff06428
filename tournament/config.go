package tournament

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// loadConfigFile reads a system config file into out. The file format is
// inferred from the extension (json, yaml, toml, ...); struct fields are
// matched on their json tags so the same structs serve both storage and
// configuration.
func loadConfigFile(path string, out interface{}) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	decodeOpt := func(dc *mapstructure.DecoderConfig) { dc.TagName = "json" }
	if err := v.Unmarshal(out, decodeOpt); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}
