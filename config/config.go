// Package config holds slade-core's persistent settings, loaded with
// viper the way gcsfuse's cfg package does (bind flags/env, decode
// into a typed struct via mapstructure) rather than hand-rolling flag
// parsing (spec.md §6).
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the persistent keys table (spec.md §6).
type Config struct {
	ArchiveDirIgnoreHidden bool    `mapstructure:"archive_dir_ignore_hidden"`
	IwadLock               bool    `mapstructure:"iwad_lock"`
	MapSplitAutoOffset     bool    `mapstructure:"map_split_auto_offset"`
	ZipAllowDuplicateNames bool    `mapstructure:"zip_allow_duplicate_names"`
	VwadAllowDuplicateNames bool   `mapstructure:"vwad_allow_duplicate_names"`
	VwadPrivateKey         string  `mapstructure:"vwad_private_key"`
	VwadAuthorName         string  `mapstructure:"vwad_author_name"`
	MaxEntrySizeMB         float64 `mapstructure:"max_entry_size_mb"`
}

// Defaults returns the built-in value for every key before any config
// file or environment override is applied.
func Defaults() Config {
	return Config{
		ArchiveDirIgnoreHidden: true,
		IwadLock:               true,
		MapSplitAutoOffset:     true,
		ZipAllowDuplicateNames: false,
		VwadAllowDuplicateNames: false,
		VwadPrivateKey:         "",
		VwadAuthorName:         "",
		MaxEntrySizeMB:         256,
	}
}

// Load reads configFile (if non-empty) and the SLADE_-prefixed
// environment into a Config seeded with Defaults, mirroring gcsfuse's
// cmd/root.go bind-then-unmarshal sequence.
func Load(configFile string) (Config, error) {
	v := viper.New()
	def := Defaults()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SLADE")
	v.AutomaticEnv()

	setDefault(v, def)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	decoder := &mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	}
	dec, err := mapstructure.NewDecoder(decoder)
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func setDefault(v *viper.Viper, def Config) {
	v.SetDefault("archive_dir_ignore_hidden", def.ArchiveDirIgnoreHidden)
	v.SetDefault("iwad_lock", def.IwadLock)
	v.SetDefault("map_split_auto_offset", def.MapSplitAutoOffset)
	v.SetDefault("zip_allow_duplicate_names", def.ZipAllowDuplicateNames)
	v.SetDefault("vwad_allow_duplicate_names", def.VwadAllowDuplicateNames)
	v.SetDefault("vwad_private_key", def.VwadPrivateKey)
	v.SetDefault("vwad_author_name", def.VwadAuthorName)
	v.SetDefault("max_entry_size_mb", def.MaxEntrySizeMB)
}
