// Package config loads playctl settings from the TOML file, the environment
// and the registered defaults.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/playctl/playctl/constant"
	"github.com/playctl/playctl/filesystem"
	"github.com/playctl/playctl/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer turns a key such as sponsorblock.enable into sponsorblock_enable.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Path returns the location of the configuration file.
func Path() string {
	return filepath.Join(where.Config(), constant.Playctl+".toml")
}

// Setup registers defaults and environment bindings, then reads the file if there is one.
func Setup() error {
	viper.SetConfigName(constant.Playctl)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Playctl)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	viper.SetTypeByDefaultValue(true)

	for _, f := range fields {
		viper.MustBindEnv(f.Key)
		viper.SetDefault(f.Key, f.Value)
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}
