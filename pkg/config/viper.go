package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Source describes where configuration comes from.
type Source struct {
	// File is an explicit config file; when set, Dir and Name are ignored.
	File string
	// Dir is the directory searched for Name (without extension).
	Dir  string
	Name string
	// EnvPrefix namespaces environment variables, e.g. LIVECHAT_CHAT_ENDPOINT.
	EnvPrefix string
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error unless it was named explicitly.
func Load(src Source) (*viper.Viper, error) {
	v := viper.New()

	if src.File != "" {
		v.SetConfigFile(src.File)
	} else {
		v.SetConfigName(src.Name)
		v.SetConfigType("yaml")
		if src.Dir != "" {
			v.AddConfigPath(src.Dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if src.EnvPrefix != "" {
		v.SetEnvPrefix(src.EnvPrefix)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		if src.File == "" && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}
