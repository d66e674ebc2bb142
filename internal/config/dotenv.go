package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// readDotEnv merges KEY=VALUE pairs from a dotenv file into v. A missing file
// is not an error. Process environment variables still win over the file
// because v reads them through AutomaticEnv.
func readDotEnv(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read dotenv %s: %w", path, err)
	}
	return nil
}
