package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var C *Conf

// InitConfig loads PARTNR_CONFIG, or $HOME/.config/partnr/config.toml which is
// written with defaults on first use.
func InitConfig() {
	configPath := os.Getenv("PARTNR_CONFIG")
	if configPath == "" {
		home := checkConfig()
		configPath = filepath.Join(home, ".config", "partnr", "config.toml")
	}
	c, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config file invalid. %+v", err))
	}
	C = c
}

// Load reads one toml file into a fresh Conf.
func Load(path string) (*Conf, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	var c Conf
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("Error getting home directory: %s\n", err))
	}
	if err := WriteDefault(filepath.Join(home, ".config", "partnr"), home); err != nil {
		panic(err.Error())
	}
	return home
}

// WriteDefault creates configDir/config.toml unless it already exists.
func WriteDefault(configDir, home string) error {
	configFile := filepath.Join(configDir, "config.toml")
	if err := os.MkdirAll(configDir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		return err
	}
	file, err := os.Create(configFile)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()
	config := strings.Replace(content, "{keyDir}", filepath.Join(home, ".partnr", "keystore"), 1)
	if _, err = file.WriteString(config); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}
	return nil
}
