package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ecomtag/internal/constants"
)

func Load(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	steps, err := parseCheckoutSteps(viper.GetStringMapString("tracking.checkout_steps"))
	if err != nil {
		return nil, err
	}
	cfg.Tracking.CheckoutSteps = steps

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func parseCheckoutSteps(raw map[string]string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	steps := make(map[int]string, len(raw))
	for key, event := range raw {
		step, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("tracking.checkout_steps: step index %q is not a number", key)
		}
		steps[step] = event
	}
	return steps, nil
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("tracking.store_name", "TRACKING_STORE_NAME")
	viper.BindEnv("tracking.default_list_name", "TRACKING_DEFAULT_LIST_NAME")
}

func setDefaults() {
	viper.SetDefault("server.port", constants.DefaultServerPort)
	viper.SetDefault("server.read_timeout_seconds", int(constants.DefaultReadTimeout/time.Second))
	viper.SetDefault("server.write_timeout_seconds", int(constants.DefaultWriteTimeout/time.Second))
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
