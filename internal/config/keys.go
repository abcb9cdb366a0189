package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/taskboard/internal/errors"
)

// Keys lists the dot-notation keys accepted by Get and Set
func Keys() []string {
	return []string{
		"api.base_url",
		"api.timeout",
		"auth.token_file",
		"logging.level",
		"logging.format",
		"telemetry.enabled",
		"telemetry.endpoint",
		"routes_file",
		"defaults.format",
		"defaults.no_color",
		"defaults.page_size",
	}
}

// Get returns the value at key using dot notation
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api.base_url":
		return c.API.BaseURL, nil
	case "api.timeout":
		return c.API.Timeout.String(), nil
	case "auth.token_file":
		return c.Auth.TokenFile, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "telemetry.enabled":
		return strconv.FormatBool(c.Telemetry.Enabled), nil
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint, nil
	case "routes_file":
		return c.RoutesFile, nil
	case "defaults.format":
		return c.Defaults.Format, nil
	case "defaults.no_color":
		return strconv.FormatBool(c.Defaults.NoColor), nil
	case "defaults.page_size":
		return strconv.Itoa(c.Defaults.PageSize), nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns value at key using dot notation. The result is not
// validated; call Validate before saving.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api.base_url":
		c.API.BaseURL = value
	case "api.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.API.Timeout = d
	case "auth.token_file":
		c.Auth.TokenFile = value
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "telemetry.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Telemetry.Enabled = b
	case "telemetry.endpoint":
		c.Telemetry.Endpoint = value
	case "routes_file":
		c.RoutesFile = value
	case "defaults.format":
		c.Defaults.Format = value
	case "defaults.no_color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Defaults.NoColor = b
	case "defaults.page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Defaults.PageSize = n
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown configuration key: %s", key)).
		WithSuggestion("Run 'taskboard config view' to list keys")
}

func invalidValue(key, value string, cause error) error {
	return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid value %q for %s", value, key), cause)
}
