package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type envTypes interface {
	string | int | bool
}

// GetEnv reads an environment variable, falling back to defaultValue when the
// variable is unset or empty.
func GetEnv[T envTypes](name string, defaultValue T) T {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return defaultValue
	}
	value, err := parseEnv[T](name, raw)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return value
}

func parseEnv[T envTypes](name, raw string) (T, error) {
	var value T
	switch ptr := any(&value).(type) {
	case *string:
		*ptr = raw
	case *int:
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return value, fmt.Errorf("environment variable %s: %q is not an integer", name, raw)
		}
		*ptr = parsed
	case *bool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return value, fmt.Errorf("environment variable %s: %q is not a boolean", name, raw)
		}
		*ptr = parsed
	}
	return value, nil
}
