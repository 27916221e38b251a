package tools

import (
	"fmt"
	"math"
)

func requiredStringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	if value == "" {
		return "", fmt.Errorf("argument %q must not be empty", key)
	}
	return value, nil
}

func optionalStringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return value, nil
}

// optionalIntArg accepts either a native int or the float64 that
// encoding/json produces for JSON numbers. Fractional values are rejected.
func optionalIntArg(args map[string]any, key string) (*int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case int:
		return &v, nil
	case int64:
		n := int(v)
		return &n, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("argument %q must be an integer", key)
		}
		n := int(v)
		return &n, nil
	default:
		return nil, fmt.Errorf("argument %q must be an integer", key)
	}
}
