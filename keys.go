package main

import (
	"fmt"
	"strings"
)

// lowerKey joins identifier parts into the canonical lower-cased dotted key.
func lowerKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "."))
}

// splitQualifiedTable splits a "schema.table" CLI argument into its parts.
func splitQualifiedTable(arg string) (schema, table string, err error) {
	parts := strings.Split(arg, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected <schema>.<table>, got %q", arg)
	}
	return parts[0], parts[1], nil
}
