// Package common provides shared HTTP utility functions for API handlers.
package common

import (
	"fmt"
	"net/http"
	"strings"
)

// GetQueryList returns the values of a comma separated query parameter.
// Repeated parameters are merged, blanks are dropped and order is kept.
func GetQueryList(r *http.Request, paramName string) []string {
	var values []string
	for _, raw := range r.URL.Query()[paramName] {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

// GetAndValidateQueryParam returns an optional single-valued query parameter.
// Validation rules:
// - An absent or blank parameter yields an empty string
// - The value must not contain whitespace
func GetAndValidateQueryParam(r *http.Request, paramName string) (string, error) {
	value := r.URL.Query().Get(paramName)
	if strings.TrimSpace(value) == "" {
		return "", nil
	}

	if strings.ContainsAny(value, " \t\n\r") {
		return "", fmt.Errorf("%s cannot contain whitespace", paramName)
	}

	return value, nil
}
