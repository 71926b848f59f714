// Package scrubber removes secrets from log messages and errors.
package scrubber

import "regexp"

// Redacted replaces the value of a scrubbed secret.
const Redacted = "<redacted>"

// apiKeyPattern matches the API key inside query strings and form bodies.
var apiKeyPattern = regexp.MustCompile(`(?i)\b(apikey=)[^&\s"'<>]+`)

// Scrub returns message with the value of every apikey parameter
// replaced by Redacted.
func Scrub(message string) string {
	return apiKeyPattern.ReplaceAllString(message, "${1}"+Redacted)
}
