package validation

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	codeRegex      = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)
	ipv4LikeRegex  = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	schemePrefixes = []string{"http://", "https://"}
)

// NormalizeURL trims whitespace and prepends https:// when the input has no
// http:// or https:// prefix. Pure function, no side effects.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, p := range schemePrefixes {
		if strings.HasPrefix(lower, p) {
			return s
		}
	}
	return "https://" + s
}

// IsValidURL reports whether the input normalizes to an absolute http/https
// URL with a plausible hostname. The hostname check is a heuristic, not DNS
// validation: localhost, dotted-quad IPv4 strings, and anything containing a
// dot are accepted.
func IsValidURL(raw string) bool {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if host == "localhost" || ipv4LikeRegex.MatchString(host) {
		return true
	}
	return strings.Contains(host, ".")
}

// IsValidCustomCode reports whether code is exactly 6-8 alphanumeric characters.
func IsValidCustomCode(code string) bool {
	return codeRegex.MatchString(code)
}

// ValidateLinkInput checks a url/code pair and returns the first failure as a
// user-facing reason. Checks run in order: url presence, url validity, code
// presence, code validity. The server runs this again on every create request
// regardless of any client-side validation.
func ValidateLinkInput(rawURL, customCode string) (bool, string) {
	if strings.TrimSpace(rawURL) == "" {
		return false, "URL is required"
	}
	if !IsValidURL(rawURL) {
		return false, "Invalid URL format. Must start with http:// or https://"
	}
	if strings.TrimSpace(customCode) == "" {
		return false, "Custom code is required"
	}
	if !IsValidCustomCode(customCode) {
		return false, "Custom code must be 6-8 alphanumeric characters"
	}
	return true, ""
}
