package domain

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

var (
	reScheme = regexp.MustCompile(`(?i)^https?://`)
	reHTTP   = regexp.MustCompile(`(?i)^http://`)
	reWWW    = regexp.MustCompile(`(?i)^www\.`)
)

// NormalizeURL rewrites a user-supplied address into its canonical https form.
// It is the de-duplication key for links, locally and remotely.
//
//	"example.com"          -> "https://example.com/"
//	"http://Example.com/a" -> "https://example.com/a"
//
// Unparseable input is returned https-prefixed but otherwise raw, so that
// IsValidHTTPSURL can reject it. NormalizeURL(NormalizeURL(s)) == NormalizeURL(s).
func NormalizeURL(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ""
	}

	if !reScheme.MatchString(raw) {
		raw = "https://" + raw
	}
	raw = reHTTP.ReplaceAllString(raw, "https://")

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String()
}

// IsValidHTTPSURL reports whether input normalizes to an https URL with a host.
func IsValidHTTPSURL(input string) bool {
	u, err := url.Parse(NormalizeURL(input))
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Hostname() != ""
}

// HostFromURL returns the hostname of input without a leading "www.".
func HostFromURL(input string) string {
	u, err := url.Parse(NormalizeURL(input))
	if err != nil {
		return ""
	}
	return reWWW.ReplaceAllString(u.Hostname(), "")
}

// SanitizeText strips angle brackets from free text.
func SanitizeText(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// DocID derives the stable remote key of a link: URL-safe, unpadded base64
// of the UTF-8 bytes of the normalized URL.
func DocID(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(NormalizeURL(rawURL)))
}
