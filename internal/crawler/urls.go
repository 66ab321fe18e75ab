package crawler

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var ErrInvalidURL = errors.New("invalid url")

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL trims raw, assumes https when no scheme is given and accepts
// only http and https URLs with a host. Internationalised host names are
// converted to their ASCII form.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}
	if !schemeRe.MatchString(s) {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if host := u.Hostname(); !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", ErrInvalidURL
		}
		if port := u.Port(); port != "" {
			ascii += ":" + port
		}
		u.Host = ascii
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Origin returns scheme://host of pageURL.
func Origin(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}
	return u.Scheme + "://" + u.Host, nil
}

// RobotsURL returns the robots.txt location for pageURL's host.
func RobotsURL(pageURL string) (string, error) {
	origin, err := Origin(pageURL)
	if err != nil {
		return "", err
	}
	return origin + "/robots.txt", nil
}
