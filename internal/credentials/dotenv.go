package credentials

import (
	"strings"
)

// LineParser finds the value stored under key in the contents of a
// .env-style file. ok is false when no line supplies a non-empty value.
type LineParser interface {
	Lookup(contents, key string) (value string, ok bool)
}

// NaiveLineParser understands newline separated KEY=VALUE pairs. The key is
// the trimmed text before the first '=', the value everything after it with
// surrounding whitespace removed. There is no quoting, escaping, comment or
// multi-line support; the first matching line with a non-empty value wins.
type NaiveLineParser struct{}

func (NaiveLineParser) Lookup(contents, key string) (string, bool) {
	for _, line := range strings.Split(contents, "\n") {
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(k) != key {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}
