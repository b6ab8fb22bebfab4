package utils

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidFilenameChars = regexp.MustCompile("[^a-z0-9._ -]+")
	repeatedHyphens      = regexp.MustCompile("-+")
)

// SanitizeFilename reduces an uploaded file name to a safe object key suffix.
// e.g. "../GLS rates.csv" -> "gls-rates.csv"
func SanitizeFilename(input string) string {
	s := strings.ToLower(path.Base(strings.ReplaceAll(input, "\\", "/")))

	s = invalidFilenameChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = repeatedHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")

	if s == "" {
		return "upload"
	}
	return s
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseFloat accepts "." or "," as decimal separator.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

// SplitList splits a comma separated query value, dropping empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
