package splitter

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
)

// SanitizeName returns a filesystem-safe version of name
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = unsafeChars.ReplaceAllString(name, "_")
	name = controlChars.ReplaceAllString(name, "")
	if name == "" {
		return "track"
	}
	return name
}

// trackNames derives an output file name for each track from its base
// name. Clashing names get a numeric suffix in input order.
func trackNames(tracks []string) []string {
	names := make([]string, len(tracks))
	seen := make(map[string]int, len(tracks))
	for i, path := range tracks {
		base := filepath.Base(path)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		name := SanitizeName(base)
		key := strings.ToLower(name)
		seen[key]++
		if n := seen[key]; n > 1 {
			name += "_" + strconv.Itoa(n)
		}
		names[i] = name + ".wav"
	}
	return names
}
