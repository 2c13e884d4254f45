package config

import (
	"sort"
	"strings"
)

// ParseEnv parses KEY=VALUE entries into a map. Entries are applied in
// order, so a later duplicate key overrides an earlier one. An entry without
// "=" or with an empty key fails with EnvSyntaxError.
func ParseEnv(entries []string) (map[string]string, error) {
	extra := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry, "=") || strings.HasPrefix(entry, "=") {
			return nil, &EnvSyntaxError{Entry: entry}
		}
		key, value, _ := strings.Cut(entry, "=")
		extra[key] = value
	}
	return extra, nil
}

// MergeEnviron merges extra over a snapshot of base, where base is a
// KEY=VALUE list in the os.Environ format. The result is a new sorted list;
// neither input is modified.
func MergeEnviron(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for _, entry := range base {
		key, value, _ := strings.Cut(entry, "=")
		merged[key] = value
	}
	for key, value := range extra {
		merged[key] = value
	}

	out := make([]string, 0, len(merged))
	for key, value := range merged {
		out = append(out, key+"="+value)
	}
	sort.Strings(out)
	return out
}
