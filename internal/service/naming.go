package service

import (
	"fmt"
	"strings"

	"github.com/thoas/go-funk"
)

// GenerateCopyName returns the first of "base-Copy", "base-Copy1", "base-Copy2", ...
// absent from existing.
func GenerateCopyName(existing []string, base string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}

	candidate := fmt.Sprintf("%s-Copy", base)
	for i := 1; ; i++ {
		if _, found := taken[candidate]; !found {
			return candidate
		}
		candidate = fmt.Sprintf("%s-Copy%d", base, i)
	}
}

func namesWithPrefix(names []string, prefix string) []string {
	return funk.FilterString(names, func(name string) bool {
		return strings.HasPrefix(name, prefix)
	})
}
