package selector

import (
	"strings"

	"golang.org/x/mod/semver"
)

// CompareVersions orders two version requirements by the version they name.
// Operators are ignored and only the first comparator of a list is used.
// Requirements that do not name a valid version order below valid ones, and
// equal versions fall back to their text so the order is total.
func CompareVersions(a, b string) int {
	va, okA := canonical(a)
	vb, okB := canonical(b)

	switch {
	case okA && okB:
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
	case okA:
		return 1
	case okB:
		return -1
	}
	return strings.Compare(a, b)
}

// canonical turns a requirement such as "^1.2, <2" into "v1.2".
func canonical(req string) (string, bool) {
	first, _, _ := strings.Cut(req, ",")
	v := strings.TrimLeft(strings.TrimSpace(first), "^~=<> \t")
	v = strings.TrimSuffix(strings.TrimSuffix(v, ".*"), ".*")
	if v == "" || v == "*" {
		return "", false
	}
	v = "v" + v
	return v, semver.IsValid(v)
}

// highest returns the greatest of versions.
func highest(versions []string) string {
	var best string
	for i, v := range versions {
		if i == 0 || CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best
}
