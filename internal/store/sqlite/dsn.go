package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const memoryDSN = ":memory:"

// parseDSN turns sqlite://<path>[?query] into a modernc.org/sqlite DSN.
// Relative paths are anchored at the working directory and the path part is
// URL-unescaped; the query string is passed through untouched.
func parseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	path, query, hasQuery := strings.Cut(rest, "?")
	if path == "" {
		return "", fmt.Errorf("sqlite DSN has no path")
	}

	if path != memoryDSN {
		unescaped, err := url.PathUnescape(path)
		if err != nil {
			return "", fmt.Errorf("unescaping path: %w", err)
		}
		path = unescaped
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
			path = "./" + path
		}
	}

	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}

func isMemory(driverDSN string) bool {
	return driverDSN == memoryDSN || strings.HasPrefix(driverDSN, memoryDSN+"?")
}
