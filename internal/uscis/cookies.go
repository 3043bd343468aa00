package uscis

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadCookies parses a Netscape-format cookie export into name/value
// pairs. Comment lines, blank lines and lines with fewer than the
// seven tab-separated fields are skipped. The session cookies for
// my.uscis.gov cannot be obtained programmatically, so they arrive as
// a browser export.
func LoadCookies(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer file.Close()

	cookies := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		// domain, flag, path, secure, expires, name, value
		parts := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(parts) < 7 {
			continue
		}
		cookies[parts[5]] = parts[6]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	return cookies, nil
}
