package crawler

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// safeBasename derives a filesystem-safe, collision-resistant name for an
// asset URL: host, sanitized path, and a short hash of the full URL.
func safeBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return hashURL(raw)
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	hash := hashURL(raw)[:16]
	return fmt.Sprintf("%s_%s_%s", host, p, hash)
}

func hashURL(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// extensionOf returns the lowercase file extension of a URL path, without
// the leading dot, or "".
func extensionOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := u.Path
	idx := strings.LastIndexByte(p, '.')
	if idx < 0 || idx == len(p)-1 {
		return ""
	}
	if strings.ContainsRune(p[idx:], '/') {
		return ""
	}
	return strings.ToLower(p[idx+1:])
}
