package githubapi

import (
	"fmt"
	"strings"
)

// ParseIdentifier resolves a repository reference into owner and name. It
// accepts the "owner/repo" shorthand and full github.com URLs.
func ParseIdentifier(ref string) (owner, name string, err error) {
	s := strings.TrimSpace(ref)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, ".git")
	s = strings.Trim(s, "/")

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unrecognized repository identifier %q (want owner/repo)", ref)
	}
	// A dot before the slash would indicate a host, not an owner.
	if strings.Contains(parts[0], ".") {
		return "", "", fmt.Errorf("unrecognized repository identifier %q (want owner/repo)", ref)
	}
	return parts[0], parts[1], nil
}
