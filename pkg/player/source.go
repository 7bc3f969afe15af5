package player

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateSource checks that source can be handed to a native player: a
// URL with a scheme, or an absolute file path.
func ValidateSource(source string) error {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidSource)
	}
	if trimmed != source {
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalidSource)
	}
	if filepath.IsAbs(source) {
		return nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("%w: missing scheme in %q", ErrInvalidSource, source)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host in %q", ErrInvalidSource, source)
		}
	}
	return nil
}
