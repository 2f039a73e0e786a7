package storage

import (
	"fmt"
	"strings"
)

// ValidateKey rejects object keys that could address anything outside the
// bucket once a backend maps them onto a filesystem path.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	return validatePrefix(key)
}

// validatePrefix applies ValidateKey's rules but allows the empty prefix.
func validatePrefix(prefix string) error {
	if strings.HasPrefix(prefix, "/") || strings.HasPrefix(prefix, `\`) {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidKey, prefix)
	}
	for _, segment := range strings.FieldsFunc(prefix, isKeySeparator) {
		if segment == ".." {
			return fmt.Errorf("%w: %q contains a .. segment", ErrInvalidKey, prefix)
		}
	}
	return nil
}

func isKeySeparator(r rune) bool { return r == '/' || r == '\\' }
