package azguard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxNameLength bounds operation and task names passed to checks.
const maxNameLength = 0x100

// checkParameter trims value and validates it. maxSize <= 0 disables the
// length check. Errors wrap ErrInvalidParameter.
func checkParameter(value string, checkEmpty, checkCommas bool, maxSize int, name string) (string, error) {
	value = strings.TrimSpace(value)
	if checkEmpty && value == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidParameter, name)
	}
	if maxSize > 0 && utf8.RuneCountInString(value) > maxSize {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidParameter, name, maxSize)
	}
	if checkCommas && strings.Contains(value, ",") {
		return "", fmt.Errorf("%w: %s must not contain commas", ErrInvalidParameter, name)
	}
	return value, nil
}

// checkArrayParameter validates every element with checkParameter and
// rejects empty arrays and duplicate entries.
func checkArrayParameter(values []string, checkEmpty, checkCommas bool, maxSize int, name string) ([]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidParameter, name)
	}
	out := make([]string, len(values))
	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		checked, err := checkParameter(v, checkEmpty, checkCommas, maxSize, fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[checked]; dup {
			return nil, fmt.Errorf("%w: %s contains duplicate %q", ErrInvalidParameter, name, checked)
		}
		seen[checked] = struct{}{}
		out[i] = checked
	}
	return out, nil
}
