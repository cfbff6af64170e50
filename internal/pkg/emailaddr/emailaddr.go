// Package emailaddr validates email addresses with a conservative
// RFC-5322-ish pattern: a plain or quoted local part, and a domain that is
// either dotted labels or a bracketed IPv4 address.
package emailaddr

import (
	"fmt"
	"regexp"

	"github.com/headless-auth-relay/internal/domain"
)

var pattern = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}))$`)

// Validate returns a descriptive ErrBadRequest-wrapped error when value is
// empty or does not look like an email address. The message is user-facing.
func Validate(value string) error {
	if value == "" || !pattern.MatchString(value) {
		return fmt.Errorf("Please enter a valid email address, like yourname@example.com: %w", domain.ErrBadRequest)
	}
	return nil
}
