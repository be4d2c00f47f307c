package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var hexRegex = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// ValidEmail validates that a string is a usable email address.
// Parsing follows RFC 5322 via net/mail, tightened for typical web use:
// a single @, non-empty local part, and a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}

			addr, err := mail.ParseAddress(value)
			if err != nil {
				return false
			}

			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 {
				return false
			}

			local := parts[0]
			domain := parts[1]

			if local == "" {
				return false
			}

			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}

			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}

			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// NotEmpty validates that a string has content after trimming whitespace.
func NotEmpty(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "cannot be blank",
		},
	}
}

// MinLength validates that a string is at least min bytes long.
func MinLength(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= min
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters long", min),
		},
	}
}

// FieldsMatch validates that two inputs are byte-identical, reported against
// the confirmation field.
func FieldsMatch(field, value, confirm string) Rule {
	return Rule{
		Check: func() bool {
			return value == confirm
		},
		Error: ValidationError{
			Field:   field,
			Message: "values do not match",
		},
	}
}

// Hexadecimal validates that a string consists solely of hex digits and,
// when length > 0, has exactly that length. Used for bearer tokens embedded
// in URLs, where anything else is a malformed link rather than a lookup miss.
func Hexadecimal(field, value string, length int) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return false
			}
			if length > 0 && len(value) != length {
				return false
			}
			return hexRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "is not a well-formed token",
		},
	}
}
