package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxQueryLength bounds residue queries accepted by has-sequence lookups.
const MaxQueryLength = 4096

// ValidateResidues validates a residue string (a consensus or a query).
// Residues must be printable ASCII letters or '*'; gaps are not residues.
//
// The validation rules are intentionally conservative:
//   - No empty strings
//   - No control characters, whitespace or gap characters ('-', '.')
//   - Maximum length of maxLen characters (0 disables the check)
func ValidateResidues(s string, maxLen int) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "residue string cannot be empty")
	}
	if maxLen > 0 && len(s) > maxLen {
		return New(ErrCodeInvalidInput, "residue string too long (max %d characters)", maxLen)
	}
	for i, r := range s {
		if r > unicode.MaxASCII || unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "invalid residue %q at position %d", r, i)
		}
		if r == '-' || r == '.' {
			return New(ErrCodeInvalidInput, "gap character %q at position %d is not a residue", r, i)
		}
		if !unicode.IsLetter(r) && r != '*' {
			return New(ErrCodeInvalidInput, "invalid residue %q at position %d", r, i)
		}
	}
	return nil
}

// ValidateLatticeID validates a stored lattice identifier (a UUID).
func ValidateLatticeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "lattice id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid lattice id %q", id)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a backend URL (redis://, mongodb://, mongodb+srv://).
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
