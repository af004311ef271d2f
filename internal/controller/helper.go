package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sharetube/disco/pkg/validator"
)

func orEmpty(payload json.RawMessage) []byte {
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return []byte("{}")
	}

	return payload
}

// decode unmarshals and validates a payload into dst.
func (c controller) decode(payload json.RawMessage, dst any) error {
	if err := json.Unmarshal(orEmpty(payload), dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	if errs, ok := c.validate.Validate(dst); !ok {
		return fmt.Errorf("%w: %w", errInvalidPayload, validator.Err(errs))
	}

	return nil
}

func (c controller) originAllowed(origin string) bool {
	if len(c.allowedOrigins) == 0 || origin == "" {
		return true
	}

	return slices.Contains(c.allowedOrigins, origin)
}

// normalizeRoomCode trims input and upper-cases it unless the alphabet is
// case sensitive.
func (c controller) normalizeRoomCode(code string) string {
	code = strings.TrimSpace(code)
	if c.codeAlphabet == strings.ToUpper(c.codeAlphabet) {
		code = strings.ToUpper(code)
	}

	return code
}

func (c controller) isRoomCode(code string) bool {
	if utf8.RuneCountInString(code) != c.codeLength {
		return false
	}

	for _, r := range code {
		if !strings.ContainsRune(c.codeAlphabet, r) {
			return false
		}
	}

	return true
}
