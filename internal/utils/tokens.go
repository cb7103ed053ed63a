package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// LinkCodeLen is the length of a Telegram link code in hex characters.
const LinkCodeLen = 32

// NewLinkCode returns a random upper-case hex code of LinkCodeLen characters.
func NewLinkCode() (string, error) {
	b := make([]byte, LinkCodeLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizeLinkCode strips quoting and stray punctuation pasted around a code.
// ok is false unless exactly LinkCodeLen hex digits remain.
func NormalizeLinkCode(s string) (code string, ok bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Hex_Digit, r) {
			b.WriteRune(r)
		}
	}
	code = b.String()
	if len(code) != LinkCodeLen {
		return "", false
	}
	return code, true
}
