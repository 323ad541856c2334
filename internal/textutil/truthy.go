package textutil

import "strings"

// truthyTokens are the spreadsheet values read as "on", including the
// Spanish VERDADERO that Google Sheets exports for checked boxes.
var truthyTokens = map[string]bool{
	"1":         true,
	"true":      true,
	"si":        true,
	"sí":        true,
	"yes":       true,
	"x":         true,
	"✓":         true,
	"check":     true,
	"checked":   true,
	"activo":    true,
	"activa":    true,
	"ok":        true,
	"verdadero": true,
}

// IsTruthy reports whether a cell holds one of the affirmative tokens.
// Comparison is trimmed and case-insensitive; negatives ("falso", "no", "0",
// blank) and unrecognized values are all false.
func IsTruthy(s string) bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(s))]
}

// IsBlank reports whether s is empty after trimming whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
