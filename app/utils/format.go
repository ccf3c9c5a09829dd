package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	// ErrNegativeDuration is returned when a duration below zero is formatted
	ErrNegativeDuration = errors.New("duration must not be negative")

	// ErrInvalidPaletteSize is returned for a palette with no entries
	ErrInvalidPaletteSize = errors.New("palette size must be positive")
)

// AvatarPalette is the fixed set of avatar background colors handed to clients
var AvatarPalette = []string{
	"#EF4444", // red
	"#F97316", // orange
	"#F59E0B", // amber
	"#10B981", // emerald
	"#14B8A6", // teal
	"#3B82F6", // blue
	"#6366F1", // indigo
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#64748B", // slate
}

// FormatDuration renders a number of seconds as M:SS
func FormatDuration(totalSeconds int) (string, error) {
	if totalSeconds < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeDuration, totalSeconds)
	}
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60), nil
}

// SanitizeChannelKey turns a structured key like "room:42:chat" into a
// pub/sub safe channel name. Keys already containing "__" may collide.
func SanitizeChannelKey(key string) string {
	return strings.ReplaceAll(key, ":", "__")
}

// PairKey builds an order independent key for two identifiers
func PairKey(idA, idB string) string {
	ids := []string{idA, idB}
	sort.Strings(ids)
	return ids[0] + "--" + ids[1]
}

// DeterministicColorIndex hashes seed into [0, paletteSize).
//
// The hash walks UTF-16 code units and computes
// hash = code + ((hash << 5) - hash), where the shift operates on the 32-bit
// truncation of hash and the subtraction does not. This keeps indexes identical
// to the ones the web client computes for the same seed.
func DeterministicColorIndex(seed string, paletteSize int) (int, error) {
	if paletteSize <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPaletteSize, paletteSize)
	}

	var hash int64
	for _, unit := range utf16.Encode([]rune(seed)) {
		shifted := int32(hash) << 5
		hash = int64(unit) + (int64(shifted) - hash)
	}

	if hash < 0 {
		hash = -hash
	}
	return int(hash % int64(paletteSize)), nil
}

// AvatarColor picks the avatar background for seed from AvatarPalette
func AvatarColor(seed string) string {
	idx, err := DeterministicColorIndex(seed, len(AvatarPalette))
	if err != nil {
		return AvatarPalette[0]
	}
	return AvatarPalette[idx]
}

// Capitalize upper-cases the first rune of s
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Initials returns up to two upper-cased initials from a display name
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		initials = append(initials, unicode.ToUpper(r))
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}
