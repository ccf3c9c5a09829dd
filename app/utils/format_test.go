package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		5:    "0:05",
		59:   "0:59",
		60:   "1:00",
		125:  "2:05",
		3599: "59:59",
		3600: "60:00",
	}
	for in, want := range cases {
		got, err := FormatDuration(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "FormatDuration(%d)", in)
	}

	t.Run("matches M:SS for a range of inputs", func(t *testing.T) {
		pattern := regexp.MustCompile(`^\d+:\d{2}$`)
		for s := 0; s < 10000; s += 37 {
			got, err := FormatDuration(s)
			require.NoError(t, err)
			assert.Regexp(t, pattern, got)
			again, _ := FormatDuration(s)
			assert.Equal(t, got, again)
		}
	})

	t.Run("rejects negative input", func(t *testing.T) {
		got, err := FormatDuration(-1)
		assert.ErrorIs(t, err, ErrNegativeDuration)
		assert.Empty(t, got)
	})
}

func TestSanitizeChannelKey(t *testing.T) {
	assert.Equal(t, "room__42__chat", SanitizeChannelKey("room:42:chat"))
	assert.Equal(t, "plain", SanitizeChannelKey("plain"))
	assert.Equal(t, "____", SanitizeChannelKey("::"))

	for _, k := range []string{"a:b", ":", "match:feed:user_1", "x::y"} {
		assert.NotContains(t, SanitizeChannelKey(k), ":")
	}
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "u1--u2", PairKey("u2", "u1"))
	assert.Equal(t, "u1--u2", PairKey("u1", "u2"))
	assert.Equal(t, "same--same", PairKey("same", "same"))

	pairs := [][2]string{{"", "b"}, {"zeta", "alpha"}, {"User_9", "user_1"}}
	for _, p := range pairs {
		assert.Equal(t, PairKey(p[0], p[1]), PairKey(p[1], p[0]))
	}
}

func TestDeterministicColorIndex(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		cases := []struct {
			seed string
			size int
			want int
		}{
			{"a", 8, 1},
			{"ab", 10, 5},
			{"Alice Johnson", 10, 3},
			{"mentorship", 12, 7},
			// hash leaves the int32 range here; the shift still truncates
			{"user_2abcXYZ", 12, 11},
			// surrogate pair hashed as two UTF-16 units
			{"😀", 10, 9},
			{"zzzzzzzzzzzzzzzzzzzz", 10, 8},
			{"", 10, 0},
		}
		for _, tc := range cases {
			got, err := DeterministicColorIndex(tc.seed, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "seed %q", tc.seed)
		}
	})

	t.Run("stable and in range", func(t *testing.T) {
		for _, seed := range []string{"x", "Bob", "a much longer seed with spaces", "ÄÖÜ"} {
			first, err := DeterministicColorIndex(seed, 7)
			require.NoError(t, err)
			second, _ := DeterministicColorIndex(seed, 7)
			assert.Equal(t, first, second)
			assert.GreaterOrEqual(t, first, 0)
			assert.Less(t, first, 7)
		}
	})

	t.Run("rejects empty palette", func(t *testing.T) {
		_, err := DeterministicColorIndex("seed", 0)
		assert.ErrorIs(t, err, ErrInvalidPaletteSize)
	})
}

func TestAvatarHelpers(t *testing.T) {
	assert.Equal(t, AvatarPalette[3], AvatarColor("Alice Johnson"))
	assert.Equal(t, "AJ", Initials("alice  johnson smith"))
	assert.Equal(t, "?", Initials("   "))
	assert.Equal(t, "Mentorship", Capitalize("mentorship"))
	assert.Equal(t, "Éclair", Capitalize("éclair"))
	assert.Equal(t, "", Capitalize(""))
}
