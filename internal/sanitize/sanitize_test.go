package sanitize

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_Empty(t *testing.T) {
	assert.Equal(t, "", String(""))
	assert.Equal(t, "", Strict(""))
}

func TestString_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "company 1", "company 1"},
		{"single quote doubled", "o'brien", "o''brien"},
		{"double dash removed", "name -- comment", "name  comment"},
		{"triple dash leaves one", "a---b", "a-b"},
		{"open comment removed", "a/*b", "ab"},
		{"close comment removed", "a*/b", "ab"},
		{"block comment removed", "x /* drop */ y", "x  drop  y"},
		{"spliced dash after comment removal", "-/**/-", ""},
		{"spliced comment after dash removal", "/--*", ""},
		{"control characters dropped", "a\x00b\x07c\x1fd", "abcd"},
		{"crlf preserved", "a\r\nb", "a\r\nb"},
		{"tab dropped", "a\tb", "ab"},
		{"non-ascii preserved", "größe 東京", "größe 東京"},
		{"control splices dash", "-\x01-x", "x"},
		{"injection attempt", "x'; DROP TABLE t; --", "x''; DROP TABLE t; "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.in))
		})
	}
}

func TestStrict_DropsLineBreaks(t *testing.T) {
	assert.Equal(t, "ab", Strict("a\r\nb"))
	assert.Equal(t, "o''brien", Strict("o'brien\n"))
	assert.Equal(t, "tbl", Strict("t\x00bl"))
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"", "plain", "a--b", "-/**/-", "/*/**/*/", "o'brien", "a\r\n\x00b",
		"---", "*/*", "/-*-/", "東京--大阪",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)

		strict := CleanStrict(in)
		assert.Equal(t, strict, CleanStrict(strict), "input %q", in)
	}
}

func TestString_IdempotentWithoutQuotes(t *testing.T) {
	// Quote doubling is an escape, so only quote-free text is a fixed point.
	inputs := []string{"abc", "a--b", "-/**/-", "line\r\nbreak", "東京"}
	for _, in := range inputs {
		once := String(in)
		assert.Equal(t, once, String(once), "input %q", in)
	}
}

func TestString_NeverEmitsUnsafeSequences(t *testing.T) {
	alphabet := []rune{'-', '/', '*', '\'', 'a', ' ', '\n', '\r', '\x00', '\x1b', 'é'}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		n := rng.Intn(16)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		in := b.String()

		for _, out := range []string{String(in), Strict(in)} {
			assert.NotContains(t, out, "--", "input %q", in)
			assert.NotContains(t, out, "/*", "input %q", in)
			assert.NotContains(t, out, "*/", "input %q", in)
			assertQuotesEscaped(t, in, out)
		}
	}
}

// assertQuotesEscaped checks that every quote in out belongs to a doubled pair.
func assertQuotesEscaped(t *testing.T, in, out string) {
	t.Helper()
	run := 0
	for _, r := range out + "x" {
		if r == '\'' {
			run++
			continue
		}
		if run%2 != 0 {
			t.Errorf("unescaped quote in %q (input %q)", out, in)
			return
		}
		run = 0
	}
}

func TestHasExtendedCharacters(t *testing.T) {
	assert.False(t, HasExtendedCharacters(""))
	assert.False(t, HasExtendedCharacters("plain ascii ~"))
	assert.True(t, HasExtendedCharacters("größe"))
	assert.True(t, HasExtendedCharacters("東京"))
	assert.True(t, HasExtendedCharacters("emoji 🙂"))
}
