// package codec converts FLO internal playlist IDs to and from the obfuscated form used in public URLs.
//
// Each decimal digit of the ID is replaced by the symbol at that position in a fixed 10-symbol alphabet.
// With the default alphabet, 789 encodes to "ohy" and "ohy" decodes back to 789.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/flox/internal/shared"
)

// DefaultAlphabet is the digit substitution table used by music-flo.com.
const DefaultAlphabet = "danielzohy"

// ErrInvalidAlphabet is returned by [New] when the alphabet is not exactly 10 distinct symbols.
var ErrInvalidAlphabet = fmt.Errorf("alphabet must be 10 distinct symbols")

// Codec maps decimal digits to alphabet symbols and back.
type Codec struct {
	symbols []rune
	digits  map[rune]byte
}

var defaultCodec = MustNew(DefaultAlphabet)

// New builds a Codec for alphabet, where the symbol at index i stands for digit i.
func New(alphabet string) (*Codec, error) {
	symbols := []rune(alphabet)
	if len(symbols) != 10 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAlphabet, len(symbols))
	}

	digits := make(map[rune]byte, len(symbols))
	for i, r := range symbols {
		if _, dup := digits[r]; dup {
			return nil, fmt.Errorf("%w: %q repeats", ErrInvalidAlphabet, r)
		}
		digits[r] = byte('0' + i)
	}

	return &Codec{symbols: symbols, digits: digits}, nil
}

// MustNew is like [New] but panics on an invalid alphabet.
func MustNew(alphabet string) *Codec {
	c, err := New(alphabet)
	if err != nil {
		panic(err)
	}
	return c
}

// Encode renders id in decimal and substitutes every digit with its symbol.
func (c *Codec) Encode(id uint64) string {
	var b strings.Builder
	for _, d := range strconv.FormatUint(id, 10) {
		b.WriteRune(c.symbols[d-'0'])
	}
	return b.String()
}

// Decode reverses [Codec.Encode]. A symbol outside the alphabet is an [shared.ErrDecode].
func (c *Codec) Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty identifier", shared.ErrDecode)
	}

	digits := make([]byte, 0, utf8.RuneCountInString(s))
	for i, r := range s {
		d, ok := c.digits[r]
		if !ok {
			return 0, fmt.Errorf("%w: symbol %q at offset %d is not in the alphabet", shared.ErrDecode, r, i)
		}
		digits = append(digits, d)
	}

	id, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", shared.ErrDecode, s, err)
	}
	return id, nil
}

// Encode uses [DefaultAlphabet].
func Encode(id uint64) string { return defaultCodec.Encode(id) }

// Decode uses [DefaultAlphabet].
func Decode(s string) (uint64, error) { return defaultCodec.Decode(s) }

// Default returns the codec for [DefaultAlphabet].
func Default() *Codec { return defaultCodec }
