// Package tokenizer splits raw input into a sequence of Symbols according
// to a format.Mode (§4.2).
//
// Byte mode is always bit-exact. Char mode is bit-exact for valid UTF-8 and
// falls back to per-byte symbols on invalid sequences. Word mode is
// explicitly not bit-exact: consecutive whitespace runs collapse to a
// single separator on decode, and casing is not restored (§4.2 Non-goals).
package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/arloliu/e8z/format"
)

// Symbol is an opaque token: a single byte in byte mode, a Unicode scalar
// value in char mode, or a lowercased whitespace-delimited run in word
// mode. Symbols are represented as strings so they can key a SymbolTable
// directly.
type Symbol = string

// Tokenize splits data into Symbols according to mode.
func Tokenize(mode format.Mode, data []byte) []Symbol {
	switch mode {
	case format.ModeChar:
		return tokenizeChar(data)
	case format.ModeWord:
		return tokenizeWord(data)
	default:
		return tokenizeByte(data)
	}
}

func tokenizeByte(data []byte) []Symbol {
	out := make([]Symbol, len(data))
	for i, b := range data {
		out[i] = string([]byte{b})
	}

	return out
}

func tokenizeChar(data []byte) []Symbol {
	out := make([]Symbol, 0, len(data))

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			// Invalid UTF-8: fall back to a raw-byte symbol so the
			// pipeline remains lossless even over binary garbage.
			out = append(out, string([]byte{data[i]}))
			i++

			continue
		}

		out = append(out, string(data[i:i+size]))
		i += size
	}

	return out
}

// tokenizeWord lowercases the input and splits on runs of Unicode
// whitespace, discarding the separators themselves (§4.2: decode re-joins
// words with single ASCII spaces, which is why this mode is not bit-exact).
func tokenizeWord(data []byte) []Symbol {
	lowered := strings.ToLower(string(data))

	return strings.Fields(lowered)
}

// Detokenize reassembles Symbols back into bytes. For byte and char mode
// this is the exact inverse of Tokenize; for word mode it joins words with
// a single space, which is the mode's documented lossy behavior.
func Detokenize(mode format.Mode, symbols []Symbol) []byte {
	if mode == format.ModeWord {
		return []byte(strings.Join(symbols, " "))
	}

	var n int
	for _, s := range symbols {
		n += len(s)
	}

	out := make([]byte, 0, n)
	for _, s := range symbols {
		out = append(out, s...)
	}

	return out
}
