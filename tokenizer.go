package lemmatizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// rawToken is a token before annotation.
type rawToken struct {
	text string
	ws   string
	// space marks a token made only of whitespace.
	space bool
}

// prefixes are split off the front of a chunk one rune at a time.
const prefixes = "\"'([{“‘«¿¡$£€#"

// suffixes are split off the end of a chunk one rune at a time.
const suffixes = ".,!?;:\"')]}”’»%…"

// clitics are split off the end of a word, longest first.
var clitics = []string{"n't", "n’t", "'re", "’re", "'ve", "’ve", "'ll", "’ll", "'s", "’s", "'d", "’d", "'m", "’m"}

// abbreviations keep their trailing period.
var abbreviations = map[string]struct{}{
	"mr.": {}, "mrs.": {}, "ms.": {}, "dr.": {}, "prof.": {}, "st.": {},
	"jr.": {}, "sr.": {}, "vs.": {}, "etc.": {}, "e.g.": {}, "i.e.": {},
	"u.s.": {}, "u.k.": {}, "a.m.": {}, "p.m.": {}, "inc.": {}, "ltd.": {},
	"co.": {}, "no.": {}, "jan.": {}, "feb.": {}, "aug.": {}, "sept.": {},
	"oct.": {}, "nov.": {}, "dec.": {},
}

// tokenize splits text into tokens, recording the exact whitespace that
// follows each one. Leading whitespace becomes a single space token, so
// concatenating text+ws over all tokens reproduces the input.
func tokenize(text string) []rawToken {
	var out []rawToken
	i := 0
	if ws := leadingSpace(text); ws != "" {
		out = append(out, rawToken{text: ws, space: true})
		i = len(ws)
	}
	for i < len(text) {
		j := i
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}
		chunk := text[i:j]
		ws := leadingSpace(text[j:])
		pieces := splitChunk(chunk)
		for k, p := range pieces {
			t := rawToken{text: p}
			if k == len(pieces)-1 {
				t.ws = ws
			}
			out = append(out, t)
		}
		i = j + len(ws)
	}
	return out
}

func leadingSpace(s string) string {
	for i, r := range s {
		if !unicode.IsSpace(r) {
			return s[:i]
		}
	}
	return s
}

// splitChunk breaks a whitespace-free chunk into tokens.
func splitChunk(chunk string) []string {
	var head, tail []string

	for utf8.RuneCountInString(chunk) > 1 {
		if isException(chunk) {
			break
		}
		r, size := utf8.DecodeRuneInString(chunk)
		if !strings.ContainsRune(prefixes, r) {
			break
		}
		head = append(head, chunk[:size])
		chunk = chunk[size:]
	}

	for utf8.RuneCountInString(chunk) > 1 {
		if isException(chunk) {
			break
		}
		r, size := utf8.DecodeLastRuneInString(chunk)
		if !strings.ContainsRune(suffixes, r) {
			break
		}
		cut := len(chunk) - size
		if r == '.' {
			// keep runs of periods together as an ellipsis
			for cut > 0 && chunk[cut-1] == '.' {
				cut--
			}
			if cut == 0 {
				break
			}
		}
		tail = append(tail, chunk[cut:])
		chunk = chunk[:cut]
	}

	out := head
	out = append(out, splitWord(chunk)...)
	for k := len(tail) - 1; k >= 0; k-- {
		out = append(out, tail[k])
	}
	return out
}

func isException(s string) bool {
	ls := strings.ToLower(s)
	if _, ok := abbreviations[ls]; ok {
		return true
	}
	for _, c := range clitics {
		if ls == c {
			return true
		}
	}
	return false
}

// splitWord separates clitics and word-internal hyphens.
func splitWord(w string) []string {
	if w == "" {
		return nil
	}
	lw := strings.ToLower(w)
	if len(lw) != len(w) {
		return splitHyphens(w)
	}
	for _, c := range clitics {
		if len(lw) <= len(c) || !strings.HasSuffix(lw, c) {
			continue
		}
		stem := w[:len(w)-len(c)]
		if !isLetter(lastRune(stem)) {
			continue
		}
		return append(splitHyphens(stem), w[len(w)-len(c):])
	}
	return splitHyphens(w)
}

// splitHyphens splits on hyphens surrounded by letters or digits.
func splitHyphens(w string) []string {
	var out []string
	start := 0
	for i := 1; i < len(w)-1; i++ {
		if w[i] != '-' {
			continue
		}
		before, _ := utf8.DecodeLastRuneInString(w[:i])
		after, _ := utf8.DecodeRuneInString(w[i+1:])
		if !isAlnum(before) || !isAlnum(after) {
			continue
		}
		out = append(out, w[start:i], "-")
		start = i + 1
	}
	return append(out, w[start:])
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isLetter(r rune) bool {
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSentenceEnd(s string) bool {
	switch s {
	case ".", "!", "?", "...", "…":
		return true
	}
	return false
}
