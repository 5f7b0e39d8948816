package lemmatizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(toks []rawToken) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.text
	}
	return out
}

func rejoin(toks []rawToken) string {
	s := ""
	for _, t := range toks {
		s += t.text + t.ws
	}
	return s
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello world", []string{"Hello", "world"}},
		{"I have 3 cats.", []string{"I", "have", "3", "cats", "."}},
		{"Wait...", []string{"Wait", "..."}},
		{"(hello), she said!", []string{"(", "hello", ")", ",", "she", "said", "!"}},
		{"I don't know", []string{"I", "do", "n't", "know"}},
		{"It's Mary's", []string{"It", "'s", "Mary", "'s"}},
		{"can't won't", []string{"ca", "n't", "wo", "n't"}},
		{"a well-known fact", []string{"a", "well", "-", "known", "fact"}},
		{"Dr. Smith, e.g. today", []string{"Dr.", "Smith", ",", "e.g.", "today"}},
		{"costs $5 or 3.5%", []string{"costs", "$", "5", "or", "3.5", "%"}},
		{"\"quoted\"", []string{"\"", "quoted", "\""}},
		{"...", []string{"..."}},
		{"'s", []string{"'s"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks := tokenize(tt.in)
			assert.Equal(t, tt.want, texts(toks))
			assert.Equal(t, tt.in, rejoin(toks))
		})
	}
}

func TestTokenizeWhitespace(t *testing.T) {
	toks := tokenize("  Hello   world\n\tagain ")
	assert.Equal(t, []string{"  ", "Hello", "world", "again"}, texts(toks))
	assert.True(t, toks[0].space)
	assert.Equal(t, "", toks[0].ws)
	assert.Equal(t, "   ", toks[1].ws)
	assert.Equal(t, "\n\t", toks[2].ws)
	assert.Equal(t, " ", toks[3].ws)
}

func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"The quick brown fox — jumps!",
		"Ünïcödé wörds, and émojis 🙂 too.",
		"line one\r\nline two\n\n  indented",
		"U.S. policy (2024): don't panic...",
	}
	for _, in := range inputs {
		assert.Equal(t, in, rejoin(tokenize(in)), "input %q", in)
	}
}

func TestTokenizeWhitespaceOnly(t *testing.T) {
	toks := tokenize(" \n ")
	if assert.Len(t, toks, 1) {
		assert.True(t, toks[0].space)
	}
	assert.Empty(t, tokenize(""))
}
