package lemmatizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(text, lemma, ws string) Token {
	return Token{
		Text:       text,
		Lemma:      lemma,
		Lower:      strings.ToLower(text),
		IsAlpha:    true,
		POS:        POSNoun,
		Tag:        "NN",
		Whitespace: ws,
	}
}

func punct(text, ws string) Token {
	return Token{Text: text, Lemma: text, Lower: text, POS: POSPunct, Tag: text, Whitespace: ws}
}

func TestDisplayLemma(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want string
	}{
		{"plain", word("Cats", "cat", ""), "cat"},
		{"case kept", word("Paris", "Paris", ""), "Paris"},
		{"sentinel", word("They", PronounSentinel, ""), "they"},
		{"sentinel lowercase", word("Me", "-pron-", ""), "me"},
		{"sentinel mixed case", word("US", "-Pron-", ""), "us"},
		{"sentinel without lower", Token{Text: "HIM", Lemma: "-PRON-"}, "him"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayLemma(tt.tok))
		})
	}
}

func TestFragment(t *testing.T) {
	assert.Equal(t, "paris ", Fragment(word("Paris", "Paris", " ")))
	assert.Equal(t, "cat\n", Fragment(word("Cats", "cat", "\n")))
	assert.Equal(t, "i  ", Fragment(word("I", PronounSentinel, "  ")))

	num := Token{Text: "3", Lemma: "three", Whitespace: " "}
	assert.Equal(t, "3 ", Fragment(num), "non-alphabetic tokens bypass the lemma")
	assert.Equal(t, ".", Fragment(punct(".", "")))
}

func TestLemmatizeWhitespaceFidelity(t *testing.T) {
	doc := Doc{Tokens: []Token{
		{Text: "  ", Lemma: "  ", POS: POSSpace, Tag: "_SP"},
		word("Hello", "hello", "   "),
		word("worlds", "world", "\n\n"),
		word("Again", "again", "\t "),
	}}
	res := Lemmatize(doc)
	assert.Equal(t, "hello   world\n\nagain", res.Lemmatized)
	assert.Len(t, res.Tokens, 4)
}

func TestLemmatizeTokenDetails(t *testing.T) {
	they := word("They", PronounSentinel, " ")
	they.POS, they.Tag, they.Morph = POSPronoun, "PRP", "Case=Nom|Number=Plur"
	doc := Doc{Tokens: []Token{
		they,
		word("Paris", "Paris", " "),
		{Text: "3", Lemma: "3", POS: POSNumeral, Tag: "CD", Whitespace: ""},
		punct(".", ""),
	}}

	res := Lemmatize(doc)
	require.Len(t, res.Tokens, 4)
	assert.Equal(t, "they paris 3.", res.Lemmatized)

	assert.Equal(t, "they", res.Tokens[0].Lemma)
	require.NotNil(t, res.Tokens[0].Morph)
	assert.Equal(t, "Case=Nom|Number=Plur", *res.Tokens[0].Morph)

	// detail lemma keeps the model casing
	assert.Equal(t, "Paris", res.Tokens[1].Lemma)
	assert.Nil(t, res.Tokens[1].Morph)

	assert.Equal(t, "3", res.Tokens[2].Text)
	assert.Equal(t, POSNumeral, res.Tokens[2].POS)
	assert.Equal(t, ".", res.Tokens[3].Lemma)
}

func TestLemmatizeNonAlphaKeepsLemmaInDetails(t *testing.T) {
	tok := Token{Text: "2nd", Lemma: "second", POS: POSAdjective, Tag: "JJ", Whitespace: ""}
	res := Lemmatize(Doc{Tokens: []Token{tok}})
	assert.Equal(t, "2nd", res.Lemmatized)
	assert.Equal(t, "second", res.Tokens[0].Lemma)
}

func TestReconstructMatchesLemmatize(t *testing.T) {
	doc := Doc{Tokens: []Token{
		word("Dogs", "dog", " "),
		word("barked", "bark", ""),
		punct("!", " "),
	}}
	assert.Equal(t, Lemmatize(doc).Lemmatized, Reconstruct(doc))
	assert.Equal(t, "dog bark!", Reconstruct(doc))
}

func TestLemmatizeEmptyDoc(t *testing.T) {
	res := Lemmatize(Doc{})
	assert.Equal(t, "", res.Lemmatized)
	assert.Empty(t, res.Tokens)
}

func TestDocText(t *testing.T) {
	doc := Doc{Tokens: []Token{word("Hi", "hi", "  "), punct("!", "\n")}}
	assert.Equal(t, "Hi  !\n", doc.Text())
	assert.Equal(t, 2, doc.Len())
}
