package lemmatizer

import (
	"strings"
)

// TokenDetail is the per-token record returned alongside the
// reconstructed text.
type TokenDetail struct {
	Text  string
	Lemma string
	POS   string
	Tag   string
	// Morph is nil when the model supplied no morphological features.
	Morph *string
}

// Result is the outcome of lemmatizing one text.
type Result struct {
	// Lemmatized is the input with every alphabetic token replaced by its
	// lowercased lemma, original whitespace preserved, outer whitespace
	// trimmed.
	Lemmatized string
	// Tokens holds one record per model token, in order.
	Tokens []TokenDetail
}

// Lemmatize builds the reconstructed text and the token details from doc
// in a single pass.
func Lemmatize(doc Doc) Result {
	var sb strings.Builder
	details := make([]TokenDetail, 0, len(doc.Tokens))
	for _, t := range doc.Tokens {
		sb.WriteString(Fragment(t))
		details = append(details, detail(t))
	}
	return Result{
		Lemmatized: strings.TrimSpace(sb.String()),
		Tokens:     details,
	}
}

// Reconstruct returns only the reconstructed text for doc.
func Reconstruct(doc Doc) string {
	var sb strings.Builder
	for _, t := range doc.Tokens {
		sb.WriteString(Fragment(t))
	}
	return strings.TrimSpace(sb.String())
}

func detail(t Token) TokenDetail {
	d := TokenDetail{
		Text:  t.Text,
		Lemma: DisplayLemma(t),
		POS:   t.POS,
		Tag:   t.Tag,
	}
	if t.Morph != "" {
		m := t.Morph
		d.Morph = &m
	}
	return d
}
