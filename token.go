package lemmatizer

// Coarse (universal) part-of-speech values produced by the bundled models.
const (
	POSAdjective   = "ADJ"
	POSAdposition  = "ADP"
	POSAdverb      = "ADV"
	POSAuxiliary   = "AUX"
	POSConjunction = "CCONJ"
	POSDeterminer  = "DET"
	POSInterject   = "INTJ"
	POSNoun        = "NOUN"
	POSNumeral     = "NUM"
	POSParticle    = "PART"
	POSPronoun     = "PRON"
	POSProperNoun  = "PROPN"
	POSPunct       = "PUNCT"
	POSSubordConj  = "SCONJ"
	POSSymbol      = "SYM"
	POSVerb        = "VERB"
	POSSpace       = "SPACE"
	POSOther       = "X"
)

// Token is one linguistic unit annotated by a Model.
type Token struct {
	// Text is the raw surface form.
	Text string
	// Lemma is the model's lemma output. Legacy models may return
	// PronounSentinel for pronouns.
	Lemma string
	// Lower is the lowercased surface form.
	Lower string
	// IsAlpha reports whether Text consists solely of letters.
	IsAlpha bool
	// POS is the coarse part-of-speech.
	POS string
	// Tag is the fine-grained, model-specific tag.
	Tag string
	// Morph is the morphological feature string, e.g. "Number=Plur".
	// Empty when the model supplies no features.
	Morph string
	// Whitespace is the exact whitespace that followed the token in the
	// original text. It may be empty.
	Whitespace string
}

// TextWithWS returns the surface form followed by its trailing whitespace.
func (t Token) TextWithWS() string {
	return t.Text + t.Whitespace
}

// Doc is the ordered token sequence produced for a single input text.
// A Doc belongs to one request and is never shared.
type Doc struct {
	Tokens []Token
}

// Text reassembles the original input from the tokens.
func (d Doc) Text() string {
	n := 0
	for _, t := range d.Tokens {
		n += len(t.Text) + len(t.Whitespace)
	}
	b := make([]byte, 0, n)
	for _, t := range d.Tokens {
		b = append(b, t.Text...)
		b = append(b, t.Whitespace...)
	}
	return string(b)
}

// Len returns the number of tokens.
func (d Doc) Len() int {
	return len(d.Tokens)
}
