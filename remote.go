package lemmatizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
)

// RemoteModel delegates annotation to an external NLP service that speaks
// a small JSON protocol:
//
//	GET  <endpoint>/meta      -> {"name": "...", "lang": "...", "version": "..."}
//	POST <endpoint>/annotate  {"text": "..."} -> {"tokens": [...]}
type RemoteModel struct {
	endpoint string
	meta     Meta
	client   *retryablehttp.Client
}

type remoteToken struct {
	Text       string  `json:"text"`
	Lemma      string  `json:"lemma"`
	POS        string  `json:"pos"`
	Tag        string  `json:"tag"`
	Morph      *string `json:"morph"`
	Whitespace string  `json:"whitespace"`
	IsAlpha    *bool   `json:"is_alpha,omitempty"`
}

type annotateResponse struct {
	Tokens []remoteToken `json:"tokens"`
}

// IsRemote reports whether the model identifier names a remote service.
func IsRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// newHTTPClient returns a client that never retries: every call is
// attempted exactly once and failures surface to the caller.
func newHTTPClient(timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	c.HTTPClient.Timeout = timeout
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// OpenRemoteModel probes the service at endpoint and returns a Model
// bound to it.
func OpenRemoteModel(ctx context.Context, endpoint string, timeout time.Duration) (*RemoteModel, error) {
	m := &RemoteModel{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   newHTTPClient(timeout),
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"/meta", nil)
	if err != nil {
		return nil, errors.Wrap(err, "build meta request")
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrModelNotFound, "probe %s: %v", m.endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrModelNotFound, "probe %s: status %d", m.endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&m.meta); err != nil {
		return nil, errors.Wrapf(ErrModelCorrupt, "decode meta from %s: %v", m.endpoint, err)
	}
	if m.meta.Name == "" {
		m.meta.Name = m.endpoint
	}
	return m, nil
}

// Name implements Model.
func (m *RemoteModel) Name() string {
	return m.meta.Name
}

// Process implements Model.
func (m *RemoteModel) Process(ctx context.Context, text string) (Doc, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Doc{}, errors.Wrap(err, "encode annotate request")
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"/annotate", bytes.NewReader(body))
	if err != nil {
		return Doc{}, errors.Wrap(err, "build annotate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Doc{}, errors.Wrapf(err, "annotate via %s", m.endpoint)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Doc{}, errors.Newf("annotate via %s: status %d: %s", m.endpoint, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Doc{}, errors.Wrapf(err, "decode annotate response from %s", m.endpoint)
	}
	toks := make([]Token, len(out.Tokens))
	for i, rt := range out.Tokens {
		t := Token{
			Text:       rt.Text,
			Lemma:      rt.Lemma,
			Lower:      strings.ToLower(rt.Text),
			POS:        rt.POS,
			Tag:        rt.Tag,
			Whitespace: rt.Whitespace,
		}
		if rt.Morph != nil {
			t.Morph = *rt.Morph
		}
		if rt.IsAlpha != nil {
			t.IsAlpha = *rt.IsAlpha
		} else {
			t.IsAlpha = isAlpha(rt.Text)
		}
		toks[i] = t
	}
	return Doc{Tokens: toks}, nil
}
