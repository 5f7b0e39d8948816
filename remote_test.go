package lemmatizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotationService(t *testing.T, annotate http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/meta", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"en_core_web_trf","lang":"en","version":"3.7.0"}`))
	})
	mux.HandleFunc("/annotate", annotate)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://localhost:9000"))
	assert.True(t, IsRemote("https://nlp.example.com/v1"))
	assert.False(t, IsRemote("en_core_web_sm"))
	assert.False(t, IsRemote("httpmodel"))
}

func TestRemoteModelProcess(t *testing.T) {
	sent := make(chan string, 1)
	srv := annotationService(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&req) != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		sent <- req.Text + "|" + r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"tokens":[
			{"text":"They","lemma":"-PRON-","pos":"PRON","tag":"PRP","morph":"Case=Nom","whitespace":" "},
			{"text":"ran","lemma":"run","pos":"VERB","tag":"VBD","morph":null,"whitespace":"","is_alpha":true},
			{"text":"!","lemma":"!","pos":"PUNCT","tag":".","whitespace":""}
		]}`))
	})

	m, err := OpenRemoteModel(context.Background(), srv.URL+"/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "en_core_web_trf", m.Name())

	doc, err := m.Process(context.Background(), "They ran!")
	require.NoError(t, err)
	assert.Equal(t, "They ran!|application/json", <-sent)
	require.Equal(t, 3, doc.Len())

	assert.True(t, doc.Tokens[0].IsAlpha, "is_alpha falls back to the token text")
	assert.Equal(t, "they", doc.Tokens[0].Lower)
	assert.Equal(t, "Case=Nom", doc.Tokens[0].Morph)
	assert.Equal(t, "", doc.Tokens[1].Morph)
	assert.False(t, doc.Tokens[2].IsAlpha)
	assert.Equal(t, "They ran!", doc.Text())
	assert.Equal(t, "they run!", Lemmatize(doc).Lemmatized)
}

func TestRemoteModelServiceError(t *testing.T) {
	var calls atomic.Int32
	srv := annotationService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	m, err := OpenRemoteModel(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)

	_, err = m.Process(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "overloaded")
	assert.EqualValues(t, 1, calls.Load(), "requests are not retried")
}

func TestOpenRemoteModelUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := OpenRemoteModel(context.Background(), srv.URL, time.Second)
	assert.ErrorIs(t, err, ErrModelNotFound)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	t.Cleanup(bad.Close)
	_, err = OpenRemoteModel(context.Background(), bad.URL, time.Second)
	assert.ErrorIs(t, err, ErrModelCorrupt)
}

func TestNewLoaderRemoteModel(t *testing.T) {
	srv := annotationService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tokens":[]}`))
	})
	l := NewLoader(t.TempDir(), NewFetcher("http://127.0.0.1:1", t.TempDir(), time.Second), time.Second, nil)
	h := NewHandle(srv.URL)
	require.NoError(t, l.Load(context.Background(), h))
	m, err := h.Model()
	require.NoError(t, err)
	assert.Equal(t, "en_core_web_trf", m.Name())
}
