package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/genai"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, text string) (*Service, *genai.Mock, *docstore.Memory) {
	t.Helper()
	mock := genai.NewMock()
	mock.Text = text
	store := docstore.NewMemory()
	svc := NewService(mock, store, "gemini-2.5-pro", WithClock(func() time.Time { return fixedNow }))
	return svc, mock, store
}

func stored(t *testing.T, store *docstore.Memory) []docstore.Record {
	t.Helper()
	recs, err := store.QueryDescending(context.Background(), 100, "")
	require.NoError(t, err)
	return recs
}

func TestGenerateRecordsQuote(t *testing.T) {
	const text = "\"বৃষ্টি নামে মনে\" - Anonymous\n(Rain falls in the heart)"
	svc, mock, store := newService(t, text)

	rec, err := svc.Generate(context.Background(), Request{Topic: "Rain", Language: "Bengali", Tone: "poetic"})
	require.NoError(t, err)

	assert.Equal(t, text, rec.Quote)
	assert.NotEmpty(t, rec.ID)

	recs := stored(t, store)
	require.Len(t, recs, 1)
	assert.Equal(t, "Rain", recs[0].Topic)
	assert.Equal(t, "Bengali", recs[0].Language)
	assert.Equal(t, "poetic", recs[0].Tone)
	assert.Equal(t, text, recs[0].Quote)
	assert.True(t, recs[0].Timestamp.Equal(fixedNow))

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gemini-2.5-pro", calls[0].Model)
	for _, want := range []string{`"Rain"`, `"Bengali"`, `"poetic"`, "Original Script", "English Translation"} {
		assert.Contains(t, calls[0].Prompt, want)
	}
}

func TestGenerateEmptyTopic(t *testing.T) {
	svc, mock, store := newService(t, "x")

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := svc.Generate(context.Background(), Request{Topic: topic})
		assert.ErrorIs(t, err, ErrTopicRequired)
	}
	assert.Empty(t, mock.Calls(), "no remote call for an empty topic")
	assert.Empty(t, stored(t, store))
}

func TestGenerateProviderFailure(t *testing.T) {
	svc, mock, store := newService(t, "x")
	mock.Err = errors.New("quota exceeded")

	_, err := svc.Generate(context.Background(), Request{Topic: "Moon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, stored(t, store))
}

func TestGenerateDefaults(t *testing.T) {
	svc, _, _ := newService(t, "x")

	rec, err := svc.Generate(context.Background(), Request{Topic: "  Hope  "})
	require.NoError(t, err)
	assert.Equal(t, "Hope", rec.Topic)
	assert.Equal(t, DefaultLanguage, rec.Language)
	assert.Equal(t, DefaultTone, rec.Tone)
}

func TestGenerateUnknownTone(t *testing.T) {
	svc, mock, _ := newService(t, "x")
	_, err := svc.Generate(context.Background(), Request{Topic: "Hope", Tone: "angry_pirate"})
	assert.ErrorIs(t, err, ErrUnknownTone)
	assert.Empty(t, mock.Calls())
}

func TestGenerateCanonicalisesLanguage(t *testing.T) {
	svc, _, _ := newService(t, "x")

	rec, err := svc.Generate(context.Background(), Request{Topic: "Tea", Language: "tamil"})
	require.NoError(t, err)
	assert.Equal(t, "Tamil", rec.Language)

	// Languages outside the catalog pass through.
	rec, err = svc.Generate(context.Background(), Request{Topic: "Tea", Language: " Klingon "})
	require.NoError(t, err)
	assert.Equal(t, "Klingon", rec.Language)
}

type failingRecorder struct{}

func (failingRecorder) AddRecord(context.Context, docstore.Record) (docstore.Record, error) {
	return docstore.Record{}, errors.New("disk full")
}

func TestGenerateSaveFailureStillReturnsQuote(t *testing.T) {
	mock := genai.NewMock()
	svc := NewService(mock, failingRecorder{}, "m", WithClock(func() time.Time { return fixedNow }))

	rec, err := svc.Generate(context.Background(), Request{Topic: "Rain"})
	assert.ErrorIs(t, err, ErrNotPersisted)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, mock.Text, rec.Quote)
	assert.Empty(t, rec.ID)
}

func TestSuggestLanguages(t *testing.T) {
	assert.Equal(t, []string{"Bengali"}, SuggestLanguages("ben"))
	assert.Equal(t, []string{"Bengali"}, SuggestLanguages("BEN"))
	assert.Equal(t, []string{"Malayalam"}, SuggestLanguages("ala"))
	assert.Empty(t, SuggestLanguages(""))
	assert.Empty(t, SuggestLanguages("xyz"))

	// "ma" appears in several names.
	got := SuggestLanguages("ma")
	for _, want := range []string{"Marathi", "Maithili", "Malayalam"} {
		assert.Contains(t, got, want)
	}
}

func TestCatalog(t *testing.T) {
	assert.Len(t, Languages, 17)
	assert.Len(t, Tones, 24)
	assert.True(t, slices.Contains(Languages, DefaultLanguage))

	tone, ok := LookupTone("dad_joke")
	require.True(t, ok)
	assert.Equal(t, "Dad Joke Style", tone.Label)
	_, ok = LookupTone(DefaultTone)
	assert.True(t, ok)
}

func TestSurpriseDrawsFromCatalog(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		s := Surprise(rng)
		assert.True(t, slices.Contains(Topics, s.Topic), s.Topic)
		assert.True(t, slices.Contains(Languages, s.Language), s.Language)
	}
	assert.NotEmpty(t, Surprise(nil).Topic)
}

func TestBuildPromptKeepsScript(t *testing.T) {
	p := BuildPrompt("বৃষ্টি", "Bengali", "poetic")
	assert.Contains(t, p, `"বৃষ্টি"`)
	assert.True(t, strings.HasSuffix(p, `Format: "Quote" - Author`))
}

func newRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc)
	return r
}

func TestGenerateHandler(t *testing.T) {
	svc, _, _ := newService(t, "\"Stay.\" - Someone")
	srv := httptest.NewServer(newRouter(svc))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/quotes", "application/json",
		strings.NewReader(`{"topic":"Rain","language":"Bengali","tone":"poetic"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body generateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "\"Stay.\" - Someone", body.Quote)
	assert.True(t, body.Saved)
	assert.NotEmpty(t, body.ID)
}

func TestGenerateHandlerErrors(t *testing.T) {
	svc, mock, _ := newService(t, "x")
	srv := httptest.NewServer(newRouter(svc))
	defer srv.Close()

	post := func(body string) *http.Response {
		resp, err := http.Post(srv.URL+"/api/quotes", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"topic":""}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).StatusCode)

	mock.Err = errors.New("model overloaded")
	resp := post(`{"topic":"Rain"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "model overloaded")
}

func TestCatalogHandlers(t *testing.T) {
	svc, _, _ := newService(t, "x")
	srv := httptest.NewServer(newRouter(svc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/catalog/languages?q=hin")
	require.NoError(t, err)
	defer resp.Body.Close()
	var langs struct {
		Languages []string `json:"languages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&langs))
	assert.Equal(t, []string{"Hindi"}, langs.Languages)

	resp2, err := http.Get(srv.URL + "/api/catalog/tones")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var tones struct {
		Tones   []Tone `json:"tones"`
		Default string `json:"default"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&tones))
	assert.Len(t, tones.Tones, 24)
	assert.Equal(t, "inspirational", tones.Default)
}
