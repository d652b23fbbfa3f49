package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeServer returns an httptest server speaking the OpenAI embeddings
// wire format. Vector values are a deterministic function of the input
// position, so tests can assert on them.
func newFakeServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Input      []string `json:"input"`
			Model      string   `json:"model"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}

		data := make([]item, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, dim)
			for j := range vec {
				vec[j] = float64(i+1) * 0.01 * float64(j+1)
			}
			data[i] = item{Object: "embedding", Index: i, Embedding: vec}
		}

		resp := map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestEmbedder(t *testing.T, dim int) *OpenAI {
	t.Helper()

	srv := newFakeServer(t, dim)
	t.Cleanup(srv.Close)

	e, err := NewOpenAI(func(o *Options) {
		o.APIKey = "test-key"
		o.BaseURL = srv.URL
		o.Dimension = dim
	})
	require.NoError(t, err)

	return e
}

func TestOpenAIEmbed(t *testing.T) {
	e := newTestEmbedder(t, 4)

	assert.Equal(t, 4, e.Dimension())
	assert.Equal(t, ModelTextEmbedding3Small, e.Model())

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 4)
	assert.InDelta(t, 0.01, vec[0], 1e-6)
	assert.InDelta(t, 0.04, vec[3], 1e-6)
}

func TestOpenAIEmbedBatch(t *testing.T) {
	e := newTestEmbedder(t, 3)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for i, vec := range vecs {
		require.Len(t, vec, 3)
		assert.InDelta(t, float64(i+1)*0.01, vec[0], 1e-6)
	}
}

func TestOpenAIEmptyInput(t *testing.T) {
	e := newTestEmbedder(t, 4)

	_, err := e.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = e.Embed(context.Background(), "   \t\n")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = e.EmbedBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = e.EmbedBatch(context.Background(), []string{"ok", " "})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNewOpenAIValidation(t *testing.T) {
	t.Run("invalid dimension", func(t *testing.T) {
		_, err := NewOpenAI(func(o *Options) {
			o.APIKey = "test-key"
			o.Dimension = 0
		})
		assert.Error(t, err)
	})

	t.Run("missing model", func(t *testing.T) {
		_, err := NewOpenAI(func(o *Options) {
			o.APIKey = "test-key"
			o.Model = ""
		})
		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		_, err := NewOpenAI()
		assert.Error(t, err)
	})

	t.Run("api key from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")

		e, err := NewOpenAI()
		require.NoError(t, err)
		assert.Equal(t, DefaultOptions.Dimension, e.Dimension())
	})
}

func TestOpenAIUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "boom"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	e, err := NewOpenAI(func(o *Options) {
		o.APIKey = "test-key"
		o.BaseURL = srv.URL
		o.Dimension = 4
	})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "hello")
	assert.Error(t, err)
}
