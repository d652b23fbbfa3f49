package embed

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI embedding models.
const (
	// ModelTextEmbedding3Small is the small embedding model (customizable dims).
	ModelTextEmbedding3Small = "text-embedding-3-small"

	// ModelTextEmbedding3Large is the large embedding model (customizable dims).
	ModelTextEmbedding3Large = "text-embedding-3-large"
)

// maxBatchSize is the largest number of inputs OpenAI accepts per request.
const maxBatchSize = 2048

// Options contains options for the OpenAI embedder.
type Options struct {
	// Model is the embedding model identifier.
	Model string

	// Dimension is the requested output dimensionality. Both
	// text-embedding-3 models accept a reduced dimension.
	Dimension int

	// APIKey authenticates against the API. When empty, the
	// OPENAI_API_KEY environment variable is used.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. to point at an
	// OpenAI-compatible provider or a test server.
	BaseURL string

	// HTTPClient is the client used for API requests.
	HTTPClient *http.Client
}

// DefaultOptions are the recommended defaults for the OpenAI embedder.
var DefaultOptions = Options{
	Model:     ModelTextEmbedding3Small,
	Dimension: 1024,
}

// OpenAI implements Embedder using the OpenAI embeddings API.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

// Compile time check to ensure OpenAI satisfies the Embedder interface.
var _ Embedder = (*OpenAI)(nil)

// NewOpenAI creates a new OpenAI embedder.
func NewOpenAI(optFns ...func(o *Options)) (*OpenAI, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == "" {
		return nil, fmt.Errorf("embed: missing model")
	}

	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("embed: invalid dimension: %d", opts.Dimension)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("embed: missing API key")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	client := openai.NewClient(clientOpts...)

	return &OpenAI{
		client: &client,
		model:  opts.Model,
		dim:    opts.Dimension,
	}, nil
}

// Embed returns the embedding for a single text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vecs[0], nil
}

// EmbedBatch returns embeddings for multiple texts. Batches larger than
// 2048 inputs are split into multiple API calls.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text at index %d is blank", ErrEmptyInput, i)
		}
	}

	result := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += maxBatchSize {
		end := min(i+maxBatchSize, len(texts))

		vecs, err := o.callAPI(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err)
		}

		copy(result[i:], vecs)
	}

	return result, nil
}

// Dimension returns the configured vector dimensionality.
func (o *OpenAI) Dimension() int {
	return o.dim
}

// Model returns the embedding model identifier.
func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model:          o.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions:     openai.Int(int64(o.dim)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))

	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}

		vec := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			vec[i] = float32(f)
		}

		vecs[idx] = vec
	}

	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}

	return vecs, nil
}
