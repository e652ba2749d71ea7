package categorizer

import (
	"context"
	"fmt"
	"sync"

	"finpipe/bank-csv/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder produces merchant embeddings through the Gemini embedding
// API. The client is created lazily on first use so constructing a
// categorizer never requires network access or a valid key.
type GeminiEmbedder struct {
	apiKey string
	model  string
	log    logging.Logger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiEmbedder creates an embedder for the given model. The key is not
// validated until the first Embed call.
func NewGeminiEmbedder(apiKey, model string, logger logging.Logger) *GeminiEmbedder {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &GeminiEmbedder{
		apiKey: apiKey,
		model:  model,
		log:    logger,
	}
}

// Embed returns the embedding vector for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("error embedding text: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding API returned an empty vector")
	}
	return res.Embedding.Values, nil
}

// Close releases the underlying API client if one was created.
func (e *GeminiEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

func (e *GeminiEmbedder) getClient(ctx context.Context) (*genai.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	if e.apiKey == "" {
		return nil, fmt.Errorf("no Gemini API key configured")
	}

	e.log.WithField("model", e.model).Debug("Initializing Gemini embedding client")
	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	e.client = client
	return client, nil
}
