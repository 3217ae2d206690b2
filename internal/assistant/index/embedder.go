package index

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"
)

// embedBatchSize is the Gemini limit on contents per embed request.
const embedBatchSize = 100

// GenaiEmbedder adapts the Gemini embeddings API to eino's Embedder.
type GenaiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenaiEmbedder(client *genai.Client, model string) *GenaiEmbedder {
	return &GenaiEmbedder{client: client, model: model}
}

func (e *GenaiEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embed content: expected %d embeddings", end-start)
		}
		for _, emb := range resp.Embeddings {
			vec := make([]float64, len(emb.Values))
			for i, v := range emb.Values {
				vec[i] = float64(v)
			}
			out = append(out, vec)
		}
	}
	return out, nil
}

var _ embedding.Embedder = (*GenaiEmbedder)(nil)
