package index

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
)

// embedRecords fills in the name embedding of every record that has none and
// returns how many were embedded.
func embedRecords(ctx context.Context, embedder embedding.Embedder, records []model.EmployeeRecord) (int, error) {
	var pending []int
	var texts []string
	for i, r := range records {
		if len(r.Embedding) == 0 {
			pending = append(pending, i)
			texts = append(texts, r.EmployeeName)
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vecs, err := embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return 0, errx.WrapIndex(fmt.Errorf("embed directory: %w", err))
	}
	if len(vecs) != len(texts) {
		return 0, errx.WrapIndex(fmt.Errorf("embed directory: got %d vectors for %d names", len(vecs), len(texts)))
	}
	for j, i := range pending {
		records[i].Embedding = vecs[j]
	}
	return len(texts), nil
}

func embedQuery(ctx context.Context, embedder embedding.Embedder, text string) ([]float64, error) {
	vecs, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, errx.WrapIndex(fmt.Errorf("embed query: %w", err))
	}
	if len(vecs) != 1 {
		return nil, errx.WrapIndex(fmt.Errorf("embed query: got %d vectors", len(vecs)))
	}
	return vecs[0], nil
}
