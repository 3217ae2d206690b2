// Package index provides nearest-neighbour lookup over the employee directory.
package index

import (
	"context"
	"math"
	"sort"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/vira-assistant/server/internal/assistant/model"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// MemoryIndex ranks directory entries by cosine similarity of name
// embeddings in process. It is read-only after construction and backs
// INDEX_BACKEND=memory and tests.
type MemoryIndex struct {
	embedder embedding.Embedder
	records  []model.EmployeeRecord
	norms    []float64
}

// NewMemoryIndex embeds every record name that has no embedding yet.
func NewMemoryIndex(ctx context.Context, embedder embedding.Embedder, records []model.EmployeeRecord) (*MemoryIndex, error) {
	idx := &MemoryIndex{
		embedder: embedder,
		records:  make([]model.EmployeeRecord, len(records)),
	}
	copy(idx.records, records)

	embedded, err := embedRecords(ctx, embedder, idx.records)
	if err != nil {
		return nil, err
	}

	idx.norms = make([]float64, len(idx.records))
	for i, r := range idx.records {
		idx.norms[i] = norm(r.Embedding)
	}

	logx.Info().Int("employees", len(idx.records)).Int("embedded", embedded).Msg("employee index ready")
	return idx, nil
}

// Len returns the number of indexed employees.
func (m *MemoryIndex) Len() int { return len(m.records) }

// Query returns the k employees whose names are closest to text.
func (m *MemoryIndex) Query(ctx context.Context, text string, k int) ([]model.Candidate, error) {
	if k <= 0 || len(m.records) == 0 {
		return nil, nil
	}

	q, err := embedQuery(ctx, m.embedder, text)
	if err != nil {
		return nil, err
	}
	qn := norm(q)

	out := make([]model.Candidate, 0, len(m.records))
	for i, r := range m.records {
		out = append(out, model.Candidate{
			EmployeeName: r.EmployeeName,
			Department:   r.Department,
			Score:        cosine(q, qn, r.Embedding, m.norms[i]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func cosine(a []float64, an float64, b []float64, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot / (an * bn)
}

var _ model.SimilarityIndex = (*MemoryIndex)(nil)
