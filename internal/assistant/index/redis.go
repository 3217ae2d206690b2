package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
)

const (
	fieldName      = "name"
	fieldDept      = "department"
	fieldEmbedding = "embedding"
	fieldScore     = "score"
)

// RedisIndex keeps the directory in Redis hashes under a RediSearch vector
// index and answers queries with KNN search.
type RedisIndex struct {
	rdb      redis.Cmdable
	embedder embedding.Embedder
	name     string
	prefix   string
	size     int
}

// NewRedisIndex embeds the directory, then rebuilds the search index and its
// documents so the stored directory always matches records.
func NewRedisIndex(ctx context.Context, rdb redis.Cmdable, embedder embedding.Embedder, cfg model.IndexConfig, records []model.EmployeeRecord) (*RedisIndex, error) {
	idx := &RedisIndex{
		rdb:      rdb,
		embedder: embedder,
		name:     cfg.Name,
		prefix:   cfg.KeyPrefix,
		size:     len(records),
	}

	recs := make([]model.EmployeeRecord, len(records))
	copy(recs, records)
	embedded, err := embedRecords(ctx, embedder, recs)
	if err != nil {
		return nil, err
	}

	if err := rdb.FTDropIndexWithArgs(ctx, idx.name, &redis.FTDropIndexOptions{DeleteDocs: true}).Err(); err != nil && !isUnknownIndex(err) {
		logx.Error().Err(err).Str("index", idx.name).Msg("failed to drop employee index")
		return nil, errx.WrapIndex(err)
	}
	if len(recs) == 0 {
		logx.Warn().Str("index", idx.name).Msg("employee directory is empty")
		return idx, nil
	}

	dim := len(recs[0].Embedding)
	err = rdb.FTCreate(ctx, idx.name,
		&redis.FTCreateOptions{OnHash: true, Prefix: []interface{}{idx.prefix}},
		&redis.FieldSchema{FieldName: fieldName, FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: fieldDept, FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{
			FieldName: fieldEmbedding,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{FlatOptions: &redis.FTFlatOptions{
				Type:           "FLOAT32",
				Dim:            dim,
				DistanceMetric: "COSINE",
			}},
		},
	).Err()
	if err != nil {
		logx.Error().Err(err).Str("index", idx.name).Msg("failed to create employee index")
		return nil, errx.WrapIndex(err)
	}

	_, err = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range recs {
			if len(r.Embedding) != dim {
				return fmt.Errorf("embedding for %q has %d dimensions, want %d", r.EmployeeName, len(r.Embedding), dim)
			}
			pipe.HSet(ctx, idx.documentKey(r),
				fieldName, r.EmployeeName,
				fieldDept, r.Department,
				fieldEmbedding, encodeVector(r.Embedding),
			)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("index", idx.name).Msg("failed to store employee documents")
		return nil, errx.WrapIndex(err)
	}

	logx.Info().Str("index", idx.name).Int("employees", len(recs)).Int("embedded", embedded).Msg("employee index ready")
	return idx, nil
}

// Len returns the number of indexed employees.
func (r *RedisIndex) Len() int { return r.size }

// Query returns the k employees whose names are closest to text.
func (r *RedisIndex) Query(ctx context.Context, text string, k int) ([]model.Candidate, error) {
	if k <= 0 || r.size == 0 {
		return nil, nil
	}

	q, err := embedQuery(ctx, r.embedder, text)
	if err != nil {
		return nil, err
	}

	res, err := r.rdb.FTSearchWithArgs(ctx, r.name, knnQuery(k), &redis.FTSearchOptions{
		Return: []redis.FTSearchReturn{
			{FieldName: fieldName},
			{FieldName: fieldDept},
			{FieldName: fieldScore},
		},
		SortBy:         []redis.FTSearchSortBy{{FieldName: fieldScore, Asc: true}},
		Limit:          k,
		Params:         map[string]interface{}{"vec": encodeVector(q)},
		DialectVersion: 2,
	}).Result()
	if err != nil {
		logx.Error().Err(err).Str("index", r.name).Msg("employee vector search failed")
		return nil, errx.WrapIndex(err)
	}
	return candidatesFromDocs(res.Docs), nil
}

func (r *RedisIndex) documentKey(rec model.EmployeeRecord) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.EmployeeName+"|"+rec.Department))
	return r.prefix + id.String()
}

func knnQuery(k int) string {
	return fmt.Sprintf("*=>[KNN %d @%s $vec AS %s]", k, fieldEmbedding, fieldScore)
}

// candidatesFromDocs converts KNN hits, which carry cosine distance, into
// best-first candidates scored by similarity.
func candidatesFromDocs(docs []redis.Document) []model.Candidate {
	out := make([]model.Candidate, 0, len(docs))
	for _, d := range docs {
		name := d.Fields[fieldName]
		if name == "" {
			continue
		}
		score := 0.0
		if dist, err := strconv.ParseFloat(d.Fields[fieldScore], 64); err == nil {
			score = 1 - dist
		}
		out = append(out, model.Candidate{
			EmployeeName: name,
			Department:   d.Fields[fieldDept],
			Score:        score,
		})
	}
	return out
}

// encodeVector packs v as little-endian FLOAT32, the layout RediSearch expects.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(x)))
	}
	return buf
}

func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}

var _ model.SimilarityIndex = (*RedisIndex)(nil)
