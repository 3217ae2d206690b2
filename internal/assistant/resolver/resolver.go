// Package resolver maps a loose employee mention onto a directory entry.
package resolver

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/prompts"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// Source says how a resolution was decided.
type Source string

const (
	SourceParsed   Source = "parsed"
	SourceFallback Source = "fallback"
)

const defaultTopK = 3

// Resolution is a decided employee plus the evidence behind it.
type Resolution struct {
	EmployeeName  string
	Department    string
	Source        Source
	CandidateName string
	Candidates    []model.Candidate
	Generation    model.Generation
}

type Option func(*Resolver)

// WithMetrics records resolution outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

type Resolver struct {
	index   model.SimilarityIndex
	gateway model.Gateway
	topK    int
	// strict rejects model choices that are not among the offered candidates.
	strict  bool
	metrics *metrics.Recorder
}

func New(index model.SimilarityIndex, gateway model.Gateway, cfg model.ResolverConfig, opts ...Option) *Resolver {
	r := &Resolver{
		index:   index,
		gateway: gateway,
		topK:    cfg.TopK,
		strict:  cfg.StrictCandidates,
	}
	if r.topK <= 0 {
		r.topK = defaultTopK
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tries to pin down the employee mentioned in utterance. conversation
// is the framing plus history sent to the model for disambiguation; it is not
// modified. ok is false when this turn carries no resolvable mention.
func (r *Resolver) Resolve(ctx context.Context, conversation []*schema.Message, utterance string) (*Resolution, bool) {
	name, ok := CandidateName(utterance)
	if !ok {
		r.metrics.Resolution("skipped")
		return nil, false
	}

	candidates, err := r.index.Query(ctx, name, r.topK)
	if err != nil {
		logx.Warn().Err(err).Str("candidate_name", name).Msg("employee lookup failed, skipping resolution")
		r.metrics.Resolution("skipped")
		return nil, false
	}
	if len(candidates) == 0 {
		logx.Debug().Str("candidate_name", name).Msg("no employee matches")
		r.metrics.Resolution("skipped")
		return nil, false
	}

	res := &Resolution{CandidateName: name, Candidates: candidates}

	ask, err := prompts.RenderDisambiguation(ctx, name, candidates)
	if err != nil {
		logx.Error().Err(err).Msg("render disambiguation prompt")
		r.fallback(res)
		return res, true
	}

	msgs := make([]*schema.Message, 0, len(conversation)+1)
	msgs = append(msgs, conversation...)
	msgs = append(msgs, ask)

	res.Generation = r.gateway.Generate(ctx, msgs)
	if res.Generation.Failed {
		r.fallback(res)
		return res, true
	}

	empName, dept, parsed := ParseChoice(res.Generation.Text)
	if !parsed {
		r.fallback(res)
		return res, true
	}
	if r.strict {
		c, found := matchCandidate(candidates, empName, dept)
		if !found {
			logx.Debug().Str("choice", res.Generation.Text).Msg("model chose an employee that was not offered")
			r.fallback(res)
			return res, true
		}
		empName, dept = c.EmployeeName, c.Department
	}

	res.EmployeeName = empName
	res.Department = dept
	res.Source = SourceParsed
	r.log(res)
	return res, true
}

func (r *Resolver) fallback(res *Resolution) {
	top := res.Candidates[0]
	res.EmployeeName = top.EmployeeName
	res.Department = top.Department
	res.Source = SourceFallback
	r.log(res)
}

func (r *Resolver) log(res *Resolution) {
	r.metrics.Resolution(string(res.Source))
	logx.Debug().
		Str("candidate_name", res.CandidateName).
		Int("candidates", len(res.Candidates)).
		Str("employee", res.EmployeeName).
		Str("department", res.Department).
		Str("source", string(res.Source)).
		Msg("employee resolved")
}
