// Package extract finds literal slot values in a visitor's utterance.
package extract

import (
	"github.com/vira-assistant/server/internal/assistant/model"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// Update is one value found by a rule.
type Update struct {
	Rule  string
	Slot  model.Slot
	Value string
}

// Extractor runs every rule against the same utterance.
type Extractor struct {
	rules []Rule
}

// DefaultRules returns the booking heuristics in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		ReasonRule{},
		TimeRule{},
		EmailRule{},
		VisitorNameRule{},
		PhoneRule{},
	}
}

// New builds an Extractor. With no rules it uses DefaultRules.
func New(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract returns the values matched in utterance. Rules see the literal
// utterance only, never each other's results.
func (e *Extractor) Extract(utterance string) []Update {
	var out []Update
	for _, r := range e.rules {
		v, ok := r.Extract(utterance)
		if !ok {
			continue
		}
		out = append(out, Update{Rule: r.Name(), Slot: r.Slot(), Value: v})
	}
	return out
}

// Apply writes updates into s and returns how many slots changed.
func Apply(s *model.ConversationState, updates []Update) int {
	changed := 0
	for _, u := range updates {
		if s.Get(u.Slot) == u.Value {
			continue
		}
		if s.Set(u.Slot, u.Value) {
			changed++
			logx.Debug().Str("rule", u.Rule).Str("slot", string(u.Slot)).Msg("slot extracted")
		}
	}
	return changed
}
