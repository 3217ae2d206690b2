package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/model"
)

//go:embed template/disambiguation.txt
var disambiguationPrompt string

// FormatOptions renders candidates as "Name (Department), ...".
func FormatOptions(candidates []model.Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("%s (%s)", c.EmployeeName, c.Department)
	}
	return strings.Join(parts, ", ")
}

// RenderDisambiguation builds the user message asking the model to pick one
// candidate and answer as "Name | Department".
func RenderDisambiguation(ctx context.Context, candidateName string, candidates []model.Candidate) (*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(disambiguationPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"candidate_name": candidateName,
		"options":        FormatOptions(candidates),
	})
	if err != nil {
		return nil, fmt.Errorf("disambiguation prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("disambiguation prompt render: empty result")
	}
	msg := msgs[0]
	msg.Content = strings.TrimSpace(msg.Content)
	return msg, nil
}
