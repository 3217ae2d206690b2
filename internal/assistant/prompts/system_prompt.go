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

//go:embed template/system_prompt.txt
var systemPrompt string

// RenderSystem renders the booking assistant's system framing. Rendering goes
// through the eino prompt component so prompt callbacks fire.
func RenderSystem(ctx context.Context, cfg model.AssistantConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"CompanyName": cfg.CompanyName,
		"OpeningTime": cfg.OpeningTime,
		"ClosingTime": cfg.ClosingTime,
	})
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}
