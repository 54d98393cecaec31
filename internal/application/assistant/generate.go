package assistant

import (
	"context"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

// RunToolInput carries one tool invocation. UserID is zero for anonymous
// calls on unprotected tools (no quota is charged then).
type RunToolInput struct {
	Tool    ToolSpec
	Fields  map[string]string
	Images  []ports.InlineImage
	UserID  domain.UserID
	Metered bool
}

type RunToolResult struct {
	Text string
}

// RunTool is the single parametrized operation behind every tool endpoint:
// interpolate the template, consult the quota when metered, call the gateway,
// and append a usage record on success.
type RunTool struct {
	generator ports.TextGenerator
	quota     *Quota
}

func NewRunTool(generator ports.TextGenerator, quota *Quota) *RunTool {
	return &RunTool{generator: generator, quota: quota}
}

func (uc *RunTool) Execute(ctx context.Context, input RunToolInput) (*RunToolResult, error) {
	prompt := input.Tool.BuildPrompt(input.Fields)
	if input.Metered {
		if err := uc.quota.Check(ctx, input.UserID, input.Tool.Name); err != nil {
			return nil, err
		}
	}
	text, err := uc.generator.Generate(ctx, ports.GenerateInput{
		Prompt: prompt,
		Images: input.Images,
	})
	if err != nil {
		return nil, err
	}
	if input.Metered {
		if err := uc.quota.Consume(ctx, input.UserID, input.Tool.Name, len(input.Fields[input.Tool.Required])); err != nil {
			return nil, err
		}
	}
	return &RunToolResult{Text: text}, nil
}
