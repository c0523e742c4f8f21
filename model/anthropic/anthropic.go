// Package anthropic provides a model adapter for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/google/uuid"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

// Options configures the Anthropic model adapter (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_0),
		Temperature: 0,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       string(anthropic.ModelClaudeSonnet4_0),
		Temperature: 0,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Decide implements model.Model with a single non-streaming round trip.
func (m *Model) Decide(ctx context.Context, req model.Request) (model.Decision, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.opts.Model),
		Messages:    buildMessages(req),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &model.ClientError{Provider: "anthropic", Err: err}
	}

	var (
		requests []core.ToolRequest
		text     string
	)
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := map[string]any{}
			if len(toolBlock.Input) > 0 {
				if err := json.Unmarshal(toolBlock.Input, &args); err != nil {
					return nil, &model.ClientError{
						Provider: "anthropic",
						Err:      fmt.Errorf("malformed tool input for %s: %w", toolBlock.Name, err),
					}
				}
			}
			id := toolBlock.ID
			if id == "" {
				id = uuid.NewString()
			}
			requests = append(requests, core.ToolRequest{
				ToolName:  toolBlock.Name,
				Arguments: args,
				RequestID: id,
			})
		}
	}

	if len(requests) > 0 {
		return model.ToolCalls{Requests: requests}, nil
	}
	return model.FinalAnswer{Message: core.NewAgentMessage(text)}, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "anthropic"}
}

// buildMessages converts the normalized request into Anthropic messages.
// Each CallStep becomes an assistant message of tool_use blocks and each
// ResultStep a user message with the matching tool_result block.
func buildMessages(req model.Request) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, msg := range req.History {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == core.RoleAgent {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Goal)))

	for _, step := range req.Steps {
		switch s := step.(type) {
		case model.CallStep:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(s.Requests))
			for _, call := range s.Requests {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.RequestID, call.Arguments, call.ToolName))
			}
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		case model.ResultStep:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(s.Result.RequestID, s.Result.Content, false),
			))
		}
	}

	return messages
}

// buildTools converts JSON-schema tool definitions to the Anthropic tool
// format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if t.Parameters != nil {
			if properties, exists := t.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch required := t.Parameters["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				for _, r := range required {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}
		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, t.Name)
	}

	return anthropicTools
}
