// Package openai provides a model adapter for the OpenAI Chat Completions
// API (including function/tool calling). It maps the normalized
// model.Request onto the SDK's message format and converts the completion
// back into a discriminated model.Decision.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

// Options configure the OpenAI model adapter. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model
// interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client (API key from
// the environment).
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Decide implements model.Model with a single non-streaming round trip.
func (m *Model) Decide(ctx context.Context, req model.Request) (model.Decision, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        tdef.Name,
					Description: openai.String(tdef.Description),
					Parameters:  tdef.Parameters,
				},
			}
		}
		params.Tools = tools
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &model.ClientError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &model.ClientError{Provider: "openai", Err: fmt.Errorf("no choices returned")}
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return model.FinalAnswer{Message: core.NewAgentMessage(msg.Content)}, nil
	}

	requests := make([]core.ToolRequest, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, &model.ClientError{
					Provider: "openai",
					Err:      fmt.Errorf("malformed tool arguments for %s: %w", tc.Function.Name, err),
				}
			}
		}
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}
		requests = append(requests, core.ToolRequest{
			ToolName:  tc.Function.Name,
			Arguments: args,
			RequestID: id,
		})
	}
	return model.ToolCalls{Requests: requests}, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}

// buildMessages converts the normalized request into OpenAI chat messages.
// Intermediate steps keep the assistant tool-call / tool-response pairing the
// API requires.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.History {
		if msg.Role == core.RoleAgent {
			messages = append(messages, openai.AssistantMessage(msg.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(msg.Content))
	}
	messages = append(messages, openai.UserMessage(req.Goal))

	for _, step := range req.Steps {
		switch s := step.(type) {
		case model.CallStep:
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(s.Requests))
			for _, call := range s.Requests {
				args, _ := json.Marshal(call.Arguments)
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   call.RequestID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.ToolName,
						Arguments: string(args),
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case model.ResultStep:
			messages = append(messages, openai.ToolMessage(s.Result.Content, s.Result.RequestID))
		}
	}

	return messages
}
