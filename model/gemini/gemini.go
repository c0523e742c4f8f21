// Package gemini provides a model adapter for the Google Gemini API. It maps
// the normalized model.Request (history, goal, intermediate tool steps, tool
// schema) onto Gemini contents and function declarations, and converts the
// candidate back into a discriminated model.Decision.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model       string
	Temperature float64
	APIKey      string
}

// Model wraps the Gemini generate-content API behind the generic model.Model
// interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model, constructing a client from the API key
// in Options (or ambient credentials when empty).
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-2.5-pro",
		Temperature: 0,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-2.5-pro",
		Temperature: 0,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Decide implements model.Model with a single non-streaming round trip.
func (m *Model) Decide(ctx context.Context, req model.Request) (model.Decision, error) {
	contents := buildContents(req)

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(m.opts.Temperature)),
	}
	if req.Instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: buildDeclarations(req.Tools)}}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
	if err != nil {
		return nil, &model.ClientError{Provider: "gemini", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &model.ClientError{Provider: "gemini", Err: fmt.Errorf("no candidates returned")}
	}

	return parseCandidate(resp.Candidates[0]), nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}

// buildContents converts history, goal and intermediate steps into ordered
// Gemini contents. Tool calls become model-role function-call parts and tool
// results user-role function-response parts, mirroring the API's expected
// turn structure.
func buildContents(req model.Request) []*genai.Content {
	var contents []*genai.Content

	for _, msg := range req.History {
		role := genai.Role(genai.RoleUser)
		if msg.Role == core.RoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	contents = append(contents, genai.NewContentFromText(req.Goal, genai.RoleUser))

	for _, step := range req.Steps {
		switch s := step.(type) {
		case model.CallStep:
			parts := make([]*genai.Part, 0, len(s.Requests))
			for _, call := range s.Requests {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.RequestID,
					Name: call.ToolName,
					Args: call.Arguments,
				}})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case model.ResultStep:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       s.Result.RequestID,
					Response: map[string]any{"output": s.Result.Content},
				}}},
			})
		}
	}

	return contents
}

// buildDeclarations converts JSON-schema tool definitions to Gemini function
// declarations.
func buildDeclarations(tools []model.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaFromMap(t.Parameters),
		})
	}
	return decls
}

// schemaFromMap translates the minimal JSON Schema subset used by tool
// definitions (type, description, enum, properties, required, items) into the
// Gemini schema representation.
func schemaFromMap(raw map[string]any) *genai.Schema {
	if raw == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	schema := &genai.Schema{}

	if v, ok := raw["type"].(string); ok {
		schema.Type = genaiType(v)
	}
	if v, ok := raw["description"].(string); ok {
		schema.Description = v
	}
	if v, ok := raw["enum"].([]any); ok {
		for _, e := range v {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	if props, ok := raw["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, sub := range props {
			if subMap, ok := sub.(map[string]any); ok {
				schema.Properties[name] = schemaFromMap(subMap)
			}
		}
	}
	switch req := raw["required"].(type) {
	case []string:
		schema.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if items, ok := raw["items"].(map[string]any); ok {
		schema.Items = schemaFromMap(items)
	}

	return schema
}

func genaiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

// parseCandidate converts the first candidate into a Decision. Function-call
// parts win over text; a candidate with neither becomes an empty final answer
// so the orchestrator can still terminate.
func parseCandidate(cand *genai.Candidate) model.Decision {
	var (
		requests []core.ToolRequest
		text     string
	)

	for _, part := range cand.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			requests = append(requests, core.ToolRequest{
				ToolName:  part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
				RequestID: id,
			})
			continue
		}
		text += part.Text
	}

	if len(requests) > 0 {
		return model.ToolCalls{Requests: requests}
	}
	return model.FinalAnswer{Message: core.NewAgentMessage(text)}
}
