// Package graphx extracts knowledge graphs from free text. It drives a model
// with a single structured-output prompt and parses the returned JSON into
// concepts and relationships, tolerating the markdown fencing and leading
// prose that models commonly wrap around JSON output.
package graphx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aryanrai97861/cortexhub/model"
)

// Concept is a node of the extracted graph.
type Concept struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Relationship is a directed edge between two concepts, referenced by id.
type Relationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// KnowledgeGraph is the structured extraction result.
type KnowledgeGraph struct {
	Concepts      []Concept      `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}

const extractionInstructions = `You are an expert at extracting and structuring knowledge from text. Your task is to analyze the provided context and identify key concepts and their relationships.

Follow these rules:
1. Identify at least 3 to 5 key concepts.
2. For each concept, provide a unique ID, a name, and a short description.
3. Identify the relationships between these concepts. For each relationship, provide a source concept ID, a target concept ID, and a relationship type.
4. The output must be a single JSON object with the shape {"concepts": [{"id", "name", "description"}], "relationships": [{"source", "target", "type", "description"}]} and nothing else.`

// maxContextBytes bounds the text handed to the model in one extraction.
const maxContextBytes = 120_000

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	Logger zerolog.Logger
}

// Generator turns text into a KnowledgeGraph using a model.
type Generator struct {
	model  model.Model
	logger zerolog.Logger
}

// NewGenerator constructs a Generator backed by the given model.
func NewGenerator(m model.Model, optFns ...func(o *GeneratorOptions)) *Generator {
	opts := GeneratorOptions{Logger: zerolog.Nop()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{model: m, logger: opts.Logger}
}

// Generate asks the model for a knowledge graph over the given context text.
// Over-long context is truncated rather than rejected. An answer that does
// not contain a parseable graph object is an error; the caller decides
// whether to retry.
func (g *Generator) Generate(ctx context.Context, contextText string) (*KnowledgeGraph, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, fmt.Errorf("context text is required")
	}
	if len(contextText) > maxContextBytes {
		g.logger.Warn().Int("bytes", len(contextText)).Msg("Context truncated for graph extraction")
		contextText = contextText[:maxContextBytes]
	}

	decision, err := g.model.Decide(ctx, model.Request{
		Instructions: extractionInstructions,
		Goal:         "Context:\n" + contextText + "\n\nJSON Output:",
	})
	if err != nil {
		return nil, fmt.Errorf("graph extraction: %w", err)
	}

	answer, ok := decision.(model.FinalAnswer)
	if !ok {
		return nil, fmt.Errorf("graph extraction: model requested tool calls instead of answering")
	}

	graph, err := ParseGraph(answer.Message.Content)
	if err != nil {
		return nil, fmt.Errorf("graph extraction: %w", err)
	}
	g.logger.Info().
		Int("concepts", len(graph.Concepts)).
		Int("relationships", len(graph.Relationships)).
		Msg("Knowledge graph generated")
	return graph, nil
}

// ParseGraph locates and decodes the JSON object inside a model answer.
// It accepts raw JSON, JSON inside markdown code fences, and JSON preceded
// or followed by prose.
func ParseGraph(text string) (*KnowledgeGraph, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var graph KnowledgeGraph
	if err := json.Unmarshal([]byte(payload), &graph); err != nil {
		return nil, fmt.Errorf("decode graph JSON: %w", err)
	}
	if len(graph.Concepts) == 0 {
		return nil, fmt.Errorf("graph contains no concepts")
	}

	ids := make(map[string]struct{}, len(graph.Concepts))
	for _, c := range graph.Concepts {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("concept missing id or name")
		}
		ids[c.ID] = struct{}{}
	}
	for _, r := range graph.Relationships {
		if _, ok := ids[r.Source]; !ok {
			return nil, fmt.Errorf("relationship references unknown source concept %q", r.Source)
		}
		if _, ok := ids[r.Target]; !ok {
			return nil, fmt.Errorf("relationship references unknown target concept %q", r.Target)
		}
	}
	return &graph, nil
}

// extractJSON returns the first balanced top-level JSON object in text,
// stripping a surrounding markdown code fence if present.
func extractJSON(text string) string {
	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			text = rest[:end]
		}
	}

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
