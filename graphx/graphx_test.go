package graphx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

const validGraphJSON = `{
  "concepts": [
    {"id": "c1", "name": "CortexHub", "description": "An agent platform"},
    {"id": "c2", "name": "AI Agents"}
  ],
  "relationships": [
    {"source": "c1", "target": "c2", "type": "uses"}
  ]
}`

func TestParseGraph_RawJSON(t *testing.T) {
	graph, err := ParseGraph(validGraphJSON)
	require.NoError(t, err)
	require.Len(t, graph.Concepts, 2)
	require.Len(t, graph.Relationships, 1)
	assert.Equal(t, "CortexHub", graph.Concepts[0].Name)
	assert.Equal(t, "uses", graph.Relationships[0].Type)
}

func TestParseGraph_FencedJSON(t *testing.T) {
	text := "Here is the graph:\n```json\n" + validGraphJSON + "\n```\nDone."
	graph, err := ParseGraph(text)
	require.NoError(t, err)
	assert.Len(t, graph.Concepts, 2)
}

func TestParseGraph_JSONWithSurroundingProse(t *testing.T) {
	text := "Sure! " + validGraphJSON + " Let me know if you need more."
	graph, err := ParseGraph(text)
	require.NoError(t, err)
	assert.Len(t, graph.Concepts, 2)
}

func TestParseGraph_BracesInsideStrings(t *testing.T) {
	text := `{"concepts":[{"id":"c1","name":"braces {inside} a string"}],"relationships":[]}`
	graph, err := ParseGraph(text)
	require.NoError(t, err)
	assert.Equal(t, "braces {inside} a string", graph.Concepts[0].Name)
}

func TestParseGraph_Rejections(t *testing.T) {
	cases := map[string]string{
		"no JSON":           "there is nothing structured here",
		"empty concepts":    `{"concepts":[],"relationships":[]}`,
		"missing id":        `{"concepts":[{"name":"x"}],"relationships":[]}`,
		"unknown source":    `{"concepts":[{"id":"c1","name":"x"}],"relationships":[{"source":"ghost","target":"c1","type":"uses"}]}`,
		"unknown target":    `{"concepts":[{"id":"c1","name":"x"}],"relationships":[{"source":"c1","target":"ghost","type":"uses"}]}`,
		"unbalanced braces": `{"concepts": [`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGraph(text)
			require.Error(t, err)
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	m := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage(validGraphJSON)})
	g := NewGenerator(m)

	graph, err := g.Generate(context.Background(), "CortexHub is a platform built on AI agents.")
	require.NoError(t, err)
	assert.Len(t, graph.Concepts, 2)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Tools, "graph extraction is a one-shot call without tools")
	assert.Contains(t, reqs[0].Goal, "CortexHub is a platform")
}

func TestGenerator_RejectsEmptyContext(t *testing.T) {
	g := NewGenerator(model.NewMock())
	_, err := g.Generate(context.Background(), "  ")
	require.Error(t, err)
}

func TestGenerator_ToolCallDecisionIsError(t *testing.T) {
	m := model.NewMock(model.ToolCalls{Requests: []core.ToolRequest{{ToolName: "x", RequestID: "1"}}})
	g := NewGenerator(m)

	_, err := g.Generate(context.Background(), "some context")
	require.Error(t, err)
}
