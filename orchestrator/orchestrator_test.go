package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
	"github.com/aryanrai97861/cortexhub/session"
	"github.com/aryanrai97861/cortexhub/tool"
)

func newCapitalTool(t *testing.T) *tool.FunctionTool {
	t.Helper()
	capital, err := tool.NewFunctionTool(
		"lookup_capital",
		"Look up the capital city of a country",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"country": map[string]any{"type": "string"},
			},
			"required": []string{"country"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			if args["country"] == "France" {
				return "Paris", nil
			}
			return nil, tool.NewError("lookup_capital", "unknown country", tool.CodeExecution)
		},
	)
	require.NoError(t, err)
	return capital
}

func newFailingTool(t *testing.T, name string) *tool.FunctionTool {
	t.Helper()
	failing, err := tool.NewFunctionTool(
		name,
		"Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	)
	require.NoError(t, err)
	return failing
}

func TestRun_DirectAnswer(t *testing.T) {
	m := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage("hello")})
	store := session.NewInMemoryStore()

	o := New(m, tool.NewRegistry(), store)
	report, err := o.Run(context.Background(), "say hello", "s1")
	require.NoError(t, err)

	assert.Equal(t, "Agent execution complete.", report.Message)
	assert.Equal(t, "s1", report.SessionID)
	assert.Equal(t, 2, report.HistoryLength)
	assert.Equal(t, "hello", report.FinalAnswer())

	history, err := store.Load("s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.NewHumanMessage("say hello"), history[0])
	assert.Equal(t, core.NewAgentMessage("hello"), history[1])
}

func TestRun_ToolRoundTrip(t *testing.T) {
	m := model.NewMock(
		model.ToolCalls{Requests: []core.ToolRequest{{
			ToolName:  "lookup_capital",
			Arguments: map[string]any{"country": "France"},
			RequestID: "call-1",
		}}},
		model.FinalAnswer{Message: core.NewAgentMessage("Paris")},
	)

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(newCapitalTool(t)))
	store := session.NewInMemoryStore()

	o := New(m, registry, store)
	report, err := o.Run(context.Background(), "What is the capital of France?", "paris")
	require.NoError(t, err)

	// The final log entry carries the answer.
	assert.Equal(t, "Paris", report.FinalAnswer())
	assert.Equal(t, 2, report.HistoryLength)

	// Exactly two messages persisted; tool turns are working state only.
	history, err := store.Load("paris")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleHuman, history[0].Role)
	assert.Equal(t, "What is the capital of France?", history[0].Content)
	assert.Equal(t, core.RoleAgent, history[1].Role)
	assert.Equal(t, "Paris", history[1].Content)

	// The second model request carried the tool call and its result.
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[1].Steps, 2)
	call, ok := reqs[1].Steps[0].(model.CallStep)
	require.True(t, ok)
	assert.Equal(t, "call-1", call.Requests[0].RequestID)
	result, ok := reqs[1].Steps[1].(model.ResultStep)
	require.True(t, ok)
	assert.Equal(t, "call-1", result.Result.RequestID)
	assert.Equal(t, "Paris", result.Result.Content)
}

func TestRun_HistoryAccumulatesAcrossRuns(t *testing.T) {
	store := session.NewInMemoryStore()

	m := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage("one")})
	o := New(m, tool.NewRegistry(), store)
	_, err := o.Run(context.Background(), "first", "s")
	require.NoError(t, err)

	m2 := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage("two")})
	o2 := New(m2, tool.NewRegistry(), store)
	report, err := o2.Run(context.Background(), "second", "s")
	require.NoError(t, err)

	assert.Equal(t, 4, report.HistoryLength)
	reqs := m2.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].History, 2)
	assert.Equal(t, "first", reqs[0].History[0].Content)
}

func TestRun_TurnLimit(t *testing.T) {
	m := model.NewMock()
	// Every decision asks for another tool call; the run must terminate anyway.
	m.QueueDecision(model.ToolCalls{Requests: []core.ToolRequest{{
		ToolName:  "lookup_capital",
		Arguments: map[string]any{"country": "France"},
		RequestID: "loop",
	}}})

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(newCapitalTool(t)))
	store := session.NewInMemoryStore()

	o := New(m, registry, store, func(o *Options) { o.MaxTurns = 3 })
	report, err := o.Run(context.Background(), "never finishes", "bounded")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Calls())
	assert.Contains(t, report.FinalAnswer(), "allotted 3 turns")

	history, err := store.Load("bounded")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleAgent, history[1].Role)
	assert.Contains(t, history[1].Content, "allotted 3 turns")

	var sawLimit bool
	for _, entry := range report.Log {
		if entry.Details == ErrLoopExceeded.Error() {
			sawLimit = true
		}
	}
	assert.True(t, sawLimit, "turn limit should be recorded in the log")
}

func TestRun_DefaultTurnLimitIsTen(t *testing.T) {
	m := model.NewMock()
	m.QueueDecision(model.ToolCalls{Requests: []core.ToolRequest{{
		ToolName:  "lookup_capital",
		Arguments: map[string]any{"country": "France"},
		RequestID: "loop",
	}}})

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(newCapitalTool(t)))

	o := New(m, registry, session.NewInMemoryStore())
	_, err := o.Run(context.Background(), "never finishes", "ten")
	require.NoError(t, err)
	assert.Equal(t, 10, m.Calls())
}

func TestRun_ToolFailureIsFedBack(t *testing.T) {
	m := model.NewMock(
		model.ToolCalls{Requests: []core.ToolRequest{{
			ToolName:  "broken",
			Arguments: map[string]any{},
			RequestID: "call-1",
		}}},
		model.FinalAnswer{Message: core.NewAgentMessage("the tool failed")},
	)

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(newFailingTool(t, "broken")))

	o := New(m, registry, session.NewInMemoryStore())
	report, err := o.Run(context.Background(), "try the tool", "failure")
	require.NoError(t, err, "a tool failure must not abort the run")
	assert.Equal(t, "the tool failed", report.FinalAnswer())

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	result, ok := reqs[1].Steps[1].(model.ResultStep)
	require.True(t, ok)
	assert.Equal(t, "call-1", result.Result.RequestID)
	assert.True(t, strings.HasPrefix(result.Result.Content, toolErrorPrefix))
}

func TestRun_UnknownToolIsFedBack(t *testing.T) {
	m := model.NewMock(
		model.ToolCalls{Requests: []core.ToolRequest{{
			ToolName:  "no_such_tool",
			Arguments: map[string]any{},
			RequestID: "call-1",
		}}},
		model.FinalAnswer{Message: core.NewAgentMessage("done")},
	)

	o := New(m, tool.NewRegistry(), session.NewInMemoryStore())
	_, err := o.Run(context.Background(), "use a missing tool", "missing")
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	result, ok := reqs[1].Steps[1].(model.ResultStep)
	require.True(t, ok)
	assert.Contains(t, result.Result.Content, "unknown tool")
}

func TestRun_FailureAbortsRemainingCallsInTurn(t *testing.T) {
	m := model.NewMock(
		model.ToolCalls{Requests: []core.ToolRequest{
			{ToolName: "broken", Arguments: map[string]any{}, RequestID: "call-1"},
			{ToolName: "lookup_capital", Arguments: map[string]any{"country": "France"}, RequestID: "call-2"},
		}},
		model.FinalAnswer{Message: core.NewAgentMessage("done")},
	)

	invoked := 0
	counting, err := tool.NewFunctionTool(
		"lookup_capital", "counts invocations",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(ctx context.Context, args map[string]any) (any, error) {
			invoked++
			return "Paris", nil
		},
	)
	require.NoError(t, err)

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(newFailingTool(t, "broken")))
	require.NoError(t, registry.Register(counting))

	o := New(m, registry, session.NewInMemoryStore())
	_, err = o.Run(context.Background(), "two calls", "abort")
	require.NoError(t, err)

	assert.Equal(t, 0, invoked, "calls after a failure in the same turn must not be dispatched")

	// Both requests still get results so none is left unresolved.
	reqs := m.Requests()
	require.Len(t, reqs, 2)
	require.Len(t, reqs[1].Steps, 3)
	second, ok := reqs[1].Steps[2].(model.ResultStep)
	require.True(t, ok)
	assert.Equal(t, "call-2", second.Result.RequestID)
	assert.Contains(t, second.Result.Content, "skipped")
}

func TestRun_ModelErrorPersistsNothing(t *testing.T) {
	store := session.NewInMemoryStore()
	require.NoError(t, store.Save("err", []core.Message{core.NewHumanMessage("old"), core.NewAgentMessage("old answer")}))

	m := model.NewMock()
	m.QueueError(&model.ClientError{Provider: "mock", Err: errors.New("unavailable")})

	o := New(m, tool.NewRegistry(), store)
	_, err := o.Run(context.Background(), "goal", "err")
	require.Error(t, err)

	var clientErr *model.ClientError
	assert.ErrorAs(t, err, &clientErr)

	history, loadErr := store.Load("err")
	require.NoError(t, loadErr)
	assert.Len(t, history, 2, "a failed run must not grow the persisted history")
}

func TestRun_CancellationPersistsWorkingHistory(t *testing.T) {
	store := session.NewInMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage("unreached")})
	o := New(m, tool.NewRegistry(), store)
	_, err := o.Run(ctx, "interrupted goal", "cancelled")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	history, loadErr := store.Load("cancelled")
	require.NoError(t, loadErr)
	require.Len(t, history, 1)
	assert.Equal(t, core.NewHumanMessage("interrupted goal"), history[0])
}

func TestRun_EmptyGoalRejected(t *testing.T) {
	o := New(model.NewMock(), tool.NewRegistry(), session.NewInMemoryStore())
	_, err := o.Run(context.Background(), "", "s")
	require.Error(t, err)
}

func TestRun_LogHasGoalAndResultEntries(t *testing.T) {
	m := model.NewMock(model.FinalAnswer{Message: core.NewAgentMessage("42")})
	o := New(m, tool.NewRegistry(), session.NewInMemoryStore())

	report, err := o.Run(context.Background(), "meaning of life", "log")
	require.NoError(t, err)

	require.NotEmpty(t, report.Log)
	assert.Equal(t, "goal", report.Log[0].Type)
	assert.Equal(t, "log-1", report.Log[0].ID)
	last := report.Log[len(report.Log)-1]
	assert.Equal(t, "result", last.Type)
	assert.Equal(t, "42", last.Text)
}
