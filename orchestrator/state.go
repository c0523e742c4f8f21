package orchestrator

import (
	"github.com/aryanrai97861/cortexhub/core"
	"github.com/aryanrai97861/cortexhub/model"
)

// phase is the orchestrator's position in the decide/act cycle.
type phase int

const (
	phaseDeciding phase = iota
	phaseActing
	phaseTerminated
)

// runState is the transient, in-memory state of a single run. It is a
// fixed-shape structure: the pending tool-turn entries are the closed
// model.Step union, so a producer/consumer field mismatch is a compile-time
// error rather than a silent key typo. runState is discarded after the run;
// only the resulting history is persisted.
type runState struct {
	goal    string
	history []core.Message // persisted conversation loaded at run start
	steps   []model.Step   // tool-turn working state, never persisted
	turns   int
	phase   phase
}

func newRunState(goal string, history []core.Message) *runState {
	return &runState{goal: goal, history: history, phase: phaseDeciding}
}

// request assembles the model input for the next decision.
func (s *runState) request(instructions string, tools []model.ToolDefinition) model.Request {
	return model.Request{
		Instructions: instructions,
		History:      s.history,
		Goal:         s.goal,
		Steps:        s.steps,
		Tools:        tools,
	}
}

// recordCalls appends one decision's tool-call batch.
func (s *runState) recordCalls(requests []core.ToolRequest) {
	s.steps = append(s.steps, model.CallStep{Requests: requests})
	s.phase = phaseActing
}

// recordResult appends the outcome of a single dispatched call.
func (s *runState) recordResult(result core.ToolResult) {
	s.steps = append(s.steps, model.ResultStep{Result: result})
}

// workingHistory is what a cancelled run persists: the prior conversation
// plus the new goal message. Tool turns stay working state.
func (s *runState) workingHistory() []core.Message {
	out := make([]core.Message, 0, len(s.history)+1)
	out = append(out, s.history...)
	out = append(out, core.NewHumanMessage(s.goal))
	return out
}

// finalHistory is what a completed run persists: the prior conversation plus
// exactly one new human and one new agent message.
func (s *runState) finalHistory(answer core.Message) []core.Message {
	out := make([]core.Message, 0, len(s.history)+2)
	out = append(out, s.history...)
	out = append(out, core.NewHumanMessage(s.goal), answer)
	return out
}
