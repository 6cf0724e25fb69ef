package core

// Observer receives live progress from the runtime: streamed model output,
// tool activity, board traffic and scheduling milestones. Emission is a side
// effect only; implementations must return quickly and must not influence
// scheduling. The runtime calls an observer from a single goroutine at a
// time, so implementations need no internal locking.
type Observer interface {
	// TurnStarted fires before an agent's turn begins. maxTurns is 0 for
	// plain chat turns outside a team run.
	TurnStarted(role string, turn, maxTurns int)
	// TextDelta streams a fragment of assistant text as it arrives.
	TextDelta(role, delta string)
	// ReasoningDelta streams a fragment of model reasoning as it arrives.
	ReasoningDelta(role, delta string)
	// ToolCallStarted fires before a tool call is dispatched.
	ToolCallStarted(role, tool, args string)
	// ToolCallFinished fires with the result (or error) of a dispatched call.
	ToolCallFinished(role, tool, result string, err error)
	// MessagePosted fires after a message lands on the board.
	MessagePosted(msg Message)
	// RunFinished fires once with the terminal status and summary.
	RunFinished(status, summary string)
}

// NopObserver discards all progress callbacks. Embed it to implement only a
// subset of Observer.
type NopObserver struct{}

// TurnStarted implements Observer.
func (NopObserver) TurnStarted(string, int, int) {}

// TextDelta implements Observer.
func (NopObserver) TextDelta(string, string) {}

// ReasoningDelta implements Observer.
func (NopObserver) ReasoningDelta(string, string) {}

// ToolCallStarted implements Observer.
func (NopObserver) ToolCallStarted(string, string, string) {}

// ToolCallFinished implements Observer.
func (NopObserver) ToolCallFinished(string, string, string, error) {}

// MessagePosted implements Observer.
func (NopObserver) MessagePosted(Message) {}

// RunFinished implements Observer.
func (NopObserver) RunFinished(string, string) {}
