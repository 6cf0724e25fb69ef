// Package team runs a roster of agents against a shared message board.
//
// A run is a sequential state machine: the orchestrator is activated first,
// each turn drains tool calls through the dispatcher, and post_message side
// effects enqueue the recipients for later turns. The run ends when the
// orchestrator calls declare_done, when the turn limit is reached, or when
// two consecutive empty-queue fallback turns fail to route new work.
//
// Each run owns a workspace directory holding a JSONL transcript of the
// board and a shared artifacts directory the agents write files into.
package team
