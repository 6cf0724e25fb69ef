// Package core defines the shared kernel of the AutoCrew runtime: the
// conversation content model exchanged with language models, the team
// message board with its visibility rules, roster specifications produced
// by the planner, the tool invocation context, and the error taxonomy that
// separates recoverable tool-level failures from run-terminating conditions.
//
// The package is dependency-light by design. Higher layers (agent, team,
// tool, model adapters) all build on these types; nothing in core reaches
// back up.
package core
