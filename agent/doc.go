// Package agent implements the per-role execution loop: an Agent owns one
// conversation history and one tool grant set, and RunTurn drives the
// think / call tools / observe cycle until the model stops requesting tools
// or the run is declared done.
//
// Agents are plain configuration-driven records created from roster specs;
// there are no fixed agent classes. Behavior differences between roles come
// entirely from their system prompts and tool grants, with the Tool
// Dispatcher doing the polymorphic dispatch by tool-call name.
package agent
