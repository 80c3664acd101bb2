// Package runner bridges agents and session storage: each Run loads the
// session's conversation, executes the agent with it as history, and persists
// the updated log. It is the convenience layer for multi-turn sessions; use
// agent.Agent directly for one-shot runs.
package runner
