// Package core provides the foundational domain types shared across the
// agentloop packages. It defines:
//
//   - Message (the closed union making up a conversation log) and Conversation
//   - ToolCall arguments in raw-JSON or structured form (ToolArgs)
//   - Per-run retry bookkeeping (RetryTracker) and the round safety valve
//     (RoundLimiter)
//   - Usage accounting and the run-level error taxonomy
//
// The package intentionally holds no execution logic: validation lives in
// schema, tool invocation in tool, and the turn state machine in agent.
package core
