// Package agent implements the conversation-turn state machine that turns a
// single user request into zero or more rounds of tool invocation until the
// model produces a terminal answer.
//
// An Agent is parameterized over the dependency type D shared with its tools
// and the result type R of a run. When R is a string kind, a free-text model
// turn terminates the run; any other R derives a distinguished result tool
// whose validated arguments become the typed result, and free text is
// rejected with corrective feedback.
//
// Within one model turn, tool calls are dispatched concurrently and their
// result messages are appended in call-declaration order once all have
// finished. Retry budgets are tracked per run: per tool via
// core.RetryTracker, and a separate counter for the result schema that is
// never reset mid-run.
package agent
