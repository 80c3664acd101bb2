// Package model defines the provider-agnostic transport contract the run
// loop drives: Request(conversation) -> one model turn, which is always
// either free text or a batch of named, identified tool calls.
//
// Providers (OpenAI, Anthropic) implement the Model interface in their own
// subpackages so the agent layer stays decoupled from vendor SDKs.
// ScriptedModel and Func support deterministic tests without a network.
package model
