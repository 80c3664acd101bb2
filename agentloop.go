// Package agentloop provides a high-level façade over the agent run loop and
// its supporting services (models, tools, sessions & logging). Most
// applications interact with the library by:
//  1. Creating an Agent via agent.New with a model adapter (or NewFromEnv here)
//  2. Registering tools with agent.Register / agent.RegisterPlain
//  3. Calling Run with a user prompt, receiving typed result data plus the
//     full message log of the conversation turn
//
// The façade delegates orchestration to agent.Agent while keeping setup
// ergonomics concise. Defaults are safe for local development; production
// deployments typically supply a durable session store and a structured
// logger via the subpackage options.
package agentloop

import (
	"os"

	"github.com/agentloop/agentloop/agent"
	"github.com/agentloop/agentloop/config"
	"github.com/agentloop/agentloop/runner"
	"github.com/agentloop/agentloop/session"
)

// Version is the library version, set at release time.
const Version = "0.1.0"

// NewFromEnv builds an agent whose model, logger and loop limits come from
// AGENTLOOP_* environment variables. Additional option functions run after
// the environment-derived defaults and may override any of them.
func NewFromEnv[D, R any](optFns ...func(o *agent.Options[D, R])) (*agent.Agent[D, R], error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	m, err := cfg.NewModel()
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(os.Stderr)

	base := func(o *agent.Options[D, R]) {
		o.Logger = logger
		o.MaxRounds = cfg.Agent.MaxRounds
		o.MaxParallelCalls = cfg.Agent.MaxParallelCalls
		o.ResultRetries = cfg.Agent.ResultRetries
	}
	return agent.New[D, R](m, append([]func(o *agent.Options[D, R]){base}, optFns...)...)
}

// NewSessionRunner wires an agent to an in-memory session store so repeated
// runs under one session ID share conversation history.
func NewSessionRunner[D, R any](a *agent.Agent[D, R], optFns ...func(o *runner.Options)) *runner.Runner[D, R] {
	base := func(o *runner.Options) {
		o.Store = session.NewInMemoryStore()
	}
	return runner.New[D, R](a, append([]func(o *runner.Options){base}, optFns...)...)
}
