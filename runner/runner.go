package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agentloop/agentloop/agent"
	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/session"
)

// Options hold dependency and configuration overrides passed to New.
type Options struct {
	// Store persists conversations between runs. Defaults to in-memory.
	Store session.Store
	// Logger receives per-run events. Defaults to no-op.
	Logger logging.Logger
}

// Runner coordinates session-aware execution of one agent: it loads the
// session's stored conversation, runs the agent with that history, and saves
// the resulting log back. Safe for concurrent use across distinct sessions;
// concurrent runs of the same session race on the stored log (last save
// wins).
type Runner[D, R any] struct {
	agent  *agent.Agent[D, R]
	store  session.Store
	logger logging.Logger
}

// New constructs a Runner with optional overrides.
func New[D, R any](a *agent.Agent[D, R], optFns ...func(o *Options)) *Runner[D, R] {
	opts := Options{
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner[D, R]{agent: a, store: opts.Store, logger: opts.Logger}
}

// Run executes one user prompt within the session and persists the updated
// conversation.
func (r *Runner[D, R]) Run(
	ctx context.Context,
	sessionID, userPrompt string,
	optFns ...func(o *agent.RunOptions[D]),
) (*agent.RunResult[R], error) {
	history, err := r.store.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	runID := uuid.NewString()
	r.logger.Info("runner.run.start",
		"session_id", sessionID, "run_id", runID, "history_len", len(history))

	withHistory := func(o *agent.RunOptions[D]) {
		if len(history) > 0 {
			o.History = history
		}
	}
	result, err := r.agent.Run(ctx, userPrompt, append([]func(o *agent.RunOptions[D]){withHistory}, optFns...)...)
	if err != nil {
		r.logger.Error("runner.run.error", "session_id", sessionID, "run_id", runID, "error", err.Error())
		return nil, err
	}

	if err := r.store.Save(sessionID, result.Messages); err != nil {
		return nil, fmt.Errorf("save session %q: %w", sessionID, err)
	}

	r.logger.Info("runner.run.complete",
		"session_id", sessionID, "run_id", runID, "messages", len(result.Messages))
	return result, nil
}
