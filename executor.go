package deviceid

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// defaultTimeout bounds a single system command.
const defaultTimeout = 5 * time.Second

// CommandExecutor runs system commands. Inject a custom implementation with
// [Collector.WithExecutor] to replace real commands in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

// defaultCommandExecutor implements CommandExecutor with os/exec.
type defaultCommandExecutor struct {
	Timeout time.Duration
}

// Execute runs a system command bounded by the executor timeout and returns
// its trimmed standard output.
func (e *defaultCommandExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(timeoutCtx, name, args...).Output()
	if err != nil {
		return "", &CommandError{Command: name, Err: err}
	}

	return strings.TrimSpace(string(output)), nil
}

// executeCommand runs name through executor, falling back to the default
// executor when none is configured, and logs the command timing.
func executeCommand(ctx context.Context, executor CommandExecutor, logger zerolog.Logger, name string, args ...string) (string, error) {
	if executor == nil {
		executor = &defaultCommandExecutor{Timeout: defaultTimeout}
	}

	start := time.Now()
	output, err := executor.Execute(ctx, name, args...)
	if err != nil {
		logger.Debug().Err(err).Str("command", name).Dur("took", time.Since(start)).Msg("command failed")

		return "", err
	}

	logger.Debug().Str("command", name).Dur("took", time.Since(start)).Msg("command executed")

	return output, nil
}
