package audit

import (
	"go.uber.org/zap"

	"github.com/temirov/lighthouse-runner/internal/execshell"
	"github.com/temirov/lighthouse-runner/internal/lighthouse"
	"github.com/temirov/lighthouse-runner/internal/ui"
)

// ResolveExecutor returns existing when set. Otherwise it builds a shell executor: console logging routes
// lifecycle events through ui.ConsoleCommandEventLogger, structured logging records them on logger.
func ResolveExecutor(existing lighthouse.CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (lighthouse.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(zap.NewNop(), commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}
