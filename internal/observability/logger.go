package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"

	"github.com/memeforge/memeforge/internal/config"
)

var (
	// CLILogger is used for CLI commands (SIMPLE profile)
	CLILogger *logging.Logger

	// ServerLogger is used by `serve` (STRUCTURED profile unless configured
	// otherwise)
	ServerLogger *logging.Logger
)

// InitCLILogger initializes the CLI logger with SIMPLE profile
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// InitServerLogger initializes ServerLogger from the logging section.
func InitServerLogger(serviceName string, cfg config.LoggingConfig, namespace string) {
	logger, err := NewServerLogger(serviceName, cfg, namespace)
	if err != nil {
		exitWithCodeStderr(foundry.ExitConfigInvalid, "Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// NewServerLogger builds a logger for long-running processes. SIMPLE writes
// console lines; STRUCTURED and ENTERPRISE write JSON with correlation IDs.
func NewServerLogger(serviceName string, cfg config.LoggingConfig, namespace string) (*logging.Logger, error) {
	staticFields := make(map[string]any)
	if namespace != "" {
		staticFields["namespace"] = namespace
	}

	lc := &logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(cfg.Level),
		Service:      serviceName,
		Environment:  "production",
		StaticFields: staticFields,
		Middleware: []logging.MiddlewareConfig{
			{
				Name:    "correlation",
				Enabled: true,
				Order:   100,
				Config:  make(map[string]any),
			},
		},
		Sinks: []logging.SinkConfig{
			{
				Type:   "console",
				Format: "json",
				Console: &logging.ConsoleSinkConfig{
					Stream:   "stderr",
					Colorize: false,
				},
			},
		},
		EnableCaller:     true,
		EnableStacktrace: true,
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Profile), "simple") {
		lc.Profile = logging.ProfileSimple
		lc.Middleware = nil
		lc.Sinks[0].Format = "console"
		lc.EnableStacktrace = false
	}

	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("create %s logger: %w", serviceName, err)
	}
	return logger, nil
}

// Logger returns the server logger when serving and the CLI logger
// otherwise. It may return nil before either is initialised.
func Logger() *logging.Logger {
	if ServerLogger != nil {
		return ServerLogger
	}
	return CLILogger
}

func parseLogLevel(levelStr string) string {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return "TRACE"
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

// exitWithCodeStderr is used when logger initialisation itself fails.
func exitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	code := int(exitCode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	if info, ok := foundry.GetExitCodeInfo(exitCode); ok {
		code = info.Code
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	}
	os.Exit(code)
}
