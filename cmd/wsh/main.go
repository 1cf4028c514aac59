package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/robottwo/wsh/internal/audit"
	"github.com/robottwo/wsh/internal/config"
	"github.com/robottwo/wsh/internal/core"
	"github.com/robottwo/wsh/internal/environment"
	"github.com/robottwo/wsh/internal/redirect"
	"github.com/robottwo/wsh/internal/styles"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var BUILD_VERSION = "dev"

// auditDefault selects the audit database in the data directory.
const auditDefault = "default"

var errUsage = errors.New("too many arguments")

func init() {
	// Register custom zstd sink for compressed logging
	if err := zap.RegisterSink("zstd", newCompressedSink); err != nil {
		panic(fmt.Sprintf("failed to register zstd sink: %v", err))
	}
}

type options struct {
	configPath string
	logLevel   string
	cleanLogs  bool
	version    bool
	help       bool
	script     string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("wsh", pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "configuration file (default ~/"+config.FileName+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&opts.cleanLogs, "clean-logs", false, "remove old log files before starting")
	fs.BoolVarP(&opts.version, "version", "V", false, "display build version")
	fs.BoolVarP(&opts.help, "help", "h", false, "display help information")
	fs.SortFlags = false
	return fs
}

// parseArgs reads flags and at most one script path. Errors are reported by
// the caller.
func parseArgs(args []string) (*options, *pflag.FlagSet, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.script = fs.Arg(0)
	default:
		return nil, fs, errUsage
	}

	return opts, fs, nil
}

// main starts wsh in one of two modes:
// 1. Interactive shell: wsh
// 2. Batch mode: wsh script_file
//
// The process exits with the status of the last command run.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, fs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "wsh: %v\n", err)
		fmt.Fprintln(stderr, "Usage: wsh [flags] [script_file]")
		return 1
	}

	if opts.version {
		fmt.Fprintln(stdout, BUILD_VERSION)
		return 0
	}

	if opts.help {
		printUsage(stdout, fs)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "wsh: %v\n", err)
		return 1
	}

	if opts.cleanLogs {
		freed, err := core.CleanLogFiles()
		if err != nil {
			fmt.Fprintf(stderr, "wsh: failed to clean log files: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "wsh: removed %s of logs\n", humanize.Bytes(uint64(freed)))
		}
	}

	logger, err := initializeLogger(cfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "wsh: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync() // Flush any buffered log entries
	}()

	logger.Info("-------- new wsh session --------", zap.Strings("args", args))

	shellOpts := []core.Option{
		core.WithEnv(environment.OSEnv{}),
		core.WithStreams(redirect.Streams{
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
		}),
		core.WithLogger(logger),
		core.WithDefaultPath(cfg.DefaultPath),
	}
	if opts.script == "" {
		shellOpts = append(shellOpts, core.WithColor(styles.Mode(cfg.Color)))
	}

	auditLog, err := initializeAuditLog(cfg)
	if err != nil {
		logger.Warn("failed to open audit log", zap.String("path", cfg.AuditDB), zap.Error(err))
	} else if auditLog != nil {
		defer func() {
			if err := auditLog.Close(); err != nil {
				logger.Warn("failed to close audit log", zap.Error(err))
			}
		}()
		shellOpts = append(shellOpts, core.WithAuditor(auditLog))
	}

	sh, err := core.NewShell(cfg.HistorySize, shellOpts...)
	if err != nil {
		logger.Error("failed to create shell", zap.Error(err))
		fmt.Fprintf(stderr, "wsh: %v\n", err)
		return 1
	}

	ctx := context.Background()

	// wsh script_file
	if opts.script != "" {
		status, err := core.RunScriptFile(ctx, sh, opts.script, logger)
		if err != nil {
			logger.Error("failed to open script", zap.String("script", opts.script), zap.Error(err))
			fmt.Fprintf(stderr, "wsh: %v\n", err)
		}
		return status
	}

	// wsh
	return core.RunInteractiveShell(ctx, sh, stdin, stdout, cfg.Prompt, logger)
}

func loadConfig(opts *options) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath, true)
	}
	return config.Load(core.ConfigFile(), false)
}

// initializeLogger builds the file logger. The level comes from the config
// file, then WSH_LOG_LEVEL, then --log-level.
func initializeLogger(cfg *config.Config, opts *options) (*zap.Logger, error) {
	fallback, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logLevel := environment.GetLogLevel(environment.OSEnv{}, fallback)

	switch {
	case opts.logLevel != "":
		level, err := zapcore.ParseLevel(opts.logLevel)
		if err != nil {
			return nil, err
		}
		logLevel.SetLevel(level)
	case BUILD_VERSION == "dev":
		logLevel.SetLevel(zap.DebugLevel)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = core.LogFile()
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		"zstd://" + logFile,
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, err
	}

	if err := core.RotateLogFiles(); err != nil {
		logger.Warn("failed to rotate log files", zap.Error(err))
	}

	return logger, nil
}

// initializeAuditLog opens the audit database if one is configured. It
// returns nil when auditing is off.
func initializeAuditLog(cfg *config.Config) (*audit.Log, error) {
	switch cfg.AuditDB {
	case "":
		return nil, nil
	case auditDefault:
		return audit.Open(core.AuditFile())
	default:
		return audit.Open(cfg.AuditDB)
	}
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	header := func(s string) string {
		return styles.HEADER(w, styles.Auto, s)
	}

	fmt.Fprintln(w, header("Usage:")+" wsh [flags] [script_file]")
	fmt.Fprintln(w, "\nA minimal line-oriented shell.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, header("Options:"))
	fmt.Fprint(w, fs.FlagUsages())

	fmt.Fprintln(w)
	fmt.Fprintln(w, header("Builtins:"))
	for _, b := range builtinHelp {
		fmt.Fprintf(w, "  %-28s %s\n", b.usage, b.summary)
	}
}

var builtinHelp = []struct {
	usage   string
	summary string
}{
	{"exit", "Leave the shell with the last status"},
	{"cd [DIR]", "Change directory, $HOME by default"},
	{"export VAR=value", "Set an environment variable"},
	{"local VAR=value", "Set a shell variable"},
	{"vars", "Print shell variables"},
	{"history [N | set N]", "List, replay or resize history"},
	{"ls", "List the current directory"},
}
