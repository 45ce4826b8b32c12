package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"corpusreduce/internal/config"
)

const (
	ExitSuccess           = 0
	ExitInputFailure      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// StdinPath selects standard input as the record source.
const StdinPath = "-"

// ErrHelpRequested is returned by ParseInvocation when --help was given.
var ErrHelpRequested = errors.New("help requested")

// Invocation is the canonical description of one reduction run.
//
// Paths are cleaned; InputPath is StdinPath when records come from standard
// input.
type Invocation struct {
	InputPath   string
	OutputPath  string
	SummaryPath string
	Config      *config.Config
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// flag name -> configuration key
var configFlags = []struct {
	flag string
	key  string
}{
	{"workers", "workers"},
	{"batch-size", "batch_size"},
	{"max-line", "max_line"},
	{"whitespace", "whitespace"},
	{"cardinality", "cardinality"},
	{"order", "order"},
	{"log-level", "log.level"},
	{"log-json", "log.json"},
}

func newRootCommand(out io.Writer, run func(cmd *cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusreduce",
		Short: "Reduce a JSON Lines corpus to one record per equivalence class",
		Long: "corpusreduce classifies every JSON record by the boundary shape of its values\n" +
			"and keeps the first record of each class, with its occurrence count.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 {
				return invalidInvocationf("unexpected positional arguments: %q", strings.Join(args, " "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error { return run(cmd) },
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})

	defaults := config.Default()
	fl := cmd.Flags()
	fl.String("input", StdinPath, "JSON Lines input file, or - for stdin")
	fl.String("output", "", "Reduced corpus output file. Required.")
	fl.String("summary", "", "Summary JSON output file (optional)")
	fl.String("config", "", "YAML configuration file (optional)")
	fl.String("env-file", "", "dotenv file with CORPUSREDUCE_* settings (optional)")
	fl.Int("workers", defaults.Workers, "Parallel workers; 1 reduces serially")
	fl.Int("batch-size", defaults.BatchSize, "Records per parallel batch")
	fl.Int("max-line", defaults.MaxLine, "Largest accepted input line, in bytes")
	fl.String("whitespace", defaults.Whitespace, "Whitespace predicate: unicode|ascii")
	fl.Bool("cardinality", defaults.Cardinality, "Distinguish empty, single and multi-element arrays")
	fl.String("order", defaults.Order, "Output order: discovery|id")
	fl.String("log-level", defaults.Log.Level, "Log level: debug|info|warn|error|disabled")
	fl.Bool("log-json", defaults.Log.JSON, "Emit logs as JSON")
	return cmd
}

// ParseInvocation parses CLI arguments into a canonical Invocation.
//
// Flags override CORPUSREDUCE_* environment variables, which override the
// --env-file entries, the --config file and the built-in defaults, in that
// order. Only flags that were set explicitly take part.
func ParseInvocation(args []string, out io.Writer) (Invocation, error) {
	var inv Invocation
	parsed := false
	cmd := newRootCommand(out, func(cmd *cobra.Command) error {
		var err error
		inv, err = invocationFromFlags(cmd)
		parsed = true
		return err
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var invErr *InvocationError
		if errors.As(err, &invErr) {
			return Invocation{}, err
		}
		return Invocation{}, invalidInvocationf("%v", err)
	}
	if !parsed {
		return Invocation{}, ErrHelpRequested
	}
	return inv, nil
}

func invocationFromFlags(cmd *cobra.Command) (Invocation, error) {
	fl := cmd.Flags()
	input, _ := fl.GetString("input")
	output, _ := fl.GetString("output")
	summary, _ := fl.GetString("summary")

	if strings.TrimSpace(output) == "" {
		return Invocation{}, invalidInvocationf("--output is required")
	}
	if strings.TrimSpace(input) == "" {
		return Invocation{}, invalidInvocationf("--input must not be empty")
	}

	inv := Invocation{
		InputPath:  cleanPath(input),
		OutputPath: filepath.Clean(output),
	}
	if strings.TrimSpace(summary) != "" {
		inv.SummaryPath = filepath.Clean(summary)
	}
	if inv.InputPath == inv.OutputPath {
		return Invocation{}, invalidInvocationf("--input and --output must differ (got %q)", inv.OutputPath)
	}
	if inv.SummaryPath != "" && (inv.SummaryPath == inv.OutputPath || inv.SummaryPath == inv.InputPath) {
		return Invocation{}, invalidInvocationf("--summary must differ from --input and --output (got %q)", inv.SummaryPath)
	}

	overrides := make(map[string]any)
	for _, cf := range configFlags {
		if fl.Changed(cf.flag) {
			overrides[cf.key] = fl.Lookup(cf.flag).Value.String()
		}
	}
	configFile, _ := fl.GetString("config")
	envFile, _ := fl.GetString("env-file")
	cfg, err := config.LoadSources(config.Sources{
		File:      configFile,
		EnvFile:   envFile,
		Overrides: overrides,
	})
	if err != nil {
		return Invocation{}, &InvocationError{ExitCode: ExitConfigError, Message: err.Error()}
	}
	inv.Config = cfg
	return inv, nil
}

func cleanPath(p string) string {
	if p == StdinPath {
		return p
	}
	return filepath.Clean(p)
}

// ExitCode extracts a semantic exit code from an error.
// Unknown errors map to ExitInternalError.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrHelpRequested) {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	return ExitInternalError
}
