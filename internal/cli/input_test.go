package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusreduce/internal/config"
)

func TestParseInvocation_Defaults(t *testing.T) {
	inv, err := ParseInvocation([]string{"--output", "out/corpus.jsonl"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, StdinPath, inv.InputPath)
	assert.Equal(t, filepath.Clean("out/corpus.jsonl"), inv.OutputPath)
	assert.Empty(t, inv.SummaryPath)
	require.NotNil(t, inv.Config)
	assert.Equal(t, config.OrderDiscovery, inv.Config.Order)
	assert.Equal(t, "unicode", inv.Config.Whitespace)
	assert.False(t, inv.Config.Cardinality)
}

func TestParseInvocation_CleansPaths(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--input", "data//in.jsonl",
		"--output", "./out/../out/corpus.jsonl",
		"--summary", "out/./summary.json",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean("data/in.jsonl"), inv.InputPath)
	assert.Equal(t, filepath.Clean("out/corpus.jsonl"), inv.OutputPath)
	assert.Equal(t, filepath.Clean("out/summary.json"), inv.SummaryPath)
}

func TestParseInvocation_InvalidInvocations(t *testing.T) {
	cases := map[string][]string{
		"missing output":   {"--input", "in.jsonl"},
		"unknown flag":     {"--output", "o.jsonl", "--frobnicate"},
		"positional":       {"--output", "o.jsonl", "extra"},
		"input is output":  {"--input", "same.jsonl", "--output", "./same.jsonl"},
		"summary collides": {"--output", "o.jsonl", "--summary", "o.jsonl"},
		"empty input":      {"--input", " ", "--output", "o.jsonl"},
		"bad int flag":     {"--output", "o.jsonl", "--workers", "many"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInvocation(args, io.Discard)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidInvocation, ExitCode(err))
		})
	}
}

func TestParseInvocation_ConfigErrors(t *testing.T) {
	cases := map[string][]string{
		"whitespace": {"--output", "o.jsonl", "--whitespace", "tabs"},
		"order":      {"--output", "o.jsonl", "--order", "random"},
		"workers":    {"--output", "o.jsonl", "--workers", "0"},
		"batch size": {"--output", "o.jsonl", "--batch-size", "-1"},
		"log level":  {"--output", "o.jsonl", "--log-level", "loud"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInvocation(args, io.Discard)
			require.Error(t, err)
			assert.Equal(t, ExitConfigError, ExitCode(err))
		})
	}
}

func TestParseInvocation_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("CORPUSREDUCE_WORKERS", "3")
	t.Setenv("CORPUSREDUCE_ORDER", "id")
	t.Setenv("CORPUSREDUCE_LOG_LEVEL", "debug")

	inv, err := ParseInvocation([]string{"--output", "o.jsonl", "--workers", "5"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Config.Workers)
	assert.Equal(t, config.OrderID, inv.Config.Order)
	assert.Equal(t, "debug", inv.Config.Log.Level)

	inv, err = ParseInvocation([]string{"--output", "o.jsonl"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Config.Workers)
}

func TestParseInvocation_ConfigFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "corpusreduce.yaml")
	envPath := filepath.Join(dir, "corpusreduce.env")
	require.NoError(t, os.WriteFile(cfgPath, []byte("whitespace: ascii\nbatch_size: 8\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("CORPUSREDUCE_BATCH_SIZE=16\n"), 0o644))

	inv, err := ParseInvocation([]string{
		"--output", "o.jsonl",
		"--config", cfgPath,
		"--env-file", envPath,
	}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "ascii", inv.Config.Whitespace)
	assert.Equal(t, 16, inv.Config.BatchSize)

	_, err = ParseInvocation([]string{"--output", "o.jsonl", "--config", filepath.Join(dir, "missing.yaml")}, io.Discard)
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestParseInvocation_BoolFlags(t *testing.T) {
	inv, err := ParseInvocation([]string{"--output", "o.jsonl", "--cardinality", "--log-json"}, io.Discard)
	require.NoError(t, err)
	assert.True(t, inv.Config.Cardinality)
	assert.True(t, inv.Config.Log.JSON)
}

func TestParseInvocation_Help(t *testing.T) {
	_, err := ParseInvocation([]string{"--help"}, io.Discard)
	require.ErrorIs(t, err, ErrHelpRequested)
	assert.Equal(t, ExitSuccess, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitInternalError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitInputFailure, ExitCode(&InvocationError{ExitCode: ExitInputFailure}))
	assert.Equal(t, ExitInvalidInvocation, ExitCode(&InvocationError{}))
}
