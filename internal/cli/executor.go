package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"corpusreduce/internal/config"
	"corpusreduce/internal/fixture"
	"corpusreduce/internal/jsonrec"
	"corpusreduce/internal/logger"
	"corpusreduce/internal/metrics"
	"corpusreduce/internal/reduce"
	"corpusreduce/internal/trace"
)

type CLIResult struct {
	ExitCode int
	Summary  fixture.Summary
}

// Execute reduces the records named by inv and writes the corpus files.
//
// stdin is read when inv.InputPath is StdinPath. Outputs are only written
// after the whole input has been consumed without error.
func Execute(ctx context.Context, inv Invocation, stdin io.Reader) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			res = CLIResult{ExitCode: ExitInternalError}
			execErr = fmt.Errorf("panic: %v", r)
		}
	}()

	cfg := inv.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(nil); err != nil {
			res.ExitCode = ExitConfigError
			return res, err
		}
	}

	in, closeInput, err := openInput(inv.InputPath, stdin)
	if err != nil {
		res.ExitCode = ExitInputFailure
		return res, err
	}
	defer closeInput()

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return res, err
	}

	classifier := jsonrec.New(jsonrec.Options{
		Whitespace:  cfg.WhitespaceMode(),
		Cardinality: cfg.Cardinality,
	})
	scanner := jsonrec.NewScanner(in, cfg.MaxLine)

	log.Info("reducing corpus",
		"input", inv.InputPath,
		"workers", cfg.Workers,
		"whitespace", cfg.Whitespace,
		"cardinality", cfg.Cardinality,
	)
	start := time.Now()

	var result *reduce.Result[jsonrec.Record]
	if cfg.Workers == 1 {
		result, err = reduce.ReduceContext(ctx, scanner.All(), classifier, reduce.WithObserver(collector))
	} else {
		result, err = reduce.ReduceParallel(ctx, scanner.All(), classifier,
			reduce.WithObserver(collector),
			reduce.WithWorkers(cfg.Workers),
			reduce.WithBatchSize(cfg.BatchSize),
		)
	}
	if serr := scanner.Err(); serr != nil {
		res.ExitCode = ExitInputFailure
		return res, fmt.Errorf("read %s: %w", inv.InputPath, serr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			res.ExitCode = ExitInputFailure
		}
		return res, err
	}

	entries := result.Entries()
	if cfg.Order == config.OrderID {
		entries = result.SortedByID()
	}
	if err := fixture.WriteCorpus(inv.OutputPath, entries); err != nil {
		return res, fmt.Errorf("write corpus: %w", err)
	}

	digest, err := trace.FromResult(result).Hash()
	if err != nil {
		return res, fmt.Errorf("trace: %w", err)
	}
	summary := fixture.Summary{Total: result.Total, Distinct: result.Distinct(), Digest: digest}
	if inv.SummaryPath != "" {
		if err := fixture.WriteSummary(inv.SummaryPath, summary); err != nil {
			return res, fmt.Errorf("write summary: %w", err)
		}
	}

	log.Info("corpus reduced",
		"records", humanize.Comma(int64(summary.Total)),
		"classes", humanize.Comma(int64(summary.Distinct)),
		"lines", humanize.Comma(int64(scanner.Lines())),
		"output", inv.OutputPath,
		"digest", digest[:12],
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	logMetrics(log, reg)

	res.ExitCode = ExitSuccess
	res.Summary = summary
	return res, nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == StdinPath {
		if stdin == nil {
			return nil, nil, errors.New("no standard input available")
		}
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func logMetrics(log logger.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		log.Warn("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			log.Debug("metric", "name", mf.GetName(), "value", v)
		}
	}
}
