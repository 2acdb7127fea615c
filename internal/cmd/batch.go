package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/netroute/netroute/internal/dryrun"
	"github.com/netroute/netroute/internal/outfmt"
	"github.com/netroute/netroute/internal/router"
)

// DefaultConcurrency is the default number of concurrent calls
const DefaultConcurrency = 5

// BatchResult is the outcome of one endpoint file.
type BatchResult struct {
	File     string `json:"file"`
	OK       bool   `json:"ok"`
	Kind     string `json:"kind,omitempty"`
	Status   int    `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error,omitempty"`
	Value    any    `json:"value,omitempty"`
}

func newBatchCmd() *cobra.Command {
	var (
		baseURL     string
		concurrency int64
		timeout     time.Duration
		progress    bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Send every endpoint file concurrently",
		Long: `Send every endpoint file concurrently and print one result per file,
in the order the files were given. Exits non-zero when any call fails.`,
		Example: `  netroute batch endpoints/*.yaml
  netroute batch -o jsonl --concurrency 10 a.yaml b.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, files []string) error {
			r := newRouter(cmd, timeout)
			var errOut io.Writer
			if progress {
				errOut = cmd.ErrOrStderr()
			}
			results := runBatch(cmd.Context(), files, concurrency, errOut, func(ctx context.Context, file string) (any, error) {
				ep, err := buildDescriptor(&callOptions{BaseURL: baseURL, File: file})
				if err != nil {
					return nil, err
				}
				if dryrun.IsEnabled(ctx) {
					return dryrun.For(ep)
				}
				return router.Fetch[any](ctx, r, ep)
			})
			if err := printBatchResults(cmd, results); err != nil {
				return err
			}
			if _, failed := countResults(results); failed > 0 {
				return &batchError{failed: failed, total: len(results)}
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Override the base URL of every file")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum calls in flight")
	cmd.Flags().DurationVar(&timeout, "timeout", router.DefaultTimeout, "Per-call timeout")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	return cmd
}

// batchError is returned after the per-file results are printed.
type batchError struct {
	failed, total int
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d calls failed", e.failed, e.total)
}

// runBatch runs operation for every file with bounded parallelism. Results
// keep the input order; files skipped because ctx ended are reported as
// canceled.
func runBatch(
	ctx context.Context,
	files []string,
	concurrency int64,
	errOut io.Writer,
	operation func(ctx context.Context, file string) (any, error),
) []BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	var mu sync.Mutex
	results := make([]BatchResult, len(files))
	total := len(files)
	var done int64

	g, ctx := errgroup.WithContext(ctx)

	for i, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = resultFor(file, nil, err)
				return nil
			}
			defer sem.Release(1)

			value, err := operation(ctx, file)
			results[i] = resultFor(file, value, err)

			current := atomic.AddInt64(&done, 1)
			mu.Lock()
			_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
			mu.Unlock()

			return nil // individual failures never stop the group
		})
	}

	_ = g.Wait()
	if total > 0 {
		_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d\n", atomic.LoadInt64(&done), total)
	}
	return results
}

func resultFor(file string, value any, err error) BatchResult {
	if err == nil {
		return BatchResult{File: file, OK: true, Value: value}
	}
	desc := describeError(err)
	if desc.Kind == "error" && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		desc.Kind = router.KindCanceled.String()
	}
	return BatchResult{
		File:     file,
		Kind:     desc.Kind,
		Status:   desc.StatusCode,
		Category: desc.Category,
		Error:    desc.Message,
	}
}

// countResults returns success and failure counts
func countResults(results []BatchResult) (success, failure int) {
	for _, r := range results {
		if r.OK {
			success++
		} else {
			failure++
		}
	}
	return
}

func printBatchResults(cmd *cobra.Command, results []BatchResult) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch outfmt.ModeFromContext(ctx) {
	case outfmt.JSONL:
		return outfmt.WriteJSONLines(out, results, outfmt.GetQuery(ctx))
	case outfmt.JSON:
		return outfmt.WriteJSONFiltered(out, results, outfmt.GetQuery(ctx), outfmt.IsCompact(ctx))
	}

	f := newFormatter(cmd)
	f.StartTable("FILE", "RESULT", "DETAIL")
	for _, r := range results {
		if r.OK {
			f.Row(r.File, "ok", summarize(r.Value))
			continue
		}
		result := r.Kind
		if r.Status != 0 {
			result = fmt.Sprintf("%s %d", r.Kind, r.Status)
		}
		f.Row(r.File, result, r.Error)
	}
	if err := f.EndTable(); err != nil {
		return err
	}

	success, failure := countResults(results)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d succeeded, %d failed\n", success, failure)
	return nil
}

// summarize renders a decoded value on one line for the text table.
func summarize(v any) string {
	const limit = 60
	var s string
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		s = v
	case map[string]any:
		s = fmt.Sprintf("object (%d keys)", len(v))
	case []any:
		s = fmt.Sprintf("array (%d items)", len(v))
	default:
		s = fmt.Sprint(v)
	}
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}
