// Package extractor implements the Extractor Runner (spec.md §4.3): it
// marshals an argument document, spawns the configured extractor
// subprocess, enforces the two wall-clock timeouts, and follows
// continuation URLs up to the feed's length quota.
//
// The original Rust implementation recurses (original_source/src/options/feeds.rs
// ::fetch_items_recurse); spec.md §9 notes the recursion isn't required by
// the semantics and can be rewritten as a loop over a work variable to
// avoid stack growth on long continuation chains. Run below does that.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/siriusmart/scrapyard/pkg/domain"
	"github.com/siriusmart/scrapyard/pkg/store"
)

// Runner invokes the extractor subprocess on behalf of the Fetch Pipeline.
type Runner struct {
	store          *store.Store
	httpClient     *http.Client
	requestTimeout time.Duration
	scriptTimeout  time.Duration
}

// New builds a Runner. requestTimeout bounds the HTTP GET; scriptTimeout
// bounds the extractor subprocess wait (spec.md §9's Open Question is
// resolved here: script-timeout is honoured on the subprocess, not
// conflated with request-timeout).
func New(st *store.Store, requestTimeout, scriptTimeout time.Duration) *Runner {
	return &Runner{
		store:          st,
		httpClient:     &http.Client{},
		requestTimeout: requestTimeout,
		scriptTimeout:  scriptTimeout,
	}
}

// Run fetches the origin URL (unless feed.Fetch is false), invokes the
// extractor, and follows any continuation chain until either the collected
// items reach feed.MaxLength or the extractor stops supplying a
// continuation. fetchLength only sets the "lengthLeft" value passed to the
// extractor. existing is the prior cache, passed to the extractor as
// "preexists" with content stripped (spec.md §4.3).
func (r *Runner) Run(ctx context.Context, feed domain.FeedOption, existing []domain.Item, fetchLength int) ([]domain.Item, error) {
	items := make([]domain.Item, 0, fetchLength)
	url := feed.Origin

	for {
		webstr, err := r.fetchBody(ctx, feed, url)
		if err != nil {
			return items, err
		}

		preexists := make([]domain.Item, 0, len(existing)+len(items))
		for _, it := range existing {
			preexists = append(preexists, it.WithoutContent())
		}
		for _, it := range items {
			preexists = append(preexists, it.WithoutContent())
		}

		lengthLeft := fetchLength - len(items)
		if lengthLeft < 0 {
			lengthLeft = 0
		}

		arg := domain.ItemizerArg{
			URL:        url,
			WebStr:     webstr,
			Preexists:  preexists,
			LengthLeft: lengthLeft,
			FeedOption: feed,
		}

		res, err := r.invoke(ctx, feed.Label, feed.Extractor, arg)
		if err != nil {
			return items, err
		}

		items = append(items, res.Items...)

		if feed.MaxLength > 0 && len(items) >= feed.MaxLength {
			return items, nil
		}
		if res.Continuation == nil {
			return items, nil
		}
		url = *res.Continuation
	}
}

// fetchBody performs the HTTP GET step of spec.md §4.3, or returns a nil
// string when feed.Fetch is false (the extractor is expected to fetch its
// own data in that mode).
func (r *Runner) fetchBody(ctx context.Context, feed domain.FeedOption, url string) (*string, error) {
	if !feed.Fetch {
		return nil, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, New(IOFailed, fmt.Errorf("build request for %s: %w", url, err))
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, New(Timeout, fmt.Errorf("GET %s: %w", url, err))
		}
		return nil, New(IOFailed, fmt.Errorf("GET %s: %w", url, err))
	}
	defer resp.Body.Close() //nolint:errcheck // response already consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, New(IOFailed, fmt.Errorf("read body of %s: %w", url, err))
	}

	s := string(body)
	return &s, nil
}

// invoke writes the argument document, spawns the extractor subprocess
// with stdout/stderr redirected to files, waits bounded by scriptTimeout,
// and parses the reply (spec.md §4.3 steps 2-6).
func (r *Runner) invoke(ctx context.Context, label string, extractor []string, arg domain.ItemizerArg) (domain.ItemizerRes, error) {
	var res domain.ItemizerRes

	if err := r.store.EnsureDir(label); err != nil {
		return res, New(IOFailed, err)
	}

	argBytes, err := json.Marshal(arg)
	if err != nil {
		return res, New(IOFailed, fmt.Errorf("marshal extractor argument: %w", err))
	}
	argsPath := r.store.ArgsPath(label)
	if err := os.WriteFile(argsPath, argBytes, 0o644); err != nil { //nolint:gosec // scratch file under the store root
		return res, New(IOFailed, fmt.Errorf("write %s: %w", argsPath, err))
	}

	stdoutPath, stderrPath := r.store.StdoutPath(label), r.store.StderrPath(label)
	stdoutFile, err := os.OpenFile(stdoutPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return res, New(IOFailed, fmt.Errorf("open %s: %w", stdoutPath, err))
	}
	defer stdoutFile.Close() //nolint:errcheck // closed after subprocess exits
	stderrFile, err := os.OpenFile(stderrPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return res, New(IOFailed, fmt.Errorf("open %s: %w", stderrPath, err))
	}
	defer stderrFile.Close() //nolint:errcheck // closed after subprocess exits

	runCtx, cancel := context.WithTimeout(ctx, r.scriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, extractor[0], append(append([]string{}, extractor[1:]...), argsPath)...)
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, New(FetchFailed, fmt.Errorf("extractor for %s timed out after %s", label, r.scriptTimeout))
	}
	// exit code is ignored per spec.md §6 — only stdout parse success matters,
	// so runErr itself isn't fatal here.
	_ = runErr

	stdout, err := os.ReadFile(stdoutPath) //nolint:gosec // scratch file under the store root
	if err != nil {
		return res, New(IOFailed, fmt.Errorf("read %s: %w", stdoutPath, err))
	}

	if err := json.Unmarshal(stdout, &res); err != nil {
		stderr, _ := os.ReadFile(stderrPath) //nolint:gosec,errcheck // best-effort diagnostics
		return res, New(DeserializeFailed, fmt.Errorf(
			"could not deserialize extractor output for %s: %w\nstdout:\n%s\nstderr:\n%s",
			label, err, string(stdout), string(stderr)))
	}

	return res, nil
}
