package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siriusmart/scrapyard/pkg/domain"
	"github.com/siriusmart/scrapyard/pkg/store"
)

// writeScript writes an executable shell script to dir and returns its path.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "extractor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)) //nolint:gosec // test fixture
	return path
}

func newRunner(t *testing.T, requestTimeout, scriptTimeout time.Duration) (*Runner, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	return New(st, requestTimeout, scriptTimeout), st
}

func TestRunSingleInvocationNoContinuation(t *testing.T) {
	script := writeScript(t, t.TempDir(), `echo '{"items":[{"title":"item1"}]}'`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)

	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 10, Extractor: []string{script}}

	items, err := runner.Run(context.Background(), feed, nil, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item1", items[0].Title)
}

func TestRunFollowsContinuationChain(t *testing.T) {
	script := writeScript(t, t.TempDir(), `
args="$1"
if grep -q '"url":"https://example.com/page2"' "$args"; then
  echo '{"items":[{"title":"item2"}]}'
else
  echo '{"items":[{"title":"item1"}],"continuation":"https://example.com/page2"}'
fi
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 10, Extractor: []string{script}}

	items, err := runner.Run(context.Background(), feed, nil, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item1", items[0].Title)
	assert.Equal(t, "item2", items[1].Title)
}

func TestRunStopsOnceMaxLengthReached(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "calls")
	script := writeScript(t, dir, `
echo x >> `+counter+`
echo '{"items":[{"title":"item1"},{"title":"item2"}],"continuation":"https://example.com/page2"}'
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 2, Extractor: []string{script}}

	items, err := runner.Run(context.Background(), feed, nil, 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	data, err := os.ReadFile(counter) //nolint:gosec // test fixture
	require.NoError(t, err)
	calls := len(strings.Fields(strings.TrimSpace(string(data))))
	assert.Equal(t, 1, calls, "extractor must not be invoked again once max-length is reached")
}

func TestRunFetchFalseSkipsHTTPGet(t *testing.T) {
	script := writeScript(t, t.TempDir(), `
args="$1"
if grep -q '"webstr":null' "$args"; then
  echo '{"items":[{"title":"no-fetch-confirmed"}]}'
else
  echo '{"items":[]}'
fi
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://unreachable.invalid", MaxLength: 10, Fetch: false, Extractor: []string{script}}

	items, err := runner.Run(context.Background(), feed, nil, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "no-fetch-confirmed", items[0].Title)
}

func TestRunFetchTruePassesBodyThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello-from-server"))
	}))
	defer srv.Close()

	script := writeScript(t, t.TempDir(), `
args="$1"
if grep -q 'hello-from-server' "$args"; then
  echo '{"items":[{"title":"got-body"}]}'
else
  echo '{"items":[]}'
fi
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: srv.URL, MaxLength: 10, Fetch: true, Extractor: []string{script}}

	items, err := runner.Run(context.Background(), feed, nil, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "got-body", items[0].Title)
}

func TestRunDeserializeFailureIncludesStderr(t *testing.T) {
	script := writeScript(t, t.TempDir(), `
echo "diagnostic message" 1>&2
echo 'not valid json'
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 10, Extractor: []string{script}}

	_, err := runner.Run(context.Background(), feed, nil, 5)
	require.Error(t, err)

	var extractorErr *Error
	require.True(t, errors.As(err, &extractorErr))
	assert.Equal(t, DeserializeFailed, extractorErr.Kind)
	assert.Contains(t, err.Error(), "diagnostic message")
}

func TestRunScriptTimeout(t *testing.T) {
	script := writeScript(t, t.TempDir(), `sleep 2; echo '{"items":[]}'`)
	runner, _ := newRunner(t, time.Second, 100*time.Millisecond)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 10, Extractor: []string{script}}

	_, err := runner.Run(context.Background(), feed, nil, 5)
	require.Error(t, err)

	var extractorErr *Error
	require.True(t, errors.As(err, &extractorErr))
	assert.Equal(t, FetchFailed, extractorErr.Kind)
}

func TestRunPreexistsStripsContent(t *testing.T) {
	script := writeScript(t, t.TempDir(), `
args="$1"
if grep -q '"content"' "$args"; then
  echo '{"items":[{"title":"content-leaked"}]}'
else
  echo '{"items":[]}'
fi
`)
	runner, _ := newRunner(t, time.Second, 5*time.Second)
	feed := domain.FeedOption{Label: "feed-a", Origin: "https://example.com", MaxLength: 10, Extractor: []string{script}}

	existing := []domain.Item{{Title: "old", Content: "secret body"}}
	items, err := runner.Run(context.Background(), feed, existing, 5)
	require.NoError(t, err)
	require.Len(t, items, 0, "preexists must have content stripped before being sent to the extractor")
}
