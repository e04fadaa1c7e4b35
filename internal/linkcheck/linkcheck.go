// Package linkcheck probes normalized entries for reachability before they
// are bookmarked.
package linkcheck

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

// Status is the health of one URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx
	Dead                      // 404 or 410
	Unreachable               // network failure or any other status
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Result is the outcome for entries[Index].
type Result struct {
	Index      int
	Entry      model.Entry
	Status     Status
	StatusCode int
	Error      string
}

// ProgressFunc is called after each check with the number done so far.
type ProgressFunc func(completed, total int)

// Options tune CheckEntries. Zero values fall back to the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains turn a 404 into "possibly private" for hosts that hide
	// private pages, such as github.com. Subdomains match too.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client
}

// CheckEntries checks every entry with a pool of workers. Results are
// returned in entry order.
func CheckEntries(ctx context.Context, entries []model.Entry, opts Options) []Result {
	if len(entries) == 0 {
		return nil
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = newClient(opts.Timeout)
	}

	exclude := make(map[string]bool, len(opts.ExcludeDomains))
	for _, d := range opts.ExcludeDomains {
		exclude[strings.ToLower(d)] = true
	}

	results := make([]Result, len(entries))
	jobs := make(chan int, len(entries))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = check(ctx, client, entries[idx], exclude)
				results[idx].Index = idx

				if opts.OnProgress != nil {
					progressMu.Lock()
					completed++
					opts.OnProgress(completed, len(entries))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range entries {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func check(ctx context.Context, client *http.Client, entry model.Entry, exclude map[string]bool) Result {
	result := Result{Entry: entry}

	// HEAD first; some servers reject it, so GET is the fallback.
	resp, err := do(ctx, client, http.MethodHead, entry.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = do(ctx, client, http.MethodGet, entry.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = describeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if excluded(entry.URL, exclude) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

func excluded(rawURL string, exclude map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range exclude {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// describeError folds transport errors into short categories.
func describeError(msg string) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return msg
	}
}
