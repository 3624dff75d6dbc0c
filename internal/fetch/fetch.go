// Package fetch retrieves the raw airplay log over HTTP.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error reports a failed fetch: either a transport failure (Err set) or a
// non-success HTTP status (Status set). Any fetch failure is run-fatal.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher downloads the source file.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher. A zero timeout gets a 30s default.
func New(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url and returns the response body as text. Non-2xx
// responses and transport failures return a *Error.
func (f *Fetcher) Fetch(url string) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "csv-import/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	return string(body), nil
}
