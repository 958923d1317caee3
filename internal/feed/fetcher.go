package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fetcher reads the system map dataset from a URL or a local file
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch returns the raw payload at urlOrPath. Anything not starting with
// http:// or https:// is read from disk.
func (f *Fetcher) Fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		data, err := os.ReadFile(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", urlOrPath, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}

	return io.ReadAll(resp.Body)
}

// WriteDump saves payload to path indented by four spaces, prefixed with a
// UTF-8 byte order mark. Escaped characters in strings are written out
// literally, so station names stay readable in the dump.
func WriteDump(path string, payload []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimPrefix(payload, utf8BOM), "", "    "); err != nil {
		return fmt.Errorf("failed to indent payload: %w", err)
	}

	readable, err := unescapeStrings(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to rewrite payload strings: %w", err)
	}

	encoded, err := unicode.UTF8BOM.NewEncoder().Bytes(readable)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// unescapeStrings re-encodes every string literal of a valid JSON document
// that contains an escape sequence. Only the characters JSON requires to be
// escaped stay escaped. Everything outside string literals is copied as is.
func unescapeStrings(doc []byte) ([]byte, error) {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)

	for i := 0; i < len(doc); {
		if doc[i] != '"' {
			out.WriteByte(doc[i])
			i++
			continue
		}

		end, escaped := i+1, false
		for ; end < len(doc) && doc[end] != '"'; end++ {
			if doc[end] == '\\' {
				escaped = true
				end++
			}
		}
		if end >= len(doc) {
			return nil, fmt.Errorf("unterminated string at offset %d", i)
		}

		literal := doc[i : end+1]
		i = end + 1
		if !escaped {
			out.Write(literal)
			continue
		}

		var s string
		if err := json.Unmarshal(literal, &s); err != nil {
			return nil, err
		}
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		// Encode terminates each value with a newline
		out.Truncate(out.Len() - 1)
	}

	return out.Bytes(), nil
}
