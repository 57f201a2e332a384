package logx

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// RoundTripperOpts contains options for client logger.
type RoundTripperOpts struct {
	Level         slog.Level
	SecretHeaders []string
}

// LoggingRoundTripper logs every client request with a trimmed copy of
// both bodies; headers listed in SecretHeaders are masked.
func LoggingRoundTripper(lg *slog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var reqBody string
			req.Body, reqBody = copyAndTrim(req.Body)

			lg.LogAttrs(req.Context(), opts.Level, "request sent",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Any("headers", maskHeaders(req.Header, opts.SecretHeaders)),
				slog.String("body", reqBody),
			)

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				lg.LogAttrs(req.Context(), opts.Level, "request failed",
					slog.Any("elapsed", elapsed),
					slog.Any("err", err),
				)
				return resp, err
			}

			var respBody string
			resp.Body, respBody = copyAndTrim(resp.Body)

			lg.LogAttrs(req.Context(), opts.Level, "response received",
				slog.Int("status", resp.StatusCode),
				slog.Any("headers", maskHeaders(resp.Header, opts.SecretHeaders)),
				slog.String("body", respBody),
				slog.Any("elapsed", elapsed),
			)

			return resp, nil
		})
	}
}

func maskHeaders(h http.Header, secret []string) map[string]string {
	result := map[string]string{}
	for k, vals := range h {
		if lo.Contains(secret, k) {
			result[k] = "***"
			continue
		}
		result[k] = strings.Join(vals, ",")
	}
	return result
}

const trimBodyAt = 1024

// copyAndTrim reads the first portion of the body for logging and returns
// a reader that still yields the full body to the caller.
func copyAndTrim(r io.ReadCloser) (rd io.ReadCloser, result string) {
	if r == nil {
		return nil, ""
	}

	buf := &bytes.Buffer{}
	read, err := io.CopyN(buf, r, trimBodyAt)

	result = buf.String()
	if read == trimBodyAt {
		result += "..."
	}
	result = strings.NewReplacer("\n", "", "\t", "").Replace(result)

	if err != nil {
		// body exhausted, hand the copy back
		return io.NopCloser(bytes.NewReader(buf.Bytes())), result
	}

	return &closer{rd: io.MultiReader(buf, r), closeFn: r.Close}, result
}

type closer struct {
	rd      io.Reader
	closeFn func() error
}

func (c *closer) Read(p []byte) (n int, err error) { return c.rd.Read(p) }
func (c *closer) Close() error                     { return c.closeFn() }
