// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for the OCR gateway client.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/ocrmark/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second


// Retryable reports whether a response status is worth retrying: rate
// limiting and the transient gateway errors an upstream proxy produces.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request and retries retryable responses with
// exponential backoff: RetryBaseDelay, then doubling each attempt.
//
// A maxRetries of 0 sends the request once; a negative value uses
// types.DefaultMaxRetries. Requests with a body must
// carry GetBody (set by http.NewRequest for in-memory readers) so the body
// can be replayed. On each retry the previous response body is drained and
// closed before sleeping. If the context is cancelled during a backoff wait
// the function returns ctx.Err(). After exhausting retries the last
// response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log logrus.FieldLogger) (*http.Response, error) {
	if maxRetries < 0 {
		maxRetries = types.DefaultMaxRetries
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries: return the last response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		log.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"url":     req.URL.Path,
			"backoff": backoff,
			"attempt": fmt.Sprintf("%d/%d", attempt+1, maxRetries),
		}).Warn("retryable response, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
