package crawl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gocolly/colly/v2"

	"github.com/ROGMARQ14/Striking-Distance-Keyword-Analysis/models"
)

// ErrTimeout indicates the per-request timeout elapsed.
type ErrTimeout struct {
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Errorf("timeout: %w", e.Err).Error()
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates a network connectivity failure.
type ErrConnection struct {
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Errorf("connection: %w", e.Err).Error()
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrBlocked indicates the target refused the request (403, 429, robots.txt).
type ErrBlocked struct {
	Err error
}

func (e ErrBlocked) Error() string {
	return fmt.Errorf("blocked: %w", e.Err).Error()
}

func (e ErrBlocked) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a missing resource (HTTP 404/410).
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return fmt.Errorf("not_found: %w", e.Err).Error()
}

func (e ErrNotFound) Unwrap() error {
	return e.Err
}

// classifyError maps transport errors and HTTP statuses onto the typed
// taxonomy. Timeouts are checked before generic connection failures because
// dial timeouts satisfy both.
func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	if errors.Is(err, colly.ErrRobotsTxtBlocked) {
		return ErrBlocked{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden, http.StatusTooManyRequests, http.StatusUnavailableForLegalReasons:
			return ErrBlocked{Err: wrapped}
		case http.StatusNotFound, http.StatusGone:
			return ErrNotFound{Err: wrapped}
		}
	}

	if err == nil {
		return fmt.Errorf("http status %d", statusCode)
	}
	return err
}

// outcomeKind converts a classified error to the CrawlOutcome variant.
func outcomeKind(err error) models.OutcomeKind {
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return models.OutcomeTimedOut
	}
	var blocked ErrBlocked
	if errors.As(err, &blocked) {
		return models.OutcomeBlocked
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return models.OutcomeNotFound
	}
	return models.OutcomeNetworkError
}
