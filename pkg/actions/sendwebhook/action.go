// Package sendwebhook posts the full trigger context as JSON to the URL
// named in the rendered details. The details must contain a "URL:" line;
// any other lines are ignored.
package sendwebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coverly/automation/pkg/models"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrMissingURL is returned when the rendered details carry no URL: line.
	ErrMissingURL = errors.New("no URL line in webhook details")
	// ErrInvalidURL is returned when the URL line does not parse as an
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid webhook URL")
)

type Action struct {
	details string
	client  *http.Client
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionSendWebhook)

	target, err := ExtractURL(a.details)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(execCtx.Context)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)

		closeErr := resp.Body.Close()
		if closeErr != nil {
			logger.ErrorContext(ctx, "failed to close webhook response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.InfoContext(ctx, "webhook delivered", "url", target, "status", resp.StatusCode)

	return nil
}

// ExtractURL finds the "URL:" line in the details and validates that it
// carries an absolute http or https URL.
func ExtractURL(details string) (string, error) {
	for _, line := range strings.Split(details, "\n") {
		trimmed := strings.TrimSpace(line)

		rest, found := cutPrefixFold(trimmed, "URL:")
		if !found {
			continue
		}

		raw := strings.TrimSpace(rest)

		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
		}

		return raw, nil
	}

	return "", ErrMissingURL
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}

	return s[len(prefix):], true
}
