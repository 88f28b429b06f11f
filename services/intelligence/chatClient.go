// File: services/intelligence/chatClient.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medibot/models"
	"medibot/utils"

	"go.uber.org/zap"
)

// RemoteClassifier calls the Intent Classification Service at BaseURL/chat.
type RemoteClassifier struct {
	BaseURL string
	HTTP    *http.Client
	logger  *zap.Logger
}

func NewRemoteClassifier(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteClassifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Classify posts {message} and decodes the service's answer. Transport failures,
// non-2xx answers and answers flagged unsuccessful all fail.
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (*models.Classification, error) {
	payload, err := json.Marshal(models.ChatRequest{Message: text})
	if err != nil {
		return nil, &ClassificationError{Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, &ClassificationError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", utils.FixedUserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger.Error("Failed to call chat service", zap.Error(err))
		return nil, &ClassificationError{Reason: "chat service unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ClassificationError{Reason: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Chat service returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, &ClassificationError{Reason: fmt.Sprintf("chat service returned status %d", resp.StatusCode)}
	}

	var out models.Classification
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("Failed to decode chat service response", zap.Error(err))
		return nil, &ClassificationError{Reason: "decode response", Err: err}
	}
	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = "chat service reported failure"
		}
		return nil, &ClassificationError{Reason: reason}
	}
	out.Intent = NormalizeIntent(string(out.Intent))
	return &out, nil
}
