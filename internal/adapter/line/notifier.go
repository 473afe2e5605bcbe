package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the LINE Messaging API root.
const DefaultBaseURL = "https://api.line.me"

// maxTextRunes is the LINE limit for a single text message.
const maxTextRunes = 5000

// APIError is a non-200 reply from the Messaging API. Message and Details are
// decoded from the JSON error body when LINE sends one.
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("line API error: status %d: %s", e.StatusCode, e.Message)
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

// Notifier implements domain.Notifier with the LINE Messaging API push endpoint.
type Notifier struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewNotifier creates a LINE push notifier.
func NewNotifier(token, baseURL string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Notifier{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Deliver pushes a single text message to recipient. Each call carries a fresh
// X-Line-Retry-Key, so LINE drops duplicates if the same request is replayed.
func (n *Notifier) Deliver(ctx context.Context, recipient, text string) error {
	payload, err := json.Marshal(pushRequest{
		To:       recipient,
		Messages: []message{{Type: "text", Text: truncateRunes(text, maxTextRunes)}},
	})
	if err != nil {
		return fmt.Errorf("encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v2/bot/message/push", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("X-Line-Retry-Key", uuid.NewString())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	n.logger.Debug("line push delivered", "request_id", resp.Header.Get("X-Line-Request-Id"))
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get("X-Line-Request-Id")}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.Message = e.Message
	for _, d := range e.Details {
		if d.Property != "" {
			apiErr.Details = append(apiErr.Details, d.Property+": "+d.Message)
		} else {
			apiErr.Details = append(apiErr.Details, d.Message)
		}
	}
	return apiErr
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// LINE Messaging API request types.

type pushRequest struct {
	To       string    `json:"to"`
	Messages []message `json:"messages"`
}

type message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Message string        `json:"message"`
	Details []errorDetail `json:"details"`
}

type errorDetail struct {
	Message  string `json:"message"`
	Property string `json:"property"`
}
