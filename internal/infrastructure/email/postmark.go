// Package email delivers 2FA codes. PostmarkClient talks to the Postmark HTTP
// API; LogClient only writes the message to the log and is meant for local runs.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const (
	DefaultPostmarkBaseURL = "https://api.postmarkapp.com"
	DefaultTimeout         = 10 * time.Second

	serverTokenHeader = "X-Postmark-Server-Token"
	messageStream     = "outbound"
)

type PostmarkClient struct {
	baseURL    string
	sender     domain.Email
	token      string
	httpClient *http.Client
}

// NewPostmarkClient builds a client. A nil httpClient gets one with DefaultTimeout.
func NewPostmarkClient(baseURL string, sender domain.Email, token string, httpClient *http.Client) *PostmarkClient {
	if baseURL == "" {
		baseURL = DefaultPostmarkBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &PostmarkClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sender:     sender,
		token:      token,
		httpClient: httpClient,
	}
}

type postmarkRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HTMLBody      string `json:"HtmlBody"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

func (c *PostmarkClient) SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error {
	body, err := json.Marshal(postmarkRequest{
		From:          c.sender.String(),
		To:            recipient.String(),
		Subject:       subject,
		HTMLBody:      content,
		TextBody:      content,
		MessageStream: messageStream,
	})
	if err != nil {
		return oops.In("postmark").Code("EMAIL_ENCODE_FAILED").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return oops.In("postmark").Code("EMAIL_REQUEST_FAILED").Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.In("postmark").Code("EMAIL_SEND_FAILED").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return oops.In("postmark").
			Code("EMAIL_REJECTED").
			With("status", resp.StatusCode).
			Wrap(fmt.Errorf("postmark returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
