package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mustafabch/website/internal/config"
)

const (
	sendPath       = "/api/v1.0/email/send"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// ErrRelayRejected is returned when the relay answers with a non-2xx status.
var ErrRelayRejected = errors.New("contact: relay rejected submission")

// Relay delivers a submission.
type Relay interface {
	Send(ctx context.Context, s Submission) error
}

// EmailJS sends submissions through the EmailJS REST API.
type EmailJS struct {
	endpoint    string
	serviceID   string
	templateID  string
	publicKey   string
	accessToken string
	http        *http.Client
}

// NewEmailJS builds a client from the relay credentials and the site's fixed
// service and template ids.
func NewEmailJS(cfg config.RelayConfig, ids config.RelayIDs, client *http.Client) (*EmailJS, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("contact: invalid relay endpoint %q: %w", cfg.Endpoint, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	c := *client
	c.Timeout = timeout
	return &EmailJS{
		endpoint:    base + sendPath,
		serviceID:   ids.ServiceID,
		templateID:  ids.TemplateID,
		publicKey:   cfg.PublicKey,
		accessToken: cfg.AccessToken,
		http:        &c,
	}, nil
}

type sendPayload struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts the submission values as template parameters.
func (e *EmailJS) Send(ctx context.Context, s Submission) error {
	params := make(map[string]string, len(s.Values)+1)
	for k, v := range s.Values {
		params[k] = v
	}
	params["submission_id"] = s.ID
	body, err := json.Marshal(sendPayload{
		ServiceID:      e.serviceID,
		TemplateID:     e.templateID,
		UserID:         e.publicKey,
		AccessToken:    e.accessToken,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("contact: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact: relay request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrRelayRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
