// Package notify implements the outbound form-relay call that must
// confirm a submission before a booking is persisted.  The relay
// accepts a flat field set including an access key and answers with a
// JSON {success, message} body.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrRelayRejected is returned when the relay answered but did not
// confirm success.  The relay's own message is wrapped so callers can
// surface it.
var ErrRelayRejected = errors.New("relay rejected submission")

// Sender is the capability the booking handler depends on.  Tests
// substitute a fake; production uses *Relay.
type Sender interface {
	Send(ctx context.Context, fields map[string]string) error
}

// Relay posts form submissions to an external endpoint.  The client
// timeout bounds the whole call; a timeout is treated as failure and
// the booking flow does not proceed.
type Relay struct {
	url       string
	accessKey string
	hc        *http.Client
}

// NewRelay builds a Relay for the given endpoint and access key.
func NewRelay(endpoint, accessKey string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Relay{
		url:       endpoint,
		accessKey: accessKey,
		hc:        &http.Client{Timeout: timeout},
	}
}

// relayResponse mirrors the relay's JSON answer.
type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send submits the fields plus the access key as a URL-encoded form and
// checks the confirmation.  A non-2xx status, an undecodable body or a
// success=false answer all yield an error; only a confirmed submission
// returns nil.
func (r *Relay) Send(ctx context.Context, fields map[string]string) error {
	form := url.Values{}
	form.Set("access_key", r.accessKey)
	for k, v := range fields {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	var rr relayResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return fmt.Errorf("relay answered status %d with unreadable body", resp.StatusCode)
	}
	if !rr.Success {
		if rr.Message != "" {
			return fmt.Errorf("%w: %s", ErrRelayRejected, rr.Message)
		}
		return ErrRelayRejected
	}
	return nil
}
