// Package explain builds the small structured payload handed to the external
// narrative service and calls it with a bounded timeout. The service turns a
// single trend or risk row into prose; its response is treated as an opaque
// string and its failures never touch any other computation.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Payload is the structured summary of one signal row. Only computed metrics
// go in; the narrative service must explain numbers, never invent them.
type Payload struct {
	Kind       string  `json:"kind"` // rising_subtopic | ward_risk | chronic_issue
	Name       string  `json:"name"`
	Label      string  `json:"label"` // trend status or risk label
	WindowDays int     `json:"window_days,omitempty"`
	Previous   int     `json:"previous,omitempty"`
	Recent     int     `json:"recent,omitempty"`
	PctChange  float64 `json:"pct_change,omitempty"`
}

// Result carries the narrative or a local fallback message.
type Result struct {
	Explanation string `json:"explanation"`
	Available   bool   `json:"available"`
}

// Client calls the external explanation collaborator.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient builds a client; an empty URL produces a client that always
// degrades to the local fallback.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

const unavailableMsg = "Explanation unavailable; the computed signal above stands on its own."

// Explain sends the payload and returns the narrative. Every failure mode
// degrades to a local message; the caller never sees an error.
func (c *Client) Explain(ctx context.Context, p Payload) Result {
	if c.url == "" {
		return Result{Explanation: unavailableMsg}
	}

	body, err := json.Marshal(p)
	if err != nil {
		log.Warn().Err(err).Str("kind", p.Kind).Msg("Failed to encode explanation payload")
		return Result{Explanation: unavailableMsg}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{Explanation: unavailableMsg}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("kind", p.Kind).Msg("Explanation service call failed")
		return Result{Explanation: unavailableMsg}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("kind", p.Kind).Msg("Explanation service returned non-OK status")
		return Result{Explanation: unavailableMsg}
	}

	var parsed struct {
		Explanation string `json:"explanation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Explanation == "" {
		return Result{Explanation: unavailableMsg}
	}

	return Result{Explanation: parsed.Explanation, Available: true}
}

// FromTrendRow assembles a payload for a rising-subtopic row.
func FromTrendRow(name, status string, windowDays, previous, recent int, pctChange float64) Payload {
	return Payload{
		Kind:       "rising_subtopic",
		Name:       name,
		Label:      status,
		WindowDays: windowDays,
		Previous:   previous,
		Recent:     recent,
		PctChange:  pctChange,
	}
}

// FromWardRiskRow assembles a payload for a ward risk row.
func FromWardRiskRow(ward, risk string, windowDays, previous, recent int, pctChange float64) Payload {
	return Payload{
		Kind:       "ward_risk",
		Name:       ward,
		Label:      risk,
		WindowDays: windowDays,
		Previous:   previous,
		Recent:     recent,
		PctChange:  pctChange,
	}
}

// FromChronicRow assembles a payload for a chronic-issue row.
func FromChronicRow(subtopic string, periodsActive, totalCount int) Payload {
	return Payload{
		Kind:      "chronic_issue",
		Name:      subtopic,
		Label:     fmt.Sprintf("recurred in %d periods", periodsActive),
		Recent:    totalCount,
		PctChange: 0,
	}
}
