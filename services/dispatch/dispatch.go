// Package dispatch hands lead submissions to a transactional email provider.
// Every provider makes exactly one attempt per Send and reports the outcome as
// a SubmissionResult; transport errors, provider rejections and non-200
// responses all collapse into a Failure carrying the raw error text.
package dispatch

import (
	"context"
	"net/http"
	"time"

	"lead_sites_go/services/metrics"
)

type Outcome int

const (
	Failure Outcome = iota
	Success
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// SubmissionRequest is built once per submit and not modified afterwards.
type SubmissionRequest struct {
	serviceID  string
	templateID string
	language   string
	fields     map[string]string
}

// NewSubmissionRequest copies fields so later form edits cannot reach the request.
func NewSubmissionRequest(serviceID, templateID, language string, fields map[string]string) SubmissionRequest {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return SubmissionRequest{
		serviceID:  serviceID,
		templateID: templateID,
		language:   language,
		fields:     copied,
	}
}

func (r SubmissionRequest) ServiceID() string  { return r.serviceID }
func (r SubmissionRequest) TemplateID() string { return r.templateID }
func (r SubmissionRequest) Language() string   { return r.language }

// Field returns a single placeholder value.
func (r SubmissionRequest) Field(name string) string { return r.fields[name] }

// Fields returns a copy of the placeholder map.
func (r SubmissionRequest) Fields() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

type SubmissionResult struct {
	Outcome     Outcome
	StatusCode  int
	ErrorDetail string
	MessageID   string
}

// Succeeded is true only for a provider-confirmed 200.
func (r SubmissionResult) Succeeded() bool {
	return r.Outcome == Success && r.StatusCode == http.StatusOK
}

func succeeded(messageID string) SubmissionResult {
	return SubmissionResult{Outcome: Success, StatusCode: http.StatusOK, MessageID: messageID}
}

func failed(status int, err error) SubmissionResult {
	return SubmissionResult{Outcome: Failure, StatusCode: status, ErrorDetail: err.Error()}
}

// Client sends one submission. Send must not retry.
type Client interface {
	Send(ctx context.Context, req SubmissionRequest) SubmissionResult
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req SubmissionRequest) SubmissionResult

func (f ClientFunc) Send(ctx context.Context, req SubmissionRequest) SubmissionResult {
	return f(ctx, req)
}

// WithTimeout bounds each Send by d. A zero d leaves the call unbounded.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return ClientFunc(func(ctx context.Context, req SubmissionRequest) SubmissionResult {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Send(ctx, req)
	})
}

// Instrument records provider latency per outcome.
func Instrument(c Client, provider string, m *metrics.Metrics) Client {
	if m == nil {
		return c
	}
	return ClientFunc(func(ctx context.Context, req SubmissionRequest) SubmissionResult {
		start := time.Now()
		res := c.Send(ctx, req)
		m.Dispatch(provider, res.Outcome.String(), time.Since(start))
		return res
	})
}
