package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lead_sites_go/services/analytics"
	"lead_sites_go/services/dispatch"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/metrics"
	"lead_sites_go/services/notify"

	"go.uber.org/zap"
)

var (
	ErrUnknownField     = errors.New("field is not declared by this form")
	ErrMissingFields    = errors.New("required fields are empty")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrDispatchFailed   = errors.New("lead could not be delivered")
)

// MissingFieldsError lists the required fields that were empty at submit.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

type Lifecycle int

const (
	Idle Lifecycle = iota
	Submitting
	Succeeded
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// FormState is a point-in-time copy of a form.
type FormState struct {
	Fields    map[string]string
	Lifecycle Lifecycle
	LastError string
}

// Deps are the collaborators shared by every form instance.
type Deps struct {
	Dispatch  dispatch.Client
	Analytics analytics.Pair
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// Currency tags lead conversions
	Currency string
}

// Form is one visitor's lead capture form. Submitting is non-reentrant:
// a new submission can only start from Idle or Failed.
type Form struct {
	cfg    FormConfig
	deps   Deps
	nav    Navigator
	logger *zap.Logger

	mu        sync.Mutex
	fields    map[string]string
	started   map[string]bool
	lifecycle Lifecycle
	lastError string
	lastUsed  time.Time

	notice notify.Notification
}

func NewForm(cfg FormConfig, deps Deps, nav Navigator) *Form {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		cfg:      cfg,
		deps:     deps,
		nav:      nav,
		logger:   logger.Named("leads").With(zap.String("form", cfg.Key)),
		fields:   emptyFields(cfg.Fields),
		started:  make(map[string]bool, len(cfg.Fields)),
		lastUsed: time.Now(),
	}
}

func (f *Form) Config() FormConfig { return f.cfg }

// State returns a copy of the current state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{
		Fields:    copyFields(f.fields),
		Lifecycle: f.lifecycle,
		LastError: f.lastError,
	}
}

// NotificationVisible reports whether the success acknowledgement is showing.
func (f *Form) NotificationVisible() bool {
	return f.notice.Visible()
}

// OnFieldChange stores a field value. The first non-empty value written to a
// field emits a form_start event; later writes to the same field do not.
func (f *Form) OnFieldChange(ctx context.Context, field, value string) error {
	if !f.cfg.Declares(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.mu.Lock()
	previous := f.fields[field]
	f.fields[field] = value
	f.lastUsed = time.Now()
	first := previous == "" && value != "" && !f.started[field]
	if first {
		f.started[field] = true
	}
	f.mu.Unlock()

	if first {
		f.deps.Analytics.EmitSite(ctx, analytics.EventFieldStart, analytics.Params{
			"field_name":    field,
			"form_location": f.cfg.Location,
			"language":      i18n.GetLocale(ctx),
		})
	}
	return nil
}

// Submit runs one submission attempt and blocks until the provider answers.
// On success the fields are cleared and the success notification starts; on
// failure the fields are kept for a retry.
func (f *Form) Submit(ctx context.Context) (dispatch.SubmissionResult, error) {
	lang := i18n.GetLocale(ctx)

	f.mu.Lock()
	if f.lifecycle == Submitting || f.lifecycle == Succeeded {
		f.mu.Unlock()
		return dispatch.SubmissionResult{}, ErrSubmitInProgress
	}
	if missing := f.missingLocked(); len(missing) > 0 {
		f.mu.Unlock()
		return dispatch.SubmissionResult{}, &MissingFieldsError{Fields: missing}
	}
	f.lifecycle = Submitting
	f.lastError = ""
	f.lastUsed = time.Now()
	fields := copyFields(f.fields)
	f.mu.Unlock()

	f.deps.Analytics.EmitSite(ctx, analytics.EventSubmitAttempt, analytics.Params{
		"form_location": f.cfg.Location,
		"language":      lang,
		"page_path":     f.currentPath(),
	})

	req := buildRequest(f.cfg, lang, fields)
	// a visitor leaving mid-submit abandons the result, not the delivery
	res := f.send(context.WithoutCancel(ctx), req)

	if res.Succeeded() {
		f.mu.Lock()
		f.lifecycle = Succeeded
		f.fields = emptyFields(f.cfg.Fields)
		f.started = make(map[string]bool, len(f.cfg.Fields))
		f.mu.Unlock()

		f.recordLead(ctx, lang, fields["name"])
		f.deps.Metrics.LeadSubmission(f.cfg.Key, "success")
		f.logger.Info("lead delivered", zap.String("message_id", res.MessageID))

		f.notice.Show(f.cfg.NotificationDuration, f.finishSuccess)
		return res, nil
	}

	detail := res.ErrorDetail
	if detail == "" {
		detail = fmt.Sprintf("unexpected provider status %d", res.StatusCode)
	}

	f.mu.Lock()
	f.lifecycle = Failed
	f.lastError = detail
	f.mu.Unlock()

	f.deps.Analytics.EmitSite(ctx, analytics.EventSubmitError, analytics.Params{
		"form_location": f.cfg.Location,
		"language":      lang,
		"error":         detail,
	})
	f.deps.Metrics.LeadSubmission(f.cfg.Key, "failure")
	f.logger.Warn("lead delivery failed", zap.String("error", detail), zap.Int("status", res.StatusCode))

	return res, fmt.Errorf("%w: %s", ErrDispatchFailed, detail)
}

// Dismiss closes the success notification early. The post-success action
// still runs exactly once.
func (f *Form) Dismiss() bool {
	return f.notice.Dismiss()
}

// Close tears the form down. A pending notification is cancelled without
// running its callback.
func (f *Form) Close() {
	f.notice.Hide()
}

// IdleSince reports when the form was last touched, and whether it may be
// discarded (nothing in flight or on screen).
func (f *Form) IdleSince() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUsed, f.lifecycle != Submitting && !f.notice.Visible()
}

// send calls the dispatch client once. A panicking client counts as a failure.
func (f *Form) send(ctx context.Context, req dispatch.SubmissionRequest) (res dispatch.SubmissionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = dispatch.SubmissionResult{Outcome: dispatch.Failure, ErrorDetail: fmt.Sprint(r)}
		}
	}()
	if f.deps.Dispatch == nil {
		return dispatch.SubmissionResult{Outcome: dispatch.Failure, ErrorDetail: "email dispatch is not configured"}
	}
	return f.deps.Dispatch.Send(ctx, req)
}

func (f *Form) recordLead(ctx context.Context, lang, userName string) {
	params := analytics.Params{
		"value":         1,
		"currency":      f.deps.Currency,
		"lead_source":   f.cfg.LeadSource,
		"form_location": f.cfg.Location,
		"language":      lang,
		"user_name":     userName,
	}
	f.deps.Analytics.EmitSite(ctx, analytics.EventLead, params)
	f.deps.Analytics.EmitAds(ctx, analytics.EventConversion, params)
}

// finishSuccess runs when the success notification is dismissed.
func (f *Form) finishSuccess() {
	f.mu.Lock()
	if f.lifecycle == Succeeded {
		f.lifecycle = Idle
	}
	f.mu.Unlock()

	if f.nav == nil {
		return
	}
	switch f.cfg.PostSuccess.Action {
	case ActionNavigate:
		f.nav.Navigate(f.cfg.PostSuccess.Route)
	default:
		f.nav.ScrollTo(f.cfg.PostSuccess.ElementID)
	}
}

func (f *Form) currentPath() string {
	if f.nav == nil {
		return ""
	}
	return f.nav.CurrentPath()
}

func (f *Form) missingLocked() []string {
	var missing []string
	for _, name := range f.cfg.Required {
		if strings.TrimSpace(f.fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func emptyFields(names []string) map[string]string {
	fields := make(map[string]string, len(names))
	for _, name := range names {
		fields[name] = ""
	}
	return fields
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
