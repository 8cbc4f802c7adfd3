package contact

import (
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/render"
	"github.com/mustafabch/website/internal/requestctx"
)

const (
	SubmitPath   = "/contact"
	ValidatePath = "/contact/validate"
	// SentEvent is raised through HX-Trigger after a successful send so the
	// form can reset itself.
	SentEvent = "contact:sent"
	// FieldEvent carries a validated field state through HX-Trigger.
	FieldEvent = "contact:field"

	autoHideMillis = 5000
)

var (
	ErrInvalid     = errors.New("contact: invalid submission")
	ErrRateLimited = errors.New("contact: rate limited")
)

// Submission is a sanitized form ready for the relay.
type Submission struct {
	ID         string
	Lang       string
	Values     map[string]string
	ReceivedAt time.Time
}

// Outcome is what the submit endpoint answers with.
type Outcome struct {
	Status   int
	Feedback template.HTML
	States   map[string]FieldState
	Reset    bool
	ID       string
}

// Manager validates, limits and relays submissions.
type Manager struct {
	schema   Schema
	relay    Relay
	limiter  *Limiter
	renderer *render.Renderer
	policy   *bluemonday.Policy
	now      func() time.Time
}

// Options tunes a Manager. Zero values pick the defaults.
type Options struct {
	Schema  Schema
	Limiter *Limiter
	Now     func() time.Time
}

func New(relay Relay, r *render.Renderer, opts Options) *Manager {
	m := &Manager{
		schema:   opts.Schema,
		relay:    relay,
		limiter:  opts.Limiter,
		renderer: r,
		policy:   bluemonday.StrictPolicy(),
		now:      opts.Now,
	}
	if len(m.schema) == 0 {
		m.schema = DefaultSchema()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Schema returns the fields submissions are checked against.
func (m *Manager) Schema() Schema { return m.schema }

// ValidateOne returns the state of a single field. Unknown fields are
// validated as optional.
func (m *Manager) ValidateOne(name, value string) FieldState {
	f, ok := m.schema.Lookup(name)
	if !ok {
		f = Field{Name: name}
	}
	return ValidateField(f, value)
}

// Submit validates form, applies the client's rate limit and relays the
// sanitized values. The returned error is informational: the Outcome is
// always renderable.
func (m *Manager) Submit(ctx context.Context, clientKey, lang string, form url.Values) (Outcome, error) {
	logger := requestctx.Logger(ctx)

	res := m.schema.Validate(form)
	if !res.OK() {
		out, err := m.outcome(lang, http.StatusUnprocessableEntity, false, "contact.invalid")
		out.States = res.States
		if err != nil {
			return out, err
		}
		return out, fmt.Errorf("%w: %v", ErrInvalid, res.Invalid(m.schema))
	}

	if m.limiter != nil && !m.limiter.Allow(clientKey) {
		logger.Info("contact submission rate limited", zap.String("client", clientKey))
		out, err := m.outcome(lang, http.StatusTooManyRequests, false, "contact.rate_limited")
		out.States = res.States
		if err != nil {
			return out, err
		}
		return out, ErrRateLimited
	}

	sub := Submission{
		ID:         ulid.MustNew(ulid.Timestamp(m.now()), ulid.DefaultEntropy()).String(),
		Lang:       lang,
		Values:     m.sanitize(form),
		ReceivedAt: m.now().UTC(),
	}
	if err := m.relay.Send(ctx, sub); err != nil {
		logger.Warn("contact relay failed", zap.String("submission", sub.ID), zap.Error(err))
		out, rerr := m.outcome(lang, http.StatusOK, false, "contact.failure")
		out.States = res.States
		out.ID = sub.ID
		if rerr != nil {
			return out, rerr
		}
		return out, err
	}

	logger.Info("contact submission relayed", zap.String("submission", sub.ID), zap.String("lang", lang))
	out, err := m.outcome(lang, http.StatusOK, true, "contact.success")
	out.Reset = true
	out.ID = sub.ID
	return out, err
}

// sanitize strips markup from every schema field. The relay takes plain text,
// so the entities the policy encodes are decoded again.
func (m *Manager) sanitize(form url.Values) map[string]string {
	values := make(map[string]string, len(m.schema))
	for _, f := range m.schema {
		if v := form.Get(f.Name); v != "" {
			values[f.Name] = html.UnescapeString(m.policy.Sanitize(v))
		}
	}
	return values
}

func (m *Manager) outcome(lang string, status int, success bool, key string) (Outcome, error) {
	feedback, err := m.renderer.Feedback(render.Feedback{
		Success:  success,
		Message:  m.renderer.Bundle().T(lang, key),
		AutoHide: autoHideMillis,
	})
	return Outcome{Status: status, Feedback: feedback}, err
}

// Stamp wires #contact-form for htmx: the form posts to the submit endpoint
// and swaps #form-feedback; every named control validates itself on input and
// blur. It reports whether a form was found.
func (m *Manager) Stamp(doc *goquery.Document, lang string) bool {
	form := doc.Find("#contact-form").First()
	if form.Length() == 0 {
		return false
	}
	form.SetAttr("hx-post", SubmitPath+"?lang="+url.QueryEscape(lang))
	form.SetAttr("hx-target", "#form-feedback")
	form.SetAttr("hx-swap", "outerHTML")
	form.SetAttr("hx-indicator", "#submit-btn")
	form.SetAttr("hx-disabled-elt", "#submit-btn")
	form.SetAttr("data-reset-on", SentEvent)
	form.SetAttr("novalidate", "")

	btn := doc.Find("#submit-btn")
	btn.SetAttr("data-loading-text", m.renderer.Bundle().T(lang, "contact.sending"))

	form.Find(".form-control[name]").Each(func(_ int, el *goquery.Selection) {
		name := el.AttrOr("name", "")
		el.SetAttr("hx-post", ValidatePath+"?field="+url.QueryEscape(name))
		el.SetAttr("hx-trigger", "input changed delay:300ms, blur")
		el.SetAttr("hx-swap", "none")
		el.SetAttr("hx-sync", "this:replace")
	})

	if doc.Find("#form-feedback").Length() == 0 {
		form.AfterHtml(`<div id="form-feedback" style="display: none;"></div>`)
	}
	return true
}
