// Package site serves the landing page and its quote request endpoints.
package site

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/customtruckbeds/site/internal/content"
	"github.com/customtruckbeds/site/internal/platform/httpx"
	"github.com/customtruckbeds/site/internal/quote"
	"github.com/customtruckbeds/site/internal/shared"
	"github.com/customtruckbeds/site/internal/view"
)

const (
	pageTitle = "Custom Truck Beds | Built for Australia"
	// formSessionKey holds the last form state so a reload shows the same values
	// and field errors.
	formSessionKey = "quote_form"
	// IdempotencyHeader lets API clients retry a submit safely.
	IdempotencyHeader = "Idempotency-Key"
	idempotencyModule = "quotes"
)

// Submitter runs the quote submit flow.
type Submitter interface {
	Submit(ctx context.Context, key string, state quote.FormState) (quote.FormState, quote.Result, error)
	CollectsWebhook() bool
}

// HandlerParams groups Handler dependencies.
type HandlerParams struct {
	Logger      *slog.Logger
	Service     Submitter
	Content     *content.Site
	Templates   *view.Engine
	CSRF        *shared.CSRFManager
	Idempotency *shared.IdempotencyStore
	// QuoteLimit wraps the submit routes, typically with a per-IP rate limit.
	QuoteLimit func(http.Handler) http.Handler
}

// Handler wires the page and quote endpoints.
type Handler struct {
	logger      *slog.Logger
	service     Submitter
	content     *content.Site
	templates   *view.Engine
	csrf        *shared.CSRFManager
	idempotency *shared.IdempotencyStore
	quoteLimit  func(http.Handler) http.Handler
}

// NewHandler constructs a Handler.
func NewHandler(params HandlerParams) *Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     params.Service,
		content:     params.Content,
		templates:   params.Templates,
		csrf:        params.CSRF,
		idempotency: params.Idempotency,
		quoteLimit:  params.QuoteLimit,
	}
}

// MountRoutes registers the page and quote routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showHome)
	r.Group(func(r chi.Router) {
		if h.quoteLimit != nil {
			r.Use(h.quoteLimit)
		}
		r.Post("/quote", h.handleQuote)
		r.Post("/api/quotes", h.handleQuoteAPI)
	})
}

type pageData struct {
	Site *content.Site
	Form formView
}

func (h *Handler) showHome(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	state := h.loadState(sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	h.render(w, r, http.StatusOK, state, flash)
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during quote submit")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// Replay the posted values onto the stored state field by field, the same
	// way the form edits them in the browser.
	state := h.loadState(sess)
	state.Notice = nil
	for _, field := range quote.Fields() {
		if !r.PostForm.Has(field) {
			continue
		}
		next, err := quote.UpdateField(state, field, r.PostForm.Get(field))
		if err != nil {
			h.logger.Error("update quote field", slog.String("field", field), slog.Any("error", err))
			continue
		}
		state = next
	}

	next, result, err := h.service.Submit(r.Context(), sess.ID, state)
	h.storeState(sess, next)

	if err == nil {
		notice := next.Notice
		if notice != nil {
			sess.AddFlash(shared.FlashMessage{Kind: notice.Kind, Message: notice.Message})
		}
		h.logger.Debug("quote submit finished", slog.String("status", string(result.Status)))
		http.Redirect(w, r, "/#quote", http.StatusSeeOther)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quote.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, quote.ErrDispatch):
		status = http.StatusBadGateway
	case errors.Is(err, quote.ErrSubmissionInProgress):
		status = http.StatusConflict
	default:
		h.logger.Error("quote submit", slog.Any("error", err))
		next = next.WithNotice(quote.Notice{Kind: quote.NoticeError, Message: quote.MessageFailed})
	}
	h.render(w, r, status, next, nil)
}

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func (h *Handler) handleQuoteAPI(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during api quote submit")
		httpx.RespondError(w, shared.ErrSessionMissing)
		return
	}

	var req quote.Request
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	key := r.Header.Get(IdempotencyHeader)
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, idempotencyModule); err != nil {
			if !errors.Is(err, shared.ErrIdempotencyConflict) {
				h.logger.Error("idempotency check", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
	}

	next, result, err := h.service.Submit(r.Context(), sess.ID, quote.FormState{Values: req})
	if err != nil {
		// Only a completed dispatch consumes the key.
		if key != "" && h.idempotency != nil {
			if derr := h.idempotency.Delete(context.WithoutCancel(r.Context()), key, idempotencyModule); derr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", derr))
			}
		}
		if !errors.Is(err, quote.ErrValidation) && !errors.Is(err, quote.ErrDispatch) && !errors.Is(err, quote.ErrSubmissionInProgress) {
			h.logger.Error("api quote submit", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	resp := apiResponse{Status: string(result.Status), ID: result.ID}
	if next.Notice != nil {
		resp.Message = next.Notice.Message
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, state quote.FormState, flash *shared.FlashMessage) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, err := h.csrf.EnsureToken(sess)
	if err != nil {
		h.logger.Warn("ensure csrf token", slog.Any("error", err))
	}
	data := view.TemplateData{
		Title:       pageTitle,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data: pageData{
			Site: h.content,
			Form: buildFormView(state, h.service.CollectsWebhook(), h.content.Contact.Placeholder),
		},
	}
	if err := h.templates.Render(w, status, "pages/index.html", data); err != nil {
		h.logger.Error("render home", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) loadState(sess *shared.Session) quote.FormState {
	state := quote.NewFormState()
	if sess == nil {
		return state
	}
	if _, err := sess.GetJSON(formSessionKey, &state); err != nil {
		h.logger.Warn("decode stored quote form", slog.Any("error", err))
		sess.Delete(formSessionKey)
		return quote.NewFormState()
	}
	return state
}

// storeState keeps values and field errors; notices are one-off and are not
// stored.
func (h *Handler) storeState(sess *shared.Session, state quote.FormState) {
	state.Notice = nil
	if state.IsZero() {
		sess.Delete(formSessionKey)
		return
	}
	if err := sess.SetJSON(formSessionKey, state); err != nil {
		h.logger.Warn("store quote form", slog.Any("error", err))
	}
}

// ShowHomeForTest exposes the GET handler for tests.
func (h *Handler) ShowHomeForTest(w http.ResponseWriter, r *http.Request) {
	h.showHome(w, r)
}

// HandleQuoteForTest exposes the HTML POST handler for tests.
func (h *Handler) HandleQuoteForTest(w http.ResponseWriter, r *http.Request) {
	h.handleQuote(w, r)
}

// HandleQuoteAPIForTest exposes the JSON POST handler for tests.
func (h *Handler) HandleQuoteAPIForTest(w http.ResponseWriter, r *http.Request) {
	h.handleQuoteAPI(w, r)
}
