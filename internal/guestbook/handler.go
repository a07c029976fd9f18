package guestbook

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"guestbook/views/components"
	"guestbook/views/models"
	"guestbook/views/pages"
)

// PageOptions are the build-time values shown on the page.
type PageOptions struct {
	Title       string
	APIBaseURL  string
	Environment string
	Version     string
	Debug       bool
}

type Handler struct {
	sessions *Sessions
	dates    *DateFormatter
	content  *ContentRenderer
	opts     PageOptions
	log      *zap.SugaredLogger
}

func NewHandler(sessions *Sessions, dates *DateFormatter, content *ContentRenderer, opts PageOptions, log *zap.SugaredLogger) *Handler {
	return &Handler{
		sessions: sessions,
		dates:    dates,
		content:  content,
		opts:     opts,
		log:      log,
	}
}

// HomePage handles GET /. Loading the page mounts it.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	ctl := h.sessions.Controller(w, r)
	ctl.Mount(detach(r))
	h.render(w, r, h.pageView(ctl.Snapshot(), r.Header.Get("Accept-Language")))
}

// Draft handles POST /draft (HTMX partial). It stores the drafts and
// answers with the counter and submit button.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	ctl := h.sessions.Controller(w, r)
	ctl.SetName(r.PostFormValue("name"))
	ctl.SetContent(r.PostFormValue("content"))

	p := h.pageView(ctl.Snapshot(), r.Header.Get("Accept-Language"))
	h.renderComponent(w, r, components.FormControls(p.Form))
}

// CreateEntry handles POST /entries. A post arriving while the session's
// previous one is pending leaves the drafts alone.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctl := h.sessions.Controller(w, r)
	if err := ctl.SubmitDraft(detach(r), r.PostFormValue("name"), r.PostFormValue("content")); err != nil {
		h.log.Debugw("post ignored", "error", err)
	}

	h.render(w, r, h.pageView(ctl.Snapshot(), r.Header.Get("Accept-Language")))
}

// DeleteEntry handles POST /entries/{id}/delete. Without a confirm value
// the reader is asked first; anything but confirm=yes declines.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := EntryID(chi.URLParam(r, "id"))
	if id == "" {
		http.Error(w, "entry ID required", http.StatusBadRequest)
		return
	}

	ctl := h.sessions.Controller(w, r)

	confirm := r.PostFormValue("confirm")
	if confirm == "" {
		entry, _ := lo.Find(ctl.Snapshot().Entries, func(e Entry) bool {
			return e.ID == id
		})
		h.renderComponent(w, r, pages.ConfirmPage(models.ConfirmView{
			Title:   h.opts.Title,
			EntryID: id.String(),
			Name:    entry.Name,
		}))
		return
	}

	ctl.Delete(detach(r), id, Answer(confirm == "yes"))
	h.render(w, r, h.pageView(ctl.Snapshot(), r.Header.Get("Accept-Language")))
}

// --- View model converters ---

func (h *Handler) pageView(s State, acceptLanguage string) models.PageView {
	p := models.PageView{
		Title: h.opts.Title,
		Error: s.Error,
		Form: models.FormView{
			Name:          s.Name,
			Content:       s.Content,
			ContentLength: utf8.RuneCountInString(s.Content),
			NameMax:       MaxNameLength,
			ContentMax:    MaxContentLength,
			Loading:       s.Loading,
			CanSubmit:     s.CanSubmit(),
		},
		Entries: lo.Map(s.Entries, func(e Entry, _ int) models.EntryView {
			return models.EntryView{
				ID:          e.ID.String(),
				Name:        e.Name,
				CreatedAt:   h.dates.Format(e.CreatedAt, acceptLanguage),
				ContentHTML: h.content.Render(e.Content),
			}
		}),
	}

	if h.opts.Debug {
		p.Debug = &models.DebugView{
			APIBaseURL:  h.opts.APIBaseURL,
			Environment: h.opts.Environment,
			Version:     h.opts.Version,
			Loading:     s.Loading,
			Error:       s.Error,
			EntryCount:  len(s.Entries),
		}
	}

	return p
}

// --- Helper methods ---

func (h *Handler) render(w http.ResponseWriter, r *http.Request, p models.PageView) {
	if r.Header.Get("HX-Request") == "true" {
		h.renderComponent(w, r, pages.App(p))
		return
	}
	h.renderComponent(w, r, pages.GuestbookPage(p))
}

func (h *Handler) renderComponent(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Errorw("failed to render", "path", r.URL.Path, "error", err)
	}
}

// detach keeps backend calls running when the browser goes away; a request,
// once issued, runs to completion.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
