package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"guestbook/internal/guestbook"
)

//go:embed static
var staticFS embed.FS

type Server struct {
	srv *http.Server
	log *zap.SugaredLogger
}

// NewRouter wires every route. mcp may be nil, in which case /mcp is not
// served.
func NewRouter(h *guestbook.Handler, mcp *mcpsrv.MCPServer, log *zap.SugaredLogger) (http.Handler, error) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withZap(log))
	r.Use(middleware.GetHead)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Web UI
	r.Get("/", h.HomePage)
	r.Post("/draft", h.Draft)
	r.Post("/entries", h.CreateEntry)
	r.Post("/entries/{id}/delete", h.DeleteEntry)

	// MCP endpoint (HTTP transport)
	if mcp != nil {
		r.Handle("/mcp", mcpsrv.NewStreamableHTTPServer(mcp))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r, nil
}

func New(port int, handler http.Handler, log *zap.SugaredLogger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + strconv.Itoa(port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. It returns http.ErrServerClosed after
// Stop.
func (s *Server) Start() error {
	s.log.Infow("server starting", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}

func withZap(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			defer func() {
				log.Infow("request",
					"method", r.Method,
					"path", r.URL.Path,
					"took", time.Since(t1),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
				)
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
