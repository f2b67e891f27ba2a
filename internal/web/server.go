// Package web serves the task list as a single HTML page with forms.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"

	"tasktracker/internal/task"
)

// ContentType is sent with every page.
const ContentType = "text/html; charset=utf-8"

// ShutdownTimeout bounds graceful shutdown in Serve.
const ShutdownTimeout = 5 * time.Second

// Notices shown above the form after a POST.
const (
	NoticeAdded      = "Task added."
	NoticeEmptyTitle = "Title cannot be empty."
	NoticeNoIDsLeft  = "No task ids left."
	NoticeInvalidID  = "Invalid task id."
	NoticeCleared    = "Cleared all tasks."
	NoticeUnknown    = "Unknown action."
	NoticeSaveFailed = "Could not save tasks."

	noticeToggledFmt  = "Toggled task %d."
	noticeNotFoundFmt = "Task with id %d not found."
)

// Form fields and actions posted by the page.
const (
	formAction      = "action"
	formTitle       = "title"
	formDescription = "description"
	formID          = "id"

	actionAdd    = "add"
	actionToggle = "toggle"
	actionClear  = "clear"
)

const requestIDField = "req_id"

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Store is the persistence the server needs. *storage.File satisfies it.
type Store interface {
	Load() task.List
	Save(task.List) error
	Clear() error
}

// Server renders and mutates one task file over HTTP.
type Server struct {
	store Store
	log   log.FieldLogger
	e     *echo.Echo

	// mu makes each request's load, mutate, save and render atomic.
	mu sync.Mutex
}

// New builds the server and its routes.
func New(store Store, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{store: store, log: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return xid.New().String() },
	}))
	e.Use(requestLogger(logger))
	e.Use(s.serialize)

	e.GET("/", s.index)
	e.POST("/", s.submit)

	s.e = e
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Debug("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) serialize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) index(c echo.Context) error {
	return s.render(c, "")
}

func (s *Server) submit(c echo.Context) error {
	return s.render(c, s.apply(c))
}

// apply performs the form's action and returns the notice to show.
func (s *Server) apply(c echo.Context) string {
	switch c.FormValue(formAction) {
	case actionAdd:
		l := s.store.Load()
		var desc *string
		if d := c.FormValue(formDescription); d != "" {
			desc = &d
		}
		if _, err := l.Add(c.FormValue(formTitle), desc); err != nil {
			if errors.Is(err, task.ErrIDExhausted) {
				return NoticeNoIDsLeft
			}
			return NoticeEmptyTitle
		}
		return s.save(c, l, NoticeAdded)

	case actionToggle:
		id, err := strconv.Atoi(strings.TrimSpace(c.FormValue(formID)))
		if err != nil {
			return NoticeInvalidID
		}
		l := s.store.Load()
		if _, err := l.Toggle(id); err != nil {
			return fmt.Sprintf(noticeNotFoundFmt, id)
		}
		return s.save(c, l, fmt.Sprintf(noticeToggledFmt, id))

	case actionClear:
		if err := s.store.Clear(); err != nil {
			s.requestLog(c).WithError(err).Error("clear failed")
			return NoticeSaveFailed
		}
		return NoticeCleared

	default:
		return NoticeUnknown
	}
}

func (s *Server) save(c echo.Context, l task.List, notice string) string {
	if err := s.store.Save(l); err != nil {
		s.requestLog(c).WithError(err).Error("save failed")
		return NoticeSaveFailed
	}
	return notice
}

// render writes the page for the current file contents.
func (s *Server) render(c echo.Context, notice string) error {
	view := task.View{Tasks: s.store.Load().Tasks, Notice: notice}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return c.Blob(http.StatusOK, ContentType, buf.Bytes())
}

func (s *Server) requestLog(c echo.Context) log.FieldLogger {
	return s.log.WithField(requestIDField, c.Response().Header().Get(echo.HeaderXRequestID))
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger log.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.WithFields(log.Fields{
				"method":       req.Method,
				"path":         req.URL.Path,
				"status":       c.Response().Status,
				"dur":          time.Since(start),
				requestIDField: c.Response().Header().Get(echo.HeaderXRequestID),
			}).Debug("request")
			return nil
		}
	}
}
