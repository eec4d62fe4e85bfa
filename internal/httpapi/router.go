// Package httpapi exposes the dispatcher over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/UkralStul/blog-service/internal/comments"
	"github.com/UkralStul/blog-service/internal/dispatch"
	"github.com/UkralStul/blog-service/internal/identity"
	"github.com/UkralStul/blog-service/internal/logger"
	"github.com/UkralStul/blog-service/internal/notify"
	"github.com/UkralStul/blog-service/internal/posts"
	"github.com/UkralStul/blog-service/internal/result"
)

// maxCommentRequestBytes bounds the create-comment body: 2000 characters of
// up to 4 bytes each plus JSON framing.
const maxCommentRequestBytes = 4*comments.MaxBodyLength + 1024

// UsernameHeader carries the authenticated username set by the auth proxy
// in front of this service.
const UsernameHeader = "X-Username"

// Dispatcher is the subset of app.Bus the router needs.
type Dispatcher interface {
	CreateComment(ctx context.Context, cmd comments.CreateCommand) (result.Result[comments.CommentCreated], error)
	CommentDetails(ctx context.Context, q comments.DetailsQuery) (result.Result[comments.CommentDetails], error)
	ListComments(ctx context.Context, q comments.ListQuery) (result.Result[[]comments.CommentDetails], error)
	ListPosts(ctx context.Context, q posts.ListQuery) (result.Result[[]posts.PostSummary], error)
}

// Subscriber streams committed comments of one post.
type Subscriber interface {
	Subscribe(postID uint, buffer int) (<-chan notify.CommentEvent, func())
}

type api struct {
	bus      Dispatcher
	subs     Subscriber
	log      *slog.Logger
	upgrader websocket.Upgrader
	ping     time.Duration
}

// NewRouter builds the HTTP handler. subs may be nil, which disables the
// comment stream endpoint.
func NewRouter(bus Dispatcher, subs Subscriber, log *slog.Logger) http.Handler {
	a := &api{
		bus:  bus,
		subs: subs,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		ping: 10 * time.Second,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(propagateRequestID)

	router.Route("/api/posts", func(r chi.Router) {
		r.Get("/", a.listPosts)
		r.Route("/{postID}/comments", func(r chi.Router) {
			r.Get("/", a.listComments)
			r.With(requireUser).Post("/", a.createComment)
			if subs != nil {
				r.Get("/stream", a.streamComments)
			}
			r.Get("/{id}", a.commentDetails)
		})
	})
	return router
}

// propagateRequestID hands chi's request id to the dispatcher's logging.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(dispatch.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser moves the username header onto the context.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get(UsernameHeader)
		if username == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithUsername(r.Context(), username)))
	})
}

func (a *api) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := a.bus.ListPosts(r.Context(), posts.ListQuery{
		Tag:      q.Get("tag"),
		Author:   q.Get("author"),
		Category: q.Get("category"),
	})
	if err != nil {
		a.fault(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (a *api) commentDetails(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.bus.CommentDetails(r.Context(), comments.DetailsQuery{PostID: postID, ID: id})
	if err != nil {
		a.fault(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (a *api) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.bus.ListComments(r.Context(), comments.ListQuery{PostID: postID})
	if err != nil {
		a.fault(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (a *api) createComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cmd comments.CreateCommand
	body := http.MaxBytesReader(w, r.Body, maxCommentRequestBytes)
	if err := json.NewDecoder(body).Decode(&cmd); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd.PostID = postID

	res, err := a.bus.CreateComment(r.Context(), cmd)
	if err != nil {
		a.fault(w, r, err)
		return
	}
	if res.IsSuccess() {
		w.Header().Set("Location", fmt.Sprintf("/api/posts/%d/comments/%d", postID, res.Value().ID))
	}
	respond(w, http.StatusCreated, res)
}

func (a *api) streamComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		a.log.WarnContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := a.subs.Subscribe(postID, 16)
	defer cancel()

	// Reader goroutine notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(a.ping)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (a *api) fault(w http.ResponseWriter, r *http.Request, err error) {
	a.log.ErrorContext(r.Context(), "request failed with an internal error",
		slog.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

type errorBody struct {
	Error string `json:"error"`
}

// respond writes a success with the given status, or a failure as 400.
func respond[T any](w http.ResponseWriter, status int, res result.Result[T]) {
	if res.IsFailure() {
		writeError(w, http.StatusBadRequest, res.Reason())
		return
	}
	writeJSON(w, status, res.Value())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
