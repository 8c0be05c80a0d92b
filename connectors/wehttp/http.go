package wehttp

import (
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-counter-go/we"
)

type HandlerOption[T any] func(service *httpService[T])

func Logger[T any](log *zerolog.Logger) HandlerOption[T] {
	return func(service *httpService[T]) {
		service.log = log
	}
}

// Sessions enables DELETE and the websocket watch endpoint.
func Sessions[T any](sessions we.SessionStore) HandlerOption[T] {
	return func(service *httpService[T]) {
		service.sessions = sessions
	}
}

func Instrumented[T any](metrics *Metrics) HandlerOption[T] {
	return func(service *httpService[T]) {
		service.metrics = metrics
	}
}

// Throttled limits how often a single client may execute commands.
func Throttled[T any](limiter *RateLimiter) HandlerOption[T] {
	return func(service *httpService[T]) {
		service.limiter = limiter
	}
}

func WriteTimeout[T any](timeout time.Duration) HandlerOption[T] {
	return func(service *httpService[T]) {
		if timeout > 0 {
			service.writeTimeout = timeout
		}
	}
}

func Upgrader[T any](upgrader websocket.Upgrader) HandlerOption[T] {
	return func(service *httpService[T]) {
		service.upgrader = upgrader
	}
}

func NewHandler[T any](entityService we.EntityService[T], options ...HandlerOption[T]) http.Handler {
	service := &httpService[T]{
		controller:   entityService,
		encoder:      we.NewResourceEncoder[T](),
		entityType:   entityTypeOf[T](),
		writeTimeout: 10 * time.Second,
	}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Route("/{type}", func(r chi.Router) {
		r.Use(service.knownType)

		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Method("GET", "/{key}", service.getResource())
			if service.limiter != nil {
				r.With(service.limiter.Middleware).Method("POST", "/{key}", service.executeCommand())
			} else {
				r.Method("POST", "/{key}", service.executeCommand())
			}

			if service.sessions != nil {
				r.Method("DELETE", "/{key}", service.removeResource())
			}
		})

		if service.sessions != nil {
			r.Method("GET", "/{key}/watch", service.watchResource())
		}
	})

	return WithTelemetry(r, "we-http")
}

type httpService[T any] struct {
	log          *zerolog.Logger
	controller   we.EntityService[T]
	entityType   we.EntityType
	encoder      we.EntityEncoder[T]
	sessions     we.SessionStore
	metrics      *Metrics
	limiter      *RateLimiter
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// CorrelationHeader, when present on a command request, becomes the
// correlation id of the events the command publishes.
const CorrelationHeader = "X-Correlation-Id"

func entityTypeOf[T any]() we.EntityType {
	var state T
	return we.EntityTypeOf(state)
}

// knownType answers 404 for aggregates of any type other than the one this
// handler renders.
func (service *httpService[T]) knownType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "type") != service.entityType.String() {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func aggregateId(r *http.Request) we.AggregateId {
	return we.AggregateId{Type: chi.URLParam(r, "type"), Key: chi.URLParam(r, "key")}
}

func (service *httpService[T]) getResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := aggregateId(r)

		entity, err := service.controller.Load(r.Context(), id)
		if err != nil {
			service.log.Info().Err(err).Str("type", id.Type).Str("key", id.Key).Msg("failed to load resource")
			http.Error(w, "failed to load resource", http.StatusInternalServerError)
			return
		}

		service.encode(w, r, &entity)
	}
}

func (service *httpService[T]) executeCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := aggregateId(r)
		start := time.Now()

		contentType := r.Header.Get("Content-type")
		mediaType, _, err := mime.ParseMediaType(contentType)
		if mediaType != we.JSONEncoding || err != nil {
			http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var command we.RemoteCommand
		if err := json.UnmarshalContext(r.Context(), body, &command); err != nil || command.CommandName == "" {
			service.log.Info().Err(err).Msg("failed to unmarshal command")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if correlation := r.Header.Get(CorrelationHeader); correlation != "" {
			ctx = we.WithCorrelation(ctx, we.CorrelationID(correlation))
			w.Header().Set(CorrelationHeader, correlation)
		}

		entity, err := service.controller.Execute(ctx, id, command)
		service.observe(command.CommandName, err, time.Since(start))
		if err != nil {
			status := statusOf(err)
			event := service.log.Info()
			if status == http.StatusInternalServerError {
				event = service.log.Error()
			}
			event.Err(err).Str("command", command.CommandName.String()).Str("id", id.String()).Msg("failed to execute command")
			http.Error(w, errorMessage(status, err), status)
			return
		}

		service.log.Debug().
			Str("command", command.CommandName.String()).
			Str("id", id.String()).
			Str("revision", entity.Revision.String()).
			Msg("executed command")

		service.encode(w, r, &entity)
	}
}

func (service *httpService[T]) removeResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := aggregateId(r)

		count, err := service.sessions.Remove(r.Context(), id)
		if err != nil {
			service.log.Error().Err(err).Str("id", id.String()).Msg("failed to remove resource")
			http.Error(w, "failed to remove resource", http.StatusInternalServerError)
			return
		}

		service.log.Debug().Str("id", id.String()).Int("events", count).Msg("removed resource")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (service *httpService[T]) encode(w http.ResponseWriter, r *http.Request, entity *we.Entity[T]) {
	if err := service.encoder.Encode(w, r, entity); err != nil {
		service.log.Warn().Err(err).Msg("failed to encode resource")
	}
}

// observe labels the metric with the command name only when the service got
// far enough to recognise it, so unknown names cannot grow the label set.
func (service *httpService[T]) observe(command we.CommandName, err error, elapsed time.Duration) {
	if service.metrics == nil {
		return
	}

	if !recognised(err) {
		command = "unknown"
	}

	service.metrics.Observe(command, statusOf(err), elapsed)
}

func recognised(err error) bool {
	switch {
	case err == nil, errors.Is(err, we.RevisionConflict):
		return true
	case we.IsBadCommand(err):
		var notFound we.CommandNotFoundError
		return !errors.As(err, &notFound)
	default:
		return false
	}
}

func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, we.RevisionConflict):
		return http.StatusConflict
	case we.IsBadCommand(err):
		var encoding *we.InvalidEncodingError
		if errors.As(err, &encoding) {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return err.Error()
	case http.StatusConflict:
		return "concurrent update, retry the command"
	default:
		return "failed to execute command"
	}
}
