package wehttp

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/weegigs/wee-counter-go/we"
)

// watchResource streams the resource over a websocket: once on connect and
// again after every revision. Bursts of revisions are coalesced into a single
// message carrying the latest state.
func (service *httpService[T]) watchResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := aggregateId(r)

		conn, err := service.upgrader.Upgrade(w, r, nil)
		if err != nil {
			service.log.Info().Err(err).Str("id", id.String()).Msg("failed to upgrade watch connection")
			return
		}
		defer conn.Close()

		changed := make(chan struct{}, 1)
		cancel := service.sessions.Watch(id, func(we.Revision) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		service.log.Debug().Str("id", id.String()).Msg("watching resource")

		for {
			if err := service.push(r, conn, id); err != nil {
				service.log.Info().Err(err).Str("id", id.String()).Msg("watch closed")
				return
			}

			select {
			case <-changed:
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}

func (service *httpService[T]) push(r *http.Request, conn *websocket.Conn, id we.AggregateId) error {
	entity, err := service.controller.Load(r.Context(), id)
	if err != nil {
		return err
	}

	resource, err := service.encoder.Resource(&entity)
	if err != nil {
		return err
	}

	message, err := json.Marshal(resource)
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(service.writeTimeout)); err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}
