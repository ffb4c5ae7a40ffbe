package routes

import (
	"net/http"
	"strings"
	"time"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type FeedService interface {
	AuthorizeTopic(topic, callerID string) apierror.ErrorResponse
}

type Subscriber interface {
	Subscribe(topic string) *realtime.Subscription
}

type DefaultRealtimeRoute struct {
	FeedService FeedService
	Hub         Subscriber
	Upgrader    websocket.Upgrader
}

// NewRealtimeDefault accepts WebSocket upgrades from the given origins. An
// empty list, or "*", accepts any origin.
func NewRealtimeDefault(feedService FeedService, hub Subscriber, origins []string) *DefaultRealtimeRoute {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	_, anyOrigin := allowed["*"]

	return &DefaultRealtimeRoute{
		FeedService: feedService,
		Hub:         hub,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || anyOrigin || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Subscribe streams change events for one topic over a WebSocket. Browsers
// cannot set headers on the upgrade, so the token may also come in the
// access_token query parameter.
func (r *DefaultRealtimeRoute) Subscribe(c echo.Context) error {
	topic := strings.TrimSpace(c.QueryParam("topic"))
	if topic == "" {
		return fail(c, apierror.NewMissingParamError("topic"))
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}
	if apierr := r.FeedService.AuthorizeTopic(topic, caller); apierr != nil {
		return fail(c, apierr)
	}

	// Subscribe before the handshake completes so that nothing published
	// after the client sees the upgrade is missed.
	sub := r.Hub.Subscribe(topic)
	defer sub.Close()

	conn, err := r.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		log.Warnf("realtime: upgrade failed for topic %s: %v", topic, err)
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil

		case event, ok := <-sub.C:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return nil
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and signals when the peer goes away.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
