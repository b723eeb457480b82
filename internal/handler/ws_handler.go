package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
	ws "github.com/stemsi/qrattend-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a class live feed to its teacher.
type WSHandler struct {
	feed     *service.LiveFeed
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(feed *service.LiveFeed, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:     feed,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// LiveStream godoc
// WS /ws/v1/teacher/live?token=...
// Pushes attendance_marked and session_closed events of the teacher's class.
func (h *WSHandler) LiveStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	classID := claims.ClassID

	// Subscribe before the upgrade so broker errors are still plain HTTP.
	ctx := c.Request.Context()
	sub, err := h.feed.Subscribe(ctx, classID)
	if err != nil {
		h.log.Error().Err(err).Str("class_id", classID).Msg("Live feed subscribe failed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("class_id", classID).Str("teacher", claims.UserID).Logger()
	wsLog.Info().Msg("Teacher attached to live feed")

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, ClassID: classID}); err != nil {
		return
	}

	// The reader only forwards pings; all writes happen on this goroutine.
	pings := make(chan struct{}, 1)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	keepAlive := time.NewTicker(ws.PingPeriod)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readerDone:
			wsLog.Info().Msg("Teacher detached from live feed")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case payload, ok := <-sub.Messages():
			if !ok {
				ws.WriteError(conn, "live feed closed")
				return
			}
			if err := ws.WriteRaw(conn, payload); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
