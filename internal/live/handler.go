package live

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	commonhttp "github.com/AlibekovAA/cloudrun-demo/internal/common/http"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/idgen"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

type Handler struct {
	hub      *Hub
	upgrader gorillaWS.Upgrader
	ids      idgen.IDGenerator
	log      *logger.Logger
}

func NewHandler(hub *Hub, ids idgen.IDGenerator, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		ids: ids,
		log: log,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin:     sameOrigin,
		},
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	return origin == "http://"+host || origin == "https://"+host
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "live_upgrade_failed",
		}).Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, h.ids.NewID(), h.log)
	if !h.hub.Register(client) {
		conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseTryAgainLater, "shutting down"))
		conn.Close()
		return
	}
	client.Start()

	h.log.WithFields(ctx, logger.Fields{
		"client_id": client.id,
		"client_ip": commonhttp.GetClientIP(r),
		"action":    "live_connect",
	}).Info("dashboard connected")
}
