package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/keranjangku/keranjangku-backend/api/middleware"
	"github.com/keranjangku/keranjangku-backend/api/responses"
	"github.com/keranjangku/keranjangku-backend/api/validators"
	"github.com/keranjangku/keranjangku-backend/internal/baskets"
	"github.com/keranjangku/keranjangku-backend/internal/ws"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via the bearer token, not the Origin header.
		return true
	},
}

// BasketSocket upgrades the connection and subscribes the caller to the
// basket's broadcast room. Access is the same check as reading the basket.
func BasketSocket(hub *ws.Hub, basketsSvc baskets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil || basketsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "websocket unavailable"))
			return
		}

		basketID, err := validators.ParseUUIDParam(r, "basketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if _, err := basketsSvc.Get(r.Context(), actorID, basketID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			if logg != nil {
				logg.Warn(r.Context(), "websocket upgrade failed")
			}
			return
		}

		hub.Subscribe(basketID, conn)
		defer func() {
			hub.Unsubscribe(basketID, conn)
			_ = conn.Close()
		}()

		// Drain client frames until disconnect; the hub only pushes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
