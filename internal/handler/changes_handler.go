package handler

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/model"
	"storefront/internal/realtime"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
)

const (
	changeBuffer       = 64
	changeWriteTimeout = 5 * time.Second
)

// streamedTables are the tenant tables a dashboard may follow.
var streamedTables = map[string]bool{
	model.TableMenuItems:      true,
	model.TableOpeningHours:   true,
	model.TableRestaurantInfo: true,
	model.TablePromoBanners:   true,
}

type streamMessage struct {
	Type   string             `json:"type"`
	Change *model.ChangeEvent `json:"change,omitempty"`
}

// ChangesHandler streams a tenant's change events over a websocket.
type ChangesHandler struct {
	hub            *realtime.Hub
	originPatterns []string
	logger         zerolog.Logger
}

// NewChangesHandler creates a new change stream handler. originPatterns are
// host patterns allowed to open cross-origin sockets.
func NewChangesHandler(hub *realtime.Hub, originPatterns []string, logger zerolog.Logger) *ChangesHandler {
	return &ChangesHandler{
		hub:            hub,
		originPatterns: originPatterns,
		logger:         logger.With().Str("handler", "changes").Logger(),
	}
}

// Stream handles GET /api/admin/{slug}/changes?table=. It writes a ready
// message and then every change to the table for the tenant until either
// side goes away. Without a table every tenant table is streamed.
func (h *ChangesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	tenant := tenantFrom(r.Context())
	if tenant == nil {
		writeError(w, errSignInRequired, h.logger)
		return
	}

	table := r.URL.Query().Get("table")
	if table != "" && !streamedTables[table] {
		writeError(w, model.NewDomainError(model.ErrCodeMissingField, "Unknown table: "+table), h.logger)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket accept failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := h.hub.Subscribe(ctx, realtime.Topic{Table: table, TenantID: tenant.ID}, changeBuffer)
	defer sub.Close()

	if err := wsjson.Write(ctx, conn, streamMessage{Type: "ready"}); err != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
		return
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case evt, ok := <-sub.C:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, changeWriteTimeout)
			err := wsjson.Write(writeCtx, conn, streamMessage{Type: "change", Change: &evt})
			cancelWrite()
			if err != nil {
				h.logger.Debug().Err(err).Str("tenant", tenant.Slug).Msg("change write failed")
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}
