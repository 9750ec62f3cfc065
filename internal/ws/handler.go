package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/metrics"
	"github.com/Alexrp02/pokemon-team-overlay/internal/roster"
)

const writeTimeout = 3 * time.Second

// connSink writes each payload as one text frame.
type connSink struct {
	conn *websocket.Conn
}

func (s connSink) Send(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, payload)
}

// Handler upgrades the request and streams roster sets until the client
// goes away or the hub shuts down. m may be nil.
func Handler(h *hub.Hub[roster.Set], log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := h.Subscribe()
		if err != nil {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		defer sub.Close()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// any origin, same as the CORS policy on the rest of the server
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		if m != nil {
			m.SessionOpened()
			defer m.SessionClosed()
		}

		// Clients never send anything; CloseRead handles control frames and
		// cancels ctx once the peer disconnects.
		ctx := conn.CloseRead(r.Context())

		err = Serve(ctx, sub, connSink{conn: conn})
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled),
			websocket.CloseStatus(err) == websocket.StatusNormalClosure,
			websocket.CloseStatus(err) == websocket.StatusGoingAway:
			// client left
		default:
			log.Debug("session ended", zap.Error(err))
		}
	}
}
