package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/roster"
	"github.com/Alexrp02/pokemon-team-overlay/pkg/types"
)

// Sink is where a session writes its messages; one call per message.
type Sink interface {
	Send(ctx context.Context, payload []byte) error
}

// Serve forwards every snapshot on sub to sink, starting with the one
// taken at subscribe time. It returns nil when the hub closes the
// subscription or ctx ends, and the write error when the client is gone.
func Serve(ctx context.Context, sub *hub.Subscription[roster.Set], sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-sub.C():
			if !ok {
				return nil
			}
			payload, err := json.Marshal(types.FromSet(snap.Value))
			if err != nil {
				return fmt.Errorf("encode snapshot %d: %w", snap.Version, err)
			}
			if err := sink.Send(ctx, payload); err != nil {
				return err
			}
		}
	}
}
