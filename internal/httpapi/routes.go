package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/logger"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/metrics"
	"github.com/Alexrp02/pokemon-team-overlay/internal/roster"
	"github.com/Alexrp02/pokemon-team-overlay/internal/static"
	"github.com/Alexrp02/pokemon-team-overlay/internal/ws"
)

type Deps struct {
	Hub        *hub.Hub[roster.Set]
	Log        *zap.Logger
	Metrics    *metrics.Metrics
	SpritesDir string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(logger.RequestLogger(d.Log.Named("http")))
	r.Use(metrics.RequestMiddleware(d.Metrics))

	r.Get("/healthz", Healthz)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		d.Metrics.Handler(func() {
			if v, err := d.Hub.View(); err == nil {
				d.Metrics.SetHub(v.Version, v.NumSubscribers, v.Dropped)
			}
		}).ServeHTTP(w, req)
	})
	r.Get("/ws", ws.Handler(d.Hub, d.Log.Named("ws"), d.Metrics))
	r.Handle("/sprites/*", Sprites(d.SpritesDir))

	// everything else is the embedded overlay page
	r.Handle("/*", static.Handler())
	return r
}
