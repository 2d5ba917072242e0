// Package api exposes the geocoding service over HTTP and serves the
// browser form.
package api

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/fips-geocoder/internal/fips"
	"github.com/sells-group/fips-geocoder/internal/geocoding"
	"github.com/sells-group/fips-geocoder/pkg/location"
)

//go:embed static
var staticFiles embed.FS

var staticFS = mustSub(staticFiles, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("api: embedded " + dir + ": " + err.Error())
	}
	return sub
}

// Geocoder is the service behind the HTTP handlers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
	Suggest(ctx context.Context, partial string, maxResults int, bias *location.Position) ([]geocoding.Suggestion, error)
	Place(ctx context.Context, placeID string) (*geocoding.PlaceResult, error)
	Lookup(ctx context.Context, state, county string) (fips.Codes, error)
	MapConfig() geocoding.MapConfig
	Ready() bool
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
}

// NewRouter returns the HTTP handler for all routes.
func NewRouter(svc Geocoder, opts Options) http.Handler {
	h := &handlers{svc: svc}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", serveIndex(staticFS))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/health", h.health)
	r.Post("/geocode", h.geocode)
	r.Post("/getplace", h.getPlace)
	r.Route("/api", func(r chi.Router) {
		r.Get("/suggestions", h.suggestions)
		r.Get("/map-config", h.mapConfig)
		r.Get("/fips", h.lookupFIPS)
	})

	return r
}

func serveIndex(static fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	}
}
