package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	oembedhandlers "ChartEmbed/internal/api/handlers/oembed"
)

// RegisterOEmbedRoutes registers the oEmbed endpoints on the router.
//
// Routes:
//   - GET /oembed                   oEmbed document for a chart URL (also /oembed/)
//   - GET /charts/{id}/oembed-link  discovery <link> tag for a chart page head
//
// oEmbed consumers call the endpoint from browsers on arbitrary origins, so the
// group carries its own CORS policy.
func RegisterOEmbedRoutes(r chi.Router, handler *oembedhandlers.Handler, corsOrigins []string) {
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/oembed", handler.HandleGetOEmbed)
		r.Get("/oembed/", handler.HandleGetOEmbed)
		r.Get("/charts/{id}/oembed-link", handler.HandleGetDiscoveryLink)
	})
}
