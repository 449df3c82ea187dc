// internal/api/server.go
package api

import (
	"context"
	"net/http"

	"culturis/internal/common/logger"
	"culturis/internal/models"
	"culturis/internal/pipeline"
	createuserprofile "culturis/internal/workers/onboarding/create-user-profile"
	refineroute "culturis/internal/workers/routes/refine-route"
	extracttastes "culturis/internal/workers/tastes/extract-tastes"
	scorevenues "culturis/internal/workers/venues/score-venues"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the request pipeline behind the HTTP API.
type Service interface {
	Chat(ctx context.Context, query string) (*pipeline.ChatResult, error)
	Search(ctx context.Context, q string) ([]models.RawEntity, error)
	Insights(ctx context.Context, q pipeline.InsightsQuery) (*pipeline.InsightsResult, error)
	Venues(ctx context.Context, q pipeline.VenuesQuery) (*scorevenues.Output, error)
	ExtractTastes(ctx context.Context, input *extracttastes.Input) (*extracttastes.Output, error)
	RefineRoute(ctx context.Context, input *refineroute.Input) (*refineroute.Output, error)
	Onboard(ctx context.Context, input *createuserprofile.Input) (*createuserprofile.Output, error)
}

type Options struct {
	AllowedOrigins     []string
	RateLimit          int
	DefaultLocation    string
	DefaultCoordinates [2]float64
}

type Server struct {
	service  Service
	opts     Options
	validate *validator.Validate
	logger   logger.Logger
}

func NewServer(service Service, opts Options, log logger.Logger) *Server {
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = "New York, NY"
	}
	if opts.DefaultCoordinates == [2]float64{} {
		opts.DefaultCoordinates = [2]float64{40.7589, -73.9851}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("latlng", validLatLng)

	return &Server{
		service:  service,
		opts:     opts,
		validate: validate,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// validLatLng accepts a [lat, lng] pair with lat in [-90, 90] and lng in
// [-180, 180].
func validLatLng(fl validator.FieldLevel) bool {
	coords, ok := fl.Field().Interface().([]float64)
	if !ok || len(coords) != 2 {
		return false
	}
	lat, lng := coords[0], coords[1]
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.opts.AllowedOrigins))
	r.Use(s.observe)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.opts.RateLimit))

		r.Post("/onboarding", s.onboarding)
		r.Post("/chat", s.chat)
		r.Get("/qloo-search", s.qlooSearch)
		r.Get("/qloo-insights", s.qlooInsights)
		r.Post("/extract-tastes", s.extractTastes)
		r.Post("/venues", s.venues)
		r.Post("/refine-route", s.refineRoute)
	})

	return r
}
