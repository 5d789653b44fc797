package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/n0madsky/profile-api-assignment/internal/application"
)

type Handler struct {
	service *application.Service
	logger  *slog.Logger
}

func NewHandler(service *application.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(handler.logger))
	r.Use(loggingMiddleware(handler.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", handler.listProfiles)
			r.Get("/{profile}/product_registrations", handler.listProfileRegistrations)
			r.Post("/{profile}/product_registrations", handler.createRegistration)
		})
		r.Get("/product_registrations/{id}", handler.getRegistration)
		r.Get("/product_registration/{id}", handler.getRegistration)
		r.Post("/products", handler.createProduct)
		r.Get("/products/{sku}", handler.getProduct)
	})
	return r
}
