package server

import (
	"context"
	"net/http"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/logger"
	"commerce-mollie/internal/middleware"
	"commerce-mollie/internal/provider"
	"commerce-mollie/internal/store"
)

// CallbackPath is the single inbound HTTP entry point of the adapter.
const CallbackPath = "/api/mollie/callback"

// CallbackProcessor is the provider operation the server depends on.
type CallbackProcessor interface {
	ProcessCallback(ctx context.Context, order *commerce.Order, req provider.CallbackRequest) (*provider.CallbackResult, error)
}

type Server struct {
	processor CallbackProcessor
	store     store.Repository
}

func New(processor CallbackProcessor, st store.Repository) *Server {
	return &Server{
		processor: processor,
		store:     st,
	}
}

// Handler wires the callback endpoint with request-id, logging and rate
// limiting middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	return logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.RateLimitMiddleware(mux),
		),
	)
}
