package server

import (
	"errors"
	"fmt"
	"net/http"

	"commerce-mollie/internal/logger"
	"commerce-mollie/internal/provider"
	"commerce-mollie/internal/store"
	"commerce-mollie/internal/utils"

	"go.uber.org/zap"
)

// handleCallback receives both notification channels on one endpoint: a GET
// with a redirect flag is the shopper's browser returning from the hosted
// payment page, a POST with a form-encoded id is a mollie webhook.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	orderNumber := r.URL.Query().Get("order")
	if orderNumber == "" {
		utils.WriteJSONError(w, "missing order parameter", http.StatusBadRequest)
		return
	}

	rec, err := s.store.Get(ctx, orderNumber)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSONError(w, "unknown order", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to load order payment record", zap.Error(err), zap.String("order_number", orderNumber))
		utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	req := provider.CallbackRequest{
		Redirect: r.URL.Query().Has("redirect"),
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			utils.WriteJSONError(w, "invalid form body", http.StatusBadRequest)
			return
		}
		req.PaymentID = r.PostFormValue("id")
	}

	result, err := s.processor.ProcessCallback(ctx, rec.OrderView(), req)
	if err != nil {
		log.Error("callback processing failed", zap.Error(err), zap.String("order_number", orderNumber))
		utils.WriteJSONError(w, "callback processing failed", http.StatusBadGateway)
		return
	}

	// Status and metadata are persisted before responding so mollie only
	// gets an acknowledgement once the update is durable.
	if result.Transaction != nil || len(result.Metadata) > 0 {
		if err := s.store.ApplyCallback(ctx, orderNumber, result.Transaction, result.Metadata); err != nil {
			log.Error("failed to persist callback result", zap.Error(err), zap.String("order_number", orderNumber))
			utils.WriteJSONError(w, "failed to persist callback result", http.StatusInternalServerError)
			return
		}
	}

	if result.RedirectURL != "" {
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
