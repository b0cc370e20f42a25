package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/american-pricer/src/models"
	"github.com/jiaming2012/american-pricer/src/service"
)

// maxRequestBytes caps a POST body before it reaches the JSON decoder.
const maxRequestBytes = 1 << 20

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := &errorResponse{Type: errType, Msg: err.Error()}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// writeError maps rejected input to 400 and everything else to 500.
func writeError(err error, w http.ResponseWriter) {
	errType, status := "internal", http.StatusInternalServerError

	switch {
	case errors.Is(err, models.InvalidInputErr):
		errType, status = "invalid_input", http.StatusBadRequest
	case errors.Is(err, models.NumericInstabilityErr):
		errType = "numeric_instability"
	}

	if encodeErr := setErrorResponse(errType, status, err, w); encodeErr != nil {
		log.Errorf("writeError: %v", encodeErr)
	}
}

type PricingHandler struct {
	svc     *service.PricingService
	decoder *schema.Decoder
}

func NewPricingHandler(svc *service.PricingService) *PricingHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &PricingHandler{
		svc:     svc,
		decoder: decoder,
	}
}

// NewRouter registers every route with its pattern as the http.route tag.
func NewRouter(svc *service.PricingService) *mux.Router {
	h := NewPricingHandler(svc)
	router := mux.NewRouter()

	handleFunc := func(pattern string, handlerFunc http.HandlerFunc, methods ...string) {
		router.Handle(pattern, otelhttp.WithRouteTag(pattern, handlerFunc)).Methods(methods...)
	}

	handleFunc("/healthz", h.Health, http.MethodGet)
	handleFunc("/price", h.Price, http.MethodGet, http.MethodPost)
	handleFunc("/implied-vol", h.ImpliedVol, http.MethodGet, http.MethodPost)

	return router
}

func (h *PricingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Method == http.MethodGet {
		if err := h.decoder.Decode(dst, r.URL.Query()); err != nil {
			return fmt.Errorf("%w: query: %v", models.InvalidInputErr, err)
		}

		return nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: body: %v", models.InvalidInputErr, err)
	}

	return nil
}

func (h *PricingHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := setResponse(map[string]string{"status": "ok"}, w); err != nil {
		log.Errorf("Health: %v", err)
	}
}

func (h *PricingHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req models.PricingRequestDTO
	if err := h.decode(w, r, &req); err != nil {
		writeError(err, w)
		return
	}

	resp, err := h.svc.Price(r.Context(), &req)
	if err != nil {
		writeError(err, w)
		return
	}

	if err := setResponse(resp, w); err != nil {
		log.WithContext(r.Context()).Errorf("Price: %v", err)
	}
}

// ImpliedVol answers 200 for both converged and not_converged searches; the
// status field tells them apart.
func (h *PricingHandler) ImpliedVol(w http.ResponseWriter, r *http.Request) {
	var req models.ImpliedVolRequestDTO
	if err := h.decode(w, r, &req); err != nil {
		writeError(err, w)
		return
	}

	resp, err := h.svc.ImpliedVol(r.Context(), &req)
	if err != nil {
		writeError(err, w)
		return
	}

	if err := setResponse(resp, w); err != nil {
		log.WithContext(r.Context()).Errorf("ImpliedVol: %v", err)
	}
}
