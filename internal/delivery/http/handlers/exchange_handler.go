package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/humanistic-tech/exchange-service/internal/delivery/http/dto/exchange/request"
	"github.com/humanistic-tech/exchange-service/internal/delivery/http/dto/exchange/response"
	"github.com/humanistic-tech/exchange-service/internal/domain"
	exchangedto "github.com/humanistic-tech/exchange-service/internal/usecase/dto/exchange"
	"github.com/humanistic-tech/exchange-service/internal/usecase/exchange"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExchangeHandler is the intake API consumed by chat bots and admin tooling.
type ExchangeHandler struct {
	usecase exchange.ExchangeUsecase
}

func NewExchangeHandler(uc exchange.ExchangeUsecase) *ExchangeHandler {
	return &ExchangeHandler{usecase: uc}
}

func NewRouter(handler *ExchangeHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/transactions", handler.CreateTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", handler.GetTransaction).Methods("GET")
	r.HandleFunc("/routes", handler.GetRoutes).Methods("GET")
	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (h *ExchangeHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := h.usecase.CreateTransaction(&exchangedto.CreateTransactionInput{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		ToAddress:    req.ToAddress,
		Amount:       req.Amount,
		Owner: domain.Owner{
			UserID:   req.UserID,
			Username: req.Username,
		},
		Channel: domain.Channel{
			Name:        req.Channel,
			CallbackURL: req.CallbackURL,
			ReturnURL:   req.ReturnURL,
		},
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransaction) {
			writeError(w, http.StatusBadRequest, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, response.FromDomainTransaction(tx))
}

func (h *ExchangeHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	tx, err := h.usecase.GetTransactionByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, response.FromDomainTransaction(tx))
}

func (h *ExchangeHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.usecase.GetRoutes(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, routes)
}

func (h *ExchangeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response.ErrorResponse{Error: err.Error()})
}
