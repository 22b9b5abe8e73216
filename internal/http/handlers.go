package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cherrizbox/socialverify/internal/account"
	"github.com/cherrizbox/socialverify/internal/cache"
	"github.com/cherrizbox/socialverify/internal/observability/logger"
	"github.com/cherrizbox/socialverify/internal/store"
	"github.com/cherrizbox/socialverify/internal/verify"
)

// Handler agrupa las dependencias de los endpoints.
type Handler struct {
	Dispatcher *verify.Dispatcher
	Cache      cache.Client

	// StorePing opcional: sólo los drivers con conexión propia (postgres)
	// lo aportan; los clientes HTTP no tienen nada barato que chequear.
	StorePing func(ctx context.Context) error
}

// SendCode maneja POST /v1/verification/send: normaliza el payload, corre el
// pipeline y traduce errores de dominio al contrato {ok, message, code}.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // máx 1MB
	defer r.Body.Close()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	req, err := verify.ParseRequest(r.Header.Get("Content-Type"), payload)
	if err != nil {
		log := logger.From(r.Context())
		switch {
		case errors.Is(err, verify.ErrUserDataRequired):
			log.Warn("user data missing from request", logger.Bytes(len(payload)))
			writeFailure(w, http.StatusBadRequest, msgUserDataMissing)
		default:
			log.Warn("unparseable request payload", logger.Err(err), logger.Bytes(len(payload)))
			writeFailure(w, http.StatusBadRequest, msgInvalidFormat)
		}
		return
	}

	res, err := h.Dispatcher.Send(r.Context(), req)
	if err != nil {
		h.writeDispatchError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, Result{OK: true, Message: msgSuccess, Code: res.Code})
}

func (h *Handler) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeFailure(w, http.StatusNotFound, msgDocNotFound)
	case errors.Is(err, verify.ErrNoStoredCode):
		writeFailure(w, http.StatusNotFound, msgNoStoredCode)
	default:
		// Detalle completo solo en logs; al cliente nunca se le filtra nada.
		logger.From(r.Context()).Error("verification dispatch failed", logger.Err(err))
		writeFailure(w, http.StatusInternalServerError, msgInternalError)
	}
}

// Healthz responde mientras el proceso viva.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz verifica los colaboradores con estado.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.Cache != nil {
		if err := h.Cache.Ping(r.Context()); err != nil {
			logger.From(r.Context()).Warn("readiness check failed", logger.Component("cache"), logger.Err(err))
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	if h.StorePing != nil {
		if err := h.StorePing(r.Context()); err != nil {
			logger.From(r.Context()).Warn("readiness check failed", logger.Component("store"), logger.Err(err))
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
