package handler

import (
	"net/http"

	"k9harmony/internal/audit/service"
	httputil "k9harmony/pkg/http"
	"k9harmony/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuditHandler struct {
	recorder service.Recorder
	log      *logger.Logger
}

func NewAuditHandler(recorder service.Recorder, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		recorder: recorder,
		log:      log,
	}
}

func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entityType, err := httputil.RequiredQuery(r, "entity_type")
	if err != nil {
		h.writeError(w, "GetByEntity", err)
		return
	}
	entityID, err := httputil.RequiredQuery(r, "entity_id")
	if err != nil {
		h.writeError(w, "GetByEntity", err)
		return
	}

	entries, err := h.recorder.GetLogsByEntity(r.Context(), entityType, entityID)
	if err != nil {
		h.writeError(w, "GetByEntity", err)
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByEntity", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuditHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit", h.GetByEntity)
}
