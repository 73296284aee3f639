package handler

import (
	"net/http"
	"strconv"

	"github.com/dojosmash/dojo-smash/internal/api/response"
	"github.com/dojosmash/dojo-smash/internal/services/tabla"
)

// TablaHandler handles global table endpoints
type TablaHandler struct {
	tabla *tabla.Service
}

// NewTablaHandler creates a new tabla handler
func NewTablaHandler(tabla *tabla.Service) *TablaHandler {
	return &TablaHandler{tabla: tabla}
}

// Table handles GET /tabla-global
func (h *TablaHandler) Table(w http.ResponseWriter, r *http.Request) {
	t, err := h.tabla.Table(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TableFromService(t))
}

// Summary handles GET /tabla-global/resumen
func (h *TablaHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.tabla.Summary(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SummaryFromService(s))
}

// Export handles GET /tabla-global/exportar
func (h *TablaHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, week, err := h.tabla.Export(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", tabla.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+tabla.FileName(week)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
