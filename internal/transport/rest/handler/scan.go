package handler

import (
	"cardparty/internal/service"
	"encoding/json"
	"net/http"
)

// ScanHandler handles the card-scan endpoint.
type ScanHandler struct {
	scanSvc *service.ScanService
}

func NewScanHandler(scanSvc *service.ScanService) *ScanHandler {
	return &ScanHandler{scanSvc: scanSvc}
}

type scanRequest struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId,omitempty"`
}

// Scan handles POST /v1/scan. Failures are part of the result body,
// not HTTP errors: a wrong card or an expired room is a normal
// gameplay outcome.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.scanSvc.HandleMessage(r.Context(), req.Message, req.RoomID)
	writeJSON(w, http.StatusOK, result)
}
