package handler

import (
	"cardparty/internal/model"
	"cardparty/internal/service"
	"cardparty/internal/transport/rest/middleware"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"
)

// RoomHandler handles the owner-facing room endpoints.
type RoomHandler struct {
	roomSvc *service.RoomService
}

func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// Create handles POST /v1/rooms. The body carries the room type plus
// plugin-specific fields, which are passed through to the plugin's
// default-data builder untouched.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	roomType, _ := body["type"].(string)
	if roomType == "" {
		writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	delete(body, "type")

	room, qrPayload, err := h.roomSvc.Create(r.Context(), ownerID, model.RoomType(roomType), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"roomId":    room.UUID,
		"qrPayload": qrPayload,
	})
}

// Get handles GET /v1/rooms/{uuid}, preferring live gameplay state
// over the durable record.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomUUID := mux.Vars(r)["uuid"]
	ownerID := middleware.GetUserID(r.Context())

	room, err := h.roomSvc.Live(r.Context(), roomUUID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if room == nil {
		room, err = h.roomSvc.Get(r.Context(), roomUUID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if room.OwnerID != ownerID {
		writeError(w, http.StatusForbidden, "not the room owner")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// End handles POST /v1/rooms/{uuid}/end. Ending twice is a success.
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	roomUUID := mux.Vars(r)["uuid"]
	ownerID := middleware.GetUserID(r.Context())

	if err := h.roomSvc.EndByOwner(r.Context(), roomUUID, ownerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(model.RoomEnded)})
}

// UpdateData handles PUT /v1/rooms/{uuid}/data.
func (h *RoomHandler) UpdateData(w http.ResponseWriter, r *http.Request) {
	roomUUID := mux.Vars(r)["uuid"]
	ownerID := middleware.GetUserID(r.Context())

	var data model.PluginData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.UpdatePluginData(r.Context(), roomUUID, ownerID, &data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// QR handles GET /v1/rooms/{uuid}/qr, rendering the room's QR payload
// as a printable PNG.
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	roomUUID := mux.Vars(r)["uuid"]
	ownerID := middleware.GetUserID(r.Context())

	room, err := h.roomSvc.Get(r.Context(), roomUUID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if room.OwnerID != ownerID {
		writeError(w, http.StatusForbidden, "not the room owner")
		return
	}

	png, err := qrcode.Encode(h.roomSvc.QRPayload(room), qrcode.Medium, 512)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr encoding failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomEnded):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
