package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/eventboard/internal/application/admission"
	"github.com/baechuer/eventboard/internal/application/lifecycle"
	"github.com/baechuer/eventboard/internal/domain"
	appCtx "github.com/baechuer/eventboard/internal/pkg/context"
	"github.com/baechuer/eventboard/internal/pkg/logger"
	"github.com/baechuer/eventboard/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Handler struct {
	lifecycle *lifecycle.Service
	admission *admission.Service
}

func NewHandler(lc *lifecycle.Service, adm *admission.Service) *Handler {
	return &Handler{lifecycle: lc, admission: adm}
}

type createEventBody struct {
	CategoryID        string `json:"category_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	EventDate         string `json:"event_date"`
	ParticipantLimit  int    `json:"participant_limit"`
	RequestModeration *bool  `json:"request_moderation"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	var body createEventBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid body", nil)
		return
	}

	categoryID, err := uuid.Parse(body.CategoryID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid category_id", map[string]string{
			"category_id": "must be a valid uuid",
		})
		return
	}

	eventDate, err := time.Parse(time.RFC3339, strings.TrimSpace(body.EventDate))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid event_date", map[string]string{
			"event_date": "must be RFC3339",
		})
		return
	}

	// Moderation defaults on when the field is omitted.
	moderation := true
	if body.RequestModeration != nil {
		moderation = *body.RequestModeration
	}

	e, err := h.lifecycle.Create(r.Context(), lifecycle.CreateCmd{
		InitiatorID:       userID,
		CategoryID:        categoryID,
		Title:             body.Title,
		Description:       body.Description,
		EventDate:         eventDate.UTC(),
		ParticipantLimit:  body.ParticipantLimit,
		RequestModeration: moderation,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusCreated, toEventResponse(e))
}

type updateEventBody struct {
	CategoryID        *string `json:"category_id"`
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	EventDate         *string `json:"event_date"`
	ParticipantLimit  *int    `json:"participant_limit"`
	RequestModeration *bool   `json:"request_moderation"`
	StateAction       *string `json:"state_action"`
	Note              string  `json:"note"`
}

// buildPatch converts wire fields into a domain patch. A false second return
// means a 400 was already written.
func buildPatch(w http.ResponseWriter, r *http.Request, body updateEventBody) (domain.EventPatch, *domain.StateAction, bool) {
	var patch domain.EventPatch
	patch.Title = body.Title
	patch.Description = body.Description
	patch.ParticipantLimit = body.ParticipantLimit
	patch.RequestModeration = body.RequestModeration

	if body.CategoryID != nil {
		id, err := uuid.Parse(*body.CategoryID)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "validation_error", "invalid category_id", map[string]string{
				"category_id": "must be a valid uuid",
			})
			return patch, nil, false
		}
		patch.CategoryID = &id
	}

	if body.EventDate != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*body.EventDate))
		if err != nil {
			fail(w, r, http.StatusBadRequest, "validation_error", "invalid event_date", map[string]string{
				"event_date": "must be RFC3339",
			})
			return patch, nil, false
		}
		tt := t.UTC()
		patch.EventDate = &tt
	}

	var action *domain.StateAction
	if body.StateAction != nil {
		a := domain.StateAction(strings.TrimSpace(*body.StateAction))
		action = &a
	}
	return patch, action, true
}

func (h *Handler) UpdateOwnerEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	var body updateEventBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid body", nil)
		return
	}

	patch, action, ok := buildPatch(w, r, body)
	if !ok {
		return
	}

	e, err := h.lifecycle.UpdateByOwner(r.Context(), lifecycle.OwnerUpdateCmd{
		EventID:     eventID,
		RequesterID: userID,
		Patch:       patch,
		StateAction: action,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(e))
}

func (h *Handler) ModerateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	var body updateEventBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid body", nil)
		return
	}

	patch, action, ok := buildPatch(w, r, body)
	if !ok {
		return
	}

	e, err := h.lifecycle.UpdateByModerator(r.Context(), lifecycle.ModeratorUpdateCmd{
		EventID:     eventID,
		Patch:       patch,
		StateAction: action,
		Note:        strings.TrimSpace(body.Note),
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toEventResponse(e))
}

func (h *Handler) ModerationHistory(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	from, ok := queryInt(w, r, "from", 0)
	if !ok {
		return
	}
	size, ok := queryInt(w, r, "size", 10)
	if !ok {
		return
	}

	entries, err := h.lifecycle.History(r.Context(), eventID, from, size)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toModerationResponses(entries))
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	eventID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("eventId")))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid eventId", map[string]string{
			"eventId": "must be a valid uuid",
		})
		return
	}

	req, err := h.admission.Create(r.Context(), eventID, userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusCreated, toRequestResponse(*req))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	requestID, ok := pathUUID(w, r, "requestID")
	if !ok {
		return
	}

	req, err := h.admission.Cancel(r.Context(), requestID, userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toRequestResponse(*req))
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	items, err := h.admission.ListForRequester(r.Context(), userID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toRequestResponses(items))
}

func (h *Handler) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	items, err := h.admission.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, toRequestResponses(items))
}

type bulkDecisionBody struct {
	RequestIDs []string `json:"request_ids"`
	Status     string   `json:"status"`
}

func (h *Handler) DecideRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	var body bulkDecisionBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid body", nil)
		return
	}

	ids := make([]uuid.UUID, 0, len(body.RequestIDs))
	for _, raw := range body.RequestIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			fail(w, r, http.StatusBadRequest, "validation_error", "invalid request id", map[string]string{
				"request_ids": "every element must be a valid uuid",
			})
			return
		}
		ids = append(ids, id)
	}

	res, err := h.admission.BulkUpdate(r.Context(), admission.BulkCmd{
		OrganizerID: userID,
		EventID:     eventID,
		RequestIDs:  ids,
		Target:      domain.RequestStatus(strings.TrimSpace(body.Status)),
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}

	response.Data(w, http.StatusOK, bulkDecisionResponse{
		ConfirmedRequests: toRequestResponses(res.Confirmed),
		RejectedRequests:  toRequestResponses(res.Rejected),
	})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid "+name, map[string]string{
			name: "must be a valid uuid",
		})
		return uuid.UUID{}, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_error", "invalid "+name, map[string]string{
			name: "must be an integer",
		})
		return 0, false
	}
	return n, true
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		status := http.StatusInternalServerError
		switch ae.Code {
		case domain.CodeValidation:
			status = http.StatusBadRequest
		case domain.CodeNotFound:
			status = http.StatusNotFound
		case domain.CodeConflict:
			status = http.StatusConflict
		}
		fail(w, r, status, string(ae.Code), ae.Message, ae.Meta)
		return
	}

	// Do not leak internal details to callers.
	logger.WithCtx(r.Context()).Error().Err(err).Msg("unhandled error")
	fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}
