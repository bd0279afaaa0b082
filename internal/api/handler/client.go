package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/request"
	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/core"
	"github.com/oelgazzar/nidgate/internal/store"
)

type Client struct {
	svc    *core.ClientService
	logger zerolog.Logger
}

func NewClient(svc *core.ClientService, logger zerolog.Logger) *Client {
	return &Client{svc: svc, logger: logger}
}

// Create registers a client and returns it with its freshly issued API key.
// The key is not retrievable again afterwards.
func (h *Client) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateClient
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := store.Fields{"name": req.Name}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	client, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, client)
}

// List returns clients, optionally narrowed by query-parameter filters.
// Unknown filter names are rejected.
func (h *Client) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.FilterParams(r.Context(), request.ParsePage(r), request.Filters(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, clients)
}

func (h *Client) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, client)
}

// Delete removes a client. An unknown id is not an error; the response just
// reports deleted false.
func (h *Client) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
