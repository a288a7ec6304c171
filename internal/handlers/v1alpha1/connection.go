package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
)

// (GET /api/project/{projectId}/connections)
func (h *ServiceHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	connections, err := h.connectionSrv.GetAll(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.ConnectionListToApi(connections))
}

// (GET /api/project/{projectId}/connections/{key})
func (h *ServiceHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	connection, err := h.connectionSrv.Get(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "key"))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.ConnectionToApi(*connection))
}

// (POST /api/project/{projectId}/connection)
func (h *ServiceHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.Connection
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.connectionSrv.Create(r.Context(), chi.URLParam(r, "projectId"), mappers.ConnectionFormApi(form))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyText(w, r, http.StatusCreated, key)
}

// (PUT /api/project/{projectId}/connections/{key})
func (h *ServiceHandler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.Connection
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// the path names the connection
	form.Key = chi.URLParam(r, "key")

	if err := h.connectionSrv.Update(r.Context(), chi.URLParam(r, "projectId"), mappers.ConnectionFormApi(form)); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /api/project/{projectId}/connections/{key})
func (h *ServiceHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.connectionSrv.Delete(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "key")); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /api/project/{projectId}/connections)
func (h *ServiceHandler) DeleteConnections(w http.ResponseWriter, r *http.Request) {
	if err := h.connectionSrv.DeleteAll(r.Context(), chi.URLParam(r, "projectId")); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
