package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/validator"
	"go.uber.org/zap"
)

// (GET /api/project/{projectId}/pipeline)
func (h *ServiceHandler) ListPipelines(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	pipelines, err := h.pipelineSrv.GetAll(r.Context(), projectID)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.PipelineListToApi(pipelines))
}

// (GET /api/project/{projectId}/pipeline/{id})
func (h *ServiceHandler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	pipeline, err := h.pipelineSrv.Get(r.Context(), projectID, id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.PipelineToApi(*pipeline))
}

// (POST /api/project/{projectId}/pipeline)
func (h *ServiceHandler) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var form v1alpha1.Pipeline
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator(validator.NewPipelineValidationRules()...).Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.pipelineSrv.Create(r.Context(), projectID, mappers.PipelineFormApi(form))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	zap.S().Named("pipeline_handler").Infof("Pipeline '%s' in project '%s' successfully created", id, projectID)

	replyText(w, r, http.StatusCreated, id)
}

// (PUT /api/project/{projectId}/pipeline/{id})
func (h *ServiceHandler) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	var form v1alpha1.Pipeline
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator(validator.NewPipelineValidationRules()...).Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pipelineSrv.Update(r.Context(), projectID, id, mappers.PipelineFormApi(form)); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (PATCH /api/project/{projectId}/pipeline/{id})
func (h *ServiceHandler) PatchPipeline(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	var form v1alpha1.PipelinePatch
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator(validator.NewPipelineValidationRules()...).Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pipelineSrv.Patch(r.Context(), projectID, id, mappers.PipelinePatchFormApi(form)); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /api/project/{projectId}/pipeline/{id})
func (h *ServiceHandler) DeletePipeline(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	if err := h.pipelineSrv.Delete(r.Context(), projectID, id); err != nil {
		replyServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// (POST /api/project/{projectId}/pipeline/{id}/copy)
func (h *ServiceHandler) CopyPipeline(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	copyID, err := h.pipelineSrv.Copy(r.Context(), projectID, id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyText(w, r, http.StatusOK, copyID)
}
