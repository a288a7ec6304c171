package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
	"go.uber.org/zap"
)

// (POST /api/project/{projectId}/exportResources)
func (h *ServiceHandler) ExportResources(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var form v1alpha1.ExportRequest
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator().Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.transferSrv.Export(r.Context(), projectID, form.JobIDs, mappers.PipelineRequestsFormApi(form.Pipelines))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	zap.S().Named("transfer_handler").Infow("resources exported", "project_id", projectID, "jobs", len(result.Jobs), "pipelines", len(result.Pipelines))

	reply(w, r, http.StatusOK, mappers.ExportToApi(result))
}

// (POST /api/project/{projectId}/importResources)
func (h *ServiceHandler) ImportResources(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var form v1alpha1.ImportRequest
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := h.transferSrv.Import(r.Context(), projectID, mappers.JobListFormApi(form.Jobs), mappers.PipelineListFormApi(form.Pipelines))
	zap.S().Named("transfer_handler").Infow("resources imported", "project_id", projectID,
		"not_imported_jobs", len(report.NotImportedJobs), "not_imported_pipelines", len(report.NotImportedPipelines))

	reply(w, r, http.StatusOK, mappers.ImportReportToApi(report))
}
