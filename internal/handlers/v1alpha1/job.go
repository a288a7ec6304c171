package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/v1alpha1/mappers"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/validator"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"go.uber.org/zap"
)

// (GET /api/project/{projectId}/job)
func (h *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	zap.S().Named("job_handler").Infof("Receiving all jobs in project '%s'", projectID)

	jobs, err := h.jobSrv.GetAll(r.Context(), projectID)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.JobListToApi(jobs))
}

// (GET /api/project/{projectId}/job/{id})
func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	job, err := h.jobSrv.Get(r.Context(), projectID, id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	reply(w, r, http.StatusOK, mappers.JobToApi(*job))
}

// (POST /api/project/{projectId}/job)
func (h *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	logger := zap.S().Named("job_handler")

	var form v1alpha1.Job
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator(validator.NewJobValidationRules()...).Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	logger.Infof("Creating new job in project '%s'", projectID)
	id, err := h.jobSrv.Create(r.Context(), projectID, mappers.JobFormApi(form))
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	logger.Infof("Job '%s' in project '%s' successfully created", id, projectID)

	replyText(w, r, http.StatusCreated, id)
}

// (POST /api/project/{projectId}/job/{id})
func (h *ServiceHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	var form v1alpha1.Job
	if err := decode(r, &form, false); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := newValidator(validator.NewJobValidationRules()...).Struct(form); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.jobSrv.Update(r.Context(), projectID, id, mappers.JobFormApi(form)); err != nil {
		replyServiceError(w, r, err)
		return
	}
	zap.S().Named("job_handler").Infof("Job '%s' in project '%s' successfully updated", id, projectID)

	w.WriteHeader(http.StatusNoContent)
}

// (POST /api/project/{projectId}/job/{id}/status?status=)
func (h *ServiceHandler) UpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	status := r.URL.Query().Get("status")
	if status == "" {
		replyError(w, r, http.StatusBadRequest, "missing status")
		return
	}

	var form v1alpha1.JobStatusUpdate
	if err := decode(r, &form, true); err != nil {
		replyError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.jobSrv.UpdateStatus(r.Context(), projectID, id, model.Status(status), form.StartedAt, form.FinishedAt); err != nil {
		replyServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// (DELETE /api/project/{projectId}/job/{id})
func (h *ServiceHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")

	if err := h.jobSrv.Delete(r.Context(), projectID, id); err != nil {
		replyServiceError(w, r, err)
		return
	}
	zap.S().Named("job_handler").Infof("Job '%s' in project '%s' successfully deleted", id, projectID)

	w.WriteHeader(http.StatusNoContent)
}

// (POST /api/project/{projectId}/job/{id}/copy)
func (h *ServiceHandler) CopyJob(w http.ResponseWriter, r *http.Request) {
	projectID, id := chi.URLParam(r, "projectId"), chi.URLParam(r, "id")
	zap.S().Named("job_handler").Infof("Copying job '%s' in project '%s'", id, projectID)

	copyID, err := h.jobSrv.Copy(r.Context(), projectID, id)
	if err != nil {
		replyServiceError(w, r, err)
		return
	}
	replyText(w, r, http.StatusOK, copyID)
}
