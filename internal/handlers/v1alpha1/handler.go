package v1alpha1

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/ibagroup-eu/vf-job-storage/api/v1alpha1"
	"github.com/ibagroup-eu/vf-job-storage/internal/handlers/validator"
	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/pkg/requestid"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	jobSrv        *service.JobService
	pipelineSrv   *service.PipelineService
	connectionSrv *service.ConnectionService
	transferSrv   *service.TransferService
}

func NewServiceHandler(jobService *service.JobService, pipelineService *service.PipelineService, connectionService *service.ConnectionService, transferService *service.TransferService) *ServiceHandler {
	return &ServiceHandler{
		jobSrv:        jobService,
		pipelineSrv:   pipelineService,
		connectionSrv: connectionService,
		transferSrv:   transferService,
	}
}

func (h *ServiceHandler) RegisterApi(router chi.Router) {
	router.Route("/api/project/{projectId}", func(r chi.Router) {
		r.Get("/job", h.ListJobs)
		r.Post("/job", h.CreateJob)
		r.Get("/job/{id}", h.GetJob)
		r.Post("/job/{id}", h.UpdateJob)
		r.Delete("/job/{id}", h.DeleteJob)
		r.Post("/job/{id}/status", h.UpdateJobStatus)
		r.Post("/job/{id}/copy", h.CopyJob)

		r.Get("/pipeline", h.ListPipelines)
		r.Post("/pipeline", h.CreatePipeline)
		r.Get("/pipeline/{id}", h.GetPipeline)
		r.Put("/pipeline/{id}", h.UpdatePipeline)
		r.Patch("/pipeline/{id}", h.PatchPipeline)
		r.Delete("/pipeline/{id}", h.DeletePipeline)
		r.Post("/pipeline/{id}/copy", h.CopyPipeline)

		r.Get("/connections", h.ListConnections)
		r.Delete("/connections", h.DeleteConnections)
		r.Post("/connection", h.CreateConnection)
		r.Get("/connections/{key}", h.GetConnection)
		r.Put("/connections/{key}", h.UpdateConnection)
		r.Delete("/connections/{key}", h.DeleteConnection)

		r.Post("/exportResources", h.ExportResources)
		r.Post("/importResources", h.ImportResources)
	})
}

func newValidator(rules ...validator.ValidationRule) *validator.Validator {
	v := validator.NewValidator()
	v.Register(rules...)
	return v
}

// decode reads a JSON body. An empty body is accepted when optional is set.
func decode(r *http.Request, v any, optional bool) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func replyText(w http.ResponseWriter, r *http.Request, status int, text string) {
	render.Status(r, status)
	render.PlainText(w, r, text)
}

func replyError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	reply(w, r, status, v1alpha1.Error{Message: msg, RequestID: requestid.Ptr(r.Context())})
}

// replyServiceError maps service errors onto HTTP statuses.
func replyServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		duplicateName *service.ErrDuplicateName
		duplicateKey  *service.ErrDuplicateKey
		notFound      *service.ErrResourceNotFound
		unresolved    *service.ErrUnresolvedReference
		invalidName   *validator.ErrInvalidName
	)

	switch {
	case errors.As(err, &duplicateName), errors.As(err, &unresolved), errors.As(err, &invalidName):
		replyError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		replyError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &duplicateKey):
		replyError(w, r, http.StatusConflict, err.Error())
	default:
		zap.S().Named("handlers").Errorw("request failed", "path", r.URL.Path, "request_id", requestid.FromRequest(r), "error", err)
		replyError(w, r, http.StatusInternalServerError, err.Error())
	}
}
