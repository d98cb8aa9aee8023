// ABOUTME: Extraction handlers for the Huma API
// ABOUTME: Submit, list, inspect, refresh, select and clear extraction jobs

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anhbatoichoi/content-capture-universe/api/dto/mappers"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/requests"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/responses"
	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
)

// JobStore is the part of the extraction job store the handlers use
type JobStore interface {
	Submit(ctx context.Context, url, title string, source domain.PageSource) (string, error)
	List() []*domain.ExtractionJob
	Get(id string) (*domain.ExtractionJob, error)
	Refresh(ctx context.Context, id string) (*domain.ExtractionJob, error)
	ClearAll(ctx context.Context) error
	Select(id string) error
	Selected() (*domain.ExtractionJob, bool)
	ClearSelection()
}

// PollingCounter reports how many jobs are being polled
type PollingCounter interface {
	Active() int
}

// ExtractionHandler handles extraction job requests
type ExtractionHandler struct {
	store     JobStore
	poller    PollingCounter
	converter domain.MarkdownConverter
}

// NewExtractionHandler creates a new extraction handler. poller may be nil.
func NewExtractionHandler(store JobStore, poller PollingCounter, converter domain.MarkdownConverter) *ExtractionHandler {
	return &ExtractionHandler{
		store:     store,
		poller:    poller,
		converter: converter,
	}
}

// RegisterRoutes registers all extraction routes
func (h *ExtractionHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "submitExtraction",
		Method:        http.MethodPost,
		Path:          "/extractions",
		Summary:       "Submit an extraction job",
		Description:   "Sends the page to the extraction service and polls the job until it finishes",
		Tags:          []string{"Extractions"},
		DefaultStatus: http.StatusAccepted,
	}, h.Submit)

	huma.Register(api, huma.Operation{
		OperationID: "listExtractions",
		Method:      http.MethodGet,
		Path:        "/extractions",
		Summary:     "List extraction jobs",
		Description: "Returns all jobs, newest first",
		Tags:        []string{"Extractions"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "clearExtractions",
		Method:        http.MethodDelete,
		Path:          "/extractions",
		Summary:       "Clear all extraction jobs",
		Description:   "Stops all polling and removes every job and the persisted record",
		Tags:          []string{"Extractions"},
		DefaultStatus: http.StatusNoContent,
	}, h.ClearAll)

	huma.Register(api, huma.Operation{
		OperationID: "getSelectedExtraction",
		Method:      http.MethodGet,
		Path:        "/extractions/selected",
		Summary:     "Get the selected extraction job",
		Tags:        []string{"Extractions"},
	}, h.Selected)

	huma.Register(api, huma.Operation{
		OperationID: "selectExtraction",
		Method:      http.MethodPut,
		Path:        "/extractions/selected",
		Summary:     "Select an extraction job",
		Description: "An empty id clears the selection",
		Tags:        []string{"Extractions"},
	}, h.Select)

	huma.Register(api, huma.Operation{
		OperationID: "getExtraction",
		Method:      http.MethodGet,
		Path:        "/extractions/{id}",
		Summary:     "Get an extraction job",
		Description: "Tiptap content is rendered to Markdown",
		Tags:        []string{"Extractions"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "refreshExtraction",
		Method:      http.MethodPost,
		Path:        "/extractions/{id}/refresh",
		Summary:     "Check an extraction job once",
		Tags:        []string{"Extractions"},
	}, h.Refresh)
}

// SubmitExtractionInput defines the input for the Submit operation
type SubmitExtractionInput struct {
	Body requests.SubmitExtractionRequest
}

// ExtractionOutput wraps a single job
type ExtractionOutput struct {
	Body *responses.ExtractionResponse
}

// ExtractionListOutput wraps the job list
type ExtractionListOutput struct {
	Body responses.ExtractionListResponse
}

// ExtractionIDInput identifies one job by path
type ExtractionIDInput struct {
	ID string `path:"id" doc:"Job id"`
}

// SelectExtractionInput defines the input for the Select operation
type SelectExtractionInput struct {
	Body requests.SelectExtractionRequest
}

// Submit handles POST /extractions
func (h *ExtractionHandler) Submit(ctx context.Context, input *SubmitExtractionInput) (*ExtractionOutput, error) {
	id, err := h.store.Submit(ctx, input.Body.URL, input.Body.Title, domain.PageSource(input.Body.Source))
	if err != nil {
		return nil, toHumaError(err)
	}

	job, err := h.store.Get(id)
	if err != nil {
		// Cleared between submit and read back
		job = domain.NewExtractionJob(id, input.Body.Title, input.Body.URL, domain.PageSource(input.Body.Source))
	}
	return &ExtractionOutput{Body: mappers.ToExtractionResponse(job, nil, h.selectedID())}, nil
}

// List handles GET /extractions
func (h *ExtractionHandler) List(ctx context.Context, input *struct{}) (*ExtractionListOutput, error) {
	jobs := h.store.List()

	out := &ExtractionListOutput{}
	out.Body.Extractions = mappers.ToExtractionResponses(jobs, h.selectedID())
	out.Body.Total = len(out.Body.Extractions)
	if h.poller != nil {
		out.Body.Polling = h.poller.Active()
	}
	return out, nil
}

// Get handles GET /extractions/{id}
func (h *ExtractionHandler) Get(ctx context.Context, input *ExtractionIDInput) (*ExtractionOutput, error) {
	job, err := h.store.Get(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ExtractionOutput{Body: mappers.ToExtractionResponse(job, h.converter, h.selectedID())}, nil
}

// Refresh handles POST /extractions/{id}/refresh
func (h *ExtractionHandler) Refresh(ctx context.Context, input *ExtractionIDInput) (*ExtractionOutput, error) {
	job, err := h.store.Refresh(ctx, input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ExtractionOutput{Body: mappers.ToExtractionResponse(job, h.converter, h.selectedID())}, nil
}

// ClearAll handles DELETE /extractions
func (h *ExtractionHandler) ClearAll(ctx context.Context, input *struct{}) (*struct{}, error) {
	if err := h.store.ClearAll(ctx); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// Selected handles GET /extractions/selected
func (h *ExtractionHandler) Selected(ctx context.Context, input *struct{}) (*ExtractionOutput, error) {
	job, ok := h.store.Selected()
	if !ok {
		return nil, toHumaError(&coreerrors.NotFoundError{Resource: "selected extraction", ID: "none"})
	}
	return &ExtractionOutput{Body: mappers.ToExtractionResponse(job, h.converter, job.ID)}, nil
}

// Select handles PUT /extractions/selected
func (h *ExtractionHandler) Select(ctx context.Context, input *SelectExtractionInput) (*ExtractionOutput, error) {
	if input.Body.ID == "" {
		h.store.ClearSelection()
		return &ExtractionOutput{}, nil
	}

	if err := h.store.Select(input.Body.ID); err != nil {
		return nil, toHumaError(err)
	}
	job, err := h.store.Get(input.Body.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ExtractionOutput{Body: mappers.ToExtractionResponse(job, h.converter, job.ID)}, nil
}

func (h *ExtractionHandler) selectedID() string {
	if job, ok := h.store.Selected(); ok {
		return job.ID
	}
	return ""
}
