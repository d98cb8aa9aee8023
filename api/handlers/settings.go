// ABOUTME: Selector settings handlers for the Huma API
// ABOUTME: Read, override and reset the selectors used by page capture

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anhbatoichoi/content-capture-universe/api/dto/mappers"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/requests"
	"github.com/anhbatoichoi/content-capture-universe/api/dto/responses"
	"github.com/anhbatoichoi/content-capture-universe/core/domain"
)

// SettingsStore reads and writes selector settings
type SettingsStore interface {
	Get(ctx context.Context) (domain.SelectorSettings, error)
	Update(ctx context.Context, overrides domain.SelectorSettings) (domain.SelectorSettings, error)
	Reset(ctx context.Context) (domain.SelectorSettings, error)
}

// SettingsHandler handles selector settings requests
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes registers all settings routes
func (h *SettingsHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getSelectorSettings",
		Method:      http.MethodGet,
		Path:        "/settings/selectors",
		Summary:     "Get capture selectors",
		Tags:        []string{"Settings"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "updateSelectorSettings",
		Method:      http.MethodPut,
		Path:        "/settings/selectors",
		Summary:     "Override capture selectors",
		Description: "Empty fields keep their current value",
		Tags:        []string{"Settings"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "resetSelectorSettings",
		Method:      http.MethodDelete,
		Path:        "/settings/selectors",
		Summary:     "Reset capture selectors to the defaults",
		Tags:        []string{"Settings"},
	}, h.Reset)
}

// SelectorSettingsOutput wraps the effective selectors
type SelectorSettingsOutput struct {
	Body responses.SelectorSettingsResponse
}

// UpdateSelectorSettingsInput defines the input for the Update operation
type UpdateSelectorSettingsInput struct {
	Body requests.SelectorSettingsRequest
}

// Get handles GET /settings/selectors
func (h *SettingsHandler) Get(ctx context.Context, input *struct{}) (*SelectorSettingsOutput, error) {
	settings, err := h.store.Get(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SelectorSettingsOutput{Body: mappers.ToSelectorSettingsResponse(settings)}, nil
}

// Update handles PUT /settings/selectors
func (h *SettingsHandler) Update(ctx context.Context, input *UpdateSelectorSettingsInput) (*SelectorSettingsOutput, error) {
	settings, err := h.store.Update(ctx, domain.SelectorSettings{
		Article: input.Body.Article,
		Title:   input.Body.Title,
		Content: input.Body.Content,
		Images:  input.Body.Images,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SelectorSettingsOutput{Body: mappers.ToSelectorSettingsResponse(settings)}, nil
}

// Reset handles DELETE /settings/selectors
func (h *SettingsHandler) Reset(ctx context.Context, input *struct{}) (*SelectorSettingsOutput, error) {
	settings, err := h.store.Reset(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SelectorSettingsOutput{Body: mappers.ToSelectorSettingsResponse(settings)}, nil
}
