package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewUpdateCampRequestHandler(
	camps domain.CampRepository,
	mutations domain.MutationRepository,
) app.Request[UpdateCampRequest, UpdateCampResponse] {
	return app.NewValidatedRequest[UpdateCampRequest, UpdateCampResponse](nil, &updateCampRequestHandler{
		camps:     camps,
		mutations: mutations,
	})
}

type updateCampRequestHandler struct {
	camps     domain.CampRepository
	mutations domain.MutationRepository
}

type (
	// UpdateCampRequest replaces the camp known by Moniker with Camp.
	// Camp.Moniker can differ from Moniker to rename the camp.
	UpdateCampRequest struct {
		Moniker string `validate:"required"`
		Camp    domain.CampModel
	}
	UpdateCampResponse struct {
		Camp domain.Camp
	}
)

func (h *updateCampRequestHandler) H(ctx context.Context, req UpdateCampRequest) (UpdateCampResponse, error) {
	existing, err := h.camps.Camp(ctx, req.Moniker, false)
	if err != nil {
		return UpdateCampResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if existing == nil {
		return UpdateCampResponse{}, fmt.Errorf("%w: camp %s", domain.ErrNotFound, req.Moniker)
	}

	if req.Camp.Moniker != req.Moniker {
		taken, err := h.camps.Camp(ctx, req.Camp.Moniker, false)
		if err != nil {
			return UpdateCampResponse{}, fmt.Errorf("could not get camp: %w", err)
		}

		if taken != nil {
			return UpdateCampResponse{}, fmt.Errorf("%w: moniker %s is in use", domain.ErrAlreadyExists, req.Camp.Moniker)
		}
	}

	updated, err := h.mutations.UpdateCamp(ctx, req.Camp, req.Moniker)
	if err != nil {
		return UpdateCampResponse{}, fmt.Errorf("could not update camp: %w", err)
	}

	if !updated {
		return UpdateCampResponse{}, fmt.Errorf("%w: camp %s was not updated", domain.ErrNotApplied, req.Moniker)
	}

	camp, err := h.camps.Camp(ctx, req.Camp.Moniker, false)
	if err != nil {
		return UpdateCampResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if camp == nil {
		return UpdateCampResponse{}, fmt.Errorf("%w: camp %s", domain.ErrNotFound, req.Camp.Moniker)
	}

	return UpdateCampResponse{Camp: *camp}, nil
}
