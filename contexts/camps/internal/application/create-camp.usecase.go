package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewCreateCampRequestHandler(
	camps domain.CampRepository,
	mutations domain.MutationRepository,
) app.Request[CreateCampRequest, CreateCampResponse] {
	return app.NewValidatedRequest[CreateCampRequest, CreateCampResponse](nil, &createCampRequestHandler{
		camps:     camps,
		mutations: mutations,
	})
}

type createCampRequestHandler struct {
	camps     domain.CampRepository
	mutations domain.MutationRepository
}

type (
	CreateCampRequest struct {
		Camp domain.CampModel
	}
	CreateCampResponse struct {
		Camp domain.Camp
	}
)

func (h *createCampRequestHandler) H(ctx context.Context, req CreateCampRequest) (CreateCampResponse, error) {
	existing, err := h.camps.Camp(ctx, req.Camp.Moniker, false)
	if err != nil {
		return CreateCampResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if existing != nil {
		return CreateCampResponse{}, fmt.Errorf("%w: moniker %s is in use", domain.ErrAlreadyExists, req.Camp.Moniker)
	}

	added, err := h.mutations.AddCamp(ctx, req.Camp)
	if err != nil {
		return CreateCampResponse{}, fmt.Errorf("could not add camp: %w", err)
	}

	if !added {
		return CreateCampResponse{}, fmt.Errorf("%w: camp %s was not added", domain.ErrNotApplied, req.Camp.Moniker)
	}

	camp, err := h.camps.Camp(ctx, req.Camp.Moniker, false)
	if err != nil {
		return CreateCampResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if camp == nil {
		return CreateCampResponse{}, fmt.Errorf("%w: camp %s", domain.ErrNotFound, req.Camp.Moniker)
	}

	return CreateCampResponse{Camp: *camp}, nil
}
