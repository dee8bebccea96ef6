package application

import (
	"context"
	"fmt"
	"time"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewListCampsQueryHandler(repo domain.CampRepository) app.Query[ListCampsQuery, ListCampsResponse] {
	return &listCampsQueryHandler{repo: repo}
}

type listCampsQueryHandler struct {
	repo domain.CampRepository
}

type (
	ListCampsQuery struct {
		IncludeTalks bool
	}
	ListCampsResponse struct {
		Camps []domain.Camp
	}
)

func (h *listCampsQueryHandler) H(ctx context.Context, query ListCampsQuery) (ListCampsResponse, error) {
	camps, err := h.repo.AllCamps(ctx, query.IncludeTalks)
	if err != nil {
		return ListCampsResponse{}, fmt.Errorf("could not get camps: %w", err)
	}

	return ListCampsResponse{Camps: camps}, nil
}

func NewGetCampQueryHandler(repo domain.CampRepository) app.Query[GetCampQuery, GetCampResponse] {
	return app.NewValidatedQuery[GetCampQuery, GetCampResponse](nil, &getCampQueryHandler{repo: repo})
}

type getCampQueryHandler struct {
	repo domain.CampRepository
}

type (
	GetCampQuery struct {
		Moniker      string `validate:"required"`
		IncludeTalks bool
	}
	GetCampResponse struct {
		Camp domain.Camp
	}
)

func (h *getCampQueryHandler) H(ctx context.Context, query GetCampQuery) (GetCampResponse, error) {
	camp, err := h.repo.Camp(ctx, query.Moniker, query.IncludeTalks)
	if err != nil {
		return GetCampResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if camp == nil {
		return GetCampResponse{}, fmt.Errorf("%w: camp %s", domain.ErrNotFound, query.Moniker)
	}

	return GetCampResponse{Camp: *camp}, nil
}

// NewSearchCampsQueryHandler finds the camps taking place on an exact date.
// Finding none is an ErrNotFound.
func NewSearchCampsQueryHandler(repo domain.CampRepository) app.Query[SearchCampsQuery, SearchCampsResponse] {
	return &searchCampsQueryHandler{repo: repo}
}

type searchCampsQueryHandler struct {
	repo domain.CampRepository
}

type (
	SearchCampsQuery struct {
		EventDate    time.Time
		IncludeTalks bool
	}
	SearchCampsResponse struct {
		Camps []domain.Camp
	}
)

func (h *searchCampsQueryHandler) H(ctx context.Context, query SearchCampsQuery) (SearchCampsResponse, error) {
	camps, err := h.repo.AllCampsByEventDate(ctx, query.EventDate, query.IncludeTalks)
	if err != nil {
		return SearchCampsResponse{}, fmt.Errorf("could not search camps: %w", err)
	}

	if len(camps) == 0 {
		return SearchCampsResponse{}, fmt.Errorf("%w: no camps on %s", domain.ErrNotFound, query.EventDate.Format(time.DateOnly))
	}

	return SearchCampsResponse{Camps: camps}, nil
}
