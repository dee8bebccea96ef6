package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewListSpeakersQueryHandler(repo domain.SpeakerRepository) app.Query[ListSpeakersQuery, ListSpeakersResponse] {
	return &listSpeakersQueryHandler{repo: repo}
}

type listSpeakersQueryHandler struct {
	repo domain.SpeakerRepository
}

type (
	ListSpeakersQuery    struct{}
	ListSpeakersResponse struct {
		Speakers []domain.Speaker
	}
)

func (h *listSpeakersQueryHandler) H(ctx context.Context, _ ListSpeakersQuery) (ListSpeakersResponse, error) {
	speakers, err := h.repo.AllSpeakers(ctx)
	if err != nil {
		return ListSpeakersResponse{}, fmt.Errorf("could not get speakers: %w", err)
	}

	return ListSpeakersResponse{Speakers: speakers}, nil
}

func NewGetSpeakerQueryHandler(repo domain.SpeakerRepository) app.Query[GetSpeakerQuery, GetSpeakerResponse] {
	return app.NewValidatedQuery[GetSpeakerQuery, GetSpeakerResponse](nil, &getSpeakerQueryHandler{repo: repo})
}

type getSpeakerQueryHandler struct {
	repo domain.SpeakerRepository
}

type (
	GetSpeakerQuery struct {
		SpeakerID int `validate:"required"`
	}
	GetSpeakerResponse struct {
		Speaker domain.Speaker
	}
)

func (h *getSpeakerQueryHandler) H(ctx context.Context, query GetSpeakerQuery) (GetSpeakerResponse, error) {
	speaker, err := h.repo.Speaker(ctx, query.SpeakerID)
	if err != nil {
		return GetSpeakerResponse{}, fmt.Errorf("could not get speaker: %w", err)
	}

	if speaker == nil {
		return GetSpeakerResponse{}, fmt.Errorf("%w: speaker %d", domain.ErrNotFound, query.SpeakerID)
	}

	return GetSpeakerResponse{Speaker: *speaker}, nil
}

// NewListCampSpeakersQueryHandler returns every speaker with a talk at the camp once.
func NewListCampSpeakersQueryHandler(
	repo domain.SpeakerRepository,
) app.Query[ListCampSpeakersQuery, ListCampSpeakersResponse] {
	return app.NewValidatedQuery[ListCampSpeakersQuery, ListCampSpeakersResponse](nil, &listCampSpeakersQueryHandler{repo: repo}) //nolint:lll
}

type listCampSpeakersQueryHandler struct {
	repo domain.SpeakerRepository
}

type (
	ListCampSpeakersQuery struct {
		Moniker string `validate:"required"`
	}
	ListCampSpeakersResponse struct {
		Speakers []domain.Speaker
	}
)

func (h *listCampSpeakersQueryHandler) H(ctx context.Context, query ListCampSpeakersQuery) (ListCampSpeakersResponse, error) { //nolint:lll
	speakers, err := h.repo.SpeakersByMoniker(ctx, query.Moniker)
	if err != nil {
		return ListCampSpeakersResponse{}, fmt.Errorf("could not get speakers: %w", err)
	}

	return ListCampSpeakersResponse{Speakers: speakers}, nil
}
