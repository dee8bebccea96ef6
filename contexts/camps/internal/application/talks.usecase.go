package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewListTalksQueryHandler(repo domain.TalkRepository) app.Query[ListTalksQuery, ListTalksResponse] {
	return app.NewValidatedQuery[ListTalksQuery, ListTalksResponse](nil, &listTalksQueryHandler{repo: repo})
}

type listTalksQueryHandler struct {
	repo domain.TalkRepository
}

type (
	ListTalksQuery struct {
		Moniker         string `validate:"required"`
		IncludeSpeakers bool
	}
	ListTalksResponse struct {
		Talks []domain.Talk
	}
)

func (h *listTalksQueryHandler) H(ctx context.Context, query ListTalksQuery) (ListTalksResponse, error) {
	talks, err := h.repo.TalksByMoniker(ctx, query.Moniker, query.IncludeSpeakers)
	if err != nil {
		return ListTalksResponse{}, fmt.Errorf("could not get talks: %w", err)
	}

	return ListTalksResponse{Talks: talks}, nil
}

func NewGetTalkQueryHandler(repo domain.TalkRepository) app.Query[GetTalkQuery, GetTalkResponse] {
	return app.NewValidatedQuery[GetTalkQuery, GetTalkResponse](nil, &getTalkQueryHandler{repo: repo})
}

type getTalkQueryHandler struct {
	repo domain.TalkRepository
}

type (
	GetTalkQuery struct {
		Moniker         string `validate:"required"`
		TalkID          int    `validate:"required"`
		IncludeSpeakers bool
	}
	GetTalkResponse struct {
		Talk domain.Talk
	}
)

func (h *getTalkQueryHandler) H(ctx context.Context, query GetTalkQuery) (GetTalkResponse, error) {
	talk, err := h.repo.TalkByMoniker(ctx, query.Moniker, query.TalkID, query.IncludeSpeakers)
	if err != nil {
		return GetTalkResponse{}, fmt.Errorf("could not get talk: %w", err)
	}

	if talk == nil {
		return GetTalkResponse{}, fmt.Errorf("%w: talk %d of camp %s", domain.ErrNotFound, query.TalkID, query.Moniker)
	}

	return GetTalkResponse{Talk: *talk}, nil
}
