package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewCreateTalkRequestHandler(
	camps domain.CampRepository,
	mutations domain.MutationRepository,
) app.Request[CreateTalkRequest, CreateTalkResponse] {
	return app.NewValidatedRequest[CreateTalkRequest, CreateTalkResponse](nil, &createTalkRequestHandler{
		camps:     camps,
		mutations: mutations,
	})
}

type createTalkRequestHandler struct {
	camps     domain.CampRepository
	mutations domain.MutationRepository
}

type (
	CreateTalkRequest struct {
		Moniker string `validate:"required"`
		Talk    domain.TalkModel
	}
	// CreateTalkResponse returns the model, as the id of the new talk is not known.
	CreateTalkResponse struct {
		Talk domain.TalkModel
	}
)

// H adds the talk to the camp. The speaker is reused if one with the same name exists.
func (h *createTalkRequestHandler) H(ctx context.Context, req CreateTalkRequest) (CreateTalkResponse, error) {
	camp, err := h.camps.Camp(ctx, req.Moniker, false)
	if err != nil {
		return CreateTalkResponse{}, fmt.Errorf("could not get camp: %w", err)
	}

	if camp == nil {
		return CreateTalkResponse{}, fmt.Errorf("%w: camp %s does not exist", domain.ErrInvalid, req.Moniker)
	}

	added, err := h.mutations.AddTalk(ctx, req.Talk, req.Moniker)
	if err != nil {
		return CreateTalkResponse{}, fmt.Errorf("could not add talk: %w", err)
	}

	if !added {
		return CreateTalkResponse{}, fmt.Errorf("%w: talk %s was not added", domain.ErrNotApplied, req.Talk.Title)
	}

	return CreateTalkResponse{Talk: req.Talk}, nil
}
