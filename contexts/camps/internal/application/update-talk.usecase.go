package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewUpdateTalkRequestHandler(
	talks domain.TalkRepository,
	mutations domain.MutationRepository,
) app.Request[UpdateTalkRequest, UpdateTalkResponse] {
	return app.NewValidatedRequest[UpdateTalkRequest, UpdateTalkResponse](nil, &updateTalkRequestHandler{
		talks:     talks,
		mutations: mutations,
	})
}

type updateTalkRequestHandler struct {
	talks     domain.TalkRepository
	mutations domain.MutationRepository
}

type (
	UpdateTalkRequest struct {
		Moniker string `validate:"required"`
		TalkID  int    `validate:"required"`
		Talk    domain.TalkModel
	}
	UpdateTalkResponse struct {
		Talk domain.Talk
	}
)

// H updates the talk and its speaker. The speaker itself can not be exchanged,
// it is found by the first and last name of the model.
func (h *updateTalkRequestHandler) H(ctx context.Context, req UpdateTalkRequest) (UpdateTalkResponse, error) {
	existing, err := h.talks.TalkByMoniker(ctx, req.Moniker, req.TalkID, false)
	if err != nil {
		return UpdateTalkResponse{}, fmt.Errorf("could not get talk: %w", err)
	}

	if existing == nil {
		return UpdateTalkResponse{}, fmt.Errorf("%w: talk %d of camp %s does not exist", domain.ErrInvalid, req.TalkID, req.Moniker)
	}

	updated, err := h.mutations.UpdateTalk(ctx, req.Talk, req.Moniker, req.TalkID)
	if err != nil {
		return UpdateTalkResponse{}, fmt.Errorf("could not update talk: %w", err)
	}

	if !updated {
		return UpdateTalkResponse{}, fmt.Errorf("%w: talk %d was not updated", domain.ErrNotApplied, req.TalkID)
	}

	talk, err := h.talks.TalkByMoniker(ctx, req.Moniker, req.TalkID, true)
	if err != nil {
		return UpdateTalkResponse{}, fmt.Errorf("could not get talk: %w", err)
	}

	if talk == nil {
		return UpdateTalkResponse{}, fmt.Errorf("%w: talk %d of camp %s", domain.ErrNotFound, req.TalkID, req.Moniker)
	}

	return UpdateTalkResponse{Talk: *talk}, nil
}
