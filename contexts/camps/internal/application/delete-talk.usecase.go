package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewDeleteTalkCommandHandler(mutations domain.MutationRepository) app.Command[DeleteTalkCommand] {
	return app.NewValidatedCommand[DeleteTalkCommand](nil, &deleteTalkCommandHandler{mutations: mutations})
}

type deleteTalkCommandHandler struct {
	mutations domain.MutationRepository
}

type DeleteTalkCommand struct {
	Moniker string `validate:"required"`
	TalkID  int    `validate:"required"`
}

func (h *deleteTalkCommandHandler) H(ctx context.Context, cmd DeleteTalkCommand) error {
	deleted, err := h.mutations.DeleteTalk(ctx, cmd.Moniker, cmd.TalkID)
	if err != nil {
		return fmt.Errorf("could not delete talk: %w", err)
	}

	if !deleted {
		return fmt.Errorf("%w: talk %d of camp %s", domain.ErrNotFound, cmd.TalkID, cmd.Moniker)
	}

	return nil
}
