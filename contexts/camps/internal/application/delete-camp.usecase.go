package application

import (
	"context"
	"fmt"

	"github.com/coreapi/codecamp/app"
	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewDeleteCampCommandHandler(mutations domain.MutationRepository) app.Command[DeleteCampCommand] {
	return app.NewValidatedCommand[DeleteCampCommand](nil, &deleteCampCommandHandler{mutations: mutations})
}

type deleteCampCommandHandler struct {
	mutations domain.MutationRepository
}

type DeleteCampCommand struct {
	Moniker string `validate:"required"`
}

// H deletes the camp and all of its talks.
func (h *deleteCampCommandHandler) H(ctx context.Context, cmd DeleteCampCommand) error {
	deleted, err := h.mutations.DeleteCamp(ctx, cmd.Moniker)
	if err != nil {
		return fmt.Errorf("could not delete camp: %w", err)
	}

	if !deleted {
		return fmt.Errorf("%w: camp %s", domain.ErrNotFound, cmd.Moniker)
	}

	return nil
}
