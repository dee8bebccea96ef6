package repository

import (
	"context"

	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewPostgresSpeakerRepository(e *engine.Executor) *PostgresSpeakerRepository {
	return &PostgresSpeakerRepository{e: e}
}

type PostgresSpeakerRepository struct {
	e *engine.Executor
}

var _ domain.SpeakerRepository = (*PostgresSpeakerRepository)(nil)

// SpeakersByMoniker returns every speaker with at least one talk at the camp once.
func (r *PostgresSpeakerRepository) SpeakersByMoniker(ctx context.Context, moniker string) ([]domain.Speaker, error) {
	query := q.From("speakers").
		Select("speakers.*").
		Distinct().
		Join("talks", "talks.speaker_id", "speakers.speaker_id").
		Join("camps", "camps.camp_id", "talks.camp_id").
		Where("camps.moniker", moniker).
		OrderBy("speakers.last_name")

	return engine.GetList[domain.Speaker](ctx, r.e, query) //nolint:wrapcheck // already wrapped by the engine
}

func (r *PostgresSpeakerRepository) Speaker(ctx context.Context, speakerID int) (*domain.Speaker, error) {
	return engine.Get[domain.Speaker](ctx, r.e, q.From("speakers").Where("speakers.speaker_id", speakerID)) //nolint:wrapcheck,lll // already wrapped by the engine
}

func (r *PostgresSpeakerRepository) AllSpeakers(ctx context.Context) ([]domain.Speaker, error) {
	return engine.GetList[domain.Speaker](ctx, r.e, q.From("speakers").OrderBy("speakers.last_name")) //nolint:wrapcheck,lll // already wrapped by the engine
}
