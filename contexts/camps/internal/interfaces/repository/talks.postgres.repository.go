package repository

import (
	"context"

	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewPostgresTalkRepository(e *engine.Executor) *PostgresTalkRepository {
	return &PostgresTalkRepository{e: e}
}

type PostgresTalkRepository struct {
	e *engine.Executor
}

var _ domain.TalkRepository = (*PostgresTalkRepository)(nil)

func (r *PostgresTalkRepository) TalksByMoniker(
	ctx context.Context,
	moniker string,
	includeSpeakers bool,
) ([]domain.Talk, error) {
	query := talksOfCamp(moniker, includeSpeakers).OrderByDesc("talks.title")

	if includeSpeakers {
		return engine.GetJoinedList[domain.Talk](ctx, r.e, query, talkWithSpeaker{}) //nolint:wrapcheck // already wrapped by the engine
	}

	return engine.GetJoinedList[domain.Talk](ctx, r.e, query, talkOnly{}) //nolint:wrapcheck // already wrapped by the engine
}

func (r *PostgresTalkRepository) TalkByMoniker(
	ctx context.Context,
	moniker string,
	talkID int,
	includeSpeakers bool,
) (*domain.Talk, error) {
	query := talksOfCamp(moniker, includeSpeakers).Where("talks.talk_id", talkID)

	if includeSpeakers {
		return engine.GetJoined[domain.Talk](ctx, r.e, query, talkWithSpeaker{}) //nolint:wrapcheck // already wrapped by the engine
	}

	return engine.GetJoined[domain.Talk](ctx, r.e, query, talkOnly{}) //nolint:wrapcheck // already wrapped by the engine
}

// talksOfCamp joins the speakers only if they are requested.
func talksOfCamp(moniker string, includeSpeakers bool) q.Query {
	query := q.From("talks").Join("camps", "camps.camp_id", "talks.camp_id")

	if includeSpeakers {
		query = engine.SelectFragments(
			query.Join("speakers", "speakers.speaker_id", "talks.speaker_id"),
			talkWithSpeaker{}.Fragments(),
		)
	} else {
		query = engine.SelectFragments(query, talkOnly{}.Fragments())
	}

	return query.Where("camps.moniker", moniker)
}
