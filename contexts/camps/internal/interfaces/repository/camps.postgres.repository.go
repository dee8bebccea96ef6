// Package repository implements the domain contracts on top of the query execution engine.
package repository

import (
	"context"
	"time"

	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

// base queries are specialised per call, they are never changed.
//
//nolint:gochecknoglobals
var (
	campsQuery = engine.SelectFragments(
		q.From("camps").Join("location", "location.location_id", "camps.location_id"),
		campWithLocation{}.Fragments(),
	)

	talksWithSpeakersQuery = engine.SelectFragments(
		q.From("talks").Join("speakers", "speakers.speaker_id", "talks.speaker_id"),
		talkWithSpeaker{}.Fragments(),
	)
)

func NewPostgresCampRepository(e *engine.Executor) *PostgresCampRepository {
	return &PostgresCampRepository{e: e}
}

type PostgresCampRepository struct {
	e *engine.Executor
}

var _ domain.CampRepository = (*PostgresCampRepository)(nil)

func (r *PostgresCampRepository) AllCamps(ctx context.Context, includeTalks bool) ([]domain.Camp, error) {
	camps, err := engine.GetJoinedList[domain.Camp](ctx, r.e, campsQuery, campWithLocation{})
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the engine
	}

	return r.withTalks(ctx, camps, includeTalks)
}

func (r *PostgresCampRepository) Camp(ctx context.Context, moniker string, includeTalks bool) (*domain.Camp, error) {
	camp, err := engine.GetJoined[domain.Camp](ctx, r.e, campsQuery.Where("camps.moniker", moniker), campWithLocation{})
	if err != nil || camp == nil {
		return nil, err //nolint:wrapcheck // already wrapped by the engine
	}

	if includeTalks {
		camp.Talks, err = r.TalksByCampID(ctx, camp.CampID)
		if err != nil {
			return nil, err
		}
	}

	return camp, nil
}

func (r *PostgresCampRepository) AllCampsByEventDate(
	ctx context.Context,
	date time.Time,
	includeTalks bool,
) ([]domain.Camp, error) {
	camps, err := engine.GetJoinedList[domain.Camp](ctx, r.e, campsQuery.Where("camps.event_date", date), campWithLocation{})
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by the engine
	}

	return r.withTalks(ctx, camps, includeTalks)
}

func (r *PostgresCampRepository) TalksByCampID(ctx context.Context, campID int) ([]domain.Talk, error) {
	return engine.GetJoinedList[domain.Talk](ctx, r.e, talksWithSpeakersQuery.Where("talks.camp_id", campID), talkWithSpeaker{}) //nolint:wrapcheck,lll // already wrapped by the engine
}

// withTalks loads the talks one query per camp.
func (r *PostgresCampRepository) withTalks(ctx context.Context, camps []domain.Camp, includeTalks bool) ([]domain.Camp, error) {
	if !includeTalks {
		return camps, nil
	}

	for i := range camps {
		talks, err := r.TalksByCampID(ctx, camps[i].CampID)
		if err != nil {
			return nil, err
		}

		camps[i].Talks = talks
	}

	return camps, nil
}
