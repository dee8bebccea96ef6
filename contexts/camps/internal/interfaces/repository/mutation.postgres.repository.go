package repository

import (
	"context"

	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

func NewPostgresMutationRepository(e *engine.Executor) *PostgresMutationRepository {
	return &PostgresMutationRepository{e: e}
}

// PostgresMutationRepository writes in the order the foreign keys require.
// Every statement commits on its own, unless ctx carries a transaction.
type PostgresMutationRepository struct {
	e *engine.Executor
}

var _ domain.MutationRepository = (*PostgresMutationRepository)(nil)

// AddCamp inserts the location and then the camp referencing it.
//
// The location id is looked up by venue name. If several locations share the
// venue name, any one of them is used.
func (r *PostgresMutationRepository) AddCamp(ctx context.Context, camp domain.CampModel) (bool, error) {
	_, err := r.e.Execute(ctx, q.From("location").AsInsert(locationFields(camp)))
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	locationID, err := r.e.CreateAndReturnID(ctx,
		q.From("location").Select("location.location_id").Where("location.venue_name", camp.Venue),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	fields := campFields(camp)
	fields["location_id"] = locationID

	return r.e.Execute(ctx, q.From("camps").AsInsert(fields)) //nolint:wrapcheck // already wrapped by the engine
}

// AddTalk reuses an existing speaker with the same first and last name or creates a new one.
func (r *PostgresMutationRepository) AddTalk(ctx context.Context, talk domain.TalkModel, moniker string) (bool, error) {
	speakerID, err := r.SpeakerID(ctx, talk.Speaker.FirstName, talk.Speaker.LastName)
	if err != nil {
		return false, err
	}

	if speakerID == 0 {
		speakerID, err = r.e.CreateAndReturnID(ctx,
			q.From("speakers").AsInsert(speakerFields(talk.Speaker)).Returning("speaker_id"),
		)
		if err != nil {
			return false, err //nolint:wrapcheck // already wrapped by the engine
		}
	}

	campID, err := r.CampID(ctx, moniker)
	if err != nil {
		return false, err
	}

	return r.e.Execute(ctx, q.From("talks").AsInsert(q.Fields{ //nolint:wrapcheck // already wrapped by the engine
		"camp_id":    campID,
		"title":      talk.Title,
		"abstract":   talk.Abstract,
		"level":      talk.Level,
		"speaker_id": speakerID,
	}))
}

// UpdateCamp updates the camp and then its location.
// The location is looked up by the moniker the camp has after the update.
func (r *PostgresMutationRepository) UpdateCamp(ctx context.Context, camp domain.CampModel, moniker string) (bool, error) {
	campUpdated, err := r.e.Execute(ctx,
		q.From("camps").Where("camps.moniker", moniker).AsUpdate(campFields(camp)),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	current := moniker
	if camp.Moniker != "" {
		current = camp.Moniker
	}

	locationID, err := r.e.CreateAndReturnID(ctx,
		q.From("camps").Select("camps.location_id").Where("camps.moniker", current),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	locationUpdated, err := r.e.Execute(ctx,
		q.From("location").Where("location.location_id", locationID).AsUpdate(locationFields(camp)),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	return campUpdated && locationUpdated, nil
}

// UpdateTalk updates the talk and then the speaker matching the model's first and last name.
// If no speaker matches, the talk stays updated and false is returned.
func (r *PostgresMutationRepository) UpdateTalk(
	ctx context.Context,
	talk domain.TalkModel,
	_ string,
	talkID int,
) (bool, error) {
	talkUpdated, err := r.e.Execute(ctx,
		q.From("talks").Where("talks.talk_id", talkID).AsUpdate(q.Fields{
			"title":    talk.Title,
			"abstract": talk.Abstract,
			"level":    talk.Level,
		}),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	speakerID, err := r.SpeakerID(ctx, talk.Speaker.FirstName, talk.Speaker.LastName)
	if err != nil {
		return false, err
	}

	speakerUpdated, err := r.e.Execute(ctx,
		q.From("speakers").Where("speakers.speaker_id", speakerID).AsUpdate(speakerFields(talk.Speaker)),
	)
	if err != nil {
		return false, err //nolint:wrapcheck // already wrapped by the engine
	}

	return talkUpdated && speakerUpdated, nil
}

// DeleteCamp deletes the camp together with its talks in one transaction.
// It reports false if there is no camp with the moniker.
func (r *PostgresMutationRepository) DeleteCamp(ctx context.Context, moniker string) (bool, error) {
	campID, err := r.CampID(ctx, moniker)
	if err != nil || campID == 0 {
		return false, err
	}

	return r.e.BulkOperation(ctx, []q.Query{ //nolint:wrapcheck // already wrapped by the engine
		q.From("talks").AsDelete().Where("talks.camp_id", campID),
		q.From("camps").AsDelete().Where("camps.camp_id", campID),
	})
}

func (r *PostgresMutationRepository) DeleteTalk(ctx context.Context, moniker string, talkID int) (bool, error) {
	return r.e.Delete(ctx, q.From("talks"). //nolint:wrapcheck // already wrapped by the engine
		Join("camps", "camps.camp_id", "talks.camp_id").
		AsDelete().
		Where("camps.moniker", moniker).
		Where("talks.talk_id", talkID),
	)
}

func (r *PostgresMutationRepository) SpeakerID(ctx context.Context, firstName string, lastName string) (int, error) {
	return r.e.CreateAndReturnID(ctx, q.From("speakers"). //nolint:wrapcheck // already wrapped by the engine
		Select("speakers.speaker_id").
		Where("speakers.first_name", firstName).
		Where("speakers.last_name", lastName),
	)
}

func (r *PostgresMutationRepository) CampID(ctx context.Context, moniker string) (int, error) {
	return r.e.CreateAndReturnID(ctx, //nolint:wrapcheck // already wrapped by the engine
		q.From("camps").Select("camps.camp_id").Where("camps.moniker", moniker),
	)
}

func campFields(c domain.CampModel) q.Fields {
	return q.Fields{
		"name":       c.Name,
		"moniker":    c.Moniker,
		"event_date": c.EventDate,
		"length":     c.Length,
	}
}

func locationFields(c domain.CampModel) q.Fields {
	return q.Fields{
		"venue_name":     c.Venue,
		"address1":       c.LocationAddress1,
		"address2":       c.LocationAddress2,
		"address3":       c.LocationAddress3,
		"city_town":      c.LocationCityTown,
		"state_province": c.LocationStateProvince,
		"postal_code":    c.LocationPostalCode,
		"country":        c.LocationCountry,
	}
}

func speakerFields(s domain.SpeakerModel) q.Fields {
	return q.Fields{
		"first_name":  s.FirstName,
		"last_name":   s.LastName,
		"middle_name": s.MiddleName,
		"company":     s.Company,
		"company_url": s.CompanyURL,
		"blog_url":    s.BlogURL,
		"twitter":     s.Twitter,
		"github":      s.GitHub,
	}
}
