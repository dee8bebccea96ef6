package repository

import (
	engine "github.com/coreapi/codecamp/repository"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

//nolint:gochecknoglobals // fixed column layouts
var (
	campColumns = engine.Fragment{
		Table:   "camps",
		Columns: []string{"camp_id", "name", "moniker", "event_date", "length"},
	}
	locationColumns = engine.Fragment{
		Table: "location",
		Columns: []string{
			"location_id", "venue_name", "address1", "address2", "address3",
			"city_town", "state_province", "postal_code", "country",
		},
	}
	talkColumns = engine.Fragment{
		Table:   "talks",
		Columns: []string{"talk_id", "camp_id", "title", "abstract", "level", "speaker_id"},
	}
	speakerColumns = engine.Fragment{
		Table: "speakers",
		Columns: []string{
			"speaker_id", "first_name", "last_name", "middle_name",
			"company", "company_url", "blog_url", "twitter", "github",
		},
	}
)

// campWithLocation reads a camp joined with its location, split on location_id.
type campWithLocation struct{}

var _ engine.Layout[domain.Camp] = campWithLocation{}

func (campWithLocation) Fragments() []engine.Fragment {
	return []engine.Fragment{campColumns, locationColumns}
}

func (campWithLocation) Row() ([]any, func() domain.Camp) {
	var (
		c domain.Camp
		l domain.Location
	)

	targets := []any{
		&c.CampID, &c.Name, &c.Moniker, &c.EventDate, &c.Length,
		&l.LocationID, &l.VenueName, &l.Address1, &l.Address2, &l.Address3,
		&l.CityTown, &l.StateProvince, &l.PostalCode, &l.Country,
	}

	return targets, func() domain.Camp {
		c.Location = &l

		return c
	}
}

// talkWithSpeaker reads a talk joined with its speaker, split on speaker_id.
type talkWithSpeaker struct{}

var _ engine.Layout[domain.Talk] = talkWithSpeaker{}

func (talkWithSpeaker) Fragments() []engine.Fragment {
	return []engine.Fragment{talkColumns, speakerColumns}
}

func (talkWithSpeaker) Row() ([]any, func() domain.Talk) {
	var (
		t  domain.Talk
		s  domain.Speaker
		id *int // talks.speaker_id is nullable
	)

	targets := []any{
		&t.TalkID, &t.CampID, &t.Title, &t.Abstract, &t.Level, &id,
		&s.SpeakerID, &s.FirstName, &s.LastName, &s.MiddleName,
		&s.Company, &s.CompanyURL, &s.BlogURL, &s.Twitter, &s.GitHub,
	}

	return targets, func() domain.Talk {
		if id != nil {
			t.SpeakerID = *id
		}

		t.Speaker = &s

		return t
	}
}

// talkOnly reads a talk without joining its speaker, so Speaker stays nil.
type talkOnly struct{}

var _ engine.Layout[domain.Talk] = talkOnly{}

func (talkOnly) Fragments() []engine.Fragment {
	return []engine.Fragment{talkColumns}
}

func (talkOnly) Row() ([]any, func() domain.Talk) {
	var (
		t  domain.Talk
		id *int
	)

	targets := []any{&t.TalkID, &t.CampID, &t.Title, &t.Abstract, &t.Level, &id}

	return targets, func() domain.Talk {
		if id != nil {
			t.SpeakerID = *id
		}

		return t
	}
}
