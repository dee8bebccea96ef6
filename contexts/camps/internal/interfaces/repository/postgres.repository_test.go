package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	engine "github.com/coreapi/codecamp/repository"
	"github.com/coreapi/codecamp/repository/q"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/repository"
)

var (
	ctx       = context.Background()
	errDB     = errors.New("db error")
	eventDate = time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC)

	campResultColumns = []string{
		"camp_id", "name", "moniker", "event_date", "length",
		"location_id", "venue_name", "address1", "address2", "address3",
		"city_town", "state_province", "postal_code", "country",
	}
	talkResultColumns = []string{
		"talk_id", "camp_id", "title", "abstract", "level", "speaker_id",
		"speaker_id", "first_name", "last_name", "middle_name",
		"company", "company_url", "blog_url", "twitter", "github",
	}
	talkOnlyResultColumns = talkResultColumns[:6]
	speakerResultColumns  = talkResultColumns[6:]
)

func campRow(id int, moniker string, locationID int, venue string) []any {
	return []any{
		id, "Camp " + moniker, moniker, eventDate, 2,
		locationID, venue, "123 Main Street", "", "", "Atlanta", "GA", "30303", "USA",
	}
}

func talkRow(id int, campID int, title string, speakerID int, lastName string) []any {
	return []any{
		id, campID, title, "abstract of " + title, 200, speakerID,
		speakerID, "First", lastName, "", "", "", "", "", "",
	}
}

func newExecutor(t *testing.T, results ...engine.FakeResult) (*engine.Executor, *engine.FakeProvider) {
	t.Helper()

	provider := engine.NewFakeProvider(results...)

	return engine.NewExecutor(provider, q.Postgres), provider
}

func TestPostgresCampRepository_Camp(t *testing.T) {
	t.Parallel()

	t.Run("location matches the joined row", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, engine.FakeResult{
			Columns: campResultColumns,
			Rows:    [][]any{campRow(1, "ATL2024", 7, "Convention Center")},
		})
		repo := repository.NewPostgresCampRepository(e)

		camp, err := repo.Camp(ctx, "ATL2024", false)
		assert.NoError(t, err)
		assert.Equal(t, 1, camp.CampID)
		assert.Equal(t, eventDate, camp.EventDate)
		assert.Equal(t, &domain.Location{
			LocationID:    7,
			VenueName:     "Convention Center",
			Address1:      "123 Main Street",
			CityTown:      "Atlanta",
			StateProvince: "GA",
			PostalCode:    "30303",
			Country:       "USA",
		}, camp.Location)
		assert.Nil(t, camp.Talks)

		stmt := provider.Statements()[0]
		assert.Contains(t, stmt.SQL, `JOIN "location" ON "location"."location_id" = "camps"."location_id"`)
		assert.Contains(t, stmt.SQL, `WHERE "camps"."moniker" = $1`)
		assert.Equal(t, []any{"ATL2024"}, stmt.Args)
	})

	t.Run("unknown moniker", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, engine.FakeResult{Columns: campResultColumns})
		repo := repository.NewPostgresCampRepository(e)

		camp, err := repo.Camp(ctx, "does-not-exist", true)
		assert.NoError(t, err)
		assert.Nil(t, camp)
		assert.Len(t, provider.Statements(), 1, "no talks are loaded for a missing camp")
	})

	t.Run("include talks", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t,
			engine.FakeResult{
				Columns: campResultColumns,
				Rows:    [][]any{campRow(1, "ATL2024", 7, "Convention Center")},
			},
			engine.FakeResult{
				Columns: talkResultColumns,
				Rows: [][]any{
					talkRow(1, 1, "Generics", 3, "Lovelace"),
					talkRow(2, 1, "Channels", 4, "Hopper"),
				},
			},
		)
		repo := repository.NewPostgresCampRepository(e)

		camp, err := repo.Camp(ctx, "ATL2024", true)
		assert.NoError(t, err)
		assert.Len(t, camp.Talks, 2)
		assert.Equal(t, "Hopper", camp.Talks[1].Speaker.LastName)
		assert.Equal(t, []any{1}, provider.Statements()[1].Args)
	})

	t.Run("database fails", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, engine.FakeResult{Err: errDB})
		repo := repository.NewPostgresCampRepository(e)

		camp, err := repo.Camp(ctx, "ATL2024", false)
		assert.ErrorIs(t, err, engine.ErrDatabaseFailure)
		assert.Nil(t, camp)
	})

	t.Run("result does not match the layout", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, engine.FakeResult{
			Columns: append([]string{"location_id"}, campResultColumns[:13]...),
			Rows:    [][]any{campRow(1, "ATL2024", 7, "Convention Center")},
		})
		repo := repository.NewPostgresCampRepository(e)

		_, err := repo.Camp(ctx, "ATL2024", false)
		assert.ErrorIs(t, err, engine.ErrSplitMismatch)
	})
}

func TestPostgresCampRepository_AllCamps(t *testing.T) {
	t.Parallel()

	camps := engine.FakeResult{
		Columns: campResultColumns,
		Rows: [][]any{
			campRow(1, "ATL2024", 7, "Convention Center"),
			campRow(2, "BER2024", 8, "Messe"),
		},
	}

	t.Run("without talks", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, camps)
		repo := repository.NewPostgresCampRepository(e)

		got, err := repo.AllCamps(ctx, false)
		assert.NoError(t, err)
		assert.Len(t, got, 2)

		for _, c := range got {
			assert.Nil(t, c.Talks)
		}

		assert.Len(t, provider.Statements(), 1, "no talks are fetched")
	})

	t.Run("one talks query per camp", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, camps,
			engine.FakeResult{
				Columns: talkResultColumns,
				Rows: [][]any{
					talkRow(1, 1, "Generics", 3, "Lovelace"),
					talkRow(2, 1, "Channels", 4, "Hopper"),
				},
			},
			engine.FakeResult{Columns: talkResultColumns},
		)
		repo := repository.NewPostgresCampRepository(e)

		got, err := repo.AllCamps(ctx, true)
		assert.NoError(t, err)
		assert.Len(t, got[0].Talks, 2)
		assert.NotNil(t, got[1].Talks)
		assert.Empty(t, got[1].Talks)
		assert.Len(t, provider.Statements(), 3)
	})

	t.Run("talks fail", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, camps, engine.FakeResult{Err: errDB})
		repo := repository.NewPostgresCampRepository(e)

		got, err := repo.AllCamps(ctx, true)
		assert.ErrorIs(t, err, engine.ErrDatabaseFailure)
		assert.Nil(t, got)
	})

	t.Run("no camps", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, engine.FakeResult{Columns: campResultColumns})
		repo := repository.NewPostgresCampRepository(e)

		got, err := repo.AllCamps(ctx, true)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestPostgresCampRepository_AllCampsByEventDate(t *testing.T) {
	t.Parallel()

	e, provider := newExecutor(t, engine.FakeResult{
		Columns: campResultColumns,
		Rows:    [][]any{campRow(1, "ATL2024", 7, "Convention Center")},
	})
	repo := repository.NewPostgresCampRepository(e)

	got, err := repo.AllCampsByEventDate(ctx, eventDate, false)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, provider.Statements()[0].SQL, `WHERE "camps"."event_date" = $1`)
	assert.Equal(t, []any{eventDate}, provider.Statements()[0].Args)
}

func TestPostgresTalkRepository_TalksByMoniker(t *testing.T) {
	t.Parallel()

	t.Run("with speakers", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, engine.FakeResult{
			Columns: talkResultColumns,
			Rows: [][]any{
				talkRow(1, 1, "Modules", 3, "Lovelace"),
				talkRow(2, 1, "Generics", 3, "Lovelace"),
				talkRow(3, 1, "Channels", 4, "Hopper"),
			},
		})
		repo := repository.NewPostgresTalkRepository(e)

		talks, err := repo.TalksByMoniker(ctx, "ATL2024", true)
		assert.NoError(t, err)
		assert.Len(t, talks, 3)

		for _, talk := range talks {
			assert.NotNil(t, talk.Speaker)
			assert.Equal(t, talk.SpeakerID, talk.Speaker.SpeakerID)
		}

		// both fragments carry an id, each is read from its own column
		assert.Equal(t, 1, talks[0].TalkID)
		assert.Equal(t, 3, talks[0].Speaker.SpeakerID)

		assert.NotSame(t, talks[0].Speaker, talks[1].Speaker)

		sql := provider.Statements()[0].SQL
		assert.Contains(t, sql, `JOIN "speakers" ON "speakers"."speaker_id" = "talks"."speaker_id"`)
		assert.True(t, strings.HasSuffix(sql, `ORDER BY "talks"."title" DESC`))
	})

	t.Run("without speakers no join is added", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, engine.FakeResult{
			Columns: talkOnlyResultColumns,
			Rows:    [][]any{talkRow(1, 1, "Modules", 3, "Lovelace")[:6]},
		})
		repo := repository.NewPostgresTalkRepository(e)

		talks, err := repo.TalksByMoniker(ctx, "ATL2024", false)
		assert.NoError(t, err)
		assert.Len(t, talks, 1)
		assert.Nil(t, talks[0].Speaker)
		assert.Equal(t, 3, talks[0].SpeakerID)
		assert.NotContains(t, provider.Statements()[0].SQL, "speakers")
	})

	t.Run("talk without speaker", func(t *testing.T) {
		t.Parallel()

		row := talkRow(1, 1, "Modules", 3, "Lovelace")[:6]
		row[5] = nil

		e, _ := newExecutor(t, engine.FakeResult{Columns: talkOnlyResultColumns, Rows: [][]any{row}})
		repo := repository.NewPostgresTalkRepository(e)

		talks, err := repo.TalksByMoniker(ctx, "ATL2024", false)
		assert.NoError(t, err)
		assert.Equal(t, 0, talks[0].SpeakerID)
	})
}

func TestPostgresTalkRepository_TalkByMoniker(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, engine.FakeResult{
			Columns: talkResultColumns,
			Rows:    [][]any{talkRow(5, 1, "Modules", 3, "Lovelace")},
		})
		repo := repository.NewPostgresTalkRepository(e)

		talk, err := repo.TalkByMoniker(ctx, "ATL2024", 5, true)
		assert.NoError(t, err)
		assert.Equal(t, 5, talk.TalkID)
		assert.Equal(t, "Lovelace", talk.Speaker.LastName)
		assert.Equal(t, []any{"ATL2024", 5}, provider.Statements()[0].Args)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, engine.FakeResult{Columns: talkOnlyResultColumns})
		repo := repository.NewPostgresTalkRepository(e)

		talk, err := repo.TalkByMoniker(ctx, "ATL2024", 5, false)
		assert.NoError(t, err)
		assert.Nil(t, talk)
	})
}

func TestPostgresSpeakerRepository(t *testing.T) {
	t.Parallel()

	speakers := engine.FakeResult{
		Columns: speakerResultColumns,
		Rows: [][]any{
			talkRow(0, 0, "", 4, "Hopper")[6:],
			talkRow(0, 0, "", 3, "Lovelace")[6:],
		},
	}

	t.Run("by moniker", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, speakers)
		repo := repository.NewPostgresSpeakerRepository(e)

		got, err := repo.SpeakersByMoniker(ctx, "ATL2024")
		assert.NoError(t, err)
		assert.Len(t, got, 2)
		assert.True(t, strings.HasPrefix(provider.Statements()[0].SQL, `SELECT DISTINCT "speakers".* FROM "speakers"`))
	})

	t.Run("all", func(t *testing.T) {
		t.Parallel()

		e, provider := newExecutor(t, speakers)
		repo := repository.NewPostgresSpeakerRepository(e)

		got, err := repo.AllSpeakers(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Hopper", got[0].LastName)
		assert.Equal(t, `SELECT * FROM "speakers" ORDER BY "speakers"."last_name"`, provider.Statements()[0].SQL)
	})

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		e, _ := newExecutor(t, engine.FakeResult{Columns: speakerResultColumns})
		repo := repository.NewPostgresSpeakerRepository(e)

		got, err := repo.Speaker(ctx, 1)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
