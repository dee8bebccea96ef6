package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	engine "github.com/coreapi/codecamp/repository"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
	"github.com/coreapi/codecamp/contexts/camps/internal/interfaces/repository"
)

var (
	ctx       = context.Background()
	eventDate = time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC)

	atlCamp = domain.CampModel{
		Name:             "Atlanta Code Camp",
		Moniker:          "ATL2024",
		EventDate:        eventDate,
		Length:           1,
		Venue:            "Convention Center",
		LocationCityTown: "Atlanta",
	}
	berCamp = domain.CampModel{
		Name:             "Berlin Code Camp",
		Moniker:          "BER2024",
		EventDate:        eventDate.AddDate(0, 1, 0),
		Length:           2,
		Venue:            "Messe",
		LocationCityTown: "Berlin",
	}

	ada   = domain.SpeakerModel{FirstName: "Ada", LastName: "Lovelace"}
	grace = domain.SpeakerModel{FirstName: "Grace", LastName: "Hopper"}

	genericsTalk = domain.TalkModel{Title: "Generics", Abstract: "Type parameters", Level: 200, Speaker: ada}
	channelsTalk = domain.TalkModel{Title: "Channels", Abstract: "Share by communicating", Level: 300, Speaker: grace}
)

// newRepository returns a repository with two camps. ATL2024 has two talks, BER2024 none.
func newRepository(t *testing.T) *repository.MemoryRepository {
	t.Helper()

	repo := repository.NewMemoryRepository()

	for _, c := range []domain.CampModel{atlCamp, berCamp} {
		_, err := repo.AddCamp(ctx, c)
		assert.NoError(t, err)
	}

	for _, talk := range []domain.TalkModel{genericsTalk, channelsTalk} {
		_, err := repo.AddTalk(ctx, talk, atlCamp.Moniker)
		assert.NoError(t, err)
	}

	return repo
}

func talkID(t *testing.T, repo *repository.MemoryRepository, title string) int {
	t.Helper()

	talks, err := repo.TalksByMoniker(ctx, atlCamp.Moniker, false)
	assert.NoError(t, err)

	for _, talk := range talks {
		if talk.Title == title {
			return talk.TalkID
		}
	}

	t.Fatalf("no talk %s", title)

	return 0
}

var errDatabase = fmt.Errorf("%w: connection reset", engine.ErrDatabaseFailure)

// failingRepository fails every call, as if the database is gone.
type failingRepository struct{}

func (failingRepository) AllCamps(context.Context, bool) ([]domain.Camp, error) {
	return nil, errDatabase
}

func (failingRepository) Camp(context.Context, string, bool) (*domain.Camp, error) {
	return nil, errDatabase
}

func (failingRepository) AllCampsByEventDate(context.Context, time.Time, bool) ([]domain.Camp, error) {
	return nil, errDatabase
}

func (failingRepository) TalksByCampID(context.Context, int) ([]domain.Talk, error) {
	return nil, errDatabase
}

func (failingRepository) TalksByMoniker(context.Context, string, bool) ([]domain.Talk, error) {
	return nil, errDatabase
}

func (failingRepository) TalkByMoniker(context.Context, string, int, bool) (*domain.Talk, error) {
	return nil, errDatabase
}

func (failingRepository) SpeakersByMoniker(context.Context, string) ([]domain.Speaker, error) {
	return nil, errDatabase
}

func (failingRepository) Speaker(context.Context, int) (*domain.Speaker, error) {
	return nil, errDatabase
}

func (failingRepository) AllSpeakers(context.Context) ([]domain.Speaker, error) {
	return nil, errDatabase
}

func (failingRepository) AddCamp(context.Context, domain.CampModel) (bool, error) {
	return false, errDatabase
}

func (failingRepository) AddTalk(context.Context, domain.TalkModel, string) (bool, error) {
	return false, errDatabase
}

func (failingRepository) UpdateCamp(context.Context, domain.CampModel, string) (bool, error) {
	return false, errDatabase
}

func (failingRepository) UpdateTalk(context.Context, domain.TalkModel, string, int) (bool, error) {
	return false, errDatabase
}

func (failingRepository) DeleteCamp(context.Context, string) (bool, error) {
	return false, errDatabase
}

func (failingRepository) DeleteTalk(context.Context, string, int) (bool, error) {
	return false, errDatabase
}

func (failingRepository) SpeakerID(context.Context, string, string) (int, error) {
	return 0, errDatabase
}

func (failingRepository) CampID(context.Context, string) (int, error) {
	return 0, errDatabase
}
