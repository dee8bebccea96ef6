package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/coreapi/codecamp/contexts/camps/internal/domain"
)

// NewMemoryRepository returns a repository keeping all rows in memory.
// It implements every contract of the domain and is meant for tests.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:        sync.Mutex{},
		camps:     map[int]campRow{},
		locations: map[int]domain.Location{},
		talks:     map[int]domain.Talk{},
		speakers:  map[int]domain.Speaker{},
		nextID:    0,
	}
}

type MemoryRepository struct {
	mu sync.Mutex

	camps     map[int]campRow
	locations map[int]domain.Location
	talks     map[int]domain.Talk
	speakers  map[int]domain.Speaker

	nextID int
}

type campRow struct {
	domain.Camp
	locationID int
}

var (
	_ domain.CampRepository     = (*MemoryRepository)(nil)
	_ domain.TalkRepository     = (*MemoryRepository)(nil)
	_ domain.SpeakerRepository  = (*MemoryRepository)(nil)
	_ domain.MutationRepository = (*MemoryRepository)(nil)
)

func (r *MemoryRepository) AllCamps(_ context.Context, includeTalks bool) ([]domain.Camp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.filterCamps(func(domain.Camp) bool { return true }, includeTalks), nil
}

func (r *MemoryRepository) Camp(_ context.Context, moniker string, includeTalks bool) (*domain.Camp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	camps := r.filterCamps(func(c domain.Camp) bool { return c.Moniker == moniker }, includeTalks)
	if len(camps) == 0 {
		return nil, nil //nolint:nilnil // nil is not found
	}

	return &camps[0], nil
}

func (r *MemoryRepository) AllCampsByEventDate(_ context.Context, date time.Time, includeTalks bool) ([]domain.Camp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.filterCamps(func(c domain.Camp) bool { return c.EventDate.Equal(date) }, includeTalks), nil
}

func (r *MemoryRepository) TalksByCampID(_ context.Context, campID int) ([]domain.Talk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.filterTalks(func(t domain.Talk) bool { return t.CampID == campID }, true), nil
}

func (r *MemoryRepository) TalksByMoniker(_ context.Context, moniker string, includeSpeakers bool) ([]domain.Talk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	campID := r.campID(moniker)
	talks := r.filterTalks(func(t domain.Talk) bool { return campID != 0 && t.CampID == campID }, includeSpeakers)

	slices.SortStableFunc(talks, func(a, b domain.Talk) int { return cmp.Compare(b.Title, a.Title) })

	return talks, nil
}

func (r *MemoryRepository) TalkByMoniker(
	_ context.Context,
	moniker string,
	talkID int,
	includeSpeakers bool,
) (*domain.Talk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	campID := r.campID(moniker)

	talks := r.filterTalks(func(t domain.Talk) bool {
		return campID != 0 && t.CampID == campID && t.TalkID == talkID
	}, includeSpeakers)
	if len(talks) == 0 {
		return nil, nil //nolint:nilnil // nil is not found
	}

	return &talks[0], nil
}

func (r *MemoryRepository) SpeakersByMoniker(_ context.Context, moniker string) ([]domain.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	campID := r.campID(moniker)
	seen := map[int]bool{}
	speakers := []domain.Speaker{}

	for _, t := range r.talks {
		s, ok := r.speakers[t.SpeakerID]
		if campID == 0 || t.CampID != campID || !ok || seen[s.SpeakerID] {
			continue
		}

		seen[s.SpeakerID] = true
		speakers = append(speakers, s)
	}

	sortSpeakers(speakers)

	return speakers, nil
}

func (r *MemoryRepository) Speaker(_ context.Context, speakerID int) (*domain.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.speakers[speakerID]
	if !ok {
		return nil, nil //nolint:nilnil // nil is not found
	}

	return &s, nil
}

func (r *MemoryRepository) AllSpeakers(_ context.Context) ([]domain.Speaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	speakers := make([]domain.Speaker, 0, len(r.speakers))
	for _, s := range r.speakers {
		speakers = append(speakers, s)
	}

	sortSpeakers(speakers)

	return speakers, nil
}

func (r *MemoryRepository) AddCamp(_ context.Context, camp domain.CampModel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	locationID := r.id()
	r.locations[locationID] = location(locationID, camp)

	campID := r.id()
	r.camps[campID] = campRow{
		Camp: domain.Camp{
			CampID:    campID,
			Name:      camp.Name,
			Moniker:   camp.Moniker,
			EventDate: camp.EventDate,
			Length:    camp.Length,
		},
		locationID: locationID,
	}

	return true, nil
}

func (r *MemoryRepository) AddTalk(_ context.Context, talk domain.TalkModel, moniker string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	speakerID := r.speakerID(talk.Speaker.FirstName, talk.Speaker.LastName)
	if speakerID == 0 {
		speakerID = r.id()
		r.speakers[speakerID] = speaker(speakerID, talk.Speaker)
	}

	talkID := r.id()
	r.talks[talkID] = domain.Talk{
		TalkID:    talkID,
		CampID:    r.campID(moniker),
		Title:     talk.Title,
		Abstract:  talk.Abstract,
		Level:     talk.Level,
		SpeakerID: speakerID,
	}

	return true, nil
}

func (r *MemoryRepository) UpdateCamp(_ context.Context, camp domain.CampModel, moniker string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	campID := r.campID(moniker)
	if campID == 0 {
		return false, nil
	}

	row := r.camps[campID]
	row.Name, row.Moniker, row.EventDate, row.Length = camp.Name, camp.Moniker, camp.EventDate, camp.Length
	r.camps[campID] = row

	if _, ok := r.locations[row.locationID]; !ok {
		return false, nil
	}

	r.locations[row.locationID] = location(row.locationID, camp)

	return true, nil
}

func (r *MemoryRepository) UpdateTalk(_ context.Context, talk domain.TalkModel, _ string, talkID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, talkUpdated := r.talks[talkID]
	if talkUpdated {
		t.Title, t.Abstract, t.Level = talk.Title, talk.Abstract, talk.Level
		r.talks[talkID] = t
	}

	speakerID := r.speakerID(talk.Speaker.FirstName, talk.Speaker.LastName)
	if speakerID == 0 {
		return false, nil
	}

	r.speakers[speakerID] = speaker(speakerID, talk.Speaker)

	return talkUpdated, nil
}

func (r *MemoryRepository) DeleteCamp(_ context.Context, moniker string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	campID := r.campID(moniker)
	if campID == 0 {
		return false, nil
	}

	for id, t := range r.talks {
		if t.CampID == campID {
			delete(r.talks, id)
		}
	}

	delete(r.camps, campID)

	return true, nil
}

func (r *MemoryRepository) DeleteTalk(_ context.Context, moniker string, talkID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.talks[talkID]
	if !ok || t.CampID != r.campID(moniker) {
		return false, nil
	}

	delete(r.talks, talkID)

	return true, nil
}

func (r *MemoryRepository) SpeakerID(_ context.Context, firstName string, lastName string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.speakerID(firstName, lastName), nil
}

func (r *MemoryRepository) CampID(_ context.Context, moniker string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.campID(moniker), nil
}

// filterCamps returns copies, so callers can not change the stored rows.
func (r *MemoryRepository) filterCamps(match func(domain.Camp) bool, includeTalks bool) []domain.Camp {
	camps := []domain.Camp{}

	for _, row := range r.camps {
		l, ok := r.locations[row.locationID]
		if !ok || !match(row.Camp) {
			continue
		}

		c := row.Camp
		c.Location = &l

		if includeTalks {
			campID := c.CampID
			c.Talks = r.filterTalks(func(t domain.Talk) bool { return t.CampID == campID }, true)
		}

		camps = append(camps, c)
	}

	slices.SortFunc(camps, func(a, b domain.Camp) int { return cmp.Compare(a.CampID, b.CampID) })

	return camps
}

func (r *MemoryRepository) filterTalks(match func(domain.Talk) bool, includeSpeakers bool) []domain.Talk {
	talks := []domain.Talk{}

	for _, t := range r.talks {
		if !match(t) {
			continue
		}

		if includeSpeakers {
			s, ok := r.speakers[t.SpeakerID]
			if !ok {
				continue
			}

			t.Speaker = &s
		}

		talks = append(talks, t)
	}

	slices.SortFunc(talks, func(a, b domain.Talk) int { return cmp.Compare(a.TalkID, b.TalkID) })

	return talks
}

func (r *MemoryRepository) campID(moniker string) int {
	for id, c := range r.camps {
		if c.Moniker == moniker {
			return id
		}
	}

	return 0
}

func (r *MemoryRepository) speakerID(firstName string, lastName string) int {
	for id, s := range r.speakers {
		if s.FirstName == firstName && s.LastName == lastName {
			return id
		}
	}

	return 0
}

func (r *MemoryRepository) id() int {
	r.nextID++

	return r.nextID
}

func sortSpeakers(speakers []domain.Speaker) {
	slices.SortFunc(speakers, func(a, b domain.Speaker) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.SpeakerID, b.SpeakerID))
	})
}

func location(id int, c domain.CampModel) domain.Location {
	return domain.Location{
		LocationID:    id,
		VenueName:     c.Venue,
		Address1:      c.LocationAddress1,
		Address2:      c.LocationAddress2,
		Address3:      c.LocationAddress3,
		CityTown:      c.LocationCityTown,
		StateProvince: c.LocationStateProvince,
		PostalCode:    c.LocationPostalCode,
		Country:       c.LocationCountry,
	}
}

func speaker(id int, s domain.SpeakerModel) domain.Speaker {
	return domain.Speaker{
		SpeakerID:  id,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		MiddleName: s.MiddleName,
		Company:    s.Company,
		CompanyURL: s.CompanyURL,
		BlogURL:    s.BlogURL,
		Twitter:    s.Twitter,
		GitHub:     s.GitHub,
	}
}
