// Package domain holds the CodeCamp entities and the contracts to load and change them.
package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotApplied is returned if a change did not affect all the rows it should have.
	ErrNotApplied = errors.New("change not applied")
)

// Camp is a conference event, identified externally by its unique Moniker.
type Camp struct {
	CampID    int       `db:"camp_id"    json:"campId"`
	Name      string    `db:"name"       json:"name"`
	Moniker   string    `db:"moniker"    json:"moniker"`
	EventDate time.Time `db:"event_date" json:"eventDate"`
	Length    int       `db:"length"     json:"length"`

	Location *Location `db:"-" json:"location"`
	// Talks are only loaded on request and nil otherwise.
	Talks []Talk `db:"-" json:"talks,omitempty"`
}

type Location struct {
	LocationID    int    `db:"location_id"    json:"locationId"`
	VenueName     string `db:"venue_name"     json:"venueName"`
	Address1      string `db:"address1"       json:"address1"`
	Address2      string `db:"address2"       json:"address2"`
	Address3      string `db:"address3"       json:"address3"`
	CityTown      string `db:"city_town"      json:"cityTown"`
	StateProvince string `db:"state_province" json:"stateProvince"`
	PostalCode    string `db:"postal_code"    json:"postalCode"`
	Country       string `db:"country"        json:"country"`
}

type Talk struct {
	TalkID    int    `db:"talk_id"    json:"talkId"`
	CampID    int    `db:"camp_id"    json:"campId"`
	Title     string `db:"title"      json:"title"`
	Abstract  string `db:"abstract"   json:"abstract"`
	Level     int    `db:"level"      json:"level"`
	SpeakerID int    `db:"speaker_id" json:"speakerId"`

	// Speaker is only loaded on request and nil otherwise.
	Speaker *Speaker `db:"-" json:"speaker,omitempty"`
}

type Speaker struct {
	SpeakerID  int    `db:"speaker_id"  json:"speakerId"`
	FirstName  string `db:"first_name"  json:"firstName"`
	LastName   string `db:"last_name"   json:"lastName"`
	MiddleName string `db:"middle_name" json:"middleName"`
	Company    string `db:"company"     json:"company"`
	CompanyURL string `db:"company_url" json:"companyUrl"`
	BlogURL    string `db:"blog_url"    json:"blogUrl"`
	Twitter    string `db:"twitter"     json:"twitter"`
	GitHub     string `db:"github"      json:"gitHub"`
}

// CampModel is the flat shape a camp is created and updated with.
type CampModel struct {
	Name      string    `json:"name"      validate:"required"`
	Moniker   string    `json:"moniker"   validate:"required,max=20"`
	EventDate time.Time `json:"eventDate"`
	Length    int       `json:"length"    validate:"min=1,max=100"`

	Venue                 string `json:"venue"`
	LocationAddress1      string `json:"locationAddress1"`
	LocationAddress2      string `json:"locationAddress2"`
	LocationAddress3      string `json:"locationAddress3"`
	LocationCityTown      string `json:"locationCityTown"`
	LocationStateProvince string `json:"locationStateProvince"`
	LocationPostalCode    string `json:"locationPostalCode"`
	LocationCountry       string `json:"locationCountry"`
}

// NewCampModel returns the model of an existing camp, e.g. to change single fields of it.
func NewCampModel(c Camp) CampModel {
	m := CampModel{
		Name:      c.Name,
		Moniker:   c.Moniker,
		EventDate: c.EventDate,
		Length:    c.Length,
	}

	if c.Location != nil {
		m.Venue = c.Location.VenueName
		m.LocationAddress1 = c.Location.Address1
		m.LocationAddress2 = c.Location.Address2
		m.LocationAddress3 = c.Location.Address3
		m.LocationCityTown = c.Location.CityTown
		m.LocationStateProvince = c.Location.StateProvince
		m.LocationPostalCode = c.Location.PostalCode
		m.LocationCountry = c.Location.Country
	}

	return m
}

// TalkModel is the shape a talk is created and updated with.
// The speaker is identified by first and last name.
type TalkModel struct {
	Title    string       `json:"title"    validate:"required,max=100"`
	Abstract string       `json:"abstract" validate:"required,max=4000"`
	Level    int          `json:"level"    validate:"min=100,max=500"`
	Speaker  SpeakerModel `json:"speaker"`
}

type SpeakerModel struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName"  validate:"required"`
	MiddleName string `json:"middleName"`
	Company    string `json:"company"`
	CompanyURL string `json:"companyUrl"`
	BlogURL    string `json:"blogUrl"`
	Twitter    string `json:"twitter"`
	GitHub     string `json:"gitHub"`
}
