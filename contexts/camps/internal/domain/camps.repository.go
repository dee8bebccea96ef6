package domain

import (
	"context"
	"time"
)

// Reads return nil or an empty slice if nothing matches, never ErrNotFound.

type CampRepository interface {
	AllCamps(ctx context.Context, includeTalks bool) ([]Camp, error)
	Camp(ctx context.Context, moniker string, includeTalks bool) (*Camp, error)
	// AllCampsByEventDate matches the exact date, not a range.
	AllCampsByEventDate(ctx context.Context, date time.Time, includeTalks bool) ([]Camp, error)
	TalksByCampID(ctx context.Context, campID int) ([]Talk, error)
}

type TalkRepository interface {
	TalksByMoniker(ctx context.Context, moniker string, includeSpeakers bool) ([]Talk, error)
	TalkByMoniker(ctx context.Context, moniker string, talkID int, includeSpeakers bool) (*Talk, error)
}

type SpeakerRepository interface {
	SpeakersByMoniker(ctx context.Context, moniker string) ([]Speaker, error)
	Speaker(ctx context.Context, speakerID int) (*Speaker, error)
	AllSpeakers(ctx context.Context) ([]Speaker, error)
}

// MutationRepository changes camps, talks, and the rows they depend on.
// A composite change runs one statement after the other and is only atomic,
// if ctx carries a transaction.
type MutationRepository interface {
	AddCamp(ctx context.Context, camp CampModel) (bool, error)
	AddTalk(ctx context.Context, talk TalkModel, moniker string) (bool, error)
	// UpdateCamp reports true only if both the camp and its location were updated.
	UpdateCamp(ctx context.Context, camp CampModel, moniker string) (bool, error)
	// UpdateTalk reports true only if both the talk and its speaker were updated.
	UpdateTalk(ctx context.Context, talk TalkModel, moniker string, talkID int) (bool, error)
	DeleteCamp(ctx context.Context, moniker string) (bool, error)
	DeleteTalk(ctx context.Context, moniker string, talkID int) (bool, error)

	// SpeakerID and CampID return 0 if nothing matches.
	SpeakerID(ctx context.Context, firstName string, lastName string) (int, error)
	CampID(ctx context.Context, moniker string) (int, error)
}
