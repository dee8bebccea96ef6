// Package application contains the use cases of the camps context.
package application

import (
	"github.com/coreapi/codecamp/app"
)

// App is a dependency injection container.
type App struct {
	ListCamps   app.Query[ListCampsQuery, ListCampsResponse]
	GetCamp     app.Query[GetCampQuery, GetCampResponse]
	SearchCamps app.Query[SearchCampsQuery, SearchCampsResponse]
	CreateCamp  app.Request[CreateCampRequest, CreateCampResponse]
	UpdateCamp  app.Request[UpdateCampRequest, UpdateCampResponse]
	DeleteCamp  app.Command[DeleteCampCommand]

	ListTalks  app.Query[ListTalksQuery, ListTalksResponse]
	GetTalk    app.Query[GetTalkQuery, GetTalkResponse]
	CreateTalk app.Request[CreateTalkRequest, CreateTalkResponse]
	UpdateTalk app.Request[UpdateTalkRequest, UpdateTalkResponse]
	DeleteTalk app.Command[DeleteTalkCommand]

	ListSpeakers     app.Query[ListSpeakersQuery, ListSpeakersResponse]
	GetSpeaker       app.Query[GetSpeakerQuery, GetSpeakerResponse]
	ListCampSpeakers app.Query[ListCampSpeakersQuery, ListCampSpeakersResponse]
}
