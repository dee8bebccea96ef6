// Package web exposes the camps context as a JSON API.
package web

import (
	"github.com/labstack/echo/v4"

	"github.com/coreapi/codecamp/alog"

	"github.com/coreapi/codecamp/contexts/camps/internal/application"
)

const (
	routeCamp  = "camps.camp"
	routeTalks = "camps.talks"
)

// RegisterAPIRoutes registers all routes of the camps context on router, usually the /api group.
func RegisterAPIRoutes(router *echo.Group, logger alog.Logger, app application.App) {
	camps := NewCampsController(logger, app)
	talks := NewTalksController(logger, app)
	speakers := NewSpeakersController(logger, app)

	router.GET("/camps", camps.List())
	router.POST("/camps", camps.Create())
	router.GET("/camps/search", camps.Search())
	router.GET("/camps/:moniker", camps.Show()).Name = routeCamp
	router.PUT("/camps/:moniker", camps.Update())
	router.DELETE("/camps/:moniker", camps.Delete())

	router.GET("/camps/:moniker/talks", talks.List()).Name = routeTalks
	router.POST("/camps/:moniker/talks", talks.Create())
	router.GET("/camps/:moniker/talks/:id", talks.Show())
	router.PUT("/camps/:moniker/talks/:id", talks.Update())
	router.DELETE("/camps/:moniker/talks/:id", talks.Delete())

	router.GET("/camps/:moniker/speakers", speakers.ListOfCamp())
	router.GET("/speakers", speakers.List())
	router.GET("/speakers/:id", speakers.Show())
}
