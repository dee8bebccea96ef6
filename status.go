package codecamp

import (
	"context"
	"time"
)

const (
	statusOnline   = "online"
	statusDegraded = "degraded"
)

type systemStatus struct {
	Status           string      `json:"status"`
	Time             time.Time   `json:"time"`
	Uptime           string      `json:"uptime"`
	GitHash          string      `json:"gitHash"`
	OrganisationName string      `json:"organisationName"`
	ApplicationName  string      `json:"applicationName"`
	InstanceName     string      `json:"instanceName"`
	Environment      Environment `json:"environment"`

	Web      HTTP     `json:"web"`
	Database dbStatus `json:"database"`
	Camps    Camps    `json:"camps"`
}

type dbStatus struct {
	Postgres
	Status string `json:"status"`
}

// getSystemStatus reports the service as degraded, if the database does not answer.
// Without a database configured, only the service itself is reported.
func getSystemStatus(ctx context.Context, di *Container, serverStartedAt time.Time) systemStatus {
	status := statusOnline
	dbOnline := "not configured"

	if di.PGx != nil {
		dbOnline = statusOnline

		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		if err := di.PGx.Ping(pingCtx); err != nil {
			dbOnline = "err: " + err.Error()
			status = statusDegraded
		}
	}

	return systemStatus{
		Status:           status,
		Time:             time.Now(),
		Uptime:           time.Since(serverStartedAt).Round(time.Second).String(),
		GitHash:          gitHash(),
		OrganisationName: di.Config.OrganisationName,
		ApplicationName:  di.Config.ApplicationName,
		InstanceName:     di.Config.InstanceName,
		Environment:      di.Config.Environment,
		Web:              di.Config.HTTP,
		Database:         dbStatus{Postgres: di.Config.Postgres, Status: dbOnline},
		Camps:            di.Config.Camps,
	}
}
