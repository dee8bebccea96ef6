//go:build integration

package tests

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

var ErrDockerFailure = errors.New("docker failure")

// RetryFunc returns the func connecting to the started container.
// The returned func is called until it succeeds or the container lifetime is used up,
// as the service in the container might still be booting.
type RetryFunc func(resource *dockertest.Resource) func() error

// containerLifetime is how long docker keeps a test container, before it is killed.
// Set CODECAMP_TEST_CONTAINER_LIFETIME (seconds) for slow machines or debugging sessions.
func containerLifetime() uint {
	const defaultLifetime = 120

	if s := os.Getenv("CODECAMP_TEST_CONTAINER_LIFETIME"); s != "" {
		if v, err := strconv.ParseUint(s, 10, 32); err == nil && v > 0 {
			return uint(v)
		}
	}

	return defaultLifetime
}

// StartDockerContainer starts a container for integration tests and returns a func to purge it again.
// The container removes itself once stopped and is labeled, so leftovers can be found with:
// docker ps --filter label=codecamp.integration-test.
func StartDockerContainer(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil {
		return nil, fmt.Errorf("%w: invalid run options", ErrDockerFailure)
	}

	if retryFunc == nil {
		return nil, fmt.Errorf("%w: invalid retry func", ErrDockerFailure)
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: could not create new pool: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: could not connect to docker: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	options := *runOptions
	options.Labels = map[string]string{"codecamp.integration-test": "true"}

	for k, v := range runOptions.Labels {
		options.Labels[k] = v
	}

	resource, err := pool.RunWithOptions(&options, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no", MaximumRetryCount: 0}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not start container: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	lifetime := containerLifetime()
	_ = resource.Expire(lifetime)

	pool.MaxWait = time.Duration(lifetime) * time.Second
	if err = pool.Retry(retryFunc(resource)); err != nil {
		_ = pool.Purge(resource)

		return nil, fmt.Errorf("%w: container did not get ready: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	return func() error {
		if err := pool.Purge(resource); err != nil {
			return fmt.Errorf("%w: could not purge container: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
		}

		return nil
	}, nil
}
