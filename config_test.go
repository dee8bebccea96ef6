package codecamp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := codecamp.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the test config file!

	assert.Equal(t, "coreapi", vip.Get("organisation_name"))
	assert.Equal(t, "codecamp", vip.Get("application_name"))
	assert.Empty(t, vip.Get("instance_name"))

	assert.Equal(t, codecamp.LocalEnv, codecamp.Environment(vip.GetString("environment")))

	assert.Equal(t, 8080, vip.GetInt("http.port"))
	assert.True(t, vip.GetBool("http.status_endpoint_enabled"))
	assert.Equal(t, 2223, vip.GetInt("http.status_endpoint_port"))

	assert.Equal(t, "codecamp", vip.GetString("postgres.user"))
	assert.Equal(t, "secret", vip.GetString("postgres.password"))
	assert.Equal(t, "codecamp", vip.GetString("postgres.database"))
	assert.Equal(t, "localhost", vip.GetString("postgres.host"))
	assert.Equal(t, 5432, vip.GetInt("postgres.port"))
	assert.Equal(t, "disable", vip.GetString("postgres.ssl_mode"))
	assert.Equal(t, 10, vip.GetInt("postgres.max_conns"))
	assert.Equal(t, 30, vip.GetInt("postgres.connect_timeout_seconds"))

	assert.Equal(t, "localhost", vip.GetString("otel.host"))
	assert.Equal(t, 4317, vip.GetInt("otel.port"))
	assert.Equal(t, "", vip.GetString("otel.hostname"))

	assert.False(t, vip.GetBool("log.statements"))
	assert.Empty(t, vip.GetString("log.loki_push_url"))

	assert.False(t, vip.GetBool("camps.atomic_writes"))
}

func TestDefaultViper_CustomTypes(t *testing.T) {
	t.Parallel()

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := codecamp.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := codecamp.Config{}

		err = vip.Unmarshal(&conf)
		assert.Error(t, err, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: ", "error message should list out all accepted environments")
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		vip := codecamp.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := codecamp.Config{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, codecamp.TestEnv, conf.Environment)
		assert.Equal(t, 9090, conf.HTTP.Port)
		assert.Equal(t, "db.local", conf.Postgres.Host)
		assert.Equal(t, 5432, conf.Postgres.Port, "default is kept")
		assert.True(t, conf.Log.Statements)
		assert.True(t, conf.Camps.AtomicWrites)
	})

	t.Run("unmarshal secret", func(t *testing.T) {
		t.Parallel()

		vip := codecamp.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := codecamp.Config{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Postgres.Password.Secret())
		assert.Equal(t, "******", conf.Postgres.Password.String())
	})

	t.Run("custom config", func(t *testing.T) {
		t.Parallel()

		type MyConfig struct {
			SomeStructField struct{ A string }
			codecamp.Config `mapstructure:",squash"`
		}

		vip := codecamp.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		err := vip.ReadInConfig()
		assert.NoError(t, err)

		conf := MyConfig{}

		err = vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-db-secret", conf.Postgres.Password.Secret())
		assert.True(t, conf.Camps.AtomicWrites)
	})
}
