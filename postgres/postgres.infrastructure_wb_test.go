package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_dsn(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conf, err := pgxpool.ParseConfig(Config{User: "codecamp", Host: "db.local", Port: 5432, Database: "camps"}.dsn())
		require.NoError(t, err)

		assert.Equal(t, int32(defaultMaxConns), conf.MaxConns)
		assert.Equal(t, "db.local", conf.ConnConfig.Host)
		assert.Equal(t, uint16(5432), conf.ConnConfig.Port)
		assert.Equal(t, "camps", conf.ConnConfig.Database)
		assert.Nil(t, conf.ConnConfig.TLSConfig, "ssl is disabled")
	})

	t.Run("password is escaped", func(t *testing.T) {
		t.Parallel()

		conf, err := pgxpool.ParseConfig(Config{
			User: "codecamp", Password: "p@ss/word?#", Host: "localhost", Port: 5432, Database: "camps", MaxConns: 3,
		}.dsn())
		require.NoError(t, err)

		assert.Equal(t, "p@ss/word?#", conf.ConnConfig.Password)
		assert.Equal(t, int32(3), conf.MaxConns)
	})
}
