package codecamp

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/coreapi/codecamp/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	OrganisationName string `mapstructure:"organisation_name"`
	ApplicationName  string `mapstructure:"application_name"`
	InstanceName     string `mapstructure:"instance_name"`

	Environment Environment `mapstructure:"environment"`

	HTTP     HTTP     `mapstructure:"http"`
	Postgres Postgres `mapstructure:"postgres"`
	OTEL     OTEL     `mapstructure:"otel"`
	Log      Log      `mapstructure:"log"`
	Camps    Camps    `mapstructure:"camps"`
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

type (
	HTTP struct {
		Port                  int  `mapstructure:"port"                    json:"port"`
		StatusEndpointEnabled bool `mapstructure:"status_endpoint_enabled" json:"-"`
		StatusEndpointPort    int  `mapstructure:"status_endpoint_port"    json:"-"`
	}

	Postgres struct {
		User     string        `mapstructure:"user"            json:"user"`
		Password secret.Secret `mapstructure:"password,squash" json:"-"`
		Database string        `mapstructure:"database"        json:"database"`
		Host     string        `mapstructure:"host"            json:"host"`
		Port     int           `mapstructure:"port"            json:"port"`
		SSLMode  string        `mapstructure:"ssl_mode"        json:"sslMode"`
		MaxConns int           `mapstructure:"max_conns"       json:"maxConns"`
		// ConnectTimeoutSeconds is how long the service waits for the database at start.
		ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" json:"connectTimeoutSeconds"`
	}

	OTEL struct {
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}

	Log struct {
		// Statements logs every statement sent to the database.
		Statements bool `mapstructure:"statements" json:"statements"`
		// LokiPushURL ships the logs of a local environment to loki, if set.
		LokiPushURL string `mapstructure:"loki_push_url" json:"lokiPushUrl"`
	}

	Camps struct {
		// AtomicWrites runs all statements of a write use case in one transaction.
		AtomicWrites bool `mapstructure:"atomic_writes" json:"atomicWrites"`
	}
)

// DefaultViper returns a new viper instance with all default values
// from Config set.
// Every key can be overwritten by an environment variable prefixed with CODECAMP_,
// e.g. CODECAMP_POSTGRES_HOST.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix("codecamp")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("organisation_name", "coreapi")
	vip.SetDefault("application_name", "codecamp")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("postgres.user", "codecamp")
	vip.SetDefault("postgres.password", "secret")
	vip.SetDefault("postgres.database", "codecamp")
	vip.SetDefault("postgres.host", "localhost")
	vip.SetDefault("postgres.port", 5432)
	vip.SetDefault("postgres.ssl_mode", "disable")
	vip.SetDefault("postgres.max_conns", 10)
	vip.SetDefault("postgres.connect_timeout_seconds", 30)

	vip.SetDefault("otel.host", "localhost")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	vip.SetDefault("log.statements", false)
	vip.SetDefault("log.loki_push_url", "")

	vip.SetDefault("camps.atomic_writes", false)

	return &Viper{Viper: vip}
}

var errConfigLoadFailed = errors.New("loading configuration failed")

// Viper wraps viper.Viper, so Unmarshal also decodes the secret.Secret fields of Config.
type Viper struct {
	*viper.Viper
}

// Unmarshal decodes the configuration into rawVal, which is a *Config
// or a pointer to a struct embedding Config as one of its fields.
func (vip *Viper) Unmarshal(rawVal any, _ ...viper.DecoderConfigOption) error {
	if err := vip.Viper.Unmarshal(rawVal, viper.DecodeHook(allowedEnvironmentHookFunc())); err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", errConfigLoadFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	config := findConfig(rawVal)
	if config == nil {
		return fmt.Errorf("%w: could not cast to codecamp.Config", errConfigLoadFailed)
	}

	// mapstructure copies structs via a map and drops the unexported value of a secret.Secret.
	err := vip.Viper.UnmarshalKey(
		"postgres.password",
		&config.Postgres.Password,
		viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()),
	)
	if err != nil {
		return fmt.Errorf("%w: could not decode secret: %v", errConfigLoadFailed, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func findConfig(rawVal any) *Config {
	if config, ok := rawVal.(*Config); ok {
		return config
	}

	v := reflect.ValueOf(rawVal)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	v = v.Elem()
	for i := range v.NumField() {
		if f := v.Field(i); f.Type() == reflect.TypeOf(Config{}) && f.CanAddr() && f.CanInterface() {
			config, _ := f.Addr().Interface().(*Config)

			return config
		}
	}

	return nil
}

func allowedEnvironmentHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(Environment("")) {
			return data, nil
		}

		if s, ok := data.(string); ok && slices.Contains(Environments(), Environment(s)) {
			return data, nil
		}

		names := make([]string, 0, len(Environments()))
		for _, env := range Environments() {
			names = append(names, string(env))
		}

		return data, fmt.Errorf("value is not allowed, use one of: %s", strings.Join(names, ", ")) //nolint:err113,lll // accept dynamic error
	}
}
