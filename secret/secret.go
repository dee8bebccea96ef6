// Package secret masks sensitive configuration values, e.g. the database password.
//
// A Secret prints, marshals and logs as ******.
// Only Secret() returns the actual value.
package secret

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"log/slog"
)

const mask = "******"

var ErrScan = errors.New("failed to scan secret")

func New(secret string) Secret {
	return Secret{secret: &secret}
}

// Secret prevents accidentally exposing
// any data you did not want to expose by masking it.
type Secret struct {
	// secret being a pointer does make it harder to access the value.
	// It is still possible by directly accessing the memory address.
	// See the example on how it would work.
	secret *string
}

var (
	_ json.Marshaler   = Secret{}
	_ slog.LogValuer   = Secret{}
	_ driver.Valuer    = Secret{}
	_ json.Unmarshaler = (*Secret)(nil)
)

// Secret returns the actual value of the Secret.
func (s Secret) Secret() string {
	if s.secret == nil {
		return ""
	}

	return *s.secret
}

func (s Secret) String() string {
	return mask
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(mask) //nolint:wrapcheck // export the underlying error
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var des string
	if err := json.Unmarshal(data, &des); err != nil {
		return err //nolint:wrapcheck // export the underlying error
	}

	s.secret = &des

	return nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(mask), nil
}

// UnmarshalText is used by mapstructure to decode a Secret from the configuration.
func (s *Secret) UnmarshalText(data []byte) error {
	text := string(data)
	s.secret = &text

	return nil
}

func (s *Secret) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		s.secret = nil
	case string:
		s.secret = &v
	case []byte:
		str := string(v)
		s.secret = &str
	default:
		return ErrScan
	}

	return nil
}

// Value returns the actual value, so it can be written to the database.
func (s Secret) Value() (driver.Value, error) {
	if s.secret == nil {
		return nil, nil //nolint:nilnil // NULL
	}

	return *s.secret, nil
}
