package secret_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/coreapi/codecamp/alog"
	"github.com/coreapi/codecamp/secret"
)

const dbPassword = "pg-super-secret"

type dbConfig struct {
	Host     string        `json:"host"`
	Password secret.Secret `json:"password"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	s := secret.New(dbPassword)
	assert.Equal(t, dbPassword, s.Secret())
	assert.Empty(t, secret.Secret{}.Secret(), "zero value has no secret")

	t.Run("unexported field is hidden from reflection", func(t *testing.T) {
		t.Parallel()

		v := reflect.ValueOf(&s)
		assert.NotContains(t, v.String(), dbPassword)
		assert.Panics(t, func() { v.FieldByName("secret") })
		assert.Panics(t, func() { v.Field(0) })
		assert.Panics(t, func() { reflect.TypeOf(&s).FieldByName("secret") })
	})
}

func TestSecret_masked(t *testing.T) {
	t.Parallel()

	for name, value := range map[string]string{
		"empty":      "",
		"whitespace": " ",
		"password":   dbPassword,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := secret.New(value)

			assert.Equal(t, "******", fmt.Sprint(s))
			assert.Equal(t, "******", fmt.Sprint(&s))
			assert.Equal(t, "******", fmt.Sprintf("%+v", s))

			text, err := s.MarshalText()
			assert.NoError(t, err)
			assert.Equal(t, "******", string(text))

			buf := &bytes.Buffer{}
			logger := alog.New(alog.WithHandler(slog.NewTextHandler(buf, nil)))
			logger.Info("connect", slog.Any("password", s))
			assert.Contains(t, buf.String(), "password=******")

			if value == dbPassword {
				assert.NotContains(t, buf.String(), value)
			}
		})
	}
}

func TestSecret_JSON(t *testing.T) {
	t.Parallel()

	t.Run("marshal", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(dbConfig{Host: "db.local", Password: secret.New(dbPassword)})
		assert.NoError(t, err)
		assert.JSONEq(t, `{"host":"db.local","password":"******"}`, string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		t.Parallel()

		var conf dbConfig
		err := json.Unmarshal([]byte(`{"host":"db.local","password":"`+dbPassword+`"}`), &conf)
		assert.NoError(t, err)
		assert.Equal(t, dbPassword, conf.Password.Secret())
		assert.Equal(t, "******", conf.Password.String())
	})

	t.Run("unmarshal wrong type", func(t *testing.T) {
		t.Parallel()

		var conf dbConfig
		err := json.Unmarshal([]byte(`{"password":1337}`), &conf)
		assert.Error(t, err)
	})
}

func TestSecret_UnmarshalText(t *testing.T) {
	t.Parallel()

	var s secret.Secret

	assert.NoError(t, s.UnmarshalText([]byte(dbPassword)))
	assert.Equal(t, dbPassword, s.Secret())
}

func TestSecret_Scan(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		src  any
		want string
		err  error
	}{
		"text":        {dbPassword, dbPassword, nil},
		"bytes":       {[]byte(dbPassword), dbPassword, nil},
		"null":        {nil, "", nil},
		"unsupported": {1337, "", secret.ErrScan},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var s secret.Secret

			err := s.Scan(tt.src)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, s.Secret())
		})
	}
}

func TestSecret_Value(t *testing.T) {
	t.Parallel()

	v, err := secret.New(dbPassword).Value()
	assert.NoError(t, err)
	assert.Equal(t, dbPassword, v)

	v, err = secret.Secret{}.Value()
	assert.NoError(t, err)
	assert.Nil(t, v, "zero value is written as NULL")
}

//nolint:errchkjson
func Example_accidentalPrint() {
	conf := dbConfig{Host: "db.local", Password: secret.New(dbPassword)}

	fmt.Println(conf.Password)
	fmt.Printf("%+v\n", conf)
	fmt.Printf("%+v\n", &conf)

	logger := alog.New(alog.WithHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return attr
		},
	})))
	logger.Info("connect", slog.Any("postgres", conf))

	b, _ := json.Marshal(conf)
	fmt.Println(string(b))

	// Output: ******
	// {Host:db.local Password:******}
	// &{Host:db.local Password:******}
	// level=INFO msg=connect postgres="{Host:db.local Password:******}"
	// {"host":"db.local","password":"******"}
}

// The value stays reachable through its memory address.
// Encrypt it, if stronger guarantees are required.
func Example_unsafeAccess() {
	s := secret.New(dbPassword)

	p := (**string)(unsafe.Pointer(&s))
	fmt.Println(**p)

	// Output: pg-super-secret
}
