package schema_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/schema"
)

func TestString_Check(t *testing.T) {
	cases := []struct {
		name    string
		rule    schema.StringField
		raw     any
		want    any
		wantErr string
	}{
		{name: "required empty", rule: schema.String(), raw: "", wantErr: schema.MessageRequired},
		{name: "required nil", rule: schema.String(), raw: nil, wantErr: schema.MessageRequired},
		{name: "optional empty", rule: schema.String().Optional(), raw: "  ", want: ""},
		{name: "trimmed", rule: schema.String(), raw: " Ann ", want: "Ann"},
		{name: "min length", rule: schema.String().MinLength(3), raw: "ab", wantErr: "Must be at least 3 characters"},
		{name: "max length", rule: schema.String().MaxLength(2), raw: "abc", wantErr: "Must be at most 2 characters"},
		{name: "pattern", rule: schema.String().Pattern(`^[a-z]+$`), raw: "abc1", wantErr: schema.MessagePattern},
		{name: "one of", rule: schema.String().OneOf("s", "m"), raw: "l", wantErr: "Must be one of: s, m"},
		{name: "one of ok", rule: schema.String().OneOf("s", "m"), raw: "m", want: "m"},
		{name: "email", rule: schema.Email(), raw: "ann@example.com", want: "ann@example.com"},
		{name: "bad email", rule: schema.Email(), raw: "ann", wantErr: schema.MessageEmail},
		{name: "optional email empty", rule: schema.Email().Optional(), raw: "", want: ""},
		{name: "date", rule: schema.String().Format(schema.FormatDate), raw: "2024-02-30", wantErr: schema.MessageDate},
		{name: "uri", rule: schema.String().Format(schema.FormatURI), raw: "https://example.com/x", want: "https://example.com/x"},
		{name: "bad uri", rule: schema.String().Format(schema.FormatURI), raw: "example.com", wantErr: schema.MessageURI},
		{name: "date value", rule: schema.String().Format(schema.FormatDate), raw: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), want: "2020-01-02"},
		{name: "timestamp value", rule: schema.String(), raw: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), want: "2020-01-02T03:04:05Z"},
		{name: "number as text", rule: schema.String(), raw: 42, want: "42"},
		{name: "structured value", rule: schema.String(), raw: []string{"a"}, wantErr: schema.MessageText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.rule.Check(tc.raw)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, res.Error)
				return
			}
			require.True(t, res.Valid(), "unexpected error %q", res.Error)
			assert.Equal(t, tc.want, res.Value)
		})
	}
}

func TestString_Metadata(t *testing.T) {
	assert.Nil(t, schema.String().Choices())
	assert.Equal(t, []string{"s", "m"}, schema.String().OneOf("s", "m").Choices())
	assert.Equal(t, []string{"email", "string"}, schema.Email().Kinds())
	assert.True(t, schema.String().Optional().AcceptsEmpty())
	assert.False(t, schema.String().AcceptsEmpty())

	base := schema.String()
	_ = base.Optional()
	assert.False(t, base.AcceptsEmpty(), "builder must not mutate the receiver")
}

func TestNumber_Check(t *testing.T) {
	cases := []struct {
		name    string
		rule    schema.NumberField
		raw     any
		want    any
		wantErr string
	}{
		{name: "float", rule: schema.Number(), raw: 1.5, want: 1.5},
		{name: "int widened", rule: schema.Number(), raw: 20, want: float64(20)},
		{name: "string rejected", rule: schema.Number(), raw: "20", wantErr: schema.MessageNumber},
		{name: "string allowed", rule: schema.Number().AllowString(), raw: "20", want: float64(20)},
		{name: "garbage", rule: schema.Number().AllowString(), raw: "abc", wantErr: schema.MessageNumber},
		{name: "required", rule: schema.Number().AllowString(), raw: "", wantErr: schema.MessageRequired},
		{name: "optional", rule: schema.Number().Optional(), raw: nil, want: nil},
		{name: "min", rule: schema.Number().AllowString().Min(18), raw: "17", wantErr: "Must be at least 18"},
		{name: "max", rule: schema.Number().Max(2.5), raw: 3, wantErr: "Must be at most 2.5"},
		{name: "integer", rule: schema.Integer(), raw: 4.0, want: int64(4)},
		{name: "integer fraction", rule: schema.Integer(), raw: 4.2, wantErr: schema.MessageInteger},
		{name: "integer too large", rule: schema.Integer(), raw: 1e19, wantErr: schema.MessageRange},
		{name: "integer too small", rule: schema.Integer(), raw: -1e19, wantErr: schema.MessageRange},
		{name: "integer text too large", rule: schema.Integer().AllowString(), raw: "9999999999999999999999", wantErr: schema.MessageRange},
		{name: "integer lower bound", rule: schema.Integer(), raw: float64(math.MinInt64), want: int64(math.MinInt64)},
		{name: "large number", rule: schema.Number(), raw: 1e19, want: 1e19},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.rule.Check(tc.raw)
			if tc.wantErr != "" {
				assert.Equal(t, tc.wantErr, res.Error)
				return
			}
			require.True(t, res.Valid(), "unexpected error %q", res.Error)
			assert.Equal(t, tc.want, res.Value)
		})
	}
}

func TestBoolean_Check(t *testing.T) {
	assert.Equal(t, schema.Result{Value: false}, schema.Boolean().Check(nil))
	assert.Equal(t, schema.Result{Value: false}, schema.Boolean().Check(""))
	assert.Equal(t, schema.Result{Value: true}, schema.Boolean().Check(true))
	assert.Equal(t, schema.MessageBoolean, schema.Boolean().Check("yes").Error)
	assert.Equal(t, schema.Result{Value: true}, schema.Boolean().AllowString().Check("on"))
	assert.Equal(t, schema.MessageBoolean, schema.Boolean().AllowString().Check("maybe").Error)
}

func TestString_CheckDecodedYAMLDate(t *testing.T) {
	var values map[string]any
	require.NoError(t, yaml.Unmarshal([]byte("birthday: 2020-01-02\n"), &values))

	res := schema.String().Format(schema.FormatDate).Check(values["birthday"])
	require.True(t, res.Valid(), "unexpected error %q", res.Error)
	assert.Equal(t, "2020-01-02", res.Value)
}

func TestNewObject_Rejects(t *testing.T) {
	_, err := schema.NewObject(schema.Prop("", schema.String()))
	assert.ErrorIs(t, err, schema.ErrEmptyKey)

	_, err = schema.NewObject(schema.Prop("a", nil))
	assert.ErrorIs(t, err, schema.ErrNilField)

	_, err = schema.NewObject(schema.Prop("a", schema.String()), schema.Prop("a", schema.Number()))
	assert.ErrorIs(t, err, schema.ErrDuplicateKey)

	assert.Panics(t, func() {
		schema.MustObject(schema.Prop("a", schema.String()), schema.Prop("a", schema.String()))
	})
}

func TestObject_Validate(t *testing.T) {
	obj := schema.MustObject(
		schema.Prop("name", schema.String()),
		schema.Prop("age", schema.Number().Min(18).AllowString()),
	)

	assert.Equal(t, []string{"name", "age"}, obj.Keys())
	_, ok := obj.Field("missing")
	assert.False(t, ok)

	cleaned, err := obj.Validate(map[string]any{"name": "Ann", "age": "20", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ann", "age": float64(20)}, cleaned)

	_, err = obj.Validate(map[string]any{"name": "", "age": "3"})
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "name", fieldErrs[0].Field)
	assert.Equal(t, schema.MessageRequired, fieldErrs[0].Err.Error())
	assert.Equal(t, "age", fieldErrs[1].Field)
	assert.Equal(t, "Must be at least 18", fieldErrs[1].Err.Error())
}

func TestObject_WithCustom(t *testing.T) {
	base := schema.MustObject(
		schema.Prop("subscribe", schema.Boolean()),
		schema.Prop("email", schema.Email().Optional()),
	)
	obj := base.WithCustom(func(cleaned map[string]any) error {
		if cleaned["subscribe"] == true && cleaned["email"] == "" {
			return schema.FieldError("email", "Email is required")
		}
		return nil
	})

	_, err := obj.Validate(map[string]any{"subscribe": true, "email": ""})
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "email", fieldErrs[0].Field)
	assert.Equal(t, "Email is required", fieldErrs[0].Err.Error())

	_, err = base.Validate(map[string]any{"subscribe": true, "email": ""})
	require.NoError(t, err, "WithCustom must not change the original object")

	boom := errors.New("boom")
	failing := base.WithCustom(func(map[string]any) error { return boom })
	_, err = failing.Validate(map[string]any{})
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &fieldErrs))
}
