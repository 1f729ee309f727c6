package testsupport

import (
	"testing"

	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// ProfileSchema is a small schema covering every widget family: text, email,
// grouped select, integer and checkbox.
func ProfileSchema() *schema.Object {
	return schema.MustObject(
		schema.Prop("name", schema.String().MinLength(2)),
		schema.Prop("email", field.Must(field.Declare(field.Metadata{
			Label:    "Email address",
			HelpText: `We <b>never</b> share it.<script>alert(1)</script>`,
		})(schema.Email().Optional()))),
		schema.Prop("color", field.Must(field.Declare(field.Metadata{
			SelectFrom: choices.Groups(
				choices.Named("Warm", choices.Values("red", "orange")),
				choices.Named("Cool", choices.Pairs(choices.Pair("blue", "Blue"))),
			),
		})(schema.String()))),
		schema.Prop("age", schema.Integer().Optional().Min(0)),
		schema.Prop("subscribe", schema.Boolean()),
	)
}

// NewEngine builds an engine over s, failing the test on error.
func NewEngine(t *testing.T, s form.Schema, options ...form.Option) *form.Engine {
	t.Helper()

	engine, err := form.New(s, options...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
