package form_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hay-kot/criterio"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func simpleSchema() *schema.Object {
	return schema.MustObject(
		schema.Prop("name", schema.String()),
		schema.Prop("age", schema.Number().Min(18).AllowString()),
	)
}

func mustEngine(t *testing.T, s form.Schema, opts ...form.Option) *form.Engine {
	t.Helper()
	engine, err := form.New(s, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

// stubSchema reports a fixed error from Validate.
type stubSchema struct {
	keys []string
	err  error
}

func (s stubSchema) Keys() []string { return s.keys }

func (s stubSchema) Field(key string) (schema.Field, bool) {
	for _, candidate := range s.keys {
		if candidate == key {
			return schema.String().Optional(), true
		}
	}
	return nil, false
}

func (s stubSchema) Validate(values map[string]any) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return values, nil
}

func TestNew_InitialValues(t *testing.T) {
	engine := mustEngine(t, simpleSchema())
	want := map[string]any{"name": "", "age": ""}
	if diff := cmp.Diff(want, engine.Values()); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}

	withDefaults := mustEngine(t, simpleSchema(), form.WithDefaults(map[string]any{"age": "20"}))
	want = map[string]any{"name": "", "age": "20"}
	if diff := cmp.Diff(want, withDefaults.Values()); diff != "" {
		t.Fatalf("default values mismatch (-want +got):\n%s", diff)
	}

	if engine.ID() == "" {
		t.Fatalf("expected generated form id")
	}
	if got := mustEngine(t, simpleSchema(), form.WithID("signup")).ID(); got != "signup" {
		t.Fatalf("expected fixed id, got %q", got)
	}
	if !engine.Config().FormTags {
		t.Fatalf("expected form tags enabled by default")
	}
}

func TestNew_RejectsUnknownKeys(t *testing.T) {
	if _, err := form.New(simpleSchema(), form.WithDefaults(map[string]any{"email": "x"})); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField for defaults, got %v", err)
	}
	if _, err := form.New(simpleSchema(), form.WithFields("name", "email")); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField for field list, got %v", err)
	}
	if _, err := form.New(nil); !errors.Is(err, form.ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
	if _, err := form.New(simpleSchema(), form.WithValidateFieldEvent("hover")); !errors.Is(err, form.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestSanitizePolicy(t *testing.T) {
	cases := []struct {
		name  string
		input form.Policy
		want  form.Policy
	}{
		{
			name:  "defaults",
			input: form.Policy{},
			want:  form.Policy{ValidateFieldEvent: form.EventSubmit, ValidateFieldErrorEvent: form.EventChange},
		},
		{
			name:  "error event below field event forced to submit",
			input: form.Policy{ValidateFieldEvent: form.EventChange, ValidateFieldErrorEvent: form.EventBlur},
			want:  form.Policy{ValidateFieldEvent: form.EventChange, ValidateFieldErrorEvent: form.EventSubmit},
		},
		{
			name:  "default error event below explicit change",
			input: form.Policy{ValidateFieldEvent: form.EventChange},
			want:  form.Policy{ValidateFieldEvent: form.EventChange, ValidateFieldErrorEvent: form.EventChange},
		},
		{
			name:  "blur then change kept",
			input: form.Policy{ValidateFieldEvent: form.EventBlur, ValidateFieldErrorEvent: form.EventChange},
			want:  form.Policy{ValidateFieldEvent: form.EventBlur, ValidateFieldErrorEvent: form.EventChange},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, form.SanitizePolicy(tc.input)); diff != "" {
				t.Fatalf("policy mismatch (-want +got):\n%s", diff)
			}
		})
	}

	engine := mustEngine(t, simpleSchema(),
		form.WithValidateFieldEvent(form.EventChange),
		form.WithValidateFieldErrorEvent(form.EventBlur),
	)
	if got := engine.Policy().ValidateFieldErrorEvent; got != form.EventSubmit {
		t.Fatalf("engine must sanitize its policy, got error event %q", got)
	}
}

func TestParseEvent(t *testing.T) {
	event, err := form.ParseEvent(" Blur ")
	if err != nil || event != form.EventBlur {
		t.Fatalf("ParseEvent(blur) = %q, %v", event, err)
	}
	if _, err := form.ParseEvent("hover"); !errors.Is(err, form.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestTriggerEvent_DefaultPolicy(t *testing.T) {
	engine := mustEngine(t, simpleSchema())

	if err := engine.TriggerEvent("name", "", form.EventChange); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if engine.HasError("name") {
		t.Fatalf("change must not validate a field without an error")
	}
	if engine.Status("name") != form.StatusUntouched {
		t.Fatalf("expected untouched before validation")
	}

	if err := engine.TriggerEvent("name", "", form.EventSubmit); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if got := engine.Error("name"); got != schema.MessageRequired {
		t.Fatalf("expected required error, got %q", got)
	}
	if engine.Status("name") != form.StatusTouched {
		t.Fatalf("expected touched after validation")
	}

	if err := engine.TriggerEvent("name", "Ann", form.EventChange); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if engine.HasError("name") {
		t.Fatalf("change must re-validate a field with an error, got %q", engine.Error("name"))
	}
	if engine.Value("name") != "Ann" {
		t.Fatalf("value must be recorded, got %v", engine.Value("name"))
	}

	if err := engine.TriggerEvent("name", "", form.EventChange); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if engine.HasError("name") {
		t.Fatalf("change must not validate once the error cleared")
	}
	if engine.Value("name") != "" {
		t.Fatalf("value must update even without validation")
	}
}

func TestTriggerEvent_ValidatesOnFieldEvent(t *testing.T) {
	engine := mustEngine(t, simpleSchema(), form.WithPolicy(form.Policy{ValidateFieldEvent: form.EventBlur}))

	_ = engine.TriggerEvent("age", "12", form.EventChange)
	if engine.HasError("age") {
		t.Fatalf("change must not validate under a blur policy")
	}
	_ = engine.TriggerEvent("age", "12", form.EventBlur)
	if got := engine.Error("age"); got != "Must be at least 18" {
		t.Fatalf("expected min error, got %q", got)
	}
	_ = engine.TriggerEvent("age", "19", form.EventChange)
	if engine.HasError("age") {
		t.Fatalf("change must re-validate an invalid field")
	}
}

func TestTriggerEvent_UnknownKey(t *testing.T) {
	engine := mustEngine(t, simpleSchema())
	if err := engine.TriggerEvent("email", "x", form.EventSubmit); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := engine.SetValue("email", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := engine.ValidateField("email", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := engine.TriggerEvent("name", "x", form.Event("hover")); !errors.Is(err, form.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestSetError(t *testing.T) {
	engine := mustEngine(t, simpleSchema())

	if err := engine.SetError("name", "Taken"); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if engine.Error("name") != "Taken" {
		t.Fatalf("expected stored error")
	}
	if engine.Value("name") != "" {
		t.Fatalf("SetError must not touch values")
	}

	_ = engine.ClearError("name")
	if _, exists := engine.Errors()["name"]; exists {
		t.Fatalf("ClearError must remove the entry")
	}

	_ = engine.SetError("name", "Taken")
	_ = engine.SetError("name", "")
	if engine.HasError("name") {
		t.Fatalf("empty message must clear the error")
	}

	_ = engine.SetError("name", "a")
	_ = engine.SetError("age", "b")
	engine.ClearAllErrors()
	if len(engine.Errors()) != 0 {
		t.Fatalf("expected no errors, got %v", engine.Errors())
	}
}

func TestValidateAll_Success(t *testing.T) {
	engine := mustEngine(t, simpleSchema())
	_ = engine.SetValue("name", "Ann")
	_ = engine.SetValue("age", "20")
	_ = engine.SetError("name", "stale")

	cleaned, err := engine.ValidateAll(true)
	if err != nil {
		t.Fatalf("validate all: %v", err)
	}
	want := map[string]any{"name": "Ann", "age": float64(20)}
	if diff := cmp.Diff(want, cleaned); diff != "" {
		t.Fatalf("cleaned mismatch (-want +got):\n%s", diff)
	}
	if len(engine.Errors()) != 0 {
		t.Fatalf("expected stale errors cleared, got %v", engine.Errors())
	}
	if engine.Status("age") != form.StatusTouched {
		t.Fatalf("expected touched after whole-form validation")
	}
}

func TestValidateAll_Failure(t *testing.T) {
	engine := mustEngine(t, simpleSchema())
	_ = engine.SetValue("age", "12")

	cleaned, err := engine.ValidateAll(true)
	if cleaned != nil {
		t.Fatalf("expected no cleaned values, got %v", cleaned)
	}
	var validationErr *form.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]string{
		"name": schema.MessageRequired,
		"age":  "Must be at least 18",
	}
	if diff := cmp.Diff(want, validationErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, engine.Errors()); diff != "" {
		t.Fatalf("engine errors mismatch (-want +got):\n%s", diff)
	}
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("ValidationError must wrap the schema failure")
	}

	engine.ClearAllErrors()
	cleaned, err = engine.ValidateAll(false)
	if cleaned != nil || err != nil {
		t.Fatalf("expected (nil, nil) without propagation, got %v, %v", cleaned, err)
	}
	if diff := cmp.Diff(want, engine.Errors()); diff != "" {
		t.Fatalf("errors must still be recorded (-want +got):\n%s", diff)
	}
}

func TestValidateAll_CustomValidation(t *testing.T) {
	obj := schema.MustObject(
		schema.Prop("subscribe", schema.Boolean()),
		schema.Prop("email", field.Must(field.Declare(field.Metadata{HideOptional: true})(schema.Email().Optional()))),
	).WithCustom(func(cleaned map[string]any) error {
		if cleaned["subscribe"] == true && cleaned["email"] == "" {
			return schema.FieldError("email", "Email is required")
		}
		return nil
	})

	engine := mustEngine(t, obj, form.WithDefaults(map[string]any{"subscribe": true}))
	if _, err := engine.ValidateAll(false); err != nil {
		t.Fatalf("validate all: %v", err)
	}
	if got := engine.Error("email"); got != "Email is required" {
		t.Fatalf("expected custom error, got %q", got)
	}
}

func TestValidateAll_UnexpectedError(t *testing.T) {
	boom := errors.New("backend unavailable")
	engine := mustEngine(t, stubSchema{keys: []string{"name"}, err: boom})

	_, err := engine.ValidateAll(false)
	if !errors.Is(err, boom) {
		t.Fatalf("expected unexpected error to surface, got %v", err)
	}
	if len(engine.Errors()) != 0 {
		t.Fatalf("unexpected errors must not populate field errors")
	}
	if got := engine.Status("name"); got != form.StatusUntouched {
		t.Fatalf("unexpected errors must not touch fields, got %s", got)
	}

	if err := engine.Submit(nil, func(map[string]string) {
		t.Fatalf("onError must not run for unexpected failures")
	}); !errors.Is(err, boom) {
		t.Fatalf("Submit must return unexpected errors, got %v", err)
	}
}

func TestValidateAll_PathMapping(t *testing.T) {
	var b criterio.FieldErrorsBuilder
	b = b.Append("items[0].name", errors.New("Name missing"))
	b = b.Append("body.title", errors.New("Title too short"))
	b = b.Append("__all__", errors.New("Passwords do not match"))
	b = b.Append("unknown.path", errors.New("Something else"))

	engine := mustEngine(t, stubSchema{keys: []string{"items", "title"}, err: b.ToError()})
	_, err := engine.ValidateAll(true)

	var validationErr *form.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	wantFields := map[string]string{"items": "Name missing", "title": "Title too short"}
	if diff := cmp.Diff(wantFields, validationErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Passwords do not match", "Something else"}
	if diff := cmp.Diff(wantForm, engine.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

type messengerError map[string][]string

func (m messengerError) Error() string                      { return "invalid" }
func (m messengerError) FieldMessages() map[string][]string { return m }

func TestValidateAll_FieldMessenger(t *testing.T) {
	engine := mustEngine(t, stubSchema{
		keys: []string{"name"},
		err:  messengerError{"name": {"Too short", "Too short", ""}},
	})
	if _, err := engine.ValidateAll(false); err != nil {
		t.Fatalf("validate all: %v", err)
	}
	if got := engine.Error("name"); got != "Too short" {
		t.Fatalf("expected deduplicated message, got %q", got)
	}
}

func TestReset(t *testing.T) {
	engine := mustEngine(t, simpleSchema(), form.WithDefaults(map[string]any{"name": "Ann"}))
	_, _ = engine.ValidateAll(false)

	engine.Reset()
	if len(engine.Values()) != 0 {
		t.Fatalf("reset must clear values to an empty map, got %v", engine.Values())
	}
	if len(engine.Errors()) != 0 || len(engine.FormErrors()) != 0 {
		t.Fatalf("reset must clear errors")
	}
	if engine.Status("age") != form.StatusUntouched {
		t.Fatalf("reset must mark fields untouched")
	}

	engine.Reset()
	if len(engine.Values()) != 0 {
		t.Fatalf("reset must be idempotent")
	}
	if err := engine.TriggerEvent("name", "Bo", form.EventChange); err != nil {
		t.Fatalf("engine must stay usable after reset: %v", err)
	}
}

func TestSubmit(t *testing.T) {
	engine := mustEngine(t, simpleSchema())

	var failed map[string]string
	err := engine.Submit(func(map[string]any) {
		t.Fatalf("onValidated must not run for invalid input")
	}, func(messages map[string]string) {
		failed = messages
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if failed["name"] != schema.MessageRequired {
		t.Fatalf("expected onError with messages, got %v", failed)
	}

	_ = engine.SetValue("name", "Ann")
	_ = engine.SetValue("age", "30")
	var submitted map[string]any
	if err := engine.Submit(func(values map[string]any) { submitted = values }, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted["age"] != float64(30) {
		t.Fatalf("expected cleaned values, got %v", submitted)
	}
}
