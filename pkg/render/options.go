package render

// Options describe per-request presentation choices that renderers apply
// without touching engine state.
type Options struct {
	// Fields restricts and orders the rendered keys. Empty uses the engine's
	// configured field list.
	Fields []string
	// FormTags overrides the engine's htmlFormTags setting when non-nil.
	FormTags *bool
	// SubmitLabel adds a submit control when non-empty.
	SubmitLabel string
	// Action and Method are copied onto the submission container.
	Action string
	Method string
	// Horizontal lays labels and controls out side by side.
	Horizontal *Horizontal
	// InputOnly emits bare controls without label or feedback chrome.
	InputOnly bool
	// Hidden adds hidden inputs (CSRF tokens, versions) to the container.
	Hidden []HiddenField
}

// Horizontal carries the column classes of a side-by-side layout.
type Horizontal struct {
	LabelClass string
	ValueClass string
}

// UseFormTags resolves whether output is wrapped in a submission container.
func (o Options) UseFormTags(f Form) bool {
	if o.FormTags != nil {
		return *o.FormTags
	}
	if f == nil {
		return true
	}
	return f.Config().FormTags
}

// Bool returns a pointer suitable for Options.FormTags.
func Bool(v bool) *bool {
	return &v
}
