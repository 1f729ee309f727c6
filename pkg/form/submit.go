package form

import "errors"

// Submit runs a propagating whole-form validation. Cleaned values go to
// onValidated, per-field messages of a validation failure go to onError.
// Both callbacks are optional. Unexpected failures are logged and returned.
func (e *Engine) Submit(onValidated func(map[string]any), onError func(map[string]string)) error {
	cleaned, err := e.ValidateAll(true)
	if err == nil {
		if onValidated != nil {
			onValidated(cleaned)
		}
		return nil
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		if onError != nil {
			onError(validationErr.Fields)
		}
		return nil
	}

	e.logger.Error().Err(err).Msg("unexpected error during submit")
	return err
}
