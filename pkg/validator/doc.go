// Package validator provides composable validation rules for form input.
//
// Rules are plain values built by constructor functions and executed in a
// batch by Apply, which collects every failure instead of stopping at the
// first one. The resulting ValidationErrors implements error and keeps
// per-field messages so handlers can re-render forms with inline feedback.
//
//	err := validator.Apply(
//		validator.ValidEmail("email", email),
//		validator.MinLength("password", password, 8),
//		validator.FieldsMatch("confirm_password", password, confirm),
//	)
//	if err != nil {
//		// err is validator.ValidationErrors
//	}
package validator
