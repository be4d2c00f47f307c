// Package sanitizer normalizes user-supplied input before validation and storage.
//
// All account email comparisons in the application go through NormalizeEmail,
// so two spellings of the same address can never create two accounts.
package sanitizer
