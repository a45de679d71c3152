// Package sanitizer normalizes free-form booking input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result. Invalid
// input is handled by returning an empty value rather than an error.
//
// Normalization includes:
//   - Names: trim and collapse internal whitespace
//   - Identifiers: trim, drop whitespace and control characters
//   - Memos: strip control characters except newlines, collapse runs of blank lines
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
