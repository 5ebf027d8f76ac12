// Package ptrx has pointer helpers for optional request and update fields.
package ptrx

import "strings"

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Value dereferences p, returning the zero value for nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// ValueOr dereferences p, returning fallback for nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// TrimmedOr returns the trimmed *p, or fallback when p is nil.
// An explicit empty string is kept.
func TrimmedOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return strings.TrimSpace(*p)
}

// Blank reports whether p is nil or only whitespace.
func Blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
