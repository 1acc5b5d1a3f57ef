// Package binder fills request structs from form bodies, query strings and
// chi path parameters.
//
// Each binder reads only its own struct tag, so several can be stacked on one
// request type:
//
//	type editAttendee struct {
//		ID    int    `path:"id"`
//		Name  string `form:"name"`
//		Email string `form:"email"`
//		Page  int    `query:"page"`
//	}
//
// Binders that do not apply to a request (for example Form on a GET) return
// ErrBinderNotApplicable and the handler package skips them.
//
// Supported field types: string, signed and unsigned integers, floats, bool,
// pointers to those, and slices of those. Slice values may be repeated keys or
// a single comma-separated value.
package binder
