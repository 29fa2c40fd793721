// Package patch post-processes the binding source emitted by bindgen.
//
// The generated file is treated as opaque text: fixes are exact substring
// replacements applied in order, followed by a fixed preamble. No Rust
// parsing happens here.
package patch

import (
	"strings"

	"github.com/RESTGroup/dftd3-bindgen/rustio"
)

// Replacement is a single literal substitution applied to the generated
// binding source. Every occurrence of Old is replaced by New.
type Replacement struct {
	Old string
	New string
}

// Defaults returns the built-in replacement table, in application order.
func Defaults() []Replacement {
	return []Replacement{
		// The preamble imports the primitive types directly, so the
		// fully qualified paths bindgen emits can go.
		{Old: "::core::ffi::", New: ""},
		// bindgen mistranslates the minor component of the
		// SDFTD3_VERSION macro (major*10000 + minor*100 + patch).
		// Verified against bindgen 0.69; re-check whenever the pinned
		// generator version changes.
		{Old: "minor + 100", New: "minor * 100"},
	}
}

// Preamble returns the fixed header prepended to the processed binding
// source: module doc comment, lint suppression and primitive type imports.
func Preamble() string {
	var cb rustio.CodeBuilder
	cb.Linef(`//! FFI bindings for simple-dftd3.`)
	cb.Linef(``)
	cb.Linef(`#![allow(non_camel_case_types)]`)
	cb.Linef(``)
	cb.Linef(`use core::ffi::{c_char, c_int};`)
	return cb.String()
}

// Apply performs each replacement on src in order and returns the result.
// Text not matching a replacement's Old string is passed through untouched.
func Apply(src string, reps []Replacement) string {
	for _, rep := range reps {
		src = strings.ReplaceAll(src, rep.Old, rep.New)
	}
	return src
}

// Process applies reps to src and prepends the preamble.
//
// The preamble is only added if src doesn't already begin with it, so
// feeding the output of Process back into Process is a no-op as long as
// no replacement reintroduces its own Old string.
func Process(src string, reps []Replacement) string {
	src = Apply(src, reps)
	pre := Preamble()
	if strings.HasPrefix(src, pre) {
		return src
	}
	return pre + "\n" + src
}
