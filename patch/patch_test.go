package patch_test

import (
	"strings"
	"testing"

	"github.com/RESTGroup/dftd3-bindgen/patch"
	"github.com/stretchr/testify/require"
)

const rawBindgenOutput = `/* automatically generated by rust-bindgen 0.69.4 */

pub const SDFTD3_VERSION: u32 = 100 * (10000 * major + minor + 100) + patch;
extern "C" {
    pub fn dftd3_version() -> ::core::ffi::c_int;
    pub fn dftd3_get_error(error: dftd3_error, buffer: *mut ::core::ffi::c_char, buffersize: *const ::core::ffi::c_int) -> ::core::ffi::c_int;
}
`

func TestApplyStripsPrimitivePrefix(t *testing.T) {
	require := require.New(t)

	out := patch.Apply(rawBindgenOutput, patch.Defaults())
	require.NotContains(out, "::core::ffi::")
	require.Contains(out, "pub fn dftd3_version() -> c_int;")
	require.Contains(out, "buffer: *mut c_char")
	// The import in the preamble spells the path without leading colons
	// and must survive a second application.
	require.NotContains(patch.Apply(patch.Preamble(), patch.Defaults()), "::core::ffi::")
	require.Equal(patch.Preamble(), patch.Apply(patch.Preamble(), patch.Defaults()))
}

func TestApplyRewritesVersionExpression(t *testing.T) {
	require := require.New(t)

	out := patch.Apply(rawBindgenOutput, patch.Defaults())
	require.NotContains(out, "minor + 100")
	require.Contains(out, "minor * 100")
	// Unrelated arithmetic stays untouched.
	require.Contains(out, "100 * (10000 * major")
	require.Contains(out, ") + patch;")
}

func TestApplyLeavesOtherTextAlone(t *testing.T) {
	require := require.New(t)

	const src = "extern \"C\" {\n    pub fn dftd3_load_param(method: *const c_char);\n}\n"
	require.Equal(src, patch.Apply(src, patch.Defaults()))
}

func TestProcessPrependsPreambleOnce(t *testing.T) {
	require := require.New(t)

	out := patch.Process(rawBindgenOutput, patch.Defaults())
	require.True(strings.HasPrefix(out, patch.Preamble()))
	require.Equal(1, strings.Count(out, "//! FFI bindings for simple-dftd3."))

	// Many matches in the body still yield exactly one preamble.
	many := strings.Repeat(rawBindgenOutput, 5)
	out = patch.Process(many, patch.Defaults())
	require.True(strings.HasPrefix(out, patch.Preamble()))
	require.Equal(1, strings.Count(out, "#![allow(non_camel_case_types)]"))
}

func TestProcessIsIdempotent(t *testing.T) {
	require := require.New(t)

	once := patch.Process(rawBindgenOutput, patch.Defaults())
	require.NotContains(once, "::core::ffi::")
	require.NotContains(once, "minor + 100")
	require.Equal(once, patch.Process(once, patch.Defaults()))
}

func TestProcessExtraReplacements(t *testing.T) {
	require := require.New(t)

	reps := append(patch.Defaults(), patch.Replacement{Old: "buffersize", New: "buffer_size"})
	out := patch.Process(rawBindgenOutput, reps)
	require.NotContains(out, "buffersize")
	require.Contains(out, "buffer_size: *const c_int")
}
