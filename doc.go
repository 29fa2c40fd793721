/*
Package dftd3bindgen regenerates the Rust FFI bindings of the dftd3-rs crate from the public C header of simple-dftd3 (https://github.com/dftd3/simple-dftd3).

The dispersion-correction math lives entirely in the wrapped native library; this tool only stages a header, drives the external generator and installs the patched result.

# Pipeline (for developers)

Each step lives in its own sub-package. They are glued together in [Run].
 1. [config]: Parse the user-supplied 'bindgen.toml' file
 2. [upstream] and [stage]: Locate (or fetch) the simple-dftd3 sources and stage the header into a scratch directory
 3. [toolchain]: Run bindgen against the staged header
 4. [patch]: Apply the replacement table and prepend the preamble
 5. [stage] and [toolchain]: Copy the result into the crate's src directory and run cargo fmt
*/
package dftd3bindgen
