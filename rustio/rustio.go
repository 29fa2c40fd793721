package rustio

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// CodeBuilder is a wrapper around [strings.Builder] that simplifies
// building Rust source text.
//
// The zero value is safely ready to use.
type CodeBuilder struct {
	// Indent is the indentation level (indentation is tabs).
	Indent int

	b strings.Builder
}

// Write appends a raw string to the internal [strings.Builder].
func (w *CodeBuilder) Write(s string) {
	w.b.WriteString(s)
}

// Append writes the given string line by line with correct indentation.
func (w *CodeBuilder) Append(s string) {
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		w.Linef("%v", sc.Text())
	}
}

// Linef writes a single line, prepended by the current indentation.
//
// Takes format and args like [fmt.Printf].
func (w *CodeBuilder) Linef(format string, args ...any) {
	for i := 0; i < w.Indent; i++ {
		w.b.WriteString("\t")
	}
	w.b.WriteString(fmt.Sprintf(format, args...))
	w.b.WriteString("\n")
}

// String returns the current code.
func (w *CodeBuilder) String() string {
	return w.b.String()
}

func (w *CodeBuilder) Reset() {
	w.Indent = 0
	w.b.Reset()
}

// SaveToFile writes the current code to outFile.
//
// The code is written as-is. Formatting Rust source is left to
// "cargo fmt", which runs over the whole crate after installation.
func (w *CodeBuilder) SaveToFile(outFile string) error {
	return os.WriteFile(outFile, []byte(w.String()), 0666)
}
