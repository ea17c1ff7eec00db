// Package emit renders flushed session output for the enclosing build system.
package emit

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Supported output formats.
const (
	FormatCargo   = "cargo"
	FormatJSON    = "json"
	FormatLDFlags = "ldflags"
)

// Formats lists the supported format names.
var Formats = []string{FormatCargo, FormatJSON, FormatLDFlags}

// ForFormat returns the emitter for a format name.
func ForFormat(name string) (ports.Emitter, error) {
	switch strings.ToLower(name) {
	case FormatCargo, "":
		return Cargo{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatLDFlags:
		return LDFlags{}, nil
	default:
		err := zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "unsupported output format"), "format", name)
		return nil, zerr.With(err, "supported", strings.Join(Formats, ", "))
	}
}

// writeOnce hands the whole buffer to w in one call.
func writeOnce(w io.Writer, buf *bytes.Buffer) error {
	if _, err := w.Write(buf.Bytes()); err != nil {
		return zerr.Wrap(err, "failed to write directives")
	}
	return nil
}

// Cargo renders the build-script protocol understood by cargo: rebuild
// triggers first, then a search path before the first library that needs it.
type Cargo struct{}

// Emit implements ports.Emitter.
func (Cargo) Emit(w io.Writer, out domain.SessionOutput) error {
	var buf bytes.Buffer
	for _, path := range out.Triggers {
		buf.WriteString("cargo:rerun-if-changed=" + path + "\n")
	}

	searched := make(map[string]struct{})
	for _, d := range out.Directives {
		if d.SearchPath != "" {
			if _, ok := searched[d.SearchPath]; !ok {
				searched[d.SearchPath] = struct{}{}
				buf.WriteString("cargo:rustc-link-search=native=" + d.SearchPath + "\n")
			}
		}
		buf.WriteString("cargo:rustc-link-lib=" + string(d.Kind) + "=" + d.Library + "\n")
	}
	return writeOnce(w, &buf)
}

// JSON renders the whole session output as an indented manifest.
type JSON struct{}

// Emit implements ports.Emitter.
func (JSON) Emit(w io.Writer, out domain.SessionOutput) error {
	data, err := json.MarshalIndent(normalize(out), "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal session output")
	}
	buf := bytes.NewBuffer(data)
	buf.WriteByte('\n')
	return writeOnce(w, buf)
}

// normalize replaces nil slices so the manifest always carries arrays.
func normalize(out domain.SessionOutput) domain.SessionOutput {
	if out.Triggers == nil {
		out.Triggers = []string{}
	}
	if out.Directives == nil {
		out.Directives = []domain.LinkDirective{}
	}
	units := make([]domain.UnitOutput, len(out.Units))
	for i, u := range out.Units {
		if u.Directives == nil {
			u.Directives = []domain.LinkDirective{}
		}
		if u.Triggers == nil {
			u.Triggers = []string{}
		}
		units[i] = u
	}
	out.Units = units
	return out
}

// LDFlags renders one line of linker flags. Static archives are listed before
// shared libraries so that single-pass linkers resolve the archives' references.
type LDFlags struct{}

// Emit implements ports.Emitter.
func (LDFlags) Emit(w io.Writer, out domain.SessionOutput) error {
	var flags []string
	for _, dir := range domain.SearchPaths(out.Directives) {
		flags = append(flags, "-L"+dir)
	}

	ordered := slices.Clone(out.Directives)
	slices.SortStableFunc(ordered, func(a, b domain.LinkDirective) int {
		return rank(a.Kind) - rank(b.Kind)
	})
	for _, d := range ordered {
		flags = append(flags, "-l"+d.Library)
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(flags, " "))
	buf.WriteByte('\n')
	return writeOnce(w, &buf)
}

func rank(k domain.LinkKind) int {
	if k == domain.LinkStatic {
		return 0
	}
	return 1
}
