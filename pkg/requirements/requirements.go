// Package requirements resolves pip-style requirement declarations into the
// manifests persisted alongside a logged model.
//
// A caller logging a model can declare its runtime dependencies in several
// forms: an explicit requirement list, an extra list layered on top of the
// framework defaults, a path to a requirements file, or inline `-r`/`-c`
// directives referencing other files. This package merges those forms into a
// final requirements manifest and, when constraints are involved, a separate
// constraints manifest.
//
// # Merge rules
//
//   - An explicit list (or file) replaces the defaults entirely.
//   - An extra list is appended to the defaults.
//   - Neither given: the defaults are used as-is.
//   - `-r <path>` entries are expanded in place with the referenced file's lines.
//   - `-c <path>` entries route the referenced file's lines into the constraints
//     manifest; the requirements manifest gets the literal line
//     `-c constraints.txt` so an installer finds the constraints file stored
//     next to it.
package requirements

import (
	"bufio"
	"os"
	"strings"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// ConstraintsFile is the canonical constraints manifest name inside an
// artifact directory. Inline `-c` directives are rewritten to reference it.
const ConstraintsFile = "constraints.txt"

// RequirementsFile is the canonical requirements manifest name inside an
// artifact directory.
const RequirementsFile = "requirements.txt"

// maxExpandDepth bounds nested `-r` expansion.
const maxExpandDepth = 10

// Manifest holds the resolved manifest contents, one entry per line.
// Constraints is nil unless a `-c` directive was supplied.
type Manifest struct {
	Requirements []string
	Constraints  []string
}

// HasConstraints reports whether a constraints manifest must be persisted.
func (m *Manifest) HasConstraints() bool {
	return len(m.Constraints) > 0
}

// Spec describes the requirement declarations supplied with a logging call.
// At most one of Override and OverridePath may be set, and Extra is only
// consulted when neither override form is present.
type Spec struct {
	// Defaults are the framework-inferred requirements (typically the
	// framework's own version pin).
	Defaults []string

	// Override replaces Defaults entirely when non-nil.
	Override []string

	// OverridePath names a requirements file whose lines replace Defaults.
	OverridePath string

	// Extra entries are appended to Defaults when no override is given.
	Extra []string
}

// Resolve merges the declarations into final manifests.
// Referenced files that cannot be read produce a fatal error; there is no
// retry or partial result.
func (s Spec) Resolve() (*Manifest, error) {
	if s.Override != nil && s.OverridePath != "" {
		return nil, errors.New(errors.ErrCodeInvalidRequirement,
			"requirement list and requirements file are mutually exclusive")
	}

	var raw []string
	switch {
	case s.OverridePath != "":
		lines, err := ReadLines(s.OverridePath)
		if err != nil {
			return nil, err
		}
		raw = lines
	case s.Override != nil:
		raw = s.Override
	case len(s.Extra) > 0:
		raw = append(append([]string{}, s.Defaults...), s.Extra...)
	default:
		raw = s.Defaults
	}

	m := &Manifest{}
	if err := expand(raw, m, 0); err != nil {
		return nil, err
	}

	m.Requirements = dedup(m.Requirements)
	m.Constraints = dedup(m.Constraints)
	return m, nil
}

// expand walks entries, splicing `-r` files in place and routing `-c` files
// into the constraints manifest.
func expand(entries []string, m *Manifest, depth int) error {
	if depth > maxExpandDepth {
		return errors.New(errors.ErrCodeInvalidRequirement,
			"requirement files nested more than %d levels deep", maxExpandDepth)
	}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		switch {
		case strings.HasPrefix(entry, "-r "):
			path := strings.TrimSpace(strings.TrimPrefix(entry, "-r "))
			lines, err := ReadLines(path)
			if err != nil {
				return err
			}
			if err := expand(lines, m, depth+1); err != nil {
				return err
			}
		case strings.HasPrefix(entry, "-c "):
			path := strings.TrimSpace(strings.TrimPrefix(entry, "-c "))
			lines, err := ReadLines(path)
			if err != nil {
				return err
			}
			m.Constraints = append(m.Constraints, lines...)
			m.Requirements = append(m.Requirements, "-c "+ConstraintsFile)
		default:
			m.Requirements = append(m.Requirements, entry)
		}
	}
	return nil
}

// ReadLines reads a requirement or constraint file and returns its non-empty,
// non-comment lines with surrounding whitespace trimmed.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read requirements file %s", path)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan requirements file %s", path)
	}
	return lines, nil
}

// dedup removes duplicate entries while preserving first-occurrence order.
func dedup(entries []string) []string {
	if len(entries) == 0 {
		return entries
	}
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
