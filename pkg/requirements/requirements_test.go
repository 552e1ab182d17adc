package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_Defaults(t *testing.T) {
	m, err := Spec{Defaults: []string{"xgboost==2.0.3"}}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(m.Requirements) != 1 || m.Requirements[0] != "xgboost==2.0.3" {
		t.Errorf("Requirements = %v, want [xgboost==2.0.3]", m.Requirements)
	}
	if m.HasConstraints() {
		t.Error("default resolve should not produce constraints")
	}
}

func TestResolve_OverrideReplacesDefaults(t *testing.T) {
	m, err := Spec{
		Defaults: []string{"xgboost==2.0.3"},
		Override: []string{"scikit-learn==1.4.2"},
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	set := NewSet(m.Requirements...)
	if !set.Equal(NewSet("scikit-learn==1.4.2")) {
		t.Errorf("Requirements = %v, want exactly the override", m.Requirements)
	}
}

func TestResolve_ExtraAppendsToDefaults(t *testing.T) {
	m, err := Spec{
		Defaults: []string{"xgboost==2.0.3"},
		Extra:    []string{"scikit-learn==1.4.2"},
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	set := NewSet(m.Requirements...)
	if !set.Superset(NewSet("xgboost==2.0.3", "scikit-learn==1.4.2")) {
		t.Errorf("Requirements = %v, want defaults plus extras", m.Requirements)
	}
}

func TestResolve_OverridePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.txt", "scikit-learn==1.4.2\n")

	m, err := Spec{
		Defaults:     []string{"xgboost==2.0.3"},
		OverridePath: path,
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	set := NewSet(m.Requirements...)
	if !set.Contains("scikit-learn==1.4.2") {
		t.Errorf("Requirements = %v, want file contents", m.Requirements)
	}
	if set.Contains("xgboost==2.0.3") {
		t.Error("file override should replace the defaults")
	}
}

func TestResolve_RequirementDirectiveExpanded(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.txt", "scikit-learn==1.4.2\n")

	m, err := Spec{
		Override: []string{"xgboost==2.0.3", "-r " + path},
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	set := NewSet(m.Requirements...)
	if !set.Superset(NewSet("xgboost==2.0.3", "scikit-learn==1.4.2")) {
		t.Errorf("Requirements = %v, want -r file expanded in place", m.Requirements)
	}
	if set.Contains("-r " + path) {
		t.Error("raw -r directive should not survive expansion")
	}
}

func TestResolve_ConstraintDirectiveRouted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cons.txt", "scikit-learn==1.4.2\n")

	m, err := Spec{
		Override: []string{"xgboost==2.0.3", "-c " + path},
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	reqs := NewSet(m.Requirements...)
	if !reqs.Superset(NewSet("xgboost==2.0.3", "-c constraints.txt")) {
		t.Errorf("Requirements = %v, want canonical -c line", m.Requirements)
	}
	if reqs.Contains("-c " + path) {
		t.Error("raw -c directive should be rewritten to the canonical name")
	}

	cons := NewSet(m.Constraints...)
	if !cons.Equal(NewSet("scikit-learn==1.4.2")) {
		t.Errorf("Constraints = %v, want exactly the file contents", m.Constraints)
	}
}

func TestResolve_NestedRequirementFiles(t *testing.T) {
	dir := t.TempDir()
	inner := writeFile(t, dir, "inner.txt", "numpy==1.26.4\n")
	outer := writeFile(t, dir, "outer.txt", "scikit-learn==1.4.2\n-r "+inner+"\n")

	m, err := Spec{Override: []string{"-r " + outer}}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	set := NewSet(m.Requirements...)
	if !set.Superset(NewSet("scikit-learn==1.4.2", "numpy==1.26.4")) {
		t.Errorf("Requirements = %v, want nested files expanded", m.Requirements)
	}
}

func TestResolve_MissingFileFatal(t *testing.T) {
	_, err := Spec{Override: []string{"-r /nonexistent/reqs.txt"}}.Resolve()
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}

	_, err = Spec{OverridePath: "/nonexistent/reqs.txt"}.Resolve()
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND for override path, got %v", err)
	}
}

func TestResolve_OverrideFormsExclusive(t *testing.T) {
	_, err := Spec{
		Override:     []string{"a==1"},
		OverridePath: "reqs.txt",
	}.Resolve()
	if !errors.Is(err, errors.ErrCodeInvalidRequirement) {
		t.Errorf("expected INVALID_REQUIREMENT, got %v", err)
	}
}

func TestResolve_Dedup(t *testing.T) {
	m, err := Spec{
		Defaults: []string{"xgboost==2.0.3"},
		Extra:    []string{"xgboost==2.0.3", "scikit-learn==1.4.2"},
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(m.Requirements) != 2 {
		t.Errorf("Requirements = %v, want duplicates removed", m.Requirements)
	}
	if m.Requirements[0] != "xgboost==2.0.3" {
		t.Errorf("first occurrence order not preserved: %v", m.Requirements)
	}
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reqs.txt", `# pinned deps
scikit-learn==1.4.2

  numpy==1.26.4
# trailing comment
`)

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}

	want := []string{"scikit-learn==1.4.2", "numpy==1.26.4"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
