package tracking

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlfoundry/modeltrack/pkg/artifacts"
	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/model"
	"github.com/mlfoundry/modeltrack/pkg/requirements"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

const (
	xgbPin     = "xgboost==2.0.3"
	sklearnPin = "scikit-learn==1.4.2"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	repo, err := artifacts.NewFSRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(store.NewMemoryStore(), repo)
}

func testModel() *model.Model {
	return model.New(model.Flavor{Name: "xgboost", Version: "2.0.3"}, []byte("payload"))
}

func writeTempReqs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqs.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLogModel_DefaultRequirements(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	run, err := tr.StartRun(ctx, "test")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	if err := tr.LogModel(ctx, run.ID, testModel(), "default"); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "default", requirements.RequirementsFile)
	if err != nil {
		t.Fatalf("ManifestSet failed: %v", err)
	}
	if !reqs.Contains(xgbPin) {
		t.Errorf("manifest %s missing framework pin", reqs)
	}
}

func TestLogModel_ExplicitOverride(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")

	if err := tr.LogModel(ctx, run.ID, testModel(), "pip_requirements",
		WithRequirements(sklearnPin)); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "pip_requirements", requirements.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !reqs.Equal(requirements.NewSet(sklearnPin)) {
		t.Errorf("manifest %s should equal the override set", reqs)
	}
}

func TestLogModel_ExtraRequirements(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")

	if err := tr.LogModel(ctx, run.ID, testModel(), "extra_pip_requirements",
		WithExtraRequirements(sklearnPin)); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "extra_pip_requirements", requirements.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !reqs.Superset(requirements.NewSet(xgbPin, sklearnPin)) {
		t.Errorf("manifest %s should contain defaults plus extras", reqs)
	}
}

func TestLogModel_RequirementsFile(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")
	path := writeTempReqs(t, sklearnPin)

	if err := tr.LogModel(ctx, run.ID, testModel(), "requirements_file_path",
		WithRequirementsFile(path)); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "requirements_file_path", requirements.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !reqs.Contains(sklearnPin) {
		t.Errorf("manifest %s missing pin from requirements file", reqs)
	}
}

func TestLogModel_RequirementDirective(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")
	path := writeTempReqs(t, sklearnPin)

	if err := tr.LogModel(ctx, run.ID, testModel(), "requirements_file_list",
		WithRequirements(xgbPin, "-r "+path)); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "requirements_file_list", requirements.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !reqs.Superset(requirements.NewSet(xgbPin, sklearnPin)) {
		t.Errorf("manifest %s should expand the -r directive", reqs)
	}
}

func TestLogModel_ConstraintDirective(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")
	path := writeTempReqs(t, sklearnPin)

	if err := tr.LogModel(ctx, run.ID, testModel(), "constraints_file",
		WithRequirements(xgbPin, "-c "+path)); err != nil {
		t.Fatalf("LogModel failed: %v", err)
	}

	reqs, err := tr.ManifestSet(ctx, run.ID, "constraints_file", requirements.RequirementsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !reqs.Superset(requirements.NewSet(xgbPin, "-c constraints.txt")) {
		t.Errorf("manifest %s should carry the canonical -c line", reqs)
	}

	cons, err := tr.ManifestSet(ctx, run.ID, "constraints_file", requirements.ConstraintsFile)
	if err != nil {
		t.Fatal(err)
	}
	if !cons.Equal(requirements.NewSet(sklearnPin)) {
		t.Errorf("constraints %s should equal the referenced file", cons)
	}
}

func TestLogModel_NoConstraintsFileWithoutDirective(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")

	if err := tr.LogModel(ctx, run.ID, testModel(), "default"); err != nil {
		t.Fatal(err)
	}

	_, err := tr.DownloadArtifact(ctx, run.ID, "default/"+requirements.ConstraintsFile)
	if !errors.Is(err, errors.ErrCodeArtifactNotFound) {
		t.Errorf("expected no constraints manifest, got %v", err)
	}
}

func TestLogModel_WritesModelAndMetadata(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")

	m := testModel()
	sig, err := model.InferSignature([][]float64{{1, 2}}, []float64{0})
	if err != nil {
		t.Fatal(err)
	}
	m.Signature = sig

	if err := tr.LogModel(ctx, run.ID, m, "default"); err != nil {
		t.Fatal(err)
	}

	local, err := tr.DownloadArtifact(ctx, run.ID, "default/"+model.MLModelFile)
	if err != nil {
		t.Fatalf("MLmodel missing: %v", err)
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := model.UnmarshalMLModel(data)
	if err != nil {
		t.Fatalf("parse MLmodel: %v", err)
	}
	if doc.RunID != run.ID || doc.ArtifactPath != "default" {
		t.Errorf("unexpected MLmodel doc: %+v", doc)
	}

	if _, err := tr.DownloadArtifact(ctx, run.ID, "default/"+model.ModelBinaryFile); err != nil {
		t.Errorf("model binary missing: %v", err)
	}

	files, err := tr.ListArtifacts(ctx, run.ID, "default")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Errorf("artifacts = %v, want MLmodel, model.bin, requirements.txt", files)
	}
}

func TestLogModel_UnknownRun(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	err := tr.LogModel(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479", testModel(), "default")
	if !errors.Is(err, errors.ErrCodeRunNotFound) {
		t.Errorf("expected RUN_NOT_FOUND, got %v", err)
	}
}

func TestLogModel_MissingRequirementsFileFatal(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	run, _ := tr.StartRun(ctx, "test")

	err := tr.LogModel(ctx, run.ID, testModel(), "default",
		WithRequirements("-r /nonexistent/reqs.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestEndRun(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	run, err := tr.StartRun(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.EndRun(ctx, run.ID, store.StatusFinished); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}

	got, err := tr.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.StatusFinished {
		t.Errorf("Status = %s, want FINISHED", got.Status)
	}
	if got.EndTime.IsZero() {
		t.Error("EndTime should be set")
	}

	// Records logged under the run are tracked on its metadata
	if err := tr.LogModel(ctx, run.ID, testModel(), "default"); err != nil {
		t.Fatal(err)
	}
	got, _ = tr.GetRun(ctx, run.ID)
	if len(got.ArtifactPaths) != 1 || got.ArtifactPaths[0] != "default" {
		t.Errorf("ArtifactPaths = %v", got.ArtifactPaths)
	}
}
