package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlfoundry/modeltrack/pkg/model"
	"github.com/mlfoundry/modeltrack/pkg/requirements"
	"github.com/mlfoundry/modeltrack/pkg/tracking"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

// Demo pins. The xgboost pin is what the flavor infers as default; the
// scikit-learn pin plays the role of a caller-supplied dependency.
const (
	demoFrameworkName    = "xgboost"
	demoFrameworkVersion = "2.0.3"
	demoSklearnPin       = "scikit-learn==1.4.2"
)

// demoCommand creates the demo command, which exercises every supported form
// of requirement declaration against one shared run and verifies the
// persisted manifests.
func (c *CLI) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Exercise requirement merging when logging a model",
		Long: `Logs one model six times under different artifact paths, each with a
different requirement declaration (defaults, explicit list, extra list,
requirements file, -r directive, -c directive), then downloads the persisted
manifests and verifies their contents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			tracker, closeStore, err := c.newTracker(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			return c.runDemo(cmd.Context(), tracker)
		},
	}
}

// runDemo executes the six scenarios sequentially against one run.
// Any mismatch aborts immediately; the run is marked FAILED on the way out.
func (c *CLI) runDemo(ctx context.Context, tracker *tracking.Tracker) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	m, err := demoModel()
	if err != nil {
		return err
	}
	xgbPin := m.Flavor.Pin()

	run, err := tracker.StartRun(ctx, "requirements-demo")
	if err != nil {
		return err
	}
	logger.Info("started run", "run_id", run.ID)

	if err := c.demoScenarios(ctx, tracker, run.ID, m, xgbPin); err != nil {
		if endErr := tracker.EndRun(ctx, run.ID, store.StatusFailed); endErr != nil {
			logger.Error("mark run failed", "err", endErr)
		}
		return err
	}

	if err := tracker.EndRun(ctx, run.ID, store.StatusFinished); err != nil {
		return err
	}

	p.done(fmt.Sprintf("Verified 6 manifest scenarios in run %s", run.ID))
	return nil
}

func (c *CLI) demoScenarios(ctx context.Context, tracker *tracking.Tracker, runID string, m *model.Model, xgbPin string) error {
	// Default: both the explicit and extra lists are unspecified, so the
	// manifest carries the framework-inferred pin.
	if err := c.logAndVerify(ctx, tracker, runID, m, "default", nil,
		contains(xgbPin)); err != nil {
		return err
	}

	// Explicit list replaces the defaults entirely.
	if err := c.logAndVerify(ctx, tracker, runID, m, "pip_requirements",
		[]tracking.LogModelOption{tracking.WithRequirements(demoSklearnPin)},
		equals(demoSklearnPin)); err != nil {
		return err
	}

	// Extra list is layered on top of the defaults.
	if err := c.logAndVerify(ctx, tracker, runID, m, "extra_pip_requirements",
		[]tracking.LogModelOption{tracking.WithExtraRequirements(demoSklearnPin)},
		superset(xgbPin, demoSklearnPin)); err != nil {
		return err
	}

	// Requirements supplied via a file, in both the path form and the
	// inline -r directive form. The temp file lives only for these two
	// scenarios.
	if err := withTempFile("*.requirements.txt", demoSklearnPin, func(path string) error {
		if err := c.logAndVerify(ctx, tracker, runID, m, "requirements_file_path",
			[]tracking.LogModelOption{tracking.WithRequirementsFile(path)},
			contains(demoSklearnPin)); err != nil {
			return err
		}

		return c.logAndVerify(ctx, tracker, runID, m, "requirements_file_list",
			[]tracking.LogModelOption{tracking.WithRequirements(xgbPin, "-r "+path)},
			superset(xgbPin, demoSklearnPin))
	}); err != nil {
		return err
	}

	// Constraints file: the referenced lines land in constraints.txt and the
	// requirements manifest gets the canonical -c line instead.
	return withTempFile("*.constraints.txt", demoSklearnPin, func(path string) error {
		artifactPath := "constraints_file"
		if err := c.logAndVerify(ctx, tracker, runID, m, artifactPath,
			[]tracking.LogModelOption{tracking.WithRequirements(xgbPin, "-c "+path)},
			superset(xgbPin, "-c "+requirements.ConstraintsFile)); err != nil {
			return err
		}

		cons, err := tracker.ManifestSet(ctx, runID, artifactPath, requirements.ConstraintsFile)
		if err != nil {
			return err
		}
		if err := equals(demoSklearnPin)(cons); err != nil {
			return err
		}
		printDetail("constraints.txt = %s", cons)
		return nil
	})
}

// logAndVerify logs the model under artifactPath with the given options,
// downloads the persisted requirements manifest, and runs the check on it.
func (c *CLI) logAndVerify(ctx context.Context, tracker *tracking.Tracker, runID string, m *model.Model, artifactPath string, opts []tracking.LogModelOption, check verification) error {
	loggerFromContext(ctx).Debug("logging model", "artifact_path", artifactPath)

	if err := tracker.LogModel(ctx, runID, m, artifactPath, opts...); err != nil {
		return err
	}

	reqs, err := tracker.ManifestSet(ctx, runID, artifactPath, requirements.RequirementsFile)
	if err != nil {
		return err
	}
	if err := check(reqs); err != nil {
		printError("%s: %v", artifactPath, err)
		return err
	}

	printSuccess("%s", artifactPath)
	printDetail("requirements.txt = %s", reqs)
	return nil
}

// withTempFile writes content to a fresh temp file, flushes it, runs fn with
// its path, and removes the file on every exit path.
func withTempFile(pattern, content string, fn func(path string) error) error {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return fn(f.Name())
}

// demoModel builds the fixed model logged by every scenario: a small
// boosted-trees payload over an iris-style sample, with an inferred signature.
func demoModel() (*model.Model, error) {
	inputs := [][]float64{
		{5.1, 3.5, 1.4, 0.2},
		{4.9, 3.0, 1.4, 0.2},
		{6.4, 3.2, 4.5, 1.5},
		{6.9, 3.1, 4.9, 1.5},
		{5.8, 2.7, 5.1, 1.9},
		{6.3, 3.3, 6.0, 2.5},
	}
	predictions := []float64{0, 0, 1, 1, 2, 2}

	sig, err := model.InferSignature(inputs, predictions)
	if err != nil {
		return nil, err
	}

	flavor := model.Flavor{Name: demoFrameworkName, Version: demoFrameworkVersion}
	payload := []byte(fmt.Sprintf("%s model trained on %d samples\n", flavor.Name, len(inputs)))

	m := model.New(flavor, payload)
	m.Signature = sig
	return m, nil
}
