package cli

import (
	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/requirements"
)

// verification checks a downloaded manifest set against an expectation.
// A failed check aborts the demo; the diagnostic shows the actual set.
type verification func(got requirements.Set) error

// contains expects every listed line to be present.
func contains(lines ...string) verification {
	return func(got requirements.Set) error {
		for _, l := range lines {
			if !got.Contains(l) {
				return errors.New(errors.ErrCodeManifestMismatch,
					"manifest %s does not contain %q", got, l)
			}
		}
		return nil
	}
}

// superset expects the manifest to be a superset of the listed lines.
func superset(lines ...string) verification {
	want := requirements.NewSet(lines...)
	return func(got requirements.Set) error {
		if !got.Superset(want) {
			return errors.New(errors.ErrCodeManifestMismatch,
				"manifest %s is not a superset of %s", got, want)
		}
		return nil
	}
}

// equals expects the manifest to hold exactly the listed lines.
func equals(lines ...string) verification {
	want := requirements.NewSet(lines...)
	return func(got requirements.Set) error {
		if !got.Equal(want) {
			return errors.New(errors.ErrCodeManifestMismatch,
				"manifest %s does not equal %s", got, want)
		}
		return nil
	}
}
