package tracking

// logModelOptions collects the optional requirement declarations for LogModel.
type logModelOptions struct {
	requirements     []string
	requirementsPath string
	extra            []string
}

// LogModelOption configures a LogModel call.
type LogModelOption func(*logModelOptions)

// WithRequirements replaces the framework-inferred defaults with an explicit
// requirement list. Entries may include `-r <path>` and `-c <path>` directives.
func WithRequirements(reqs ...string) LogModelOption {
	return func(o *logModelOptions) {
		o.requirements = reqs
	}
}

// WithRequirementsFile replaces the defaults with the contents of a
// requirements file.
func WithRequirementsFile(path string) LogModelOption {
	return func(o *logModelOptions) {
		o.requirementsPath = path
	}
}

// WithExtraRequirements appends entries to the framework-inferred defaults.
func WithExtraRequirements(reqs ...string) LogModelOption {
	return func(o *logModelOptions) {
		o.extra = reqs
	}
}
