package cli

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
)

func parseFormFlags(t *testing.T, args ...string) (analytics.FormPatch, error) {
	t.Helper()
	var f formFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f.patch(fs)
}

func TestFormFlags_OnlyChangedFlagsArePatched(t *testing.T) {
	base := analytics.NewJobDraft()
	base.Description = "from file"
	base.MaxTrees = analytics.Int(10)

	p, err := parseFormFlags(t,
		"--job-id", " flights ",
		"-t", "Regression",
		"-s", "flights-*, logs",
		"-d", "flights-dest",
		"--dependent-variable", "delay",
		"--training-percent", "60",
		"--query", `{"term":{"carrier":"ES"}}`,
		"--create-data-view=false",
	)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	want := base.Clone()
	want.JobID = "flights"
	want.JobType = analytics.JobTypeRegression
	want.SourceIndex = []string{"flights-*", "logs"}
	want.DestinationIndex = "flights-dest"
	want.DependentVariable = "delay"
	want.TrainingPercent = analytics.Float64(60)
	want.SourceQuery = map[string]any{"term": map[string]any{"carrier": "ES"}}
	want.CreateDataView = false

	got := p.Apply(base)
	if diff := cmp.Diff(want.Clone(), got); diff != "" {
		t.Errorf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFlags_Defaults(t *testing.T) {
	p, err := parseFormFlags(t)
	if err != nil {
		t.Fatal(err)
	}
	base := analytics.NewJobDraft()
	if diff := cmp.Diff(base.Clone(), p.Apply(base)); diff != "" {
		t.Errorf("an empty command line must not change the draft:\n%s", diff)
	}
}

func TestIgnoredInAdvanced(t *testing.T) {
	var opts createOptions
	fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
	fs.StringVarP(&opts.file, "file", "f", "", "")
	opts.form.bind(fs)
	if err := fs.Parse([]string{"-f", "job.json", "--job-id", "j", "-d", "dest", "--time-field", "ts", "--lambda", "1"}); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"--dest", "--lambda"}, ignoredInAdvanced(fs)); diff != "" {
		t.Errorf("ignored flags mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFlags_Errors(t *testing.T) {
	if _, err := parseFormFlags(t, "-t", "clustering"); !errors.Is(err, analytics.ErrUnknownJobType) {
		t.Errorf("expected ErrUnknownJobType, got %v", err)
	}
	if _, err := parseFormFlags(t, "--query", "[1,2]"); err == nil {
		t.Error("a query that is not an object should be rejected")
	}
	if _, err := parseFormFlags(t, "--runtime-mappings", "{"); err == nil {
		t.Error("invalid runtime mappings JSON should be rejected")
	}
}
