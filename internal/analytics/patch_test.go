package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormPatch_ApplyOverwritesOnlySetFields(t *testing.T) {
	base := NewJobDraft()
	base.JobID = "keep-me"
	base.Description = "original"

	got := FormPatch{Description: Set("changed")}.Apply(base)

	if got.JobID != "keep-me" {
		t.Errorf("JobID = %q, want keep-me", got.JobID)
	}
	if got.Description != "changed" {
		t.Errorf("Description = %q, want changed", got.Description)
	}
	if got.TrainingPercent == nil || *got.TrainingPercent != DefaultTrainingPercent {
		t.Errorf("TrainingPercent = %v, want default %d", got.TrainingPercent, DefaultTrainingPercent)
	}
	if base.Description != "original" {
		t.Errorf("Apply modified its input: Description = %q", base.Description)
	}
}

func TestFormPatch_SetZeroValueClearsField(t *testing.T) {
	base := NewJobDraft()
	got := FormPatch{
		TrainingPercent: Set[*float64](nil),
		CreateDataView:  Set(false),
	}.Apply(base)

	if got.TrainingPercent != nil {
		t.Errorf("TrainingPercent = %v, want nil", *got.TrainingPercent)
	}
	if got.CreateDataView {
		t.Error("CreateDataView = true, want false")
	}
}

// Applying patches one at a time, in batches, or merged into a single
// patch must all produce the same draft.
func TestFormPatch_MergeMatchesSequentialApply(t *testing.T) {
	patches := []FormPatch{
		{JobID: Set("a"), JobType: Set(JobTypeRegression)},
		{SourceIndex: Set([]string{"src-1"}), DependentVariable: Set("price")},
		{JobID: Set("b"), Lambda: Set(Float64(0.5))},
		{SourceQuery: Set(map[string]any{"term": map[string]any{"year": 2021}})},
		{SourceIndex: Set([]string{}), Includes: Set([]string{"price", "size"})},
		{Lambda: Set[*float64](nil), ModelMemoryLimit: Set("50mb")},
	}

	sequential := NewJobDraft()
	for _, p := range patches {
		sequential = p.Apply(sequential)
	}

	var merged FormPatch
	for _, p := range patches {
		merged = merged.Merge(p)
	}
	all := merged.Apply(NewJobDraft())

	batched := patches[0].Merge(patches[1]).Apply(NewJobDraft())
	batched = patches[2].Merge(patches[3]).Merge(patches[4]).Apply(batched)
	batched = patches[5].Apply(batched)

	if diff := cmp.Diff(sequential, all); diff != "" {
		t.Errorf("merged patch differs from sequential apply (-sequential +merged):\n%s", diff)
	}
	if diff := cmp.Diff(sequential, batched); diff != "" {
		t.Errorf("batched patches differ from sequential apply (-sequential +batched):\n%s", diff)
	}

	if sequential.JobID != "b" {
		t.Errorf("JobID = %q, want b (later patch wins)", sequential.JobID)
	}
	if sequential.SourceIndex != nil {
		t.Errorf("SourceIndex = %v, want nil for an empty slice", sequential.SourceIndex)
	}
}

func TestJobDraft_CloneDoesNotShareState(t *testing.T) {
	d := NewJobDraft()
	d.SourceIndex = []string{"a"}
	d.MaxTrees = Int(10)

	c := d.Clone()
	c.SourceIndex[0] = "b"
	*c.MaxTrees = 20

	if d.SourceIndex[0] != "a" {
		t.Errorf("clone shares SourceIndex backing array")
	}
	if *d.MaxTrees != 10 {
		t.Errorf("clone shares MaxTrees pointer")
	}
}
