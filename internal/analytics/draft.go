package analytics

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultTrainingPercent is the share of documents used for training when
// the form starts out.
const DefaultTrainingPercent = 80

// JobDraft is the in-progress structured definition of a job being authored
// in the wizard form.
type JobDraft struct {
	JobID       string
	Description string
	JobType     JobType

	SourceIndex     []string
	SourceQuery     map[string]any
	RuntimeMappings map[string]any

	DestinationIndex string
	ResultsField     string
	Includes         []string

	// Outlier detection
	OutlierMethod             string
	NNeighbors                *int
	OutlierFraction           *float64
	FeatureInfluenceThreshold *float64
	ComputeFeatureInfluence   *bool
	StandardizationEnabled    *bool

	// Regression and classification
	DependentVariable             string
	TrainingPercent               *float64
	PredictionFieldName           string
	NumTopFeatureImportanceValues *int
	RandomizeSeed                 *int64
	Lambda                        *float64
	Gamma                         *float64
	Eta                           *float64
	MaxTrees                      *int
	FeatureBagFraction            *float64
	EarlyStoppingEnabled          *bool
	LossFunction                  string
	LossFunctionParameter         *float64
	NumTopClasses                 *int
	ClassAssignmentObjective      string

	ModelMemoryLimit string
	MaxNumThreads    *int
	AllowLazyStart   *bool

	// Form-only fields, never part of a Config.
	CreateDataView  bool
	TimeFieldName   string
	MemoryEstimated bool
}

// NewJobDraft returns the draft a fresh wizard starts with.
func NewJobDraft() JobDraft {
	return JobDraft{
		TrainingPercent: Float64(DefaultTrainingPercent),
		CreateDataView:  true,
	}
}

// Clone returns a deep copy of d with empty collections normalized to nil,
// free-form objects re-encoded so numbers are held as json.Number and
// invalid UTF-8 in text fields replaced the way JSON encoding would.
func (d JobDraft) Clone() JobDraft {
	out := d
	out.SourceIndex = cloneStrings(d.SourceIndex)
	out.Includes = cloneStrings(d.Includes)
	for _, p := range []*string{
		&out.JobID, &out.Description, &out.DestinationIndex, &out.ResultsField,
		&out.OutlierMethod, &out.DependentVariable, &out.PredictionFieldName,
		&out.LossFunction, &out.ClassAssignmentObjective, &out.ModelMemoryLimit,
		&out.TimeFieldName,
	} {
		*p = validUTF8(*p)
	}
	out.JobType = JobType(validUTF8(string(d.JobType)))
	for i, v := range out.SourceIndex {
		out.SourceIndex[i] = validUTF8(v)
	}
	for i, v := range out.Includes {
		out.Includes[i] = validUTF8(v)
	}
	out.SourceQuery = normalizeObject(d.SourceQuery)
	out.RuntimeMappings = normalizeObject(d.RuntimeMappings)

	out.NNeighbors = clonePtr(d.NNeighbors)
	out.OutlierFraction = clonePtr(d.OutlierFraction)
	out.FeatureInfluenceThreshold = clonePtr(d.FeatureInfluenceThreshold)
	out.ComputeFeatureInfluence = clonePtr(d.ComputeFeatureInfluence)
	out.StandardizationEnabled = clonePtr(d.StandardizationEnabled)
	out.TrainingPercent = clonePtr(d.TrainingPercent)
	out.NumTopFeatureImportanceValues = clonePtr(d.NumTopFeatureImportanceValues)
	out.RandomizeSeed = clonePtr(d.RandomizeSeed)
	out.Lambda = clonePtr(d.Lambda)
	out.Gamma = clonePtr(d.Gamma)
	out.Eta = clonePtr(d.Eta)
	out.MaxTrees = clonePtr(d.MaxTrees)
	out.FeatureBagFraction = clonePtr(d.FeatureBagFraction)
	out.EarlyStoppingEnabled = clonePtr(d.EarlyStoppingEnabled)
	out.LossFunctionParameter = clonePtr(d.LossFunctionParameter)
	out.NumTopClasses = clonePtr(d.NumTopClasses)
	out.MaxNumThreads = clonePtr(d.MaxNumThreads)
	out.AllowLazyStart = clonePtr(d.AllowLazyStart)
	return out
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// validUTF8 replaces each invalid byte with U+FFFD, matching encoding/json.
func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// normalizeObject deep-copies m through JSON so that the result only holds
// JSON-native values with numbers as json.Number. Values JSON cannot encode
// are kept as a shallow copy.
func normalizeObject(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}
