package analytics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	jobIDPattern       = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_\-]*[a-z0-9])?$`)
	memoryLimitPattern = regexp.MustCompile(`(?i)^\d+(?:[kmgtp]b?|b)?$`)
)

// MaxJobIDLength is the longest job ID the cluster accepts.
const MaxJobIDLength = 64

var (
	outlierMethods       = []string{"lof", "ldof", "distance_kth_nn", "distance_knn", "ensemble"}
	regressionLosses     = []string{"mse", "msle", "huber"}
	assignmentObjectives = []string{"maximize_accuracy", "maximize_minimum_recall"}
)

// Problem is a single validation finding for a draft field.
type Problem struct {
	Field   string
	Message string
}

func (p Problem) String() string {
	return p.Field + ": " + p.Message
}

// Lookup answers existence questions the draft cannot answer by itself.
// Nil funcs are treated as "never exists".
type Lookup struct {
	JobExists      func(id string) bool
	DataViewExists func(title string) bool
}

// ValidateDraft checks d and returns the problems found, in field order.
// A nil result means the draft can be submitted.
func ValidateDraft(d JobDraft, lookup Lookup) []Problem {
	var problems []Problem
	add := func(field, format string, args ...any) {
		problems = append(problems, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case d.JobID == "":
		add("jobId", "job ID is required")
	case len(d.JobID) > MaxJobIDLength:
		add("jobId", "job ID must be at most %d characters", MaxJobIDLength)
	case !jobIDPattern.MatchString(d.JobID):
		add("jobId", "job ID may contain lowercase alphanumeric characters, hyphens and underscores, and must start and end with an alphanumeric character")
	case lookup.JobExists != nil && lookup.JobExists(d.JobID):
		add("jobId", "a job with ID %q already exists", d.JobID)
	}

	switch {
	case d.JobType == JobTypeNone:
		add("jobType", "job type is required")
	case !d.JobType.Valid():
		add("jobType", "unknown job type %q", d.JobType)
	}

	if len(d.SourceIndex) == 0 {
		add("sourceIndex", "source index is required")
	}
	for _, idx := range d.SourceIndex {
		if strings.TrimSpace(idx) == "" {
			add("sourceIndex", "source index names must not be empty")
			break
		}
	}

	if msg := indexNameProblem(d.DestinationIndex); msg != "" {
		add("destinationIndex", "%s", msg)
	} else if d.CreateDataView && lookup.DataViewExists != nil && lookup.DataViewExists(d.DestinationIndex) {
		add("destinationIndex", "a data view with title %q already exists", d.DestinationIndex)
	}

	if d.ModelMemoryLimit != "" && !memoryLimitPattern.MatchString(d.ModelMemoryLimit) {
		add("modelMemoryLimit", "model memory limit %q is not a valid byte size", d.ModelMemoryLimit)
	}
	if d.MaxNumThreads != nil && *d.MaxNumThreads < 1 {
		add("maxNumThreads", "must be at least 1")
	}

	switch d.JobType {
	case JobTypeOutlierDetection:
		if d.OutlierMethod != "" && !slices.Contains(outlierMethods, d.OutlierMethod) {
			add("method", "unknown outlier detection method %q", d.OutlierMethod)
		}
		if d.NNeighbors != nil && *d.NNeighbors < 1 {
			add("nNeighbors", "must be at least 1")
		}
		checkFraction(add, "outlierFraction", d.OutlierFraction, true)
		checkFraction(add, "featureInfluenceThreshold", d.FeatureInfluenceThreshold, true)
	case JobTypeRegression, JobTypeClassification:
		if d.DependentVariable == "" {
			add("dependentVariable", "dependent variable is required")
		}
		if tp := d.TrainingPercent; tp != nil && (*tp < 1 || *tp > 100) {
			add("trainingPercent", "must be between 1 and 100")
		}
		if v := d.NumTopFeatureImportanceValues; v != nil && *v < 0 {
			add("numTopFeatureImportanceValues", "must not be negative")
		}
		if v := d.Lambda; v != nil && *v < 0 {
			add("lambda", "must not be negative")
		}
		if v := d.Gamma; v != nil && *v < 0 {
			add("gamma", "must not be negative")
		}
		if v := d.Eta; v != nil && (*v < 0.001 || *v > 1) {
			add("eta", "must be between 0.001 and 1")
		}
		if v := d.MaxTrees; v != nil && (*v < 1 || *v > 2000) {
			add("maxTrees", "must be between 1 and 2000")
		}
		checkFraction(add, "featureBagFraction", d.FeatureBagFraction, false)

		if d.JobType == JobTypeRegression {
			if d.LossFunction != "" && !slices.Contains(regressionLosses, d.LossFunction) {
				add("lossFunction", "unknown loss function %q", d.LossFunction)
			}
			if v := d.LossFunctionParameter; v != nil && *v <= 0 {
				add("lossFunctionParameter", "must be greater than 0")
			}
		} else {
			if v := d.NumTopClasses; v != nil && *v < -1 {
				add("numTopClasses", "must be -1 or greater")
			}
			if d.ClassAssignmentObjective != "" && !slices.Contains(assignmentObjectives, d.ClassAssignmentObjective) {
				add("classAssignmentObjective", "unknown class assignment objective %q", d.ClassAssignmentObjective)
			}
		}
	}

	return problems
}

// checkFraction validates 0 <= v <= 1, or 0 < v <= 1 when zero is not allowed.
func checkFraction(add func(string, string, ...any), field string, v *float64, allowZero bool) {
	if v == nil {
		return
	}
	if *v > 1 || *v < 0 || (!allowZero && *v == 0) {
		if allowZero {
			add(field, "must be between 0 and 1")
		} else {
			add(field, "must be greater than 0 and at most 1")
		}
	}
}

// indexNameProblem returns why name is not a valid index name, or "".
func indexNameProblem(name string) string {
	switch {
	case name == "":
		return "destination index is required"
	case name == "." || name == "..":
		return "destination index must not be . or .."
	case len(name) > 255:
		return "destination index must be at most 255 bytes"
	case name != strings.ToLower(name):
		return "destination index must be lowercase"
	case strings.IndexAny(name[:1], "-_+") == 0:
		return "destination index must not start with -, _ or +"
	case strings.ContainsAny(name, `\/*?"<>| ,#:`):
		return `destination index must not contain \, /, *, ?, ", <, >, |, space, comma, # or :`
	}
	return ""
}
