// Package analytics models data frame analytics job configurations and the
// structured form (JobDraft) used to author them.
package analytics

// JobType identifies the analysis a data frame analytics job runs.
type JobType string

const (
	JobTypeNone             JobType = ""
	JobTypeOutlierDetection JobType = "outlier_detection"
	JobTypeRegression       JobType = "regression"
	JobTypeClassification   JobType = "classification"
)

// IsSupervised reports whether the job type trains on a dependent variable.
func (t JobType) IsSupervised() bool {
	return t == JobTypeRegression || t == JobTypeClassification
}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeOutlierDetection, JobTypeRegression, JobTypeClassification:
		return true
	default:
		return false
	}
}

// Config is a data frame analytics job configuration as accepted by the
// create API and returned by the get API.
type Config struct {
	ID             string          `json:"id,omitempty"`
	Description    string          `json:"description,omitempty"`
	Source         Source          `json:"source"`
	Dest           Dest            `json:"dest"`
	AnalyzedFields *AnalyzedFields `json:"analyzed_fields,omitempty"`
	Analysis       Analysis        `json:"analysis"`

	ModelMemoryLimit string         `json:"model_memory_limit,omitempty"`
	MaxNumThreads    *int           `json:"max_num_threads,omitempty"`
	AllowLazyStart   *bool          `json:"allow_lazy_start,omitempty"`
	Meta             map[string]any `json:"_meta,omitempty"`

	// Read-only fields present on configs fetched from the cluster.
	CreateTime    *int64         `json:"create_time,omitempty"`
	Version       string         `json:"version,omitempty"`
	Authorization map[string]any `json:"authorization,omitempty"`
}

// Source selects the documents the job analyzes.
type Source struct {
	Index           []string       `json:"index"`
	Query           map[string]any `json:"query,omitempty"`
	RuntimeMappings map[string]any `json:"runtime_mappings,omitempty"`
	SourceFiltering *FieldFilter   `json:"_source,omitempty"`
}

// Dest names the index the job writes results into.
type Dest struct {
	Index        string `json:"index"`
	ResultsField string `json:"results_field,omitempty"`
}

// AnalyzedFields restricts the fields taken into account by the analysis.
type AnalyzedFields struct {
	Includes []string `json:"includes,omitempty"`
	Excludes []string `json:"excludes,omitempty"`
}

// FieldFilter is an includes/excludes pair.
type FieldFilter struct {
	Includes []string `json:"includes,omitempty"`
	Excludes []string `json:"excludes,omitempty"`
}

// Analysis holds exactly one analysis object.
type Analysis struct {
	OutlierDetection *OutlierDetection `json:"outlier_detection,omitempty"`
	Regression       *Regression       `json:"regression,omitempty"`
	Classification   *Classification   `json:"classification,omitempty"`
}

// Type returns the job type encoded by the analysis, or JobTypeNone when no
// analysis object is set.
func (a Analysis) Type() JobType {
	switch {
	case a.OutlierDetection != nil:
		return JobTypeOutlierDetection
	case a.Regression != nil:
		return JobTypeRegression
	case a.Classification != nil:
		return JobTypeClassification
	default:
		return JobTypeNone
	}
}

// count returns how many analysis objects are set.
func (a Analysis) count() int {
	n := 0
	if a.OutlierDetection != nil {
		n++
	}
	if a.Regression != nil {
		n++
	}
	if a.Classification != nil {
		n++
	}
	return n
}

// OutlierDetection parameters.
type OutlierDetection struct {
	ComputeFeatureInfluence   *bool    `json:"compute_feature_influence,omitempty"`
	FeatureInfluenceThreshold *float64 `json:"feature_influence_threshold,omitempty"`
	Method                    string   `json:"method,omitempty"`
	NNeighbors                *int     `json:"n_neighbors,omitempty"`
	OutlierFraction           *float64 `json:"outlier_fraction,omitempty"`
	StandardizationEnabled    *bool    `json:"standardization_enabled,omitempty"`
}

// Supervised holds the hyperparameters shared by regression and
// classification.
type Supervised struct {
	DependentVariable             string           `json:"dependent_variable"`
	TrainingPercent               *float64         `json:"training_percent,omitempty"`
	PredictionFieldName           string           `json:"prediction_field_name,omitempty"`
	NumTopFeatureImportanceValues *int             `json:"num_top_feature_importance_values,omitempty"`
	RandomizeSeed                 *int64           `json:"randomize_seed,omitempty"`
	Lambda                        *float64         `json:"lambda,omitempty"`
	Gamma                         *float64         `json:"gamma,omitempty"`
	Eta                           *float64         `json:"eta,omitempty"`
	MaxTrees                      *int             `json:"max_trees,omitempty"`
	FeatureBagFraction            *float64         `json:"feature_bag_fraction,omitempty"`
	EarlyStoppingEnabled          *bool            `json:"early_stopping_enabled,omitempty"`
	Alpha                         *float64         `json:"alpha,omitempty"`
	DownsampleFactor              *float64         `json:"downsample_factor,omitempty"`
	EtaGrowthRatePerTree          *float64         `json:"eta_growth_rate_per_tree,omitempty"`
	MaxOptimizationRoundsPerHyper *int             `json:"max_optimization_rounds_per_hyperparameter,omitempty"`
	SoftTreeDepthLimit            *float64         `json:"soft_tree_depth_limit,omitempty"`
	SoftTreeDepthTolerance        *float64         `json:"soft_tree_depth_tolerance,omitempty"`
	FeatureProcessors             []map[string]any `json:"feature_processors,omitempty"`
}

// Regression parameters.
type Regression struct {
	Supervised
	LossFunction          string   `json:"loss_function,omitempty"`
	LossFunctionParameter *float64 `json:"loss_function_parameter,omitempty"`
}

// Classification parameters.
type Classification struct {
	Supervised
	NumTopClasses            *int   `json:"num_top_classes,omitempty"`
	ClassAssignmentObjective string `json:"class_assignment_objective,omitempty"`
}
