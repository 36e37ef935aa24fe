package analytics

// DraftToConfig builds the job configuration described by the form.
// Form-only fields (JobID, CreateDataView, TimeFieldName, MemoryEstimated)
// are not part of the result; the job ID travels separately on create.
func DraftToConfig(d JobDraft) Config {
	d = d.Clone()
	cfg := Config{
		Description: d.Description,
		Source: Source{
			Index:           d.SourceIndex,
			Query:           d.SourceQuery,
			RuntimeMappings: d.RuntimeMappings,
		},
		Dest: Dest{
			Index:        d.DestinationIndex,
			ResultsField: d.ResultsField,
		},
		ModelMemoryLimit: d.ModelMemoryLimit,
		MaxNumThreads:    d.MaxNumThreads,
		AllowLazyStart:   d.AllowLazyStart,
	}
	if len(d.Includes) > 0 {
		cfg.AnalyzedFields = &AnalyzedFields{Includes: d.Includes}
	}

	switch d.JobType {
	case JobTypeOutlierDetection:
		cfg.Analysis.OutlierDetection = &OutlierDetection{
			ComputeFeatureInfluence:   d.ComputeFeatureInfluence,
			FeatureInfluenceThreshold: d.FeatureInfluenceThreshold,
			Method:                    d.OutlierMethod,
			NNeighbors:                d.NNeighbors,
			OutlierFraction:           d.OutlierFraction,
			StandardizationEnabled:    d.StandardizationEnabled,
		}
	case JobTypeRegression:
		cfg.Analysis.Regression = &Regression{
			Supervised:            supervisedFromDraft(d),
			LossFunction:          d.LossFunction,
			LossFunctionParameter: d.LossFunctionParameter,
		}
	case JobTypeClassification:
		cfg.Analysis.Classification = &Classification{
			Supervised:               supervisedFromDraft(d),
			NumTopClasses:            d.NumTopClasses,
			ClassAssignmentObjective: d.ClassAssignmentObjective,
		}
	}
	return cfg
}

func supervisedFromDraft(d JobDraft) Supervised {
	return Supervised{
		DependentVariable:             d.DependentVariable,
		TrainingPercent:               d.TrainingPercent,
		PredictionFieldName:           d.PredictionFieldName,
		NumTopFeatureImportanceValues: d.NumTopFeatureImportanceValues,
		RandomizeSeed:                 d.RandomizeSeed,
		Lambda:                        d.Lambda,
		Gamma:                         d.Gamma,
		Eta:                           d.Eta,
		MaxTrees:                      d.MaxTrees,
		FeatureBagFraction:            d.FeatureBagFraction,
		EarlyStoppingEnabled:          d.EarlyStoppingEnabled,
	}
}

// DraftFromConfig loads the form-supported fields of cfg over base.
//
// Every field cfg speaks for is replaced, including fields cfg leaves empty.
// Analysis parameters that belong to other job types, and the form-only
// fields, keep base's values.
func DraftFromConfig(cfg Config, base JobDraft) JobDraft {
	d := base
	d.Description = cfg.Description
	d.SourceIndex = cfg.Source.Index
	d.SourceQuery = cfg.Source.Query
	d.RuntimeMappings = cfg.Source.RuntimeMappings
	d.DestinationIndex = cfg.Dest.Index
	d.ResultsField = cfg.Dest.ResultsField
	d.Includes = nil
	if cfg.AnalyzedFields != nil {
		d.Includes = cfg.AnalyzedFields.Includes
	}
	d.ModelMemoryLimit = cfg.ModelMemoryLimit
	d.MaxNumThreads = cfg.MaxNumThreads
	d.AllowLazyStart = cfg.AllowLazyStart

	d.JobType = cfg.Analysis.Type()
	switch d.JobType {
	case JobTypeOutlierDetection:
		od := cfg.Analysis.OutlierDetection
		d.ComputeFeatureInfluence = od.ComputeFeatureInfluence
		d.FeatureInfluenceThreshold = od.FeatureInfluenceThreshold
		d.OutlierMethod = od.Method
		d.NNeighbors = od.NNeighbors
		d.OutlierFraction = od.OutlierFraction
		d.StandardizationEnabled = od.StandardizationEnabled
	case JobTypeRegression:
		r := cfg.Analysis.Regression
		d = supervisedIntoDraft(r.Supervised, d)
		d.LossFunction = r.LossFunction
		d.LossFunctionParameter = r.LossFunctionParameter
	case JobTypeClassification:
		c := cfg.Analysis.Classification
		d = supervisedIntoDraft(c.Supervised, d)
		d.NumTopClasses = c.NumTopClasses
		d.ClassAssignmentObjective = c.ClassAssignmentObjective
	}
	return d.Clone()
}

func supervisedIntoDraft(s Supervised, d JobDraft) JobDraft {
	d.DependentVariable = s.DependentVariable
	d.TrainingPercent = s.TrainingPercent
	d.PredictionFieldName = s.PredictionFieldName
	d.NumTopFeatureImportanceValues = s.NumTopFeatureImportanceValues
	d.RandomizeSeed = s.RandomizeSeed
	d.Lambda = s.Lambda
	d.Gamma = s.Gamma
	d.Eta = s.Eta
	d.MaxTrees = s.MaxTrees
	d.FeatureBagFraction = s.FeatureBagFraction
	d.EarlyStoppingEnabled = s.EarlyStoppingEnabled
	return d
}

// IsAdvancedConfig reports whether cfg sets any field the structured form
// cannot represent. Such configs can only be edited as raw text; loading
// them into the form would silently drop those fields.
func IsAdvancedConfig(cfg Config) bool {
	return len(AdvancedFields(cfg)) > 0
}

// AdvancedFields lists the config paths set in cfg that the form has no
// field for, in a stable order.
func AdvancedFields(cfg Config) []string {
	var out []string
	add := func(cond bool, path string) {
		if cond {
			out = append(out, path)
		}
	}

	add(cfg.ID != "", "id")
	add(cfg.CreateTime != nil, "create_time")
	add(cfg.Version != "", "version")
	add(len(cfg.Authorization) > 0, "authorization")
	add(len(cfg.Meta) > 0, "_meta")
	add(cfg.Source.SourceFiltering != nil, "source._source")
	add(cfg.AnalyzedFields != nil && len(cfg.AnalyzedFields.Excludes) > 0, "analyzed_fields.excludes")
	add(cfg.Analysis.count() > 1, "analysis")

	if r := cfg.Analysis.Regression; r != nil {
		out = append(out, advancedSupervised("analysis.regression", r.Supervised)...)
	}
	if c := cfg.Analysis.Classification; c != nil {
		out = append(out, advancedSupervised("analysis.classification", c.Supervised)...)
	}
	return out
}

func advancedSupervised(prefix string, s Supervised) []string {
	var out []string
	add := func(cond bool, name string) {
		if cond {
			out = append(out, prefix+"."+name)
		}
	}
	add(s.Alpha != nil, "alpha")
	add(s.DownsampleFactor != nil, "downsample_factor")
	add(s.EtaGrowthRatePerTree != nil, "eta_growth_rate_per_tree")
	add(s.MaxOptimizationRoundsPerHyper != nil, "max_optimization_rounds_per_hyperparameter")
	add(s.SoftTreeDepthLimit != nil, "soft_tree_depth_limit")
	add(s.SoftTreeDepthTolerance != nil, "soft_tree_depth_tolerance")
	add(len(s.FeatureProcessors) > 0, "feature_processors")
	return out
}

// CloningConfig returns the part of an existing job's config that can seed a
// new job: identity and runtime-only fields are dropped and the destination
// index is cleared so a new one must be chosen.
func CloningConfig(src Config) Config {
	cfg := src.Clone()
	cfg.ID = ""
	cfg.CreateTime = nil
	cfg.Version = ""
	cfg.Authorization = nil
	cfg.Dest.Index = ""
	return cfg
}
