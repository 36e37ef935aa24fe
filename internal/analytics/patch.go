package analytics

// Field is an optional patch value. The zero Field leaves the draft field
// untouched.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field that overwrites the draft field with v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// IsSet reports whether the field carries a value.
func (f Field[T]) IsSet() bool { return f.set }

func (f Field[T]) or(cur T) T {
	if f.set {
		return f.value
	}
	return cur
}

// then returns g when it is set, else f.
func (f Field[T]) then(g Field[T]) Field[T] {
	if g.set {
		return g
	}
	return f
}

// FormPatch is a partial JobDraft. Applying it is a shallow merge: every set
// field replaces the draft's value, unset fields are left alone.
type FormPatch struct {
	JobID       Field[string]
	Description Field[string]
	JobType     Field[JobType]

	SourceIndex     Field[[]string]
	SourceQuery     Field[map[string]any]
	RuntimeMappings Field[map[string]any]

	DestinationIndex Field[string]
	ResultsField     Field[string]
	Includes         Field[[]string]

	OutlierMethod             Field[string]
	NNeighbors                Field[*int]
	OutlierFraction           Field[*float64]
	FeatureInfluenceThreshold Field[*float64]
	ComputeFeatureInfluence   Field[*bool]
	StandardizationEnabled    Field[*bool]

	DependentVariable             Field[string]
	TrainingPercent               Field[*float64]
	PredictionFieldName           Field[string]
	NumTopFeatureImportanceValues Field[*int]
	RandomizeSeed                 Field[*int64]
	Lambda                        Field[*float64]
	Gamma                         Field[*float64]
	Eta                           Field[*float64]
	MaxTrees                      Field[*int]
	FeatureBagFraction            Field[*float64]
	EarlyStoppingEnabled          Field[*bool]
	LossFunction                  Field[string]
	LossFunctionParameter         Field[*float64]
	NumTopClasses                 Field[*int]
	ClassAssignmentObjective      Field[string]

	ModelMemoryLimit Field[string]
	MaxNumThreads    Field[*int]
	AllowLazyStart   Field[*bool]

	CreateDataView  Field[bool]
	TimeFieldName   Field[string]
	MemoryEstimated Field[bool]
}

// Apply merges p into d and returns the result. d is not modified.
func (p FormPatch) Apply(d JobDraft) JobDraft {
	d.JobID = p.JobID.or(d.JobID)
	d.Description = p.Description.or(d.Description)
	d.JobType = p.JobType.or(d.JobType)

	d.SourceIndex = p.SourceIndex.or(d.SourceIndex)
	d.SourceQuery = p.SourceQuery.or(d.SourceQuery)
	d.RuntimeMappings = p.RuntimeMappings.or(d.RuntimeMappings)

	d.DestinationIndex = p.DestinationIndex.or(d.DestinationIndex)
	d.ResultsField = p.ResultsField.or(d.ResultsField)
	d.Includes = p.Includes.or(d.Includes)

	d.OutlierMethod = p.OutlierMethod.or(d.OutlierMethod)
	d.NNeighbors = p.NNeighbors.or(d.NNeighbors)
	d.OutlierFraction = p.OutlierFraction.or(d.OutlierFraction)
	d.FeatureInfluenceThreshold = p.FeatureInfluenceThreshold.or(d.FeatureInfluenceThreshold)
	d.ComputeFeatureInfluence = p.ComputeFeatureInfluence.or(d.ComputeFeatureInfluence)
	d.StandardizationEnabled = p.StandardizationEnabled.or(d.StandardizationEnabled)

	d.DependentVariable = p.DependentVariable.or(d.DependentVariable)
	d.TrainingPercent = p.TrainingPercent.or(d.TrainingPercent)
	d.PredictionFieldName = p.PredictionFieldName.or(d.PredictionFieldName)
	d.NumTopFeatureImportanceValues = p.NumTopFeatureImportanceValues.or(d.NumTopFeatureImportanceValues)
	d.RandomizeSeed = p.RandomizeSeed.or(d.RandomizeSeed)
	d.Lambda = p.Lambda.or(d.Lambda)
	d.Gamma = p.Gamma.or(d.Gamma)
	d.Eta = p.Eta.or(d.Eta)
	d.MaxTrees = p.MaxTrees.or(d.MaxTrees)
	d.FeatureBagFraction = p.FeatureBagFraction.or(d.FeatureBagFraction)
	d.EarlyStoppingEnabled = p.EarlyStoppingEnabled.or(d.EarlyStoppingEnabled)
	d.LossFunction = p.LossFunction.or(d.LossFunction)
	d.LossFunctionParameter = p.LossFunctionParameter.or(d.LossFunctionParameter)
	d.NumTopClasses = p.NumTopClasses.or(d.NumTopClasses)
	d.ClassAssignmentObjective = p.ClassAssignmentObjective.or(d.ClassAssignmentObjective)

	d.ModelMemoryLimit = p.ModelMemoryLimit.or(d.ModelMemoryLimit)
	d.MaxNumThreads = p.MaxNumThreads.or(d.MaxNumThreads)
	d.AllowLazyStart = p.AllowLazyStart.or(d.AllowLazyStart)

	d.CreateDataView = p.CreateDataView.or(d.CreateDataView)
	d.TimeFieldName = p.TimeFieldName.or(d.TimeFieldName)
	d.MemoryEstimated = p.MemoryEstimated.or(d.MemoryEstimated)

	return d.Clone()
}

// Merge returns a patch equivalent to applying p and then q.
func (p FormPatch) Merge(q FormPatch) FormPatch {
	return FormPatch{
		JobID:       p.JobID.then(q.JobID),
		Description: p.Description.then(q.Description),
		JobType:     p.JobType.then(q.JobType),

		SourceIndex:     p.SourceIndex.then(q.SourceIndex),
		SourceQuery:     p.SourceQuery.then(q.SourceQuery),
		RuntimeMappings: p.RuntimeMappings.then(q.RuntimeMappings),

		DestinationIndex: p.DestinationIndex.then(q.DestinationIndex),
		ResultsField:     p.ResultsField.then(q.ResultsField),
		Includes:         p.Includes.then(q.Includes),

		OutlierMethod:             p.OutlierMethod.then(q.OutlierMethod),
		NNeighbors:                p.NNeighbors.then(q.NNeighbors),
		OutlierFraction:           p.OutlierFraction.then(q.OutlierFraction),
		FeatureInfluenceThreshold: p.FeatureInfluenceThreshold.then(q.FeatureInfluenceThreshold),
		ComputeFeatureInfluence:   p.ComputeFeatureInfluence.then(q.ComputeFeatureInfluence),
		StandardizationEnabled:    p.StandardizationEnabled.then(q.StandardizationEnabled),

		DependentVariable:             p.DependentVariable.then(q.DependentVariable),
		TrainingPercent:               p.TrainingPercent.then(q.TrainingPercent),
		PredictionFieldName:           p.PredictionFieldName.then(q.PredictionFieldName),
		NumTopFeatureImportanceValues: p.NumTopFeatureImportanceValues.then(q.NumTopFeatureImportanceValues),
		RandomizeSeed:                 p.RandomizeSeed.then(q.RandomizeSeed),
		Lambda:                        p.Lambda.then(q.Lambda),
		Gamma:                         p.Gamma.then(q.Gamma),
		Eta:                           p.Eta.then(q.Eta),
		MaxTrees:                      p.MaxTrees.then(q.MaxTrees),
		FeatureBagFraction:            p.FeatureBagFraction.then(q.FeatureBagFraction),
		EarlyStoppingEnabled:          p.EarlyStoppingEnabled.then(q.EarlyStoppingEnabled),
		LossFunction:                  p.LossFunction.then(q.LossFunction),
		LossFunctionParameter:         p.LossFunctionParameter.then(q.LossFunctionParameter),
		NumTopClasses:                 p.NumTopClasses.then(q.NumTopClasses),
		ClassAssignmentObjective:      p.ClassAssignmentObjective.then(q.ClassAssignmentObjective),

		ModelMemoryLimit: p.ModelMemoryLimit.then(q.ModelMemoryLimit),
		MaxNumThreads:    p.MaxNumThreads.then(q.MaxNumThreads),
		AllowLazyStart:   p.AllowLazyStart.then(q.AllowLazyStart),

		CreateDataView:  p.CreateDataView.then(q.CreateDataView),
		TimeFieldName:   p.TimeFieldName.then(q.TimeFieldName),
		MemoryEstimated: p.MemoryEstimated.then(q.MemoryEstimated),
	}
}
