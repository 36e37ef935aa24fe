package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
)

// formFlags mirrors the wizard form. Only flags the user actually set end
// up in the patch, so values loaded from --file or --clone are kept.
type formFlags struct {
	jobID       string
	description string
	jobType     string

	source          []string
	query           string
	runtimeMappings string

	dest         string
	resultsField string
	includes     []string

	outlierMethod             string
	nNeighbors                int
	outlierFraction           float64
	featureInfluenceThreshold float64
	computeFeatureInfluence   bool
	standardization           bool

	dependentVariable        string
	trainingPercent          float64
	predictionFieldName      string
	numTopFeatureImportance  int
	randomizeSeed            int64
	lambda                   float64
	gamma                    float64
	eta                      float64
	maxTrees                 int
	featureBagFraction       float64
	earlyStopping            bool
	lossFunction             string
	lossFunctionParameter    float64
	numTopClasses            int
	classAssignmentObjective string

	modelMemoryLimit string
	maxNumThreads    int
	allowLazyStart   bool

	createDataView bool
	timeField      string
}

func (f *formFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.jobID, "job-id", "", "Job ID")
	fs.StringVar(&f.description, "description", "", "Job description")
	fs.StringVarP(&f.jobType, "type", "t", "", "Job type: outlier_detection, regression or classification")

	fs.StringSliceVarP(&f.source, "source", "s", nil, "Source index patterns (repeatable or comma-separated)")
	fs.StringVar(&f.query, "query", "", "Source query as JSON, e.g. '{\"match_all\":{}}'")
	fs.StringVar(&f.runtimeMappings, "runtime-mappings", "", "Runtime mappings as JSON")

	fs.StringVarP(&f.dest, "dest", "d", "", "Destination index")
	fs.StringVar(&f.resultsField, "results-field", "", "Results field (default ml)")
	fs.StringSliceVar(&f.includes, "includes", nil, "Fields to analyze (default all supported)")

	fs.StringVar(&f.outlierMethod, "method", "", "Outlier detection method: lof, ldof, distance_kth_nn, distance_knn")
	fs.IntVar(&f.nNeighbors, "n-neighbors", 0, "Number of neighbors for outlier detection")
	fs.Float64Var(&f.outlierFraction, "outlier-fraction", 0, "Proportion of outliers assumed in the data set")
	fs.Float64Var(&f.featureInfluenceThreshold, "feature-influence-threshold", 0, "Minimum outlier score for feature influence")
	fs.BoolVar(&f.computeFeatureInfluence, "compute-feature-influence", true, "Compute feature influence")
	fs.BoolVar(&f.standardization, "standardization", true, "Standardize columns before scoring")

	fs.StringVar(&f.dependentVariable, "dependent-variable", "", "Field to predict (regression, classification)")
	fs.Float64Var(&f.trainingPercent, "training-percent", analytics.DefaultTrainingPercent, "Percentage of documents used for training")
	fs.StringVar(&f.predictionFieldName, "prediction-field", "", "Name of the prediction field")
	fs.IntVar(&f.numTopFeatureImportance, "num-top-feature-importance", 0, "Feature importance values per document")
	fs.Int64Var(&f.randomizeSeed, "randomize-seed", 0, "Seed for selecting training documents")
	fs.Float64Var(&f.lambda, "lambda", 0, "Regularization lambda")
	fs.Float64Var(&f.gamma, "gamma", 0, "Regularization gamma")
	fs.Float64Var(&f.eta, "eta", 0, "Shrinkage (0.001-1)")
	fs.IntVar(&f.maxTrees, "max-trees", 0, "Maximum number of trees (1-2000)")
	fs.Float64Var(&f.featureBagFraction, "feature-bag-fraction", 0, "Fraction of features per tree")
	fs.BoolVar(&f.earlyStopping, "early-stopping", true, "Stop training early when no improvement is found")
	fs.StringVar(&f.lossFunction, "loss-function", "", "Regression loss function: mse, msle, huber")
	fs.Float64Var(&f.lossFunctionParameter, "loss-function-parameter", 0, "Loss function parameter")
	fs.IntVar(&f.numTopClasses, "num-top-classes", 0, "Number of top classes reported (-1 for all)")
	fs.StringVar(&f.classAssignmentObjective, "class-assignment-objective", "", "maximize_accuracy or maximize_minimum_recall")

	fs.StringVar(&f.modelMemoryLimit, "model-memory-limit", "", "Model memory limit, e.g. 100mb")
	fs.IntVar(&f.maxNumThreads, "max-num-threads", 0, "Maximum number of threads")
	fs.BoolVar(&f.allowLazyStart, "allow-lazy-start", false, "Allow the job to start when ML capacity is not yet available")

	fs.BoolVar(&f.createDataView, "create-data-view", true, "Create a data view for the destination index")
	fs.StringVar(&f.timeField, "time-field", "", "Time field of the data view created for the destination index")
}

// rawFlags are the form flags still honoured in advanced mode.
var rawFlags = map[string]bool{"job-id": true, "create-data-view": true, "time-field": true}

// ignoredInAdvanced lists the changed form flags, other than rawFlags, in
// the order pflag visits them.
func ignoredInAdvanced(fs *pflag.FlagSet) []string {
	var form formFlags
	known := pflag.NewFlagSet("form", pflag.ContinueOnError)
	form.bind(known)

	var out []string
	fs.Visit(func(fl *pflag.Flag) {
		if known.Lookup(fl.Name) != nil && !rawFlags[fl.Name] {
			out = append(out, "--"+fl.Name)
		}
	})
	return out
}

// patch returns the changed flags as a form patch.
func (f *formFlags) patch(fs *pflag.FlagSet) (analytics.FormPatch, error) {
	var p analytics.FormPatch
	changed := fs.Changed

	if changed("job-id") {
		p.JobID = analytics.Set(strings.TrimSpace(f.jobID))
	}
	if changed("description") {
		p.Description = analytics.Set(f.description)
	}
	if changed("type") {
		t := analytics.JobType(strings.ToLower(strings.TrimSpace(f.jobType)))
		if !t.Valid() {
			return p, fmt.Errorf("%w: %q", analytics.ErrUnknownJobType, f.jobType)
		}
		p.JobType = analytics.Set(t)
	}

	if changed("source") {
		p.SourceIndex = analytics.Set(trimAll(f.source))
	}
	if changed("query") {
		m, err := jsonObject("--query", f.query)
		if err != nil {
			return p, err
		}
		p.SourceQuery = analytics.Set(m)
	}
	if changed("runtime-mappings") {
		m, err := jsonObject("--runtime-mappings", f.runtimeMappings)
		if err != nil {
			return p, err
		}
		p.RuntimeMappings = analytics.Set(m)
	}

	if changed("dest") {
		p.DestinationIndex = analytics.Set(strings.TrimSpace(f.dest))
	}
	if changed("results-field") {
		p.ResultsField = analytics.Set(f.resultsField)
	}
	if changed("includes") {
		p.Includes = analytics.Set(trimAll(f.includes))
	}

	if changed("method") {
		p.OutlierMethod = analytics.Set(f.outlierMethod)
	}
	if changed("n-neighbors") {
		p.NNeighbors = analytics.Set(analytics.Int(f.nNeighbors))
	}
	if changed("outlier-fraction") {
		p.OutlierFraction = analytics.Set(analytics.Float64(f.outlierFraction))
	}
	if changed("feature-influence-threshold") {
		p.FeatureInfluenceThreshold = analytics.Set(analytics.Float64(f.featureInfluenceThreshold))
	}
	if changed("compute-feature-influence") {
		p.ComputeFeatureInfluence = analytics.Set(analytics.Bool(f.computeFeatureInfluence))
	}
	if changed("standardization") {
		p.StandardizationEnabled = analytics.Set(analytics.Bool(f.standardization))
	}

	if changed("dependent-variable") {
		p.DependentVariable = analytics.Set(f.dependentVariable)
	}
	if changed("training-percent") {
		p.TrainingPercent = analytics.Set(analytics.Float64(f.trainingPercent))
	}
	if changed("prediction-field") {
		p.PredictionFieldName = analytics.Set(f.predictionFieldName)
	}
	if changed("num-top-feature-importance") {
		p.NumTopFeatureImportanceValues = analytics.Set(analytics.Int(f.numTopFeatureImportance))
	}
	if changed("randomize-seed") {
		p.RandomizeSeed = analytics.Set(analytics.Int64(f.randomizeSeed))
	}
	if changed("lambda") {
		p.Lambda = analytics.Set(analytics.Float64(f.lambda))
	}
	if changed("gamma") {
		p.Gamma = analytics.Set(analytics.Float64(f.gamma))
	}
	if changed("eta") {
		p.Eta = analytics.Set(analytics.Float64(f.eta))
	}
	if changed("max-trees") {
		p.MaxTrees = analytics.Set(analytics.Int(f.maxTrees))
	}
	if changed("feature-bag-fraction") {
		p.FeatureBagFraction = analytics.Set(analytics.Float64(f.featureBagFraction))
	}
	if changed("early-stopping") {
		p.EarlyStoppingEnabled = analytics.Set(analytics.Bool(f.earlyStopping))
	}
	if changed("loss-function") {
		p.LossFunction = analytics.Set(f.lossFunction)
	}
	if changed("loss-function-parameter") {
		p.LossFunctionParameter = analytics.Set(analytics.Float64(f.lossFunctionParameter))
	}
	if changed("num-top-classes") {
		p.NumTopClasses = analytics.Set(analytics.Int(f.numTopClasses))
	}
	if changed("class-assignment-objective") {
		p.ClassAssignmentObjective = analytics.Set(f.classAssignmentObjective)
	}

	if changed("model-memory-limit") {
		p.ModelMemoryLimit = analytics.Set(strings.TrimSpace(f.modelMemoryLimit))
	}
	if changed("max-num-threads") {
		p.MaxNumThreads = analytics.Set(analytics.Int(f.maxNumThreads))
	}
	if changed("allow-lazy-start") {
		p.AllowLazyStart = analytics.Set(analytics.Bool(f.allowLazyStart))
	}

	if changed("create-data-view") {
		p.CreateDataView = analytics.Set(f.createDataView)
	}
	if changed("time-field") {
		p.TimeFieldName = analytics.Set(f.timeField)
	}
	return p, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func jsonObject(flag, raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%s must be a JSON object: %w", flag, err)
	}
	return m, nil
}
