package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mlops-tools/dfa-wizard/internal/config"
)

// fakeKibana serves the endpoints the CLI uses and records writes.
type fakeKibana struct {
	mu sync.Mutex

	createStatus int
	createBody   string
	startAck     bool

	creates []recordedRequest
	starts  []string
}

type recordedRequest struct {
	ID    string
	Query string
	Body  map[string]any
}

const existingJob = `{
  "id": "existing-job",
  "description": "flight delays",
  "source": {"index": ["flights"], "query": {"match_all": {}}},
  "dest": {"index": "existing-dest", "results_field": "ml"},
  "analysis": {"regression": {"dependent_variable": "delay", "training_percent": 50}},
  "model_memory_limit": "20mb",
  "create_time": 1700000000000,
  "version": "8.12.0"
}`

func newFakeKibana(t *testing.T) (*fakeKibana, *httptest.Server) {
	t.Helper()
	fk := &fakeKibana{createStatus: http.StatusOK, startAck: true}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":{"overall":{"level":"available"}}}`)
	})
	mux.HandleFunc("GET /api/saved_objects/_find", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"page":1,"per_page":1000,"total":1,"saved_objects":[{"id":"dv-1","attributes":{"title":"taken-dest"}}]}`)
	})
	mux.HandleFunc("GET /internal/ml/data_frame/analytics", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count":1,"data_frame_analytics":[`+existingJob+`]}`)
	})
	mux.HandleFunc("GET /internal/ml/data_frame/analytics/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "existing-job" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"statusCode":404,"error":"Not Found","message":"No known job"}`)
			return
		}
		io.WriteString(w, `{"count":1,"data_frame_analytics":[`+existingJob+`]}`)
	})
	mux.HandleFunc("PUT /internal/ml/data_frame/analytics/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fk.mu.Lock()
		fk.creates = append(fk.creates, recordedRequest{ID: r.PathValue("id"), Query: r.URL.RawQuery, Body: body})
		status, respBody := fk.createStatus, fk.createBody
		fk.mu.Unlock()

		w.WriteHeader(status)
		if respBody == "" {
			respBody = `{"dataFrameAnalyticsJobsCreated":[{"id":"` + r.PathValue("id") + `"}],"dataFrameAnalyticsJobsErrors":[],"dataViewsCreated":[],"dataViewsErrors":[]}`
		}
		io.WriteString(w, respBody)
	})
	mux.HandleFunc("POST /internal/ml/data_frame/analytics/{id}/_start", func(w http.ResponseWriter, r *http.Request) {
		fk.mu.Lock()
		fk.starts = append(fk.starts, r.PathValue("id"))
		ack := fk.startAck
		fk.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"acknowledged": ack, "node": "node-1"})
	})
	mux.HandleFunc("POST /internal/ml/data_frame/analytics/_explain", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"field_selection":[{"name":"bytes","mapping_types":["long"],"is_included":true,"is_required":false,"feature_type":"numerical"}],
			"memory_estimation":{"expected_memory_without_disk":"12mb","expected_memory_with_disk":"6mb"}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fk, srv
}

func (fk *fakeKibana) recorded() ([]recordedRequest, []string) {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return append([]recordedRequest(nil), fk.creates...), append([]string(nil), fk.starts...)
}

// runCLI executes the root command against srv and returns stdout, stderr
// and the command error.
func runCLI(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	for _, env := range []string{"DFA_KIBANA_URL", "DFA_API_KEY", "DFA_SPACE", "DFA_PROXY_MODE", "DFA_CREATE_DATA_VIEW"} {
		t.Setenv(env, "")
	}

	full := []string{
		"--config", filepath.Join(dir, "config"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--api-key", "test-key-1234",
	}
	if srv != nil {
		full = append(full, "--kibana-url", srv.URL)
	}
	full = append(full, args...)

	root := NewRootCmd()
	AddCommands(root)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(full)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCreate_OutlierDetection(t *testing.T) {
	fk, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}

	creates, starts := fk.recorded()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create request, got %d", len(creates))
	}
	got := creates[0]
	if got.ID != "new-job" {
		t.Errorf("created ID = %q, want new-job", got.ID)
	}
	if got.Query != "createDataView=true" {
		t.Errorf("query = %q, want createDataView=true", got.Query)
	}
	if _, ok := got.Body["id"]; ok {
		t.Error("request body should not carry the job id")
	}
	if mml := got.Body["model_memory_limit"]; mml != "12mb" {
		t.Errorf("model_memory_limit = %v, want estimated 12mb", mml)
	}
	if dest := got.Body["dest"].(map[string]any)["index"]; dest != "new-dest" {
		t.Errorf("dest.index = %v, want new-dest", dest)
	}
	if len(starts) != 0 {
		t.Errorf("job should not be started without --start, got %v", starts)
	}

	if !strings.Contains(out, "Request to create data frame analytics new-job acknowledged.") {
		t.Errorf("missing acknowledgement in output:\n%s", out)
	}
	if !strings.Contains(out, "dfa-wizard start new-job") {
		t.Errorf("missing start hint in output:\n%s", out)
	}
}

func TestCreate_AndStart(t *testing.T) {
	fk, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest",
		"--model-memory-limit", "50mb", "--create-data-view=false", "--start")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}

	creates, starts := fk.recorded()
	if len(creates) != 1 || creates[0].Query != "createDataView=false" {
		t.Fatalf("unexpected create requests: %+v", creates)
	}
	if mml := creates[0].Body["model_memory_limit"]; mml != "50mb" {
		t.Errorf("model_memory_limit = %v, want 50mb from flag", mml)
	}
	if len(starts) != 1 || starts[0] != "new-job" {
		t.Errorf("starts = %v, want [new-job]", starts)
	}
	if !strings.Contains(out, "Request to start data frame analytics new-job acknowledged.") {
		t.Errorf("missing start acknowledgement:\n%s", out)
	}
}

func TestCreate_StartNotAcknowledged(t *testing.T) {
	fk, srv := newFakeKibana(t)
	fk.startAck = false

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest", "--start")
	if err == nil || !strings.Contains(err.Error(), "created but not started") {
		t.Fatalf("expected start failure, got %v", err)
	}
	if !strings.Contains(out, "An error occurred starting the data frame analytics job:") {
		t.Errorf("missing start error message:\n%s", out)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "existing job id",
			args: []string{"--job-id", "existing-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest"},
			want: `a job with ID "existing-job" already exists`,
		},
		{
			name: "existing data view",
			args: []string{"--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "taken-dest"},
			want: `a data view with title "taken-dest" already exists`,
		},
		{
			name: "missing dependent variable",
			args: []string{"--job-id", "new-job", "-t", "regression", "-s", "logs", "-d", "new-dest", "--estimate=false"},
			want: "dependent variable is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fk, srv := newFakeKibana(t)

			out, _, err := runCLI(t, srv, "", append([]string{"create"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if creates, _ := fk.recorded(); len(creates) != 0 {
				t.Errorf("nothing should be created, got %d requests", len(creates))
			}
		})
	}
}

func TestCreate_ExistingDataViewAllowedWithoutDataView(t *testing.T) {
	fk, srv := newFakeKibana(t)

	_, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "taken-dest", "--create-data-view=false")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if creates, _ := fk.recorded(); len(creates) != 1 {
		t.Errorf("expected 1 create, got %d", len(creates))
	}
}

func TestCreate_ServerRejects(t *testing.T) {
	fk, srv := newFakeKibana(t)
	fk.createStatus = http.StatusBadRequest
	fk.createBody = `{"statusCode":400,"error":"Bad Request","message":"[illegal_argument_exception] unknown field [foo]"}`

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest")
	if err == nil || !strings.Contains(err.Error(), "was not created") {
		t.Fatalf("expected creation failure, got %v", err)
	}
	if !strings.Contains(out, "An error occurred creating the data frame analytics job: [illegal_argument_exception] unknown field [foo]") {
		t.Errorf("missing extracted error message:\n%s", out)
	}
	if creates, _ := fk.recorded(); len(creates) != 1 {
		t.Errorf("a rejected create must not be retried, got %d requests", len(creates))
	}
}

func TestCreate_PerJobError(t *testing.T) {
	fk, srv := newFakeKibana(t)
	fk.createBody = `{"dataFrameAnalyticsJobsCreated":[],"dataFrameAnalyticsJobsErrors":[{"id":"new-job","error":{"error":{"reason":"destination index exists"}}}]}`

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(out, "destination index exists") {
		t.Errorf("missing per-job error:\n%s", out)
	}
}

func TestCreate_DryRun(t *testing.T) {
	fk, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "classification", "-s", "logs", "-d", "new-dest",
		"--dependent-variable", "label", "--num-top-classes=-1", "--estimate=false", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("dry run output is not JSON: %v\n%s", err, out)
	}
	if cfg["id"] != "new-job" {
		t.Errorf("id = %v, want new-job", cfg["id"])
	}
	classification := cfg["analysis"].(map[string]any)["classification"].(map[string]any)
	if classification["dependent_variable"] != "label" {
		t.Errorf("dependent_variable = %v, want label", classification["dependent_variable"])
	}
	if creates, _ := fk.recorded(); len(creates) != 0 {
		t.Errorf("dry run must not create, got %d requests", len(creates))
	}
}

func TestCreate_FromYAMLFile(t *testing.T) {
	fk, srv := newFakeKibana(t)

	path := filepath.Join(t.TempDir(), "job.yaml")
	yaml := `id: yaml-job
source:
  index: [flights]
dest:
  index: yaml-dest
analysis:
  regression:
    dependent_variable: delay
    training_percent: 60
model_memory_limit: 30mb
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, srv, "", "create", "-f", path, "--description", "from yaml")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}

	creates, _ := fk.recorded()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	got := creates[0]
	if got.ID != "yaml-job" {
		t.Errorf("ID = %q, want yaml-job from the file", got.ID)
	}
	if got.Body["description"] != "from yaml" {
		t.Errorf("description = %v, flag should override the file", got.Body["description"])
	}
	regression := got.Body["analysis"].(map[string]any)["regression"].(map[string]any)
	if regression["dependent_variable"] != "delay" {
		t.Errorf("dependent_variable = %v, want delay", regression["dependent_variable"])
	}
}

func TestCreate_AdvancedFileKeepsUnsupportedFields(t *testing.T) {
	fk, srv := newFakeKibana(t)

	path := filepath.Join(t.TempDir(), "job.json")
	raw := `{
  "source": {"index": ["flights"]},
  "dest": {"index": "adv-dest"},
  "analysis": {"regression": {"dependent_variable": "delay", "alpha": 0.5}}
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, srv, "", "create", "-f", path, "--job-id", "adv-job")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "analysis.regression.alpha") {
		t.Errorf("expected a notice about unsupported fields:\n%s", out)
	}

	creates, _ := fk.recorded()
	if len(creates) != 1 || creates[0].ID != "adv-job" {
		t.Fatalf("unexpected creates: %+v", creates)
	}
	regression := creates[0].Body["analysis"].(map[string]any)["regression"].(map[string]any)
	if regression["alpha"] != 0.5 {
		t.Errorf("alpha = %v, advanced fields must be submitted", regression["alpha"])
	}
}

func TestCreate_AdvancedFileIgnoresFormFlags(t *testing.T) {
	fk, srv := newFakeKibana(t)

	path := filepath.Join(t.TempDir(), "job.json")
	raw := `{
  "source": {"index": ["flights"]},
  "dest": {"index": "adv-dest"},
  "analysis": {"regression": {"dependent_variable": "delay", "alpha": 0.5}}
}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := runCLI(t, srv, "",
		"create", "-f", path, "--job-id", "adv-job", "-d", "other-dest", "--description", "ignored", "--create-data-view=false")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}
	if !strings.Contains(stderr, "flags ignored") || !strings.Contains(stderr, "--dest") || !strings.Contains(stderr, "--description") {
		t.Errorf("expected a warning naming the ignored flags:\n%s", stderr)
	}
	if strings.Contains(stderr, "--job-id") || strings.Contains(stderr, "--create-data-view") {
		t.Errorf("flags honoured in advanced mode must not be reported:\n%s", stderr)
	}

	creates, _ := fk.recorded()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if dest := creates[0].Body["dest"].(map[string]any)["index"]; dest != "adv-dest" {
		t.Errorf("dest = %v, want the file's adv-dest", dest)
	}
	if !strings.Contains(creates[0].Query, "createDataView=false") {
		t.Errorf("--create-data-view should still apply, query %q", creates[0].Query)
	}
}

func TestCreate_JobIDTaken(t *testing.T) {
	fk, srv := newFakeKibana(t)
	fk.createBody = `{"dataFrameAnalyticsJobsCreated":[],"dataFrameAnalyticsJobsErrors":[{"id":"racy-job","error":{"error":{"type":"resource_already_exists_exception","reason":"data frame analytics [racy-job] already exists"}}}]}`

	out, _, err := runCLI(t, srv, "",
		"create", "--job-id", "racy-job", "-t", "outlier_detection", "-s", "logs", "-d", "racy-dest")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(out, "choose another --job-id") {
		t.Errorf("missing job ID hint:\n%s", out)
	}

	fk.createBody = `{"dataFrameAnalyticsJobsCreated":[],"dataFrameAnalyticsJobsErrors":[{"id":"new-job","error":{"error":{"reason":"destination index exists"}}}]}`
	out, _, _ = runCLI(t, srv, "",
		"create", "--job-id", "new-job", "-t", "outlier_detection", "-s", "logs", "-d", "new-dest")
	if strings.Contains(out, "choose another --job-id") {
		t.Errorf("hint printed for an unrelated failure:\n%s", out)
	}
}

func TestCreate_Clone(t *testing.T) {
	fk, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "",
		"create", "--clone", "existing-job", "--job-id", "copy-job", "-d", "copy-dest")
	if err != nil {
		t.Fatalf("create failed: %v\n%s", err, out)
	}

	creates, _ := fk.recorded()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	body := creates[0].Body
	if body["model_memory_limit"] != "20mb" {
		t.Errorf("model_memory_limit = %v, want 20mb from the source job", body["model_memory_limit"])
	}
	for _, field := range []string{"create_time", "version", "id"} {
		if _, ok := body[field]; ok {
			t.Errorf("cloned body must not carry %s", field)
		}
	}
	if body["description"] != "flight delays" {
		t.Errorf("description = %v, want the source job's", body["description"])
	}
}

func TestCreate_CloneMissingJob(t *testing.T) {
	_, srv := newFakeKibana(t)

	_, _, err := runCLI(t, srv, "", "create", "--clone", "nope", "--job-id", "x", "-d", "y")
	if err == nil || !strings.Contains(err.Error(), "No known job") {
		t.Fatalf("expected clone failure with server message, got %v", err)
	}
	if !strings.Contains(err.Error(), "job nope not found") {
		t.Errorf("expected a not found error, got %v", err)
	}
}

func TestStart(t *testing.T) {
	fk, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "", "start", "existing-job")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, starts := fk.recorded(); len(starts) != 1 || starts[0] != "existing-job" {
		t.Errorf("starts = %v", starts)
	}
	if !strings.Contains(out, "Request to start data frame analytics existing-job acknowledged.") {
		t.Errorf("missing acknowledgement:\n%s", out)
	}

	fk.mu.Lock()
	fk.startAck = false
	fk.mu.Unlock()
	if _, _, err := runCLI(t, srv, "", "start", "existing-job"); err == nil {
		t.Error("an unacknowledged start should fail")
	}
}

func TestJobsListAndGet(t *testing.T) {
	_, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "", "jobs", "list")
	if err != nil {
		t.Fatalf("jobs list failed: %v", err)
	}
	for _, want := range []string{"existing-job", "regression", "flights", "existing-dest", "20mb"} {
		if !strings.Contains(out, want) {
			t.Errorf("jobs list output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, srv, "", "jobs", "get", "existing-job")
	if err != nil {
		t.Fatalf("jobs get failed: %v", err)
	}
	if !strings.Contains(out, `"dependent_variable": "delay"`) {
		t.Errorf("jobs get output missing config:\n%s", out)
	}
}

func TestDataViews(t *testing.T) {
	_, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "", "data-views")
	if err != nil {
		t.Fatalf("data-views failed: %v", err)
	}
	if !strings.Contains(out, "taken-dest") || !strings.Contains(out, "dv-1") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestEstimate(t *testing.T) {
	_, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "",
		"estimate", "-t", "outlier_detection", "-s", "logs", "--explain")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if !strings.Contains(out, "Estimated model memory limit: 12mb") {
		t.Errorf("missing estimate:\n%s", out)
	}
	if !strings.Contains(out, "bytes") {
		t.Errorf("missing field selection:\n%s", out)
	}
}

func TestConfigTestAndShow(t *testing.T) {
	_, srv := newFakeKibana(t)

	out, _, err := runCLI(t, srv, "", "config", "test")
	if err != nil {
		t.Fatalf("config test failed: %v", err)
	}
	if !strings.Contains(out, "Connection successful") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = runCLI(t, srv, "", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out, "test-key-1234") {
		t.Error("config show must not print the API key")
	}
	if !strings.Contains(out, "*********1234") {
		t.Errorf("expected masked API key:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	for _, env := range []string{"DFA_KIBANA_URL", "DFA_API_KEY", "DFA_SPACE", "DFA_PROXY_MODE", "DFA_CREATE_DATA_VIEW"} {
		t.Setenv(env, "")
	}

	// url, api key, space, proxy?, data view default, start after create
	input := "https://kibana.example.com:5601\nsecret-key\nanalytics\nn\nn\ny\n"

	root := NewRootCmd()
	AddCommands(root)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(input))
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out.String())
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config not readable: %v", err)
	}
	want := config.New()
	want.KibanaURL = "https://kibana.example.com:5601"
	want.APIKey = "secret-key"
	want.Space = "analytics"
	want.ProxyMode = "no-proxy"
	want.CreateDataView = false
	want.StartAfterCreate = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}

	// A second init without --force leaves the file alone.
	root = NewRootCmd()
	AddCommands(root)
	out.Reset()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected existing config notice:\n%s", out.String())
	}
}

func TestMissingConfiguration(t *testing.T) {
	_, _, err := runCLI(t, nil, "", "--kibana-url", "kibana.local", "jobs", "list")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, _, err := runCLI(t, nil, "", "completion", shell)
		if err != nil {
			t.Errorf("completion %s failed: %v", shell, err)
		}
		if !strings.Contains(out, "dfa-wizard") {
			t.Errorf("completion %s output does not mention the command", shell)
		}
	}
	if _, _, err := runCLI(t, nil, "", "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}
