package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mlfoundry/modeltrack/pkg/artifacts"
	"github.com/mlfoundry/modeltrack/pkg/model"
	"github.com/mlfoundry/modeltrack/pkg/tracking"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := artifacts.NewFSRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tracker := tracking.New(store.NewMemoryStore(), repo)
	srv := New(tracker, log.New(io.Discard))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeRun(t *testing.T, resp *http.Response) store.Run {
	t.Helper()
	defer resp.Body.Close()
	var run store.Run
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	return run
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_RunLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/runs", map[string]string{"name": "api-test"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	run := decodeRun(t, resp)
	if run.ID == "" || run.Status != store.StatusRunning {
		t.Fatalf("unexpected run: %+v", run)
	}

	resp, err := http.Get(ts.URL + "/api/runs/" + run.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := decodeRun(t, resp)
	if got.Name != "api-test" {
		t.Errorf("Name = %q", got.Name)
	}

	resp = postJSON(t, ts.URL+"/api/runs/"+run.ID+"/finish", map[string]string{"status": "FINISHED"})
	finished := decodeRun(t, resp)
	if finished.Status != store.StatusFinished {
		t.Errorf("Status = %s, want FINISHED", finished.Status)
	}

	resp, err = http.Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var runs []store.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
}

func TestServer_GetRunNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs/f47ac10b-58cc-4372-a567-0e02b2c3d479")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "RUN_NOT_FOUND" {
		t.Errorf("error code = %q", body.Code)
	}
}

func TestServer_LogModelAndDownload(t *testing.T) {
	ts := newTestServer(t)

	run := decodeRun(t, postJSON(t, ts.URL+"/api/runs", map[string]string{"name": "log-test"}))

	req := logModelRequest{
		Flavor:            model.Flavor{Name: "xgboost", Version: "2.0.3"},
		Payload:           base64.StdEncoding.EncodeToString([]byte("payload")),
		ExtraRequirements: []string{"scikit-learn==1.4.2"},
	}
	resp := postJSON(t, ts.URL+"/api/runs/"+run.ID+"/models/default", req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status = %d, want 201", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/api/runs/" + run.ID + "/artifacts/default/requirements.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", resp2.StatusCode)
	}

	data, err := io.ReadAll(resp2.Body)
	if err != nil {
		t.Fatal(err)
	}
	manifest := string(data)
	if !strings.Contains(manifest, "xgboost==2.0.3") || !strings.Contains(manifest, "scikit-learn==1.4.2") {
		t.Errorf("manifest = %q", manifest)
	}
}

func TestServer_DownloadMissingArtifact(t *testing.T) {
	ts := newTestServer(t)
	run := decodeRun(t, postJSON(t, ts.URL+"/api/runs", map[string]string{"name": "x"}))

	resp, err := http.Get(ts.URL + "/api/runs/" + run.ID + "/artifacts/default/requirements.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
