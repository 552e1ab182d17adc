package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/model"
	"github.com/mlfoundry/modeltrack/pkg/tracking"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

// createRunRequest is the body for POST /api/runs.
type createRunRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidRunID, err, "decode request body"))
		return
	}

	run, err := s.tracker.StartRun(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.tracker.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.tracker.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// finishRunRequest is the body for POST /api/runs/{runID}/finish.
type finishRunRequest struct {
	Status store.RunStatus `json:"status"`
}

func (s *Server) handleFinishRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	req := finishRunRequest{Status: store.StatusFinished}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidRunID, err, "decode request body"))
			return
		}
	}

	if err := s.tracker.EndRun(r.Context(), runID, req.Status); err != nil {
		s.writeError(w, err)
		return
	}

	run, err := s.tracker.GetRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// logModelRequest is the body for POST /api/runs/{runID}/models/<artifact_path>.
// Payload carries the serialized model, base64-encoded.
type logModelRequest struct {
	Flavor            model.Flavor     `json:"flavor"`
	Payload           string           `json:"payload"`
	Signature         *model.Signature `json:"signature,omitempty"`
	Requirements      []string         `json:"requirements,omitempty"`
	RequirementsFile  string           `json:"requirements_file,omitempty"`
	ExtraRequirements []string         `json:"extra_requirements,omitempty"`
}

func (s *Server) handleLogModel(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	artifactPath := chi.URLParam(r, "*")

	var req logModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidArtifactPath, err, "decode request body"))
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidArtifactPath, err, "decode model payload"))
		return
	}

	m := model.New(req.Flavor, payload)
	m.Signature = req.Signature

	var opts []tracking.LogModelOption
	if req.Requirements != nil {
		opts = append(opts, tracking.WithRequirements(req.Requirements...))
	}
	if req.RequirementsFile != "" {
		opts = append(opts, tracking.WithRequirementsFile(req.RequirementsFile))
	}
	if len(req.ExtraRequirements) > 0 {
		opts = append(opts, tracking.WithExtraRequirements(req.ExtraRequirements...))
	}

	if err := s.tracker.LogModel(r.Context(), runID, m, artifactPath, opts...); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"run_id":        runID,
		"artifact_path": artifactPath,
	})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	path := chi.URLParam(r, "*")

	local, err := s.tracker.DownloadArtifact(r.Context(), runID, path)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := os.Open(local)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "open artifact %s", path))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStore, err, "stat artifact %s", path))
		return
	}
	http.ServeContent(w, r, path, info.ModTime(), f)
}
