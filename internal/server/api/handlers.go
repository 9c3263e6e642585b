package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/export"
	"github.com/go-chi/chi/v5"
)

type languageRequest struct {
	Language string `json:"language"`
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

type commitResponse struct {
	Entry     models.FollowUpLog  `json:"entry"`
	Feedback  string              `json:"feedback"`
	State     services.SyncState  `json:"state"`
	SyncError string              `json:"syncError,omitempty"`
	Twin      *models.DigitalTwin `json:"digitalTwin,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type sessionResponse struct {
	ID       string               `json:"id"`
	Messages []models.ChatMessage `json:"messages"`
}

type messageRequest struct {
	Text  string        `json:"text"`
	Image *models.Image `json:"image,omitempty"`
}

type triageRequest struct {
	Symptoms string                `json:"symptoms"`
	History  []models.TriageAnswer `json:"history"`
}

type pathwayRequest struct {
	Symptoms  string            `json:"symptoms"`
	Lifestyle *models.Lifestyle `json:"lifestyle,omitempty"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type drugsRequest struct {
	Medications []string `json:"medications"`
}

type labRequest struct {
	Report string        `json:"report"`
	Image  *models.Image `json:"image,omitempty"`
}

type clinicsRequest struct {
	Specialty string  `json:"specialty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var d models.Demographics
	if err := decode(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Profiles.Register(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) editProfile(w http.ResponseWriter, r *http.Request) {
	var d models.Demographics
	if err := decode(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Profiles.Edit(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Profiles.SetLanguage(r.Context(), req.Language)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.svc.Profiles.Logs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(logs) {
			logs = logs[:n]
		}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) commitLog(w http.ResponseWriter, r *http.Request) {
	var d models.FollowUpDraft
	if err := decode(r, &d); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Coordinator.CommitLog(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := commitResponse{Entry: res.Entry, Feedback: res.Feedback, State: res.State, Twin: res.Twin}
	if res.SyncErr != nil {
		resp.SyncError = res.SyncErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getTwin(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Registered(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.DigitalTwin == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "digital twin has not been built yet"})
		return
	}
	writeJSON(w, http.StatusOK, p.DigitalTwin)
}

func (s *Server) rebuildTwin(w http.ResponseWriter, r *http.Request) {
	twin, err := s.svc.Twins.Rebuild(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, twin)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Simulate(r.Context(), req.Scenario)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Registered(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: p.HealthSummary})
}

func (s *Server) refreshSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Twins.Summarize(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: sum})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profiles.Registered(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := services.NewSession(p, s.now())
	s.sessions.add(sess)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Messages: sess.Messages()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Messages: sess.Messages()})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req messageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.svc.Orchestrator.Chat(r.Context(), sess, req.Text, req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) triage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	step, err := s.svc.Advisor.TriageStep(r.Context(), req.Symptoms, req.History)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (s *Server) pathway(w http.ResponseWriter, r *http.Request) {
	var req pathwayRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Advisor.CarePathway(r.Context(), req.Symptoms, req.Lifestyle)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) prescription(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	advice, err := s.svc.Advisor.Prescription(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

func (s *Server) drugs(w http.ResponseWriter, r *http.Request) {
	var req drugsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Advisor.DrugInteractions(r.Context(), req.Medications)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) lab(w http.ResponseWriter, r *http.Request) {
	var req labRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Advisor.LabReport(r.Context(), req.Report, req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Advisor.Search(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) clinics(w http.ResponseWriter, r *http.Request) {
	var req clinicsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	at := inference.LatLng{Latitude: req.Latitude, Longitude: req.Longitude}
	res, err := s.svc.Advisor.Clinics(r.Context(), req.Specialty, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// attachment renders into memory first so a failure still yields a JSON error.
func (s *Server) attachment(w http.ResponseWriter, r *http.Request, name, contentType string, render func(*bytes.Buffer, models.UserProfile, []models.FollowUpLog) error) {
	p, err := s.svc.Profiles.Registered(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logs, err := s.svc.Profiles.Logs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, p, logs); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	s.attachment(w, r, "medigenie-export.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		func(b *bytes.Buffer, p models.UserProfile, logs []models.FollowUpLog) error {
			return export.WriteWorkbook(b, p, logs)
		})
}

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	s.attachment(w, r, "medigenie-report.pdf", "application/pdf",
		func(b *bytes.Buffer, p models.UserProfile, logs []models.FollowUpLog) error {
			return export.WriteReport(b, p, logs, s.now())
		})
}
