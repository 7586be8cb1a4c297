package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/models"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/report"
	"unipath-planner/internal/store"
)

const maxBodyBytes = 64 << 10

type errorBody struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.renderForm(w, http.StatusOK, screen.FormData{Profile: models.Profile{Grade: models.GradeJunior}})
}

// handleFormSubmit renders the report on success and the filled form with the
// user message otherwise.
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, screen.FormData{Error: apperrors.MsgInvalidProfile})
		return
	}
	profile := models.ProfileFromForm(r.PostForm)

	rec, err := s.planner.Submit(r.Context(), profile)
	if err != nil {
		s.renderForm(w, apperrors.HTTPStatus(apperrors.CodeOf(err)), screen.FormData{
			Profile: profile,
			Error:   apperrors.UserMessage(err),
		})
		return
	}
	s.renderReport(w, rec)
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	rec, err := s.planner.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	s.renderReport(w, rec)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeAPIError(w, apperrors.NewInvalidProfileError([]string{"body"}))
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		s.writeAPIError(w, apperrors.NewInvalidProfileError([]string{"body"}))
		return
	}
	if err := models.ValidateRaw(raw); err != nil {
		s.writeAPIError(w, err)
		return
	}

	var profile models.Profile
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&profile); err != nil {
		s.writeAPIError(w, apperrors.NewInvalidProfileError([]string{"body"}))
		return
	}

	rec, err := s.planner.Submit(r.Context(), profile)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	w.Header().Set("Location", "/api/plans/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.planner.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) document(rec store.Record) report.Document {
	return report.Build(rec.Profile, rec.Plan, s.catalog)
}

func (s *Server) renderReport(w http.ResponseWriter, rec store.Record) {
	var buf bytes.Buffer
	err := s.screen.Report(&buf, s.document(rec), screen.Links{
		PDF:      "/plans/" + rec.ID + "/report.pdf",
		PPTX:     "/plans/" + rec.ID + "/report.pptx",
		NewPlan:  "/",
		Products: s.productLinks(),
	})
	if err != nil {
		s.logger.Error("render report", map[string]interface{}{"planId": rec.ID, "error": err})
		http.Error(w, apperrors.MsgInternal, http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) renderForm(w http.ResponseWriter, status int, data screen.FormData) {
	data.Products = s.productLinks()
	var buf bytes.Buffer
	if err := s.screen.Form(&buf, data); err != nil {
		s.logger.Error("render form", map[string]interface{}{"error": err})
		http.Error(w, apperrors.MsgInternal, http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	if stdErr.Code == apperrors.ErrCodeInternal {
		s.logger.Error("request failed", map[string]interface{}{"error": err})
	}
	writeJSON(w, apperrors.HTTPStatus(stdErr.Code), errorBody{Code: stdErr.Code, Message: stdErr.Message})
}

// writePageError answers browser routes with the plain user message.
func (s *Server) writePageError(w http.ResponseWriter, err error) {
	stdErr := apperrors.AsStandardError(err)
	http.Error(w, stdErr.Message, apperrors.HTTPStatus(stdErr.Code))
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
