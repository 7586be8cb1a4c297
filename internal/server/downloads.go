package server

import (
	"mime"
	"net/http"
	"strconv"

	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
)

const (
	pdfType  = "application/pdf"
	pptxType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	rec, err := s.planner.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	data, err := s.pdf.Export(r.Context(), s.document(rec))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	writeAttachment(w, pdfType, pdf.FileName(rec.Profile.Name), data)
}

func (s *Server) handlePPTX(w http.ResponseWriter, r *http.Request) {
	rec, err := s.planner.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	data, err := s.slides.Export(r.Context(), s.document(rec))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	writeAttachment(w, pptxType, slides.FileName(rec.Profile.Name), data)
}

func (s *Server) handleBrochure(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Find(r.PathValue("key"))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	data, err := s.slides.Brochure(r.Context(), product, s.catalog.Contact)
	if err != nil {
		s.writePageError(w, err)
		return
	}
	writeAttachment(w, pptxType, slides.BrochureFileName(product), data)
}

// writeAttachment sends data as a download. Non-ASCII names are carried in
// the RFC 5987 filename* parameter.
func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
