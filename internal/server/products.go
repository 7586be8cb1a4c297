package server

import (
	"bytes"
	"net/http"
	"strings"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/models"
	"unipath-planner/internal/render/screen"
)

func productPath(p models.Product) string {
	return "/products/" + strings.ToLower(string(p.Key))
}

// productLinks lists the catalog in recommendation order for page headers.
func (s *Server) productLinks() []screen.ProductLink {
	links := make([]screen.ProductLink, 0, len(models.Recommendations))
	for _, rec := range models.Recommendations {
		p, err := s.catalog.Lookup(rec)
		if err != nil {
			continue
		}
		links = append(links, screen.ProductLink{Href: productPath(p), Label: p.Short + "计划"})
	}
	return links
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Find(r.PathValue("key"))
	if err != nil {
		s.writePageError(w, err)
		return
	}
	var buf bytes.Buffer
	err = s.screen.Product(&buf, screen.ProductPage{
		Product:  product,
		Contact:  s.catalog.Contact,
		Brochure: productPath(product) + "/brochure.pptx",
		Products: s.productLinks(),
	})
	if err != nil {
		s.logger.Error("render product", map[string]interface{}{"product": product.Key, "error": err})
		http.Error(w, apperrors.MsgInternal, http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}
