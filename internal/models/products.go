// internal/models/products.go
package models

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "unipath-planner/internal/common/errors"
)

//go:embed products.yaml
var productsYAML []byte

// Product is one promotional offering a plan can route to.
type Product struct {
	Key         Recommendation `yaml:"-" json:"key"`
	Code        string         `yaml:"code" json:"code"`
	Short       string         `yaml:"short" json:"short"`
	Name        string         `yaml:"name" json:"name"`
	Tagline     string         `yaml:"tagline" json:"tagline"`
	Description string         `yaml:"description" json:"description"`
	Color       string         `yaml:"color" json:"color"`
	Features    []string       `yaml:"features" json:"features"`
	Brochure    []string       `yaml:"brochure" json:"brochure"`
}

// Catalog holds both products and the shared consultation line.
type Catalog struct {
	Contact  string                     `yaml:"contact"`
	Products map[Recommendation]Product `yaml:"products"`
}

// DefaultCatalog parses the embedded catalog. It panics if the embedded file
// is broken, which can only happen at build time.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(productsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded product catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, rec := range Recommendations {
		p, ok := c.Products[rec]
		if !ok {
			return nil, fmt.Errorf("catalog missing product %q", rec)
		}
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Tagline) == "" {
			return nil, fmt.Errorf("product %q needs a name and a tagline", rec)
		}
		p.Key = rec
		c.Products[rec] = p
	}
	for key := range c.Products {
		if !key.Valid() {
			return nil, fmt.Errorf("unknown product %q in catalog", key)
		}
	}
	return &c, nil
}

// Lookup returns the product a recommendation routes to.
func (c *Catalog) Lookup(rec Recommendation) (Product, error) {
	p, ok := c.Products[rec]
	if !ok {
		return Product{}, apperrors.NewProductNotFoundError(string(rec))
	}
	return p, nil
}

// Find resolves a product by recommendation value, code or short name,
// ignoring case. It is used for URL keys such as "sunrise".
func (c *Catalog) Find(key string) (Product, error) {
	key = strings.TrimSpace(key)
	for _, rec := range Recommendations {
		p := c.Products[rec]
		if strings.EqualFold(key, string(rec)) || strings.EqualFold(key, p.Code) || key == p.Short {
			return p, nil
		}
	}
	return Product{}, apperrors.NewProductNotFoundError(key)
}
