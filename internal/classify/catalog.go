// Package classify fingerprints job postings by the applicant tracking system
// behind them and assigns a friction tier.
package classify

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/jonathan/apply-engine/internal/schemas"
	"github.com/jonathan/apply-engine/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed catalog.schema.json
var catalogSchema string

// Provider is an immutable catalog entry describing one ATS
type Provider struct {
	Name        string
	Tier        types.Tier
	SuccessRate float64
	Domains     []string

	urlPatterns     []*regexp.Regexp
	contentPatterns []*regexp.Regexp
}

// matchesHost reports whether host contains any of the provider's domains.
func (p *Provider) matchesHost(host string) bool {
	for _, d := range p.Domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

func (p *Provider) matchesURL(lowerURL string) bool {
	return anyMatch(p.urlPatterns, lowerURL)
}

func (p *Provider) matchesContent(content string) bool {
	return anyMatch(p.contentPatterns, content)
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Catalog is the ordered provider list. Order decides ties.
type Catalog struct {
	providers []Provider
}

// Providers returns a copy of the catalog entries in declared order.
func (c *Catalog) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// Lookup returns the provider with the given name.
func (c *Catalog) Lookup(name string) (Provider, bool) {
	for _, p := range c.providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// catalogFile mirrors the on-disk YAML layout
type catalogFile struct {
	Providers []struct {
		Name            string   `yaml:"name"`
		Tier            int      `yaml:"tier"`
		SuccessRate     float64  `yaml:"success_rate"`
		Domains         []string `yaml:"domains"`
		URLPatterns     []string `yaml:"url_patterns"`
		ContentPatterns []string `yaml:"content_patterns"`
	} `yaml:"providers"`
}

// ParseCatalog validates YAML catalog data against the catalog schema and
// compiles it into a Catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CatalogError{Message: "failed to parse catalog YAML", Cause: err}
	}
	if err := validateCatalog(doc); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &CatalogError{Message: "failed to decode catalog", Cause: err}
	}

	seen := make(map[string]bool, len(file.Providers))
	providers := make([]Provider, 0, len(file.Providers))
	for _, entry := range file.Providers {
		if entry.Name == types.ProviderUnknown {
			return nil, &CatalogError{Provider: entry.Name, Message: "provider name is reserved"}
		}
		if seen[entry.Name] {
			return nil, &CatalogError{Provider: entry.Name, Message: "duplicate provider"}
		}
		seen[entry.Name] = true

		p := Provider{
			Name:        entry.Name,
			Tier:        types.Tier(entry.Tier),
			SuccessRate: entry.SuccessRate,
		}
		for _, d := range entry.Domains {
			p.Domains = append(p.Domains, strings.ToLower(d))
		}
		for _, pat := range entry.URLPatterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, &CatalogError{Provider: entry.Name, Message: fmt.Sprintf("invalid url pattern %q", pat), Cause: err}
			}
			p.urlPatterns = append(p.urlPatterns, re)
		}
		for _, pat := range entry.ContentPatterns {
			re, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				return nil, &CatalogError{Provider: entry.Name, Message: fmt.Sprintf("invalid content pattern %q", pat), Cause: err}
			}
			p.contentPatterns = append(p.contentPatterns, re)
		}
		providers = append(providers, p)
	}

	return &Catalog{providers: providers}, nil
}

// LoadCatalog reads and parses a catalog YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Message: fmt.Sprintf("failed to read catalog %s", path), Cause: err}
	}
	return ParseCatalog(data)
}

func validateCatalog(doc interface{}) error {
	if err := schemas.ValidateDocument(catalogSchema, doc); err != nil {
		return &CatalogError{Message: "catalog does not match schema", Cause: err}
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog, parsed once per process.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = ParseCatalog(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefaultCatalog returns the embedded catalog and panics if it is invalid.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded ATS catalog is invalid: %v", err))
	}
	return c
}
