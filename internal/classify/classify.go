package classify

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/apply-engine/internal/types"
)

// Fallback values for postings that match no catalog entry.
const (
	UnknownTier        = types.TierHigh
	UnknownSuccessRate = 0.20
)

// Classifier matches postings against a provider catalog
type Classifier struct {
	catalog *Catalog
}

// New returns a classifier over the given catalog. A nil catalog uses the
// embedded default.
func New(catalog *Catalog) *Classifier {
	if catalog == nil {
		catalog = MustDefaultCatalog()
	}
	return &Classifier{catalog: catalog}
}

// Catalog returns the catalog the classifier matches against.
func (c *Classifier) Catalog() *Catalog {
	return c.catalog
}

// Classify fingerprints a posting using the embedded catalog.
func Classify(p types.Posting) types.Classification {
	return New(nil).Classify(p)
}

// Classify fingerprints a posting. Host matches are tried across the whole
// catalog before URL patterns, and content is only consulted when neither
// resolves a provider.
func (c *Classifier) Classify(p types.Posting) types.Classification {
	if provider := c.matchURL(p.URL); provider != nil {
		return classificationFor(provider)
	}

	if p.Content != "" {
		for i := range c.catalog.providers {
			if c.catalog.providers[i].matchesContent(p.Content) {
				return classificationFor(&c.catalog.providers[i])
			}
		}
	}

	return types.Classification{
		Provider:    types.ProviderUnknown,
		Tier:        UnknownTier,
		SuccessRate: UnknownSuccessRate,
		Strategy:    UnknownTier.Strategy(),
	}
}

// matchURL returns the first provider whose host or URL pattern matches.
// Unparsable URLs match nothing.
func (c *Classifier) matchURL(rawURL string) *Provider {
	if strings.TrimSpace(rawURL) == "" {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	if host := strings.ToLower(parsed.Host); host != "" {
		for i := range c.catalog.providers {
			if c.catalog.providers[i].matchesHost(host) {
				return &c.catalog.providers[i]
			}
		}
	}

	lowerURL := strings.ToLower(rawURL)
	for i := range c.catalog.providers {
		if c.catalog.providers[i].matchesURL(lowerURL) {
			return &c.catalog.providers[i]
		}
	}
	return nil
}

func classificationFor(p *Provider) types.Classification {
	return types.Classification{
		Provider:    p.Name,
		Tier:        p.Tier,
		SuccessRate: p.SuccessRate,
		Strategy:    p.Tier.Strategy(),
	}
}

// ClassifyAll attaches a classification to every posting in place.
func (c *Classifier) ClassifyAll(postings []types.Posting) {
	for i := range postings {
		cl := c.Classify(postings[i])
		postings[i].Classification = &cl
	}
}

// TierStat summarizes the catalog entries of one tier
type TierStat struct {
	Tier               types.Tier `json:"tier"`
	Providers          int        `json:"provider_count"`
	AverageSuccessRate float64    `json:"avg_success_rate"`
}

// TierStats reports provider counts and mean success rate per tier, ordered by tier.
func (c *Classifier) TierStats() []TierStat {
	sums := make(map[types.Tier]float64)
	counts := make(map[types.Tier]int)
	for _, p := range c.catalog.providers {
		sums[p.Tier] += p.SuccessRate
		counts[p.Tier]++
	}

	stats := make([]TierStat, 0, len(counts))
	for tier, n := range counts {
		stats = append(stats, TierStat{
			Tier:               tier,
			Providers:          n,
			AverageSuccessRate: sums[tier] / float64(n),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Tier < stats[j].Tier })
	return stats
}

// Distribution is a histogram of classified postings
type Distribution struct {
	ByProvider map[string]int     `json:"by_ats"`
	ByTier     map[types.Tier]int `json:"by_tier"`
}

// Distribute counts postings per provider and per tier. Unclassified postings
// count as unknown in tier 3.
func Distribute(postings []types.Posting) Distribution {
	d := Distribution{
		ByProvider: make(map[string]int),
		ByTier:     make(map[types.Tier]int),
	}
	for i := range postings {
		d.ByProvider[postings[i].Provider()]++
		d.ByTier[postings[i].Tier()]++
	}
	return d
}

// TopProviders returns provider counts sorted by count descending, then name.
func (d Distribution) TopProviders() []types.ProviderCount {
	out := make([]types.ProviderCount, 0, len(d.ByProvider))
	for name, n := range d.ByProvider {
		out = append(out, types.ProviderCount{Provider: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}
