package fetch

// JobPostingSelectors returns selectors for job description content on
// pages from an unrecognized provider.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// providerContentSelectors holds description selectors for providers whose
// markup is known, keyed by classifier provider name.
var providerContentSelectors = map[string][]string{
	"greenhouse": {
		".job__description.body",
		".job__description",
		".job-description__content",
		"#content",
		".job-post-container",
	},
	"lever": {
		".posting-page",
		".section-wrapper.page-full-width",
		".posting-description",
		".content",
	},
	"workday": {
		"[data-automation-id='jobPostingDescription']",
		"[data-automation-id='jobDescription']",
		".job-description",
	},
	"jazzhr": {
		"#job-description",
		".job-description",
		".description",
	},
	"bamboohr": {
		".BambooRichText",
		"[class*='jobs-description']",
		".ResAts__content",
	},
	"ashby": {
		"[class*='descriptionText']",
	},
	"recruitee": {
		"[data-cy='job-description']",
		".job-description",
	},
}

// ContentSelectors returns description selectors for a provider, falling back
// to the generic job posting selectors.
func ContentSelectors(provider string) []string {
	if sels, ok := providerContentSelectors[provider]; ok {
		return append(sels, JobPostingSelectors()...)
	}
	return JobPostingSelectors()
}

// NoiseSelectors returns elements stripped before text extraction. Application
// forms are always removed so field labels do not leak into the description.
func NoiseSelectors(provider string) []string {
	common := []string{
		"form",
		"#application-form",
		".application-form",
		".application--container",
		".apply-button-container",
		"[data-testid='application-form']",
		".voluntary-disclosure",
		".eeo-statement",
		".eeo-section",
		".legal-disclosure",
		".self-identification",
		".social-share",
		".share-buttons",
		".cookie-consent",
		".gdpr-notice",
	}

	switch provider {
	case "greenhouse":
		return append(common, ".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply")
	case "lever":
		return append(common, ".apply-section", ".lever-application-form", ".posting-apply")
	case "workday":
		return append(common, "[data-automation-id='applyButton']", ".application-section")
	default:
		return common
	}
}
