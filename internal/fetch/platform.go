package fetch

import (
	"net/url"
	"strings"
)

// Platform is a hosted applicant tracking system that publishes job postings.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRules struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformRules{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id-wrapper", "#usa_self_id_section"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description"},
		noise:   []string{".posting-apply", ".apply-section", ".lever-application-form"},
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		noise:   []string{"[data-automation-id='applyButton']", "[data-automation-id='similarJobs']"},
	},
	PlatformAshby: {
		hosts:   []string{"ashbyhq.com"},
		content: []string{"[class*='descriptionText']"},
		noise:   []string{"[class*='applicationForm']"},
	},
}

// commonNoise removes application forms, EEO notices and consent banners found on most boards.
var commonNoise = []string{
	"form",
	".application-form",
	"[data-testid='application-form']",
	".eeo-statement",
	".voluntary-disclosure",
	".social-share",
	".cookie-banner",
	".cookie-consent",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, rules := range platforms {
		for _, h := range rules.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the selectors tried, in order, to find a posting's body.
// Generic job page selectors always follow the platform's own.
func ContentSelectors(platform Platform) []string {
	rules := platforms[platform]
	selectors := make([]string, 0, len(rules.content)+len(JobPostingSelectors()))
	selectors = append(selectors, rules.content...)
	return append(selectors, JobPostingSelectors()...)
}

// NoiseSelectors returns the selectors removed before extracting text.
func NoiseSelectors(platform Platform) []string {
	selectors := make([]string, 0, len(commonNoise)+len(platforms[platform].noise))
	selectors = append(selectors, commonNoise...)
	return append(selectors, platforms[platform].noise...)
}
