package classifier

import (
	"net/url"
	"strings"
)

// Aggregate link-risk buckets.
const (
	LinkRiskLow       = "LOW"
	LinkRiskLowMedium = "LOW-MEDIUM"
	LinkRiskMedium    = "MEDIUM"
	LinkRiskHigh      = "HIGH"
	LinkRiskCritical  = "CRITICAL"
)

// LinkResult is the structured verdict for one URL.
type LinkResult struct {
	URL         string   `json:"url"`
	Host        string   `json:"host"`
	RiskScore   int      `json:"risk_score"`
	RiskFactors []string `json:"risk_factors"`
	Parsed      bool     `json:"parsed"`
}

// LinkAnalysis aggregates per-URL verdicts into an overall bucket.
type LinkAnalysis struct {
	Results      []LinkResult `json:"results"`
	AverageScore float64      `json:"average_score"`
	OverallRisk  string       `json:"overall_risk"`
}

var knownShorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "goo.gl": true, "t.co": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "rb.gy": true,
	"cutt.ly": true, "shorturl.at": true,
}

// reputableDomains subtract risk; a well-known host with a login path is
// usually fine.
var reputableDomains = map[string]bool{
	"google.com": true, "facebook.com": true, "microsoft.com": true,
	"apple.com": true, "amazon.com": true, "paypal.com": true,
	"netflix.com": true, "github.com": true, "auspost.com.au": true,
	"linkedin.com": true, "instagram.com": true, "twitter.com": true,
}

var suspiciousPathKeywords = []string{
	"login", "signin", "verify", "secure", "account", "update",
	"confirm", "banking", "password", "wallet",
}

var redirectParams = []string{"url", "redirect", "next", "goto", "return", "dest"}

// AnalyzeLinks inspects the given URLs, or URLs extracted from text when the
// list is empty, and returns per-URL verdicts plus an aggregate bucket.
func AnalyzeLinks(text string, urls []string) LinkAnalysis {
	if len(urls) == 0 {
		urls = ExtractURLs(text)
	}

	analysis := LinkAnalysis{
		Results:     make([]LinkResult, 0, len(urls)),
		OverallRisk: LinkRiskLow,
	}

	total := 0
	for _, raw := range urls {
		r := analyzeOne(raw)
		total += r.RiskScore
		analysis.Results = append(analysis.Results, r)
	}

	if len(analysis.Results) > 0 {
		analysis.AverageScore = float64(total) / float64(len(analysis.Results))
	}
	analysis.OverallRisk = bucketFor(analysis.AverageScore)

	return analysis
}

func analyzeOne(raw string) LinkResult {
	res := LinkResult{URL: raw, RiskFactors: []string{}}

	normalized := raw
	if !strings.Contains(normalized, "://") {
		normalized = "http://" + normalized
	}

	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Hostname() == "" {
		res.RiskScore = 40
		res.RiskFactors = append(res.RiskFactors, "unparseable URL")
		return res
	}
	res.Parsed = true
	host := strings.ToLower(parsed.Hostname())
	res.Host = host

	score := 0
	addFactor := func(points int, factor string) {
		score += points
		res.RiskFactors = append(res.RiskFactors, factor)
	}

	switch {
	case len(host) > 50:
		addFactor(20, "very long hostname")
	case len(host) > 30:
		addFactor(10, "long hostname")
	}

	if hasSuspiciousTLD(host) {
		addFactor(30, "suspicious top-level domain")
	}
	if knownShorteners[host] {
		addFactor(25, "known URL shortener")
	}

	digits := 0
	for _, r := range host {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if len(host) > 0 && float64(digits)/float64(len(host)) > 0.3 {
		addFactor(15, "digit-heavy hostname")
	}

	if strings.Contains(host, "xn--") {
		addFactor(25, "punycode hostname")
	}

	lowerPath := strings.ToLower(parsed.Path)
	for _, kw := range suspiciousPathKeywords {
		if strings.Contains(lowerPath, kw) {
			addFactor(15, "suspicious path keyword: "+kw)
			break
		}
	}

	// Subdomain depth beyond host.tld.(cc) is unusual for legitimate mail.
	if strings.Count(host, ".") > 3 {
		addFactor(15, "excessive subdomain depth")
	}

	query := parsed.Query()
	for _, p := range redirectParams {
		if query.Get(p) != "" {
			addFactor(10, "redirect-style query parameter")
			break
		}
	}

	if reputableDomains[registrableDomain(host)] {
		score -= 20
		res.RiskFactors = append(res.RiskFactors, "reputable domain")
	}
	if score < 0 {
		score = 0
	}

	res.RiskScore = score
	return res
}

// registrableDomain approximates the eTLD+1 so subdomains of reputable hosts
// still get the allowance.
func registrableDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	// Two-part public suffixes like com.au.
	last := parts[len(parts)-1]
	second := parts[len(parts)-2]
	if len(last) == 2 && (second == "com" || second == "net" || second == "org" || second == "gov" || second == "edu") {
		if len(parts) >= 3 {
			return strings.Join(parts[len(parts)-3:], ".")
		}
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

func bucketFor(avg float64) string {
	switch {
	case avg >= 70:
		return LinkRiskCritical
	case avg >= 50:
		return LinkRiskHigh
	case avg >= 35:
		return LinkRiskMedium
	case avg >= 20:
		return LinkRiskLowMedium
	default:
		return LinkRiskLow
	}
}
