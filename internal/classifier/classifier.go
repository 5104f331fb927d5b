// Package classifier implements the deterministic, rule-weighted scam text
// classifier. Classify is a pure function: no I/O, no state, equal inputs
// give equal outputs.
package classifier

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Risk levels.
const (
	LevelSafe       = "SAFE"
	LevelSuspicious = "SUSPICIOUS"
	LevelScam       = "SCAM"
)

// Result is the verdict for a single text.
type Result struct {
	RiskScore     float64  `json:"risk_score"` // normalised 0..1
	RiskLevel     string   `json:"risk_level"`
	Indicators    []string `json:"indicators"`
	Patterns      []string `json:"patterns"`
	Entropy       float64  `json:"entropy"`
	GrammarIssues int      `json:"grammar_issues"`
}

// Category is a weighted keyword group.
type Category struct {
	Name     string
	Label    string
	Weight   int
	Keywords []string
}

// Categories and weights are authoritative; scoring sums a category's weight
// once per distinct keyword hit.
var Categories = []Category{
	{
		Name: "financial_fraud", Label: "Financial Fraud", Weight: 15,
		Keywords: []string{
			"bank account", "wire transfer", "bitcoin", "cryptocurrency",
			"lottery", "inheritance", "investment opportunity", "tax refund",
			"unclaimed funds", "processing fee",
		},
	},
	{
		Name: "urgency_pressure", Label: "Urgency Pressure", Weight: 12,
		Keywords: []string{
			"urgent", "immediately", "act now", "within 24 hours",
			"expires today", "final notice", "last chance", "limited time",
			"before it's too late",
		},
	},
	{
		Name: "authority_impersonation", Label: "Authority Impersonation", Weight: 18,
		Keywords: []string{
			"irs", "ato", "centrelink", "medicare", "government agency",
			"police department", "court order", "legal action", "arrest warrant",
			"law enforcement",
		},
	},
	{
		Name: "tech_support_scam", Label: "Tech Support Scam", Weight: 16,
		Keywords: []string{
			"microsoft support", "apple support", "virus detected",
			"your computer has been", "remote access", "security alert",
			"call our technicians", "license expired",
		},
	},
	{
		Name: "romance_scam", Label: "Romance Scam", Weight: 14,
		Keywords: []string{
			"my love", "my darling", "soulmate", "send money", "western union",
			"gift card", "stranded overseas", "hospital bills",
		},
	},
	{
		Name: "delivery_scam", Label: "Delivery Scam", Weight: 25,
		Keywords: []string{
			"parcel", "package held", "delivery attempt", "auspost", "dhl",
			"fedex", "tracking number", "redelivery fee", "customs fee",
			"shipment pending",
		},
	},
	{
		Name: "urgent_action_scam", Label: "Urgent Action Required", Weight: 30,
		Keywords: []string{
			"verify your account", "account suspended", "confirm your identity",
			"click here immediately", "update your payment", "unusual activity",
			"unauthorized login", "reactivate your account",
		},
	},
}

// misspellings is a small curated set feeding the grammar heuristic.
var misspellings = []string{
	"recieve", "acount", "verfy", "securty", "informations",
	"kindly do the needful", "dear costumer", "beloved customer", "pls respond",
}

var (
	urlPattern      = regexp.MustCompile(`(?i)https?://[^\s<>"]+|www\.[^\s<>"]+`)
	punctRunPattern = regexp.MustCompile(`!{2,}|\?{2,}`)
	phonePattern    = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}|\+\d{10,13}`)
	moneyPattern    = regexp.MustCompile(`(?i)[$€£]\s?\d[\d,]*(\.\d+)?|\b\d[\d,]*(\.\d+)?\s?(usd|aud|eur|gbp|dollars|pounds|euros)\b`)
	sentenceSplit   = regexp.MustCompile(`[.!?]\s+`)
)

const (
	entropyThreshold = 3.0
	grammarThreshold = 2
	scamThreshold    = 60
	suspiciousFloor  = 10
)

// suspiciousTLDs carry a heavy pattern weight.
var suspiciousTLDs = []string{
	".buzz", ".tk", ".ml", ".ga", ".cf", ".pw", ".top", ".click",
	".download", ".work", ".party", ".trade", ".date", ".racing", ".review",
}

// Classify scores a text and buckets it into SAFE, SUSPICIOUS or SCAM.
func Classify(text string) Result {
	lower := strings.ToLower(text)

	res := Result{
		RiskLevel:  LevelSafe,
		Indicators: []string{},
		Patterns:   []string{},
	}

	total := 0

	// 1. Weighted keyword categories.
	for _, cat := range Categories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > 0 {
			total += cat.Weight * hits
			res.Indicators = append(res.Indicators, cat.Label)
		}
	}

	// 2. Shannon entropy of the lower-cased character distribution.
	res.Entropy = shannonEntropy(lower)
	if res.Entropy < entropyThreshold {
		total += 10
		res.Indicators = append(res.Indicators, "low text entropy")
	}

	// 3. Grammar heuristic.
	res.GrammarIssues = countGrammarIssues(text, lower)
	if res.GrammarIssues > grammarThreshold {
		total += 15
		res.Indicators = append(res.Indicators, fmt.Sprintf("%d grammar issues detected", res.GrammarIssues))
	}

	// 4. Structural patterns.
	total += extractPatterns(text, &res)

	// 5. Bucket.
	switch {
	case total >= scamThreshold:
		res.RiskLevel = LevelScam
	case total >= suspiciousFloor:
		res.RiskLevel = LevelSuspicious
	}
	res.RiskScore = math.Min(float64(total)/100.0, 1.0)

	return res
}

// ScorePercent converts a normalised score to the 0-100 integer persisted on
// Scan rows.
func (r Result) ScorePercent() int {
	return int(math.Round(r.RiskScore * 100))
}

// PrimaryThreat returns the highest-weight matched category label, or a
// generic tag when only structural patterns fired.
func (r Result) PrimaryThreat() string {
	best := ""
	bestWeight := 0
	for _, cat := range Categories {
		for _, ind := range r.Indicators {
			if ind == cat.Label && cat.Weight > bestWeight {
				best = cat.Label
				bestWeight = cat.Weight
			}
		}
	}
	if best != "" {
		return best
	}
	if r.RiskLevel == LevelSafe {
		return "none"
	}
	return "suspicious content"
}

func extractPatterns(text string, res *Result) int {
	score := 0
	urls := urlPattern.FindAllString(text, -1)

	if len(urls) > 0 {
		score += 25
		res.Patterns = append(res.Patterns, "contains_url")
	}

	suspiciousTLD := false
	longURL := false
	manyDots := false
	for _, raw := range urls {
		host := hostOf(raw)
		if !suspiciousTLD && hasSuspiciousTLD(host) {
			suspiciousTLD = true
		}
		if !longURL && len(raw) > 100 {
			longURL = true
		}
		if !manyDots && strings.Count(host, ".") > 3 {
			manyDots = true
		}
	}
	if suspiciousTLD {
		score += 35
		res.Patterns = append(res.Patterns, "suspicious_domain")
		res.Indicators = append(res.Indicators, "suspicious_domain")
	}
	if longURL {
		score += 20
		res.Patterns = append(res.Patterns, "long_url")
	}
	if manyDots {
		score += 25
		res.Patterns = append(res.Patterns, "many_subdomains")
	}

	if phonePattern.MatchString(text) {
		score += 15
		res.Patterns = append(res.Patterns, "phone_number")
	}
	if moneyPattern.MatchString(text) {
		score += 25
		res.Patterns = append(res.Patterns, "money_amount")
	}

	return score
}

func hasSuspiciousTLD(host string) bool {
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	s := strings.ToLower(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return s
}

func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func countGrammarIssues(text, lower string) int {
	issues := 0
	for _, word := range misspellings {
		issues += strings.Count(lower, word)
	}
	issues += len(punctRunPattern.FindAllString(text, -1))

	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		first := sentenceSplit.Split(trimmed, 2)[0]
		r := []rune(first)[0]
		if r >= 'a' && r <= 'z' {
			issues++
		}
	}
	return issues
}

// ExtractURLs returns all URLs found in free text.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}
