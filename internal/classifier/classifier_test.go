package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyScamDeliveryText(t *testing.T) {
	text := "URGENT! Your AusPost parcel is held. Verify at https://auspost-track.buzz/xyzzy within 24 hours."

	res := Classify(text)

	assert.Equal(t, LevelScam, res.RiskLevel)
	assert.GreaterOrEqual(t, res.ScorePercent(), 60)
	assert.Contains(t, res.Indicators, "Delivery Scam")
	assert.Contains(t, res.Indicators, "Urgency Pressure")
	assert.Contains(t, res.Indicators, "suspicious_domain")
	assert.Contains(t, res.Patterns, "contains_url")
	assert.Contains(t, res.Patterns, "suspicious_domain")
}

func TestClassifySafeText(t *testing.T) {
	res := Classify("Lunch at 1pm tomorrow?")

	assert.Equal(t, LevelSafe, res.RiskLevel)
	assert.Zero(t, res.ScorePercent())
	assert.Empty(t, res.Patterns)
	assert.Empty(t, res.Indicators)
}

func TestClassifyIsPure(t *testing.T) {
	text := "Your account suspended! Verify your account at http://secure-login.example.tk now!!"
	first := Classify(text)
	second := Classify(text)
	assert.Equal(t, first, second)
}

func TestClassifyBuckets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single mid-weight keyword is suspicious",
			text: "We noticed a wire transfer on your statement yesterday.",
			want: LevelSuspicious,
		},
		{
			name: "top-weight keywords plus url is scam",
			text: "Unusual activity detected. Please verify your account here: https://example.com/check",
			want: LevelScam,
		},
		{
			name: "plain conversation is safe",
			text: "See you at the meeting on Thursday, agenda attached.",
			want: LevelSafe,
		},
		{
			name: "money and phone pressure",
			text: "Call 555-123-4567 and pay $500 immediately, act now or lose access.",
			want: LevelScam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.text)
			assert.Equal(t, tt.want, res.RiskLevel, "score=%d indicators=%v", res.ScorePercent(), res.Indicators)
		})
	}
}

func TestCategoryWeightsPerDistinctKeyword(t *testing.T) {
	// Two distinct delivery keywords: the 25 weight is counted twice.
	res := Classify("A parcel with tracking number 1Z999 arrived.")
	assert.Equal(t, 50, res.ScorePercent())
	assert.Equal(t, []string{"Delivery Scam"}, res.Indicators)
}

func TestLowEntropyIndicator(t *testing.T) {
	res := Classify("aaaa aaaa aaaa aaaa aaaa")
	assert.Contains(t, res.Indicators, "low text entropy")
	assert.Less(t, res.Entropy, 3.0)
}

func TestGrammarHeuristic(t *testing.T) {
	// Misspelling + punctuation runs + lowercase sentence start = 4 issues.
	res := Classify("please recieve this!!! are you there??")
	assert.Equal(t, 4, res.GrammarIssues)
	assert.Contains(t, res.Indicators, "4 grammar issues detected")
}

func TestPatternScores(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		patterns []string
	}{
		{"url only", "see https://example.com/page", []string{"contains_url"}},
		{"long url", "go to https://example.com/" + stringOfLen(100), []string{"contains_url", "long_url"}},
		{"deep subdomains", "http://a.b.c.d.example.com/x", []string{"contains_url", "many_subdomains"}},
		{"phone number", "call 555-867-5309 today", []string{"phone_number"}},
		{"money amount", "only $49.99 once", []string{"money_amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.text)
			assert.Equal(t, tt.patterns, res.Patterns)
		})
	}
}

func TestPrimaryThreatPicksHeaviestCategory(t *testing.T) {
	res := Classify("urgent: confirm your identity for your parcel")
	// urgent_action_scam (30) outweighs delivery (25) and urgency (12).
	assert.Equal(t, "Urgent Action Required", res.PrimaryThreat())

	assert.Equal(t, "none", Classify("hello there").PrimaryThreat())
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestAnalyzeLinksExtractsFromText(t *testing.T) {
	analysis := AnalyzeLinks("check http://bit.ly/x and https://github.com/owner/repo", nil)
	require.Len(t, analysis.Results, 2)
	assert.Equal(t, "bit.ly", analysis.Results[0].Host)
	assert.Contains(t, analysis.Results[0].RiskFactors, "known URL shortener")
	assert.Contains(t, analysis.Results[1].RiskFactors, "reputable domain")
	assert.Zero(t, analysis.Results[1].RiskScore)
}

func TestAnalyzeLinksBuckets(t *testing.T) {
	tests := []struct {
		name string
		urls []string
		want string
	}{
		{"empty input", nil, LinkRiskLow},
		{"reputable", []string{"https://google.com/maps"}, LinkRiskLow},
		{"shortener", []string{"https://bit.ly/abc"}, LinkRiskLowMedium},
		{"suspicious tld with login path", []string{"http://secure-check.buzz/login"}, LinkRiskMedium},
		{"everything wrong", []string{"http://xn--pypal.a.b.c.d.win-verify.buzz/account/login?redirect=http://evil"}, LinkRiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := AnalyzeLinks("", tt.urls)
			assert.Equal(t, tt.want, analysis.OverallRisk, "avg=%f", analysis.AverageScore)
		})
	}
}

func TestAnalyzeLinksUnparseable(t *testing.T) {
	analysis := AnalyzeLinks("", []string{"http://%zz"})
	require.Len(t, analysis.Results, 1)
	assert.False(t, analysis.Results[0].Parsed)
	assert.Equal(t, 40, analysis.Results[0].RiskScore)
}

func TestStripHTML(t *testing.T) {
	src := `<html><head><style>p{color:red}</style></head>
<body><p>Your parcel is <b>held</b>.</p><script>alert(1)</script></body></html>`
	assert.Equal(t, "Your parcel is held .", StripHTML(src))
}

func TestFirstImageURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.png",
		FirstImageURL(`<div><img alt="x" src="https://cdn.example.com/a.png"/></div>`))
	assert.Empty(t, FirstImageURL("<p>no images</p>"))
}
