package services

import (
	"testing"

	"github.com/aydinemrecan/scamradar-backend/internal/classifier"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTextPersistsScan(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanService(db, testConfig())
	user := createUser(t, db, "scanner@example.com")

	scan, result, err := svc.AnalyzeText(user.ID,
		"URGENT! Your parcel is held. Verify at https://auspost-track.buzz/x within 24 hours.")
	require.NoError(t, err)
	assert.Equal(t, classifier.LevelScam, result.RiskLevel)
	assert.Equal(t, classifier.LevelScam, scan.RiskLevel)
	assert.Equal(t, result.ScorePercent(), scan.RiskScore)
	assert.NotZero(t, scan.ID)

	// The full analysis is stored as JSON alongside the scan.
	var stored classifier.Result
	require.NoError(t, json.Unmarshal(scan.Analysis, &stored))
	assert.Equal(t, result.RiskLevel, stored.RiskLevel)
	assert.Equal(t, result.Indicators, stored.Indicators)
}

func TestInboundEmailResolvesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanService(db, testConfig())
	auth := newTestAuth(t, db, testConfig())
	user := createUser(t, db, "forwarder@example.com")

	token, err := auth.EnsureForwardToken(user.ID)
	require.NoError(t, err)

	_, _, err = svc.InboundEmail(&dto.InboundEmailRequest{
		Token: "no-such-token", Subject: "hi", Text: "hello",
	})
	assert.ErrorIs(t, err, ErrForwardTokenUnknown)

	scan, result, err := svc.InboundEmail(&dto.InboundEmailRequest{
		Token:   token,
		Subject: "Urgent: account suspended",
		HTML:    "<p>Unusual activity detected. Verify your account <a href='http://secure.buzz/x'>here</a></p>",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, scan.UserID)
	assert.Equal(t, classifier.LevelScam, result.RiskLevel)
	// HTML was stripped before classification and storage.
	assert.NotContains(t, scan.Message, "<p>")
	assert.Contains(t, scan.Message, "Urgent: account suspended")
}

func TestInboundEmailIgnoresDeactivatedUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanService(db, testConfig())
	auth := newTestAuth(t, db, testConfig())
	user := createUser(t, db, "gone@example.com")

	token, err := auth.EnsureForwardToken(user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err = svc.InboundEmail(&dto.InboundEmailRequest{Token: token, Text: "hello"})
	assert.ErrorIs(t, err, ErrForwardTokenUnknown)
}

func TestRecentScansNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanService(db, testConfig())
	user := createUser(t, db, "history@example.com")

	for _, text := range []string{"first message", "second message", "third message"} {
		_, _, err := svc.AnalyzeText(user.ID, text)
		require.NoError(t, err)
	}

	scans, err := svc.RecentScans(user.ID, 2)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "third message", scans[0].Message)
	assert.Equal(t, "second message", scans[1].Message)

	// Other users see nothing.
	other := createUser(t, db, "other@example.com")
	scans, err = svc.RecentScans(other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestStoredMessageIsTruncated(t *testing.T) {
	db := newTestDB(t)
	svc := NewScanService(db, testConfig())
	user := createUser(t, db, "long@example.com")

	long := make([]byte, maxStoredMessageLen+500)
	for i := range long {
		long[i] = 'a'
	}
	scan, _, err := svc.AnalyzeText(user.ID, string(long))
	require.NoError(t, err)
	assert.Len(t, scan.Message, maxStoredMessageLen)
}

func TestForwardingAddress(t *testing.T) {
	svc := NewScanService(nil, testConfig())
	assert.Equal(t, "forward+abc123@scan.example.test", svc.ForwardingAddress("abc123"))
}

func TestScanCountsFeedCommunityStats(t *testing.T) {
	db := newTestDB(t)
	scans := NewScanService(db, testConfig())
	reports := newTestReports(t, db)
	user := createUser(t, db, "stats@example.com")

	_, _, err := scans.AnalyzeText(user.ID,
		"URGENT! Your parcel is held. Verify at https://auspost-track.buzz/x within 24 hours.")
	require.NoError(t, err)
	_, _, err = scans.AnalyzeText(user.ID, "see you at lunch")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Threat{Name: "AusPost smishing", Category: "smishing"}).Error)

	stats, err := reports.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalScans)
	assert.Equal(t, int64(1), stats.ScamsDetected)
	assert.Equal(t, int64(1), stats.KnownThreats)
}
