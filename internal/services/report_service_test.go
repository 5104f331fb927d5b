package services

import (
	"testing"

	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	"github.com/aydinemrecan/scamradar-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestReports(t *testing.T, db *gorm.DB) *ReportService {
	t.Helper()
	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewReportService(db, testConfig(), newTestCache(t), NewReputationService(db), nil, local)
}

func TestCreateAndGetReport(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	user := createUser(t, db, "reporter@example.com")

	resp, err := svc.Create(user.ID, &dto.CreateReportRequest{
		ThreatType:  "phishing",
		Description: "Text claiming to be my bank",
		Urgency:     "high",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, resp.Status)
	assert.Equal(t, "high", resp.Urgency)
	assert.Equal(t, "Test User", resp.Reporter.DisplayName)
	assert.Equal(t, TierHelper, resp.Reporter.Tier)

	// Pending reports are hidden from other users but visible to the owner.
	other := createUser(t, db, "other@example.com")
	_, err = svc.Get(other.ID, false, resp.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	got, err := svc.Get(user.ID, false, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
}

func TestListVisibilityAndSort(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	viewer := createUser(t, db, "viewer@example.com")

	approved := createReport(t, db, owner.ID)
	pending := createReport(t, db, owner.ID)
	require.NoError(t, db.Model(pending).Update("status", models.ReportPending).Error)
	require.NoError(t, db.Model(approved).Updates(map[string]interface{}{"upvotes": 5}).Error)

	list, err := svc.List(viewer.ID, false, &dto.ListReportsQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, approved.ID, list.Reports[0].ID)

	// include_own surfaces the caller's pending report too.
	own, err := svc.List(owner.ID, false, &dto.ListReportsQuery{IncludeOwn: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)

	// include_all only works for moderators.
	all, err := svc.List(viewer.ID, false, &dto.ListReportsQuery{IncludeAll: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), all.Total)

	mod, err := svc.List(viewer.ID, true, &dto.ListReportsQuery{IncludeAll: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mod.Total)

	top, err := svc.List(viewer.ID, false, &dto.ListReportsQuery{Sort: "top"})
	require.NoError(t, err)
	assert.Equal(t, approved.ID, top.Reports[0].ID)
}

func TestListStatusFilter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	viewer := createUser(t, db, "viewer@example.com")

	approved := createReport(t, db, owner.ID)
	verified := createReport(t, db, owner.ID)
	require.NoError(t, db.Model(verified).Updates(map[string]interface{}{
		"status": models.ReportVerified, "verified": true,
	}).Error)
	ownPending := createReport(t, db, owner.ID)
	require.NoError(t, db.Model(ownPending).Update("status", models.ReportPending).Error)
	otherPending := createReport(t, db, viewer.ID)
	require.NoError(t, db.Model(otherPending).Update("status", models.ReportPending).Error)

	// Anyone can narrow to a public status.
	got, err := svc.List(viewer.ID, false, &dto.ListReportsQuery{Status: models.ReportVerified})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Total)
	assert.Equal(t, verified.ID, got.Reports[0].ID)

	got, err = svc.List(viewer.ID, false, &dto.ListReportsQuery{Status: models.ReportApproved})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Total)
	assert.Equal(t, approved.ID, got.Reports[0].ID)

	// Pending narrows to the caller's own reports for non-moderators.
	got, err = svc.List(owner.ID, false, &dto.ListReportsQuery{Status: models.ReportPending})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Total)
	assert.Equal(t, ownPending.ID, got.Reports[0].ID)

	// Moderators see all pending reports.
	got, err = svc.List(owner.ID, true, &dto.ListReportsQuery{Status: models.ReportPending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Total)
}

func TestVoteFlipKeepsCountersConsistent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	voter := createUser(t, db, "voter@example.com")
	report := createReport(t, db, owner.ID)

	up, err := svc.Vote(voter.ID, report.ID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, up.Upvotes)
	assert.Equal(t, 0, up.Downvotes)
	assert.Equal(t, models.VoteUp, up.MyVote)

	// Flip to down: both counters move, still one vote row.
	down, err := svc.Vote(voter.ID, report.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, down.Upvotes)
	assert.Equal(t, 1, down.Downvotes)
	assert.Equal(t, models.VoteDown, down.MyVote)

	var votes int64
	require.NoError(t, db.Model(&models.ReportVote{}).Where("report_id = ?", report.ID).Count(&votes).Error)
	assert.Equal(t, int64(1), votes)

	// The persisted row and counters agree with the response.
	var stored models.ReportVote
	require.NoError(t, db.Where("report_id = ? AND user_id = ?", report.ID, voter.ID).First(&stored).Error)
	assert.Equal(t, models.VoteDown, stored.Direction)

	var persisted models.Report
	require.NoError(t, db.First(&persisted, report.ID).Error)
	assert.Equal(t, 0, persisted.Upvotes)
	assert.Equal(t, 1, persisted.Downvotes)

	// Same direction again undoes the vote.
	undone, err := svc.Vote(voter.ID, report.ID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, undone.Upvotes)
	assert.Equal(t, 0, undone.Downvotes)
	assert.Empty(t, undone.MyVote)

	require.NoError(t, db.Model(&models.ReportVote{}).Where("report_id = ?", report.ID).Count(&votes).Error)
	assert.Zero(t, votes)
}

func TestVerifyAwardsPointsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	reputation := NewReputationService(db)
	owner := createUser(t, db, "owner@example.com")
	report := createReport(t, db, owner.ID)

	require.NoError(t, db.Create(&models.ReportMedia{
		ReportID: report.ID, URL: "https://cdn.example.com/shot.png", MediaType: "image",
	}).Error)

	verified, err := svc.SetStatus(report.ID, models.ReportVerified)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	points, err := reputation.Points(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, points) // 10 verified + 5 evidence bonus

	// Re-verifying is idempotent.
	_, err = svc.SetStatus(report.ID, models.ReportVerified)
	require.NoError(t, err)
	points, err = reputation.Points(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, points)
}

func TestVerifyWithoutEvidence(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	reputation := NewReputationService(db)
	owner := createUser(t, db, "owner@example.com")
	report := createReport(t, db, owner.ID)

	_, err := svc.SetStatus(report.ID, models.ReportVerified)
	require.NoError(t, err)

	points, err := reputation.Points(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, points)
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	voter := createUser(t, db, "voter@example.com")
	report := createReport(t, db, owner.ID)

	_, err := svc.Vote(voter.ID, report.ID, models.VoteUp)
	require.NoError(t, err)
	_, err = svc.CreateComment(voter.ID, report.ID, "seen this one too")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.ReportMedia{
		ReportID: report.ID, URL: storage.LocalURLPrefix + "shot.png", MediaType: "image",
	}).Error)
	_, err = svc.SetStatus(report.ID, models.ReportVerified)
	require.NoError(t, err)

	// A non-owner without admin rights may not delete.
	require.ErrorIs(t, svc.Delete(voter, report.ID), ErrNotAllowed)

	require.NoError(t, svc.Delete(owner, report.ID))

	for name, model := range map[string]interface{}{
		"votes":     &models.ReportVote{},
		"comments":  &models.ReportComment{},
		"media":     &models.ReportMedia{},
		"point log": &models.PointLogEntry{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Where("report_id = ?", report.ID).Count(&n).Error)
		assert.Zero(t, n, name)
	}

	var reports int64
	require.NoError(t, db.Model(&models.Report{}).Count(&reports).Error)
	assert.Zero(t, reports)
}

func TestUploadMediaExtensionAllowlist(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	report := createReport(t, db, owner.ID)

	_, err := svc.UploadMedia(owner, report.ID, "evidence.exe", []byte("MZ"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	media, err := svc.UploadMedia(owner, report.ID, "evidence.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Contains(t, media.URL, storage.LocalURLPrefix)
	assert.Equal(t, "image", media.MediaType)
}

func TestDeleteMediaAdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	report := createReport(t, db, owner.ID)

	media, err := svc.UploadMedia(owner, report.ID, "evidence.png", []byte("png-bytes"))
	require.NoError(t, err)

	// Attaching media is open to the owner, removing it is not.
	require.ErrorIs(t, svc.DeleteMedia(owner, report.ID, media.ID), ErrNotAllowed)

	admin := createUser(t, db, "admin@example.com")
	require.NoError(t, db.Model(admin).Update("role", models.RoleAdmin).Error)
	admin.Role = models.RoleAdmin

	require.NoError(t, svc.DeleteMedia(admin, report.ID, media.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.ReportMedia{}).Where("report_id = ?", report.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestMediaLimitPerReport(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	report := createReport(t, db, owner.ID)

	for i := 0; i < maxMediaPerReport; i++ {
		_, err := svc.AddMediaURL(owner, report.ID, &dto.AddMediaRequest{
			MediaURL: "https://cdn.example.com/a.png", MediaType: "image",
		})
		require.NoError(t, err)
	}

	_, err := svc.AddMediaURL(owner, report.ID, &dto.AddMediaRequest{
		MediaURL: "https://cdn.example.com/b.png", MediaType: "image",
	})
	assert.ErrorIs(t, err, ErrMediaLimit)
}

func TestCommentsPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	owner := createUser(t, db, "owner@example.com")
	commenter := createUser(t, db, "commenter@example.com")
	report := createReport(t, db, owner.ID)

	comment, err := svc.CreateComment(commenter.ID, report.ID, "be careful with this one")
	require.NoError(t, err)
	assert.Equal(t, "Test User", comment.Author.DisplayName)

	comments, total, err := svc.ListComments(report.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, comments, 1)

	// The report owner is not the comment author and not an admin.
	require.ErrorIs(t, svc.DeleteComment(owner, comment.ID), ErrNotAllowed)
	require.NoError(t, svc.DeleteComment(commenter, comment.ID))

	_, total, err = svc.ListComments(report.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReportRateLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReports(t, db)
	user := createUser(t, db, "spammer@example.com")

	for i := 0; i < 5; i++ {
		_, err := svc.Create(user.ID, &dto.CreateReportRequest{
			ThreatType: "phishing", Description: "another one",
		})
		require.NoError(t, err)
	}

	_, err := svc.Create(user.ID, &dto.CreateReportRequest{
		ThreatType: "phishing", Description: "one too many",
	})
	assert.ErrorIs(t, err, ErrRateLimited)
}
