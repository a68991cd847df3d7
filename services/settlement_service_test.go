package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-predict-system/models"
)

func TestDeclareWinner_OneEntryPerMember(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1", "u2", "u3")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	preds := NewPredictionService(db)
	past := time.Now().Add(-2 * time.Hour) // before the cutoff
	_, err := preds.SubmitPrediction("m1", "u1", models.TeamA, past)
	require.NoError(t, err)
	_, err = preds.SubmitPrediction("m1", "u2", models.TeamB, past)
	require.NoError(t, err)
	// u3 never predicts

	result, err := NewSettlementService(db).DeclareWinner("m1", models.TeamA)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WinnerCount)
	assert.Equal(t, 1, result.LoserCount)
	assert.Equal(t, 1, result.MissedCount)

	var entries []models.LedgerEntry
	require.NoError(t, db.Where("match_id = ?", "m1").Find(&entries).Error)
	require.Len(t, entries, 3)

	sum := 0.0
	byUser := map[string]models.LedgerEntry{}
	for _, e := range entries {
		sum += e.Points
		byUser[e.UserID] = e
	}
	assert.InDelta(t, 0, sum, 1e-9)
	assert.Equal(t, models.LedgerReasonWin, byUser["u1"].Reason)
	assert.InDelta(t, 100, byUser["u1"].Points, 1e-9)
	assert.Equal(t, models.LedgerReasonLoss, byUser["u2"].Reason)
	assert.InDelta(t, -50, byUser["u2"].Points, 1e-9)
	assert.Equal(t, models.LedgerReasonMissed, byUser["u3"].Reason)
	assert.InDelta(t, -50, byUser["u3"].Points, 1e-9)

	var match models.Match
	require.NoError(t, db.First(&match, "id = ?", "m1").Error)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.Winner)
	assert.Equal(t, models.TeamA, *match.Winner)
	assert.NotNil(t, match.DeclaredAt)
}

func TestDeclareWinner_SecondDeclarationRejected(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1", "u2")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	svc := NewSettlementService(db)
	_, err := svc.DeclareWinner("m1", models.TeamA)
	require.NoError(t, err)

	var before int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("match_id = ?", "m1").Count(&before).Error)

	_, err = svc.DeclareWinner("m1", models.TeamB)
	assert.ErrorIs(t, err, ErrAlreadyDeclared)

	var after int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("match_id = ?", "m1").Count(&after).Error)
	assert.Equal(t, before, after)

	var match models.Match
	require.NoError(t, db.First(&match, "id = ?", "m1").Error)
	require.NotNil(t, match.Winner)
	assert.Equal(t, models.TeamA, *match.Winner)
}

func TestDeclareWinner_InvalidOutcome(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	svc := NewSettlementService(db)
	_, err := svc.DeclareWinner("m1", "C")
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = svc.DeclareWinner("missing", models.TeamA)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestDeclareWashout_NoLedgerImpact(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1", "u2")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	svc := NewSettlementService(db)
	require.NoError(t, svc.DeclareWashout("m1"))

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("match_id = ?", "m1").Count(&count).Error)
	assert.Zero(t, count)

	var match models.Match
	require.NoError(t, db.First(&match, "id = ?", "m1").Error)
	assert.Equal(t, models.MatchStatusWashedOut, match.Status)
	assert.Nil(t, match.Winner)

	// Washed out is terminal too.
	_, err := svc.DeclareWinner("m1", models.TeamA)
	assert.ErrorIs(t, err, ErrAlreadyDeclared)
}

func TestResetMatch_Idempotent(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1", "u2")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	svc := NewSettlementService(db)
	_, err := svc.DeclareWinner("m1", models.TeamB)
	require.NoError(t, err)

	assertOpenWithEmptyLedger := func() {
		t.Helper()
		var count int64
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("match_id = ?", "m1").Count(&count).Error)
		assert.Zero(t, count)

		var match models.Match
		require.NoError(t, db.First(&match, "id = ?", "m1").Error)
		assert.Equal(t, models.MatchStatusScheduled, match.Status)
		assert.Nil(t, match.Winner)
		assert.Nil(t, match.DeclaredAt)
	}

	require.NoError(t, svc.ResetMatch("m1"))
	assertOpenWithEmptyLedger()

	// Second reset is a no-op, not an error.
	require.NoError(t, svc.ResetMatch("m1"))
	assertOpenWithEmptyLedger()
}

func TestResetThenRedeclare(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1", "u1", "u2")
	seedMatch(t, db, "m1", "s1", time.Now().Add(-time.Hour))

	svc := NewSettlementService(db)
	_, err := svc.DeclareWinner("m1", models.TeamA)
	require.NoError(t, err)
	require.NoError(t, svc.ResetMatch("m1"))

	// A fresh declaration after reset settles cleanly with one entry per member.
	_, err = svc.DeclareWinner("m1", models.TeamB)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Where("match_id = ?", "m1").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var match models.Match
	require.NoError(t, db.First(&match, "id = ?", "m1").Error)
	require.NotNil(t, match.Winner)
	assert.Equal(t, models.TeamB, *match.Winner)
}
