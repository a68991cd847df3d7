package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travel-predict-system/models"
)

func TestComputeDistribution(t *testing.T) {
	tests := []struct {
		name       string
		winners    int
		losers     int
		missed     int
		entry      float64
		wantPot    float64
		wantPerWin float64
	}{
		{"two winners one loser", 2, 1, 0, 50, 50, 25},
		{"no predictions at all", 0, 0, 3, 50, 150, 0},
		{"single winner takes full pot", 1, 2, 1, 50, 150, 150},
		{"everyone predicted the winner", 3, 0, 0, 50, 0, 0},
		{"fractional per-winner split", 3, 2, 0, 50, 100, 100.0 / 3.0},
		{"zero entry stake", 2, 2, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDistribution(tt.winners, tt.losers, tt.missed, tt.entry)
			assert.Equal(t, tt.wantPot, d.TotalPot)
			assert.InDelta(t, tt.wantPerWin, d.PerWinner, 1e-9)
		})
	}
}

// The transfer is zero-sum within losers to winners: total payout equals
// the total forfeited whenever at least one winner exists.
func TestComputeDistribution_ZeroSum(t *testing.T) {
	cases := []struct{ winners, losers, missed int }{
		{1, 0, 0}, {1, 1, 0}, {2, 1, 3}, {7, 4, 2}, {3, 0, 5},
	}
	for _, c := range cases {
		d := ComputeDistribution(c.winners, c.losers, c.missed, 50)
		payout := d.PerWinner * float64(c.winners)
		forfeited := float64(c.losers+c.missed) * 50
		assert.InDelta(t, forfeited, payout, 1e-9)
	}
}

func TestPartitionMembers(t *testing.T) {
	preds := []models.Prediction{
		{UserID: "u1", PickedTeam: models.TeamA},
		{UserID: "u2", PickedTeam: models.TeamA},
		{UserID: "u3", PickedTeam: models.TeamB},
	}
	members := []string{"u1", "u2", "u3", "u4"}

	g := PartitionMembers(members, preds, models.TeamA)

	assert.ElementsMatch(t, []string{"u1", "u2"}, g.Winners)
	assert.ElementsMatch(t, []string{"u3"}, g.Losers)
	assert.ElementsMatch(t, []string{"u4"}, g.Missed)
}

func TestPartitionMembers_NonMemberPredictionIgnored(t *testing.T) {
	preds := []models.Prediction{
		{UserID: "u1", PickedTeam: models.TeamB},
		{UserID: "ghost", PickedTeam: models.TeamA}, // removed from series after predicting
	}
	g := PartitionMembers([]string{"u1", "u2"}, preds, models.TeamA)

	assert.Empty(t, g.Winners)
	assert.ElementsMatch(t, []string{"u1"}, g.Losers)
	assert.ElementsMatch(t, []string{"u2"}, g.Missed)
}

func TestPartitionMembers_NoMembers(t *testing.T) {
	g := PartitionMembers(nil, nil, models.TeamA)
	assert.Empty(t, g.Winners)
	assert.Empty(t, g.Losers)
	assert.Empty(t, g.Missed)
}
