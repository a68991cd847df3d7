package services

import "travel-predict-system/models"

// Distribution is the outcome of settling one match: the pot collected from
// losing and missing members and the payout per correct predictor.
type Distribution struct {
	TotalPot  float64 `json:"total_pot"`
	PerWinner float64 `json:"per_winner"`
}

// ComputeDistribution computes the points transfer for a settled match.
// Missed members forfeit the entry stake exactly like incorrect predictors.
// With zero winners the pot is collected but paid to no one.
func ComputeDistribution(winnerCount, loserCount, missedCount int, entryPoints float64) Distribution {
	losersTotal := loserCount + missedCount
	totalPot := float64(losersTotal) * entryPoints
	if winnerCount == 0 {
		return Distribution{TotalPot: totalPot, PerWinner: 0}
	}
	return Distribution{TotalPot: totalPot, PerWinner: totalPot / float64(winnerCount)}
}

// SettlementGroups partitions a series' membership against the declared
// winning team: every member lands in exactly one of the three groups.
type SettlementGroups struct {
	Winners []string // predicted the winning team
	Losers  []string // predicted the other team
	Missed  []string // members with no prediction for this match
}

// PartitionMembers splits memberIDs into winners, losers and missed given the
// match's predictions and the winning team key. A member who predicted is
// never counted as missed; users who predicted but are no longer members are
// ignored entirely.
func PartitionMembers(memberIDs []string, preds []models.Prediction, winningTeam string) SettlementGroups {
	picked := make(map[string]string, len(preds))
	for _, p := range preds {
		picked[p.UserID] = p.PickedTeam
	}

	var g SettlementGroups
	for _, uid := range memberIDs {
		team, ok := picked[uid]
		switch {
		case !ok:
			g.Missed = append(g.Missed, uid)
		case team == winningTeam:
			g.Winners = append(g.Winners, uid)
		default:
			g.Losers = append(g.Losers, uid)
		}
	}
	return g
}
