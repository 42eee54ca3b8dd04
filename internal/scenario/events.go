package scenario

import "github.com/talgya/statehouse/internal/politics"

// defaultEvents is the built-in event catalog: a weighted pool of random
// shocks plus condition- and calendar-triggered events.
func defaultEvents() []EventConfig {
	return []EventConfig{
		{
			Key:         "hurricane",
			Description: "Major hurricane hits the Gulf Coast",
			Trigger:     TriggerRandom,
			Weight:      1.0,
			Cooldown:    6,
			Effect: politics.EffectVector{
				Growth:       -0.003,
				Unemployment: 0.2,
				Inflation:    0.1,
				BudgetCost:   40,
				Opinion: map[politics.Issue]float64{
					politics.IssueEnvironment: -0.08,
					politics.IssueEconomy:     -0.04,
				},
			},
		},
		{
			Key:         "tech_boom",
			Description: "Tech productivity boom",
			Trigger:     TriggerRandom,
			Weight:      0.6,
			Cooldown:    12,
			Effect: politics.EffectVector{
				Growth:       0.004,
				Unemployment: -0.15,
				Opinion: map[politics.Issue]float64{
					politics.IssueEconomy: 0.06,
				},
			},
		},
		{
			Key:         "scandal",
			Description: "Political scandal engulfs the administration",
			Trigger:     TriggerRandom,
			Weight:      0.8,
			Cooldown:    9,
			Effect: politics.EffectVector{
				PartyBenefit: politics.Republican,
				Opinion: map[politics.Issue]float64{
					politics.IssueSecurity: -0.05,
				},
			},
		},
		{
			Key:         "bipartisan",
			Description: "Bipartisan breakthrough on a stalled bill",
			Trigger:     TriggerRandom,
			Weight:      0.5,
			Cooldown:    12,
			Effect: politics.EffectVector{
				Opinion: map[politics.Issue]float64{
					politics.IssueEconomy:   0.03,
					politics.IssueEducation: 0.03,
				},
			},
		},
		{
			// Fires when the deficit crosses a trillion-dollar threshold.
			Key:         "debt_downgrade",
			Description: "Ratings agency downgrades federal debt",
			Trigger:     TriggerDeficit,
			Threshold:   1000,
			Cooldown:    24,
			Effect: politics.EffectVector{
				Growth:    -0.002,
				Inflation: 0.2,
				Opinion: map[politics.Issue]float64{
					politics.IssueEconomy: -0.07,
				},
			},
		},
		{
			// Fires when national economic opinion collapses.
			Key:         "consumer_panic",
			Description: "Consumer confidence collapses",
			Trigger:     TriggerOpinion,
			Issue:       politics.IssueEconomy,
			Threshold:   -0.5,
			Cooldown:    12,
			Effect: politics.EffectVector{
				Growth:       -0.004,
				Unemployment: 0.3,
			},
		},
		{
			// Decennial census shakes turnout models every April of years
			// divisible by ten.
			Key:         "census",
			Description: "Decennial census begins",
			Trigger:     TriggerScheduled,
			Month:       4,
			YearMod:     10,
			OneShot:     false,
			Cooldown:    12,
			Effect: politics.EffectVector{
				Opinion: map[politics.Issue]float64{
					politics.IssueEducation: 0.02,
				},
			},
		},
	}
}
