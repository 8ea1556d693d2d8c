package domain

// KindPolicy holds the constants that distinguish one contract kind from another.
type KindPolicy struct {
	Kind Kind
	// Exclusive kinds allow a single active mission for the player at a time.
	Exclusive bool
	// ReputationDelta is awarded on an on-time completion.
	ReputationDelta int
	// CapabilityGated kinds carry the template's minimum ship capability.
	CapabilityGated bool
	// InterruptionChance is the per-tick probability for each risk tier.
	InterruptionChance map[RiskTier]float64
	// Interruptions are the descriptions drawn when a roll fires.
	Interruptions []string
	// Verb is used when narrating a completion.
	Verb string
}

var policies = map[Kind]KindPolicy{
	KindTrade: {
		Kind:            KindTrade,
		ReputationDelta: 1,
		CapabilityGated: true,
		InterruptionChance: map[RiskTier]float64{
			TierLow: 0.002, TierMedium: 0.006, TierHigh: 0.012, TierCritical: 0.02,
		},
		Interruptions: []string{
			"Customs inspection at the jump gate",
			"Cargo hold seal failure, rerouting for repairs",
			"Pirate scouts shadowing the convoy",
		},
		Verb: "Delivered",
	},
	KindEscort: {
		Kind:            KindEscort,
		ReputationDelta: 2,
		InterruptionChance: map[RiskTier]float64{
			TierLow: 0.003, TierMedium: 0.008, TierHigh: 0.015, TierCritical: 0.03,
		},
		Interruptions: []string{
			"Raiders probing the escort formation",
			"Client vessel engine stall, holding position",
			"Ion storm forcing a detour",
		},
		Verb: "Escorted",
	},
	KindTaxi: {
		Kind:            KindTaxi,
		ReputationDelta: 1,
		CapabilityGated: true,
		InterruptionChance: map[RiskTier]float64{
			TierLow: 0.002, TierMedium: 0.006, TierHigh: 0.012, TierCritical: 0.02,
		},
		Interruptions: []string{
			"Passenger requested an unscheduled stop",
			"Traffic control hold at the station",
			"Navigation beacon outage",
		},
		Verb: "Dropped off",
	},
	KindDiplomatic: {
		Kind:            KindDiplomatic,
		Exclusive:       true,
		ReputationDelta: 3,
		InterruptionChance: map[RiskTier]float64{
			TierLow: 0.004, TierMedium: 0.008, TierHigh: 0.015, TierCritical: 0.03,
		},
		Interruptions: []string{
			"Delegation demands a renegotiation of terms",
			"Protocol dispute delays the summit",
			"Envoy recalled for consultations",
		},
		Verb: "Concluded",
	},
	KindStrike: {
		Kind:            KindStrike,
		Exclusive:       true,
		ReputationDelta: 2,
		InterruptionChance: map[RiskTier]float64{
			TierLow: 0.005, TierMedium: 0.01, TierHigh: 0.02, TierCritical: 0.05,
		},
		Interruptions: []string{
			"Target relocated, re-acquiring",
			"Defensive picket larger than briefed",
			"Weapons systems fault during approach",
		},
		Verb: "Completed strike on",
	},
}

// PolicyFor returns the policy of a kind.
func PolicyFor(kind Kind) (KindPolicy, error) {
	p, ok := policies[kind]
	if !ok {
		return KindPolicy{}, NewEngineError(ErrUnknownKind.Code, "unknown mission kind: "+string(kind))
	}
	return p, nil
}

// ValidKind reports whether kind has a policy.
func ValidKind(kind Kind) bool {
	_, ok := policies[kind]
	return ok
}

// ValidTier reports whether tier is one of the four risk tiers.
func ValidTier(tier RiskTier) bool {
	switch tier {
	case TierLow, TierMedium, TierHigh, TierCritical:
		return true
	}
	return false
}
