package contacts

import "github.com/gudangchat/gudangchat/internal/match"

const (
	confirmFloor = 70
	exactScore   = 100
)

// DecisionKind says how a freshly extracted counterparty name relates to
// the known contacts.
type DecisionKind int

const (
	// DecisionCreate means no known contact is similar enough; create one.
	DecisionCreate DecisionKind = iota
	// DecisionReuse means an exact (case-insensitive) match exists.
	DecisionReuse
	// DecisionConfirm means a similar contact exists and the user must
	// decide before anything is committed.
	DecisionConfirm
)

// Decision is the deduplicator outcome. Candidate fields are populated
// for DecisionReuse and DecisionConfirm.
type Decision struct {
	Kind           DecisionKind
	CandidateName  string
	CandidatePhone string
	Score          int
}

// ResolveCounterparty scores the new name against every known contact and
// keeps the best candidate. Scores strictly between 70 and 100 require
// user confirmation; 100 reuses the existing contact and anything at or
// below 70 creates a new one without asking.
func ResolveCounterparty(name string, known []Known) Decision {
	best := Decision{Kind: DecisionCreate}
	for _, k := range known {
		score := match.Ratio(name, k.Name)
		if score > best.Score {
			best = Decision{CandidateName: k.Name, CandidatePhone: k.Phone, Score: score}
		}
	}
	switch {
	case best.Score == exactScore:
		best.Kind = DecisionReuse
	case best.Score > confirmFloor:
		best.Kind = DecisionConfirm
	default:
		best.Kind = DecisionCreate
	}
	return best
}
