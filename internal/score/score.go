// Package score turns detected risk factors into a deterministic confidence
// score for the drafted reply.
package score

// Deductions is the fixed per-factor deduction table. multiple_topics deducts
// per additional topic; the rest are 0/1 factors.
var Deductions = map[string]int{
	"no_knowledge":          -100,
	"unclear_info":          -85,
	"premium_complaints":    -50,
	"angry_frustrated_tone": -30,
	"urgency":               -15,
	"multiple_topics":       -10,
}

// FactorOrder is the severity-descending presentation order for breakdowns.
var FactorOrder = []string{
	"no_knowledge",
	"unclear_info",
	"premium_complaints",
	"angry_frustrated_tone",
	"urgency",
	"multiple_topics",
}

// Result is a computed confidence score with its per-factor breakdown.
type Result struct {
	PerFactor      map[string]int
	TotalDeduction int
	FinalScore     int
}

// Confidence scores a factor map. Unrecognized factor names contribute
// nothing. The final score is 100 plus the (non-positive) total deduction,
// clamped to [0, 100]; the ceiling clamp is kept so future positive factors
// cannot push the score past 100.
func Confidence(factors map[string]int) Result {
	perFactor := make(map[string]int, len(factors))
	total := 0
	for factor, count := range factors {
		deduction, ok := Deductions[factor]
		if !ok {
			continue
		}
		perFactor[factor] = deduction * count
		total += deduction * count
	}

	final := 100 + total
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return Result{
		PerFactor:      perFactor,
		TotalDeduction: total,
		FinalScore:     final,
	}
}
