package prompt

// Role is the closed set of prompt roles the assembler supports. Each
// role asks the same closed-schema question with a different framing;
// the parser in package scorer is agnostic to which role produced the
// reply it's given.
type Role string

const (
	RoleTechnicalAnalysis Role = "technical_analysis"
	RoleRiskAssessment     Role = "risk_assessment"
	RoleSentiment          Role = "sentiment"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTechnicalAnalysis, RoleRiskAssessment, RoleSentiment:
		return true
	default:
		return false
	}
}

// roleFraming returns the role-specific instruction paragraph
// prepended to the shared market-data body.
func roleFraming(role Role) string {
	switch role {
	case RoleRiskAssessment:
		return "You are a risk-focused trading analyst. Weigh downside scenarios, volatility, and the cost of being wrong at least as heavily as upside potential."
	case RoleSentiment:
		return "You are a market sentiment analyst. Weigh the tone and momentum implied by recent price action and volume rather than indicator values alone."
	default:
		return "You are a technical analyst. Base your judgment on the price action and indicator values provided."
	}
}

// responseSchema is the closed response format every provider is
// instructed to follow. The parser in package scorer depends on this
// exact field vocabulary; changing it requires changing both sides.
const responseSchema = `Respond with exactly four lines, in this format, and nothing else:
DIRECTION: <LONG|SHORT|NEUTRAL>
CONFIDENCE: <integer 0-100>
RATIONALE: <one or two sentences>
KEY_FACTORS: <comma-separated short phrases, or NONE>`
