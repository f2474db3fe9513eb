package policy

// Offer is a risk-adjusted instantiation of a Template, priced for one
// session. Offers are rebuilt from scratch on every generation and never
// mutated afterwards.
type Offer struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	CoverageAmount int      `json:"coverageAmount"`
	MonthlyPremium int      `json:"monthlyPremium"`
	YearlyPremium  int      `json:"yearlyPremium"`
	Benefits       []string `json:"benefits"`
	Tier           RiskTier `json:"riskLevel"`
	Recommended    bool     `json:"recommended"`
}
