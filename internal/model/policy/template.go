package policy

// RiskTier labels a template's position in the product line.
type RiskTier string

const (
	TierLow    RiskTier = "Low"
	TierMedium RiskTier = "Medium"
	TierHigh   RiskTier = "High"
)

// Template is one of the fixed policy archetypes every generated offer
// derives from. Instances are static and never mutated.
type Template struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	BasePremium        float64  `json:"basePremium"`
	CoverageMultiplier float64  `json:"coverageMultiplier"`
	Benefits           []string `json:"benefits"`
	Tier               RiskTier `json:"riskLevel"`
}

// Catalog returns the product line in display order. Offer generation keys
// off this order: the middle template is always the recommended one.
func Catalog() []Template {
	return []Template{
		{
			Name:               "Basic Protection Plan",
			Description:        "Essential coverage for fundamental protection needs at an affordable price",
			BasePremium:        1500,
			CoverageMultiplier: 100,
			Benefits: []string{
				"Accidental death benefit",
				"Hospitalization coverage",
				"Disability coverage",
			},
			Tier: TierLow,
		},
		{
			Name:               "Comprehensive Coverage",
			Description:        "Balanced protection with additional benefits for complete peace of mind",
			BasePremium:        2800,
			CoverageMultiplier: 150,
			Benefits: []string{
				"Accidental death benefit",
				"Hospitalization coverage",
				"Disability coverage",
				"Critical illness benefit",
				"Preventive health checkups",
			},
			Tier: TierMedium,
		},
		{
			Name:               "Premium Protection Plus",
			Description:        "Our highest tier of protection with maximum benefits and coverage options",
			BasePremium:        4200,
			CoverageMultiplier: 200,
			Benefits: []string{
				"Accidental death benefit",
				"Hospitalization coverage",
				"Disability coverage",
				"Critical illness benefit",
				"Preventive health checkups",
				"International coverage",
				"Family protection rider",
				"24/7 priority assistance",
			},
			Tier: TierHigh,
		},
	}
}
