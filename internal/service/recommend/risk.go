package recommend

import "github.com/insureassist/backend/internal/model/conversation"

// RiskFactor folds the requirement into a single multiplicative scalar.
// Factors are order-independent and every absent field contributes a
// neutral 1.0, so the zero requirement yields exactly 1.0.
func RiskFactor(req conversation.Requirement) float64 {
	factor := 1.0

	if req.Age != nil {
		switch age := *req.Age; {
		case age < 30:
			factor *= 0.85
		case age < 45:
			// neutral bracket
		case age < 60:
			factor *= 1.2
		default:
			factor *= 1.5
		}
	}

	factor *= 1 + 0.1*float64(len(req.HealthConditions))
	factor *= 1 + 0.05*float64(len(req.FamilyHistory))

	if req.AnnualIncome != nil {
		switch income := *req.AnnualIncome; {
		case income < 300000:
			factor *= 0.8
		case income < 800000:
			// neutral bracket
		case income < 1500000:
			factor *= 1.2
		default:
			factor *= 1.4
		}
	}

	return factor
}
