package conversation

// Requirement accumulates the attributes collected from the user over the
// dialogue. Every field is optional; an absent field scores as neutral risk,
// so the zero value is a valid input for offer generation.
type Requirement struct {
	Age              *int     `json:"age,omitempty"`
	Gender           string   `json:"gender,omitempty"`
	Occupation       string   `json:"occupation,omitempty"`
	AnnualIncome     *float64 `json:"annualIncome,omitempty"`
	HealthConditions []string `json:"healthConditions,omitempty"`
	FamilyHistory    []string `json:"familyHistory,omitempty"`
	Lifestyle        []string `json:"lifestyle,omitempty"`
	CoverageNeeds    []string `json:"coverageNeeds,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver, so a
// generation snapshot cannot observe later mutations.
func (r Requirement) Clone() Requirement {
	out := r
	if r.Age != nil {
		age := *r.Age
		out.Age = &age
	}
	if r.AnnualIncome != nil {
		income := *r.AnnualIncome
		out.AnnualIncome = &income
	}
	out.HealthConditions = append([]string(nil), r.HealthConditions...)
	out.FamilyHistory = append([]string(nil), r.FamilyHistory...)
	out.Lifestyle = append([]string(nil), r.Lifestyle...)
	out.CoverageNeeds = append([]string(nil), r.CoverageNeeds...)
	return out
}
