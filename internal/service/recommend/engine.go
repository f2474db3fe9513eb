package recommend

import (
	"math"

	"github.com/google/uuid"

	"github.com/insureassist/backend/internal/model/conversation"
	"github.com/insureassist/backend/internal/model/policy"
)

// Conditional benefits appended when the requirement asks for them. Each is
// appended at most once, after the template's fixed list.
const (
	benefitFamily = "Family coverage extension"
	benefitTravel = "Travel insurance benefit"
	benefitSports = "Sports injury coverage"
)

// Engine turns a requirement snapshot into priced offers. It holds no
// per-session state; the id generator is injectable for tests.
type Engine struct {
	templates []policy.Template
	newID     func() string
}

// NewEngine returns an Engine over the fixed template catalog.
func NewEngine() *Engine {
	return &Engine{
		templates: policy.Catalog(),
		newID:     uuid.NewString,
	}
}

// NewEngineWithIDs returns an Engine using the supplied id generator.
func NewEngineWithIDs(newID func() string) *Engine {
	e := NewEngine()
	e.newID = newID
	return e
}

// Templates returns the catalog the engine prices against.
func (e *Engine) Templates() []policy.Template {
	return append([]policy.Template(nil), e.templates...)
}

// GenerateOffers prices every template for the given requirement. It is
// total over all requirement values: missing fields degrade to neutral risk
// and the result is always one offer per template, with the middle template
// flagged as recommended.
func (e *Engine) GenerateOffers(req conversation.Requirement) []policy.Offer {
	factor := RiskFactor(req)
	extras := conditionalBenefits(req)

	offers := make([]policy.Offer, 0, len(e.templates))
	for i, tpl := range e.templates {
		yearly := tpl.BasePremium * factor

		benefits := make([]string, 0, len(tpl.Benefits)+len(extras))
		benefits = append(benefits, tpl.Benefits...)
		benefits = append(benefits, extras...)

		offers = append(offers, policy.Offer{
			ID:             e.newID(),
			Name:           tpl.Name,
			Description:    tpl.Description,
			CoverageAmount: int(math.Round(tpl.CoverageMultiplier * 10000 * math.Max(1, factor))),
			// Monthly is rounded from the unrounded yearly product, not
			// derived from the rounded yearly figure.
			MonthlyPremium: int(math.Round(yearly / 12)),
			YearlyPremium:  int(math.Round(yearly)),
			Benefits:       benefits,
			Tier:           tpl.Tier,
			Recommended:    i == 1,
		})
	}
	return offers
}

// conditionalBenefits maps requirement tags to extra benefit lines, in
// fixed order.
func conditionalBenefits(req conversation.Requirement) []string {
	var extras []string
	if hasTag(req.CoverageNeeds, "family") {
		extras = append(extras, benefitFamily)
	}
	if hasTag(req.CoverageNeeds, "travel") {
		extras = append(extras, benefitTravel)
	}
	if hasTag(req.Lifestyle, "active") {
		extras = append(extras, benefitSports)
	}
	return extras
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
