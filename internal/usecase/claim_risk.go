package usecase

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

// highRiskClaimTerms need substantiation before they can ship.
var highRiskClaimTerms = []string{
	"clinically proven", "clinically tested", "clinically demonstrated",
	"dermatologist tested", "dermatologist approved", "dermatologist recommended",
	"doctor recommended", "physician recommended",
	"scientifically proven", "scientifically tested", "medically proven",
	"fda approved", "fda cleared",
	"patented", "patent pending",
	"cliniquement prouvé", "testé cliniquement", "dermatologiquement testé",
}

// mediumRiskClaimTerms are efficacy claims that need supporting data.
var mediumRiskClaimTerms = []string{
	"reduces", "eliminates", "removes", "prevents",
	"anti-aging", "anti-wrinkle", "anti-acne",
	"repairs", "restores", "regenerates", "renews",
	"strengthens", "fortifies", "rebuilds",
	"treats", "heals", "cures",
	"deeply moisturizes", "intensely hydrates",
	"réduit", "élimine", "prévient",
}

type claimTier struct {
	level     domain.RiskLevel
	terms     []string
	rationale string
	regions   []string
	action    string
	status    domain.StatusCode
}

var claimTiers = []claimTier{
	{
		level:     domain.RiskHigh,
		terms:     highRiskClaimTerms,
		rationale: "Contains high-risk term: '%s' - requires substantiation",
		regions:   []string{"USA", "EU", "UK", "CA"},
		action:    "Escalate",
		status:    domain.StatusAttn,
	},
	{
		level:     domain.RiskMedium,
		terms:     mediumRiskClaimTerms,
		rationale: "Contains efficacy claim: '%s' - verify support",
		regions:   []string{"USA", "EU", "UK"},
		action:    "Verify",
		status:    domain.StatusAttn,
	},
}

// ClaimRiskAssessor grades marketing claims by regulatory exposure.
type ClaimRiskAssessor struct {
	logger *zap.Logger
}

func NewClaimRiskAssessor(logger *zap.Logger) *ClaimRiskAssessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimRiskAssessor{logger: logger}
}

// Assess grades a single claim. The highest tier with any matching term
// wins; the rationale cites the first term matched in that tier.
func (a *ClaimRiskAssessor) Assess(claim string, lang domain.Language) domain.ClaimRisk {
	lower := strings.ToLower(claim)
	for _, tier := range claimTiers {
		var matched []string
		for _, term := range tier.terms {
			if strings.Contains(lower, term) {
				matched = append(matched, term)
			}
		}
		if len(matched) == 0 {
			continue
		}
		return domain.ClaimRisk{
			Language:          lang,
			ClaimText:         claim,
			RiskLevel:         tier.level,
			MatchedTerms:      matched,
			Rationale:         fmt.Sprintf(tier.rationale, matched[0]),
			Regions:           append([]string(nil), tier.regions...),
			RecommendedAction: tier.action,
			Status:            tier.status,
		}
	}
	return domain.ClaimRisk{
		Language:          lang,
		ClaimText:         claim,
		RiskLevel:         domain.RiskLow,
		Rationale:         "Cosmetic/descriptive claim - acceptable",
		Regions:           []string{"All"},
		RecommendedAction: "Keep",
		Status:            domain.StatusOK,
	}
}

// AssessAll grades every line of every active claim field.
func (a *ClaimRiskAssessor) AssessAll(fields []domain.CopyField) []domain.ClaimRisk {
	risks := make([]domain.ClaimRisk, 0)
	for _, f := range fields {
		if !f.IsActive() || !strings.Contains(strings.ToLower(f.FieldName), "claim") {
			continue
		}
		for _, line := range strings.Split(f.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			risk := a.Assess(line, f.Language)
			risk.FieldName = f.FieldName
			risk.Panel = f.Panel
			risks = append(risks, risk)
		}
	}
	a.logger.Info("claims assessed", zap.Int("claims", len(risks)))
	return risks
}
