package guard

import (
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/rules"
)

// Set bundles every domain guard built from one logger and Policy.
type Set struct {
	Bond        *BondGuard
	FX          *FXGuard
	Risk        *RiskGuard
	Compliance  *ComplianceGuard
	Calendar    *CalendarGuard
	Derivatives *DerivativesGuard
	Lending     *LendingGuard
}

// NewSet creates all guards. A nil rulebook uses the default compliance limits.
func NewSet(logger *zap.Logger, policy Policy, rulebook *rules.Rulebook) (*Set, error) {
	compliance, err := NewComplianceGuard(logger, policy, rulebook)
	if err != nil {
		return nil, err
	}
	return &Set{
		Bond:        NewBondGuard(logger, policy),
		FX:          NewFXGuard(logger, policy),
		Risk:        NewRiskGuard(logger, policy),
		Compliance:  compliance,
		Calendar:    NewCalendarGuard(logger, policy),
		Derivatives: NewDerivativesGuard(logger, policy),
		Lending:     NewLendingGuard(logger, policy),
	}, nil
}
