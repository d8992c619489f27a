package services

import "github.com/Dosada05/championship-system/models"

// Unlimited marks a plan quota without an upper bound.
const Unlimited = 0

var planCatalog = []models.PlanInfo{
	{
		Name:             models.PlanStarter,
		Price:            "Grátis",
		Period:           "30 dias",
		MaxChampionships: 1,
		MaxTeams:         8,
		Features: []string{
			"1 Campeonato ativo",
			"Até 8 equipes",
			"Tabelas automáticas",
			"Súmula digital básica",
			"Link público do campeonato",
		},
	},
	{
		Name:             models.PlanPro,
		Price:            "R$ 49,90",
		Period:           "/mês",
		MaxChampionships: 5,
		MaxTeams:         32,
		Highlighted:      true,
		Features: []string{
			"Até 5 campeonatos ativos",
			"Até 32 equipes por torneio",
			"Gestão financeira básica",
			"Súmula com estatísticas",
			"Suporte via chat",
		},
	},
	{
		Name:             models.PlanElite,
		Price:            "R$ 89,90",
		Period:           "/mês",
		MaxChampionships: Unlimited,
		MaxTeams:         Unlimited,
		Features: []string{
			"Campeonatos ilimitados",
			"Equipes ilimitadas",
			"Site personalizado (White Label)",
			"API de integração",
			"Suporte Prioritário 24/7",
		},
	},
}

// Plans returns a copy of the plan catalog in display order.
func Plans() []models.PlanInfo {
	out := make([]models.PlanInfo, len(planCatalog))
	for i, p := range planCatalog {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}

// PlanLimits returns the quotas for a plan. Unknown plans get the Starter quotas.
func PlanLimits(plan models.Plan) (maxChampionships, maxTeams int) {
	for _, p := range planCatalog {
		if p.Name == plan {
			return p.MaxChampionships, p.MaxTeams
		}
	}
	return planCatalog[0].MaxChampionships, planCatalog[0].MaxTeams
}

func isKnownPlan(plan models.Plan) bool {
	for _, p := range planCatalog {
		if p.Name == plan {
			return true
		}
	}
	return false
}

func withinLimit(current, limit int) bool {
	return limit == Unlimited || current < limit
}
