package services

import (
	"slices"

	"github.com/Dosada05/championship-system/models"
)

var championshipTypes = []string{
	models.TypeLeague,
	models.TypeLeagueAndPlayoffs,
	models.TypeGroupsAndKnockout,
	models.TypeKnockout,
}

var validTieBreakers = []models.TieBreaker{
	models.TieBreakerWins,
	models.TieBreakerGoalDifference,
	models.TieBreakerGoalsFor,
	models.TieBreakerHeadToHead,
}

// SportService exposes the fixed catalog of sports and formats.
type SportService interface {
	Catalog() models.SportCatalog
}

type sportService struct{}

func NewSportService() SportService {
	return sportService{}
}

func (sportService) Catalog() models.SportCatalog {
	types := make([]models.ChampionshipTypeInfo, 0, len(championshipTypes))
	for _, code := range championshipTypes {
		types = append(types, models.ChampionshipTypeInfo{
			Code:        code,
			Schedulable: checkSchedulable(&models.Championship{Type: code}) == nil,
		})
	}
	return models.SportCatalog{
		Sports:      slices.Clone(models.Sports),
		Types:       types,
		TieBreakers: slices.Clone(validTieBreakers),
		Defaults:    models.DefaultChampionshipConfig(),
	}
}

func isValidChampionshipType(t string) bool {
	return slices.Contains(championshipTypes, t)
}
