package services

import "github.com/Dosada05/championship-system/models"

const comingSoonMessage = "Estamos preparando o terreno para o jogo começar. O lançamento oficial será em breve."

type SiteService interface {
	Info() models.SiteInfo
	Plans() []models.PlanInfo
	Maintenance() bool
}

type siteService struct {
	maintenance bool
}

func NewSiteService(maintenance bool) SiteService {
	return &siteService{maintenance: maintenance}
}

func (s *siteService) Info() models.SiteInfo {
	info := models.SiteInfo{
		Maintenance: s.maintenance,
		Plans:       Plans(),
	}
	if s.maintenance {
		info.Message = comingSoonMessage
	}
	return info
}

func (s *siteService) Plans() []models.PlanInfo {
	return Plans()
}

func (s *siteService) Maintenance() bool {
	return s.maintenance
}
