package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
)

const maxShirtNumber = 999

type AthleteService interface {
	Create(ctx context.Context, organizerID, teamID int, input AthleteInput) (*models.Athlete, error)
	List(ctx context.Context, organizerID, teamID int) ([]*models.Athlete, error)
	Get(ctx context.Context, organizerID, athleteID int) (*models.Athlete, error)
	Update(ctx context.Context, organizerID, athleteID int, input AthleteInput) (*models.Athlete, error)
	Delete(ctx context.Context, organizerID, athleteID int) error
}

type AthleteInput struct {
	Name        string  `json:"name"`
	ShirtNumber *int    `json:"shirt_number,omitempty"`
	Position    *string `json:"position,omitempty"`
	Document    *string `json:"document,omitempty"`
}

type athleteService struct {
	athleteRepo repositories.AthleteRepository
	teamRepo    repositories.TeamRepository
	champRepo   repositories.ChampionshipRepository
}

func NewAthleteService(
	athleteRepo repositories.AthleteRepository,
	teamRepo repositories.TeamRepository,
	champRepo repositories.ChampionshipRepository,
) AthleteService {
	return &athleteService{
		athleteRepo: athleteRepo,
		teamRepo:    teamRepo,
		champRepo:   champRepo,
	}
}

func (s *athleteService) Create(ctx context.Context, organizerID, teamID int, input AthleteInput) (*models.Athlete, error) {
	athlete := &models.Athlete{TeamID: teamID}
	if err := applyAthleteInput(athlete, input); err != nil {
		return nil, err
	}
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID); err != nil {
		return nil, err
	}

	if err := s.athleteRepo.Create(ctx, athlete); err != nil {
		if errors.Is(err, repositories.ErrAthleteTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create athlete: %w", err)
	}
	return athlete, nil
}

func (s *athleteService) List(ctx context.Context, organizerID, teamID int) ([]*models.Athlete, error) {
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID); err != nil {
		return nil, err
	}
	athletes, err := s.athleteRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes of team %d: %w", teamID, err)
	}
	if athletes == nil {
		return []*models.Athlete{}, nil
	}
	return athletes, nil
}

func (s *athleteService) Get(ctx context.Context, organizerID, athleteID int) (*models.Athlete, error) {
	return s.loadOwnedAthlete(ctx, organizerID, athleteID)
}

func (s *athleteService) Update(ctx context.Context, organizerID, athleteID int, input AthleteInput) (*models.Athlete, error) {
	athlete, err := s.loadOwnedAthlete(ctx, organizerID, athleteID)
	if err != nil {
		return nil, err
	}
	if err := applyAthleteInput(athlete, input); err != nil {
		return nil, err
	}
	if err := s.athleteRepo.Update(ctx, athlete); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to update athlete %d: %w", athleteID, err)
	}
	return athlete, nil
}

func (s *athleteService) Delete(ctx context.Context, organizerID, athleteID int) error {
	if _, err := s.loadOwnedAthlete(ctx, organizerID, athleteID); err != nil {
		return err
	}
	if err := s.athleteRepo.Delete(ctx, athleteID); err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return ErrAthleteNotFound
		}
		return fmt.Errorf("failed to delete athlete %d: %w", athleteID, err)
	}
	return nil
}

func (s *athleteService) loadOwnedAthlete(ctx context.Context, organizerID, athleteID int) (*models.Athlete, error) {
	athlete, err := s.athleteRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repositories.ErrAthleteNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to get athlete %d: %w", athleteID, err)
	}
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, athlete.TeamID); err != nil {
		return nil, err
	}
	return athlete, nil
}

func applyAthleteInput(a *models.Athlete, input AthleteInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrNameRequired
	}
	if input.ShirtNumber != nil && (*input.ShirtNumber < 0 || *input.ShirtNumber > maxShirtNumber) {
		return ErrInvalidShirtNumber
	}
	a.Name = name
	a.ShirtNumber = input.ShirtNumber
	a.Position = trimmedOrNil(input.Position)
	a.Document = trimmedOrNil(input.Document)
	return nil
}
