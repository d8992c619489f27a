package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/storage"
)

type SponsorService interface {
	// Create adds a sponsor to the team. logo may be nil.
	Create(ctx context.Context, organizerID, teamID int, name string, logo io.Reader, contentType string) (*models.Sponsor, error)
	List(ctx context.Context, organizerID, teamID int) ([]*models.Sponsor, error)
	Delete(ctx context.Context, organizerID, sponsorID int) error
}

type sponsorService struct {
	sponsorRepo repositories.SponsorRepository
	teamRepo    repositories.TeamRepository
	champRepo   repositories.ChampionshipRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewSponsorService(
	sponsorRepo repositories.SponsorRepository,
	teamRepo repositories.TeamRepository,
	champRepo repositories.ChampionshipRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) SponsorService {
	return &sponsorService{
		sponsorRepo: sponsorRepo,
		teamRepo:    teamRepo,
		champRepo:   champRepo,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *sponsorService) Create(ctx context.Context, organizerID, teamID int, name string, logo io.Reader, contentType string) (*models.Sponsor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID); err != nil {
		return nil, err
	}

	sponsor := &models.Sponsor{TeamID: teamID, Name: name}
	if logo != nil {
		key, err := storage.ObjectKey("teams", teamID, "sponsor", contentType)
		if err != nil {
			return nil, err
		}
		if _, err := s.uploader.Upload(ctx, key, contentType, logo); err != nil {
			return nil, fmt.Errorf("failed to upload sponsor logo: %w", err)
		}
		sponsor.LogoKey = &key
	}

	if err := s.sponsorRepo.Create(ctx, sponsor); err != nil {
		if sponsor.LogoKey != nil {
			if delErr := s.uploader.Delete(ctx, *sponsor.LogoKey); delErr != nil {
				s.logger.WarnContext(ctx, "failed to clean up sponsor logo", slog.String("key", *sponsor.LogoKey), slog.Any("error", delErr))
			}
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create sponsor: %w", err)
	}

	sponsor.LogoURL = publicURL(s.uploader, sponsor.LogoKey)
	return sponsor, nil
}

func (s *sponsorService) List(ctx context.Context, organizerID, teamID int) ([]*models.Sponsor, error) {
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, teamID); err != nil {
		return nil, err
	}
	sponsors, err := s.sponsorRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors of team %d: %w", teamID, err)
	}
	if sponsors == nil {
		return []*models.Sponsor{}, nil
	}
	for _, sp := range sponsors {
		sp.LogoURL = publicURL(s.uploader, sp.LogoKey)
	}
	return sponsors, nil
}

func (s *sponsorService) Delete(ctx context.Context, organizerID, sponsorID int) error {
	sponsor, err := s.sponsorRepo.GetByID(ctx, sponsorID)
	if err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return ErrSponsorNotFound
		}
		return fmt.Errorf("failed to get sponsor %d: %w", sponsorID, err)
	}
	if _, _, err := loadOwnedTeam(ctx, s.teamRepo, s.champRepo, organizerID, sponsor.TeamID); err != nil {
		return err
	}
	if err := s.sponsorRepo.Delete(ctx, sponsorID); err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return ErrSponsorNotFound
		}
		return fmt.Errorf("failed to delete sponsor %d: %w", sponsorID, err)
	}
	if sponsor.LogoKey != nil && *sponsor.LogoKey != "" {
		if err := s.uploader.Delete(ctx, *sponsor.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete sponsor logo", slog.String("key", *sponsor.LogoKey), slog.Any("error", err))
		}
	}
	return nil
}
