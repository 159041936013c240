package services

import (
	"context"
	"errors"

	"portal_backend/internal/algorithms"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type SiteService interface {
	List(ctx context.Context, db *gorm.DB, userID uint) ([]models.UserSite, error)
	Add(ctx context.Context, db *gorm.DB, userID uint, site string) (*models.UserSite, error)
	SetDefault(ctx context.Context, db *gorm.DB, userID, siteID uint) (*models.UserSite, error)
	Delete(ctx context.Context, db *gorm.DB, userID, siteID uint) error

	// Reconcile приводит реестр к desired; tx - транзакция вызывающего
	Reconcile(ctx context.Context, tx *gorm.DB, userID uint, desired []algorithms.DesiredSite) error
	// MakeDefault делает сайт единственным default, создавая его при отсутствии; tx - транзакция вызывающего
	MakeDefault(ctx context.Context, tx *gorm.DB, userID uint, site string) (*models.UserSite, error)
}

type SiteServiceImpl struct {
	siteRepo repositories.SiteRepository
}

func NewSiteService(siteRepo repositories.SiteRepository) SiteService {
	return &SiteServiceImpl{siteRepo: siteRepo}
}

func (s *SiteServiceImpl) List(ctx context.Context, db *gorm.DB, userID uint) ([]models.UserSite, error) {
	sites, err := s.siteRepo.ListByUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if sites == nil {
		sites = []models.UserSite{}
	}
	return sites, nil
}

// Add добавляет сайт; первый сайт аккаунта сразу становится default
func (s *SiteServiceImpl) Add(ctx context.Context, db *gorm.DB, userID uint, site string) (*models.UserSite, error) {
	desired := algorithms.NormalizeSites([]string{site})
	if len(desired) == 0 {
		return nil, apperrors.FieldError("site", "Must be a site name such as \"Amazon CTZ\" or \"CTZ\"")
	}
	want := desired[0]

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	existing, err := s.siteRepo.ListByUser(tx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	hasDefault := false
	for _, row := range existing {
		if algorithms.SiteKey(row.SiteSlug) == algorithms.SiteKey(want.Slug) {
			return nil, apperrors.ErrSiteAlreadyExists
		}
		hasDefault = hasDefault || row.IsDefault
	}

	row := &models.UserSite{
		UserID:    userID,
		SiteSlug:  want.Slug,
		Label:     want.Label,
		IsDefault: !hasDefault,
	}
	if err := s.siteRepo.Create(tx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSiteAlreadyExists
		}
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "site added", "site", row.Label, "is_default", row.IsDefault)
	return row, nil
}

func (s *SiteServiceImpl) SetDefault(ctx context.Context, db *gorm.DB, userID, siteID uint) (*models.UserSite, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	site, err := s.siteRepo.FindForUser(tx, userID, siteID)
	if err != nil {
		return nil, mapSiteError(err)
	}

	if err := s.siteRepo.ClearDefaults(tx, userID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if err := s.siteRepo.MarkDefault(tx, userID, site.ID); err != nil {
		return nil, mapSiteError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	site.IsDefault = true
	return site, nil
}

// Delete удаляет сайт; если он был default, default переходит к самому старому из оставшихся
func (s *SiteServiceImpl) Delete(ctx context.Context, db *gorm.DB, userID, siteID uint) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	site, err := s.siteRepo.FindForUser(tx, userID, siteID)
	if err != nil {
		return mapSiteError(err)
	}

	if err := s.siteRepo.Delete(tx, userID, site.ID); err != nil {
		return mapSiteError(err)
	}

	if site.IsDefault {
		remaining, err := s.siteRepo.ListByUser(tx, userID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		if len(remaining) > 0 {
			if err := s.siteRepo.MarkDefault(tx, userID, remaining[0].ID); err != nil {
				return apperrors.DatabaseError(err)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *SiteServiceImpl) Reconcile(ctx context.Context, tx *gorm.DB, userID uint, desired []algorithms.DesiredSite) error {
	existing, err := s.siteRepo.ListByUser(tx, userID)
	if err != nil {
		return err
	}

	plan := algorithms.PlanSiteSync(existing, desired)
	if err := s.siteRepo.ApplyPlan(tx, userID, plan); err != nil {
		return err
	}

	logger.CtxDebug(ctx, "sites reconciled",
		"deleted", len(plan.Delete), "updated", len(plan.Update), "inserted", len(plan.Insert),
		"default", plan.DefaultSlug)
	return nil
}

func (s *SiteServiceImpl) MakeDefault(ctx context.Context, tx *gorm.DB, userID uint, site string) (*models.UserSite, error) {
	desired := algorithms.NormalizeSites([]string{site})
	if len(desired) == 0 {
		return nil, apperrors.FieldError("amazon_site", "Must be a site name such as \"Amazon CTZ\" or \"CTZ\"")
	}
	want := desired[0]

	existing, err := s.siteRepo.ListByUser(tx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := s.siteRepo.ClearDefaults(tx, userID); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	for _, row := range existing {
		if algorithms.SiteKey(row.SiteSlug) != algorithms.SiteKey(want.Slug) {
			continue
		}
		if err := s.siteRepo.MarkDefault(tx, userID, row.ID); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		row.IsDefault = true
		return &row, nil
	}

	row := &models.UserSite{
		UserID:    userID,
		SiteSlug:  want.Slug,
		Label:     want.Label,
		IsDefault: true,
	}
	if err := s.siteRepo.Create(tx, row); err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return row, nil
}

func mapSiteError(err error) error {
	if errors.Is(err, repositories.ErrSiteNotFound) {
		return apperrors.ErrSiteNotFound
	}
	return apperrors.DatabaseError(err)
}
