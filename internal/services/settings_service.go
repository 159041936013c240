package services

import (
	"context"
	"errors"
	"strings"

	"portal_backend/internal/algorithms"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SettingsService interface {
	Get(ctx context.Context, db *gorm.DB, userID uint) (*dto.SettingsResponse, error)
	Update(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	GetShipping(ctx context.Context, db *gorm.DB, userID uint) (*models.ShippingInfo, error)
	UpdateShipping(ctx context.Context, db *gorm.DB, userID uint, req *dto.ShippingRequest) (*models.ShippingInfo, error)
}

type SettingsServiceImpl struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	shippingRepo repositories.ShippingRepository
	siteService  SiteService
}

func NewSettingsService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	shippingRepo repositories.ShippingRepository,
	siteService SiteService,
) SettingsService {
	return &SettingsServiceImpl{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		shippingRepo: shippingRepo,
		siteService:  siteService,
	}
}

func (s *SettingsServiceImpl) Get(ctx context.Context, db *gorm.DB, userID uint) (*dto.SettingsResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}

	resp := &dto.SettingsResponse{
		Email:         user.Email,
		OtherAccounts: []string{},
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	switch {
	case err == nil:
		resp.FirstName = profile.FirstName
		resp.LastName = profile.LastName
		resp.JobTitle = profile.JobTitle
		resp.OtherAccounts = profile.Accounts()
	case !errors.Is(err, repositories.ErrProfileNotFound):
		return nil, apperrors.DatabaseError(err)
	}

	sites, err := s.siteService.List(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	resp.AmazonSite = defaultSiteLabel(sites)

	return resp, nil
}

// Update меняет только переданные поля; amazon_site делает сайт основным
func (s *SettingsServiceImpl) Update(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	if _, err := s.userRepo.FindByID(tx, userID); err != nil {
		return nil, mapAccountError(err)
	}

	profile, err := s.profileRepo.FindOrCreate(tx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if req.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		profile.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.JobTitle != nil {
		profile.JobTitle = strings.TrimSpace(*req.JobTitle)
	}
	if req.OtherAccounts != nil {
		profile.OtherAccounts = datatypes.JSONSlice[string](algorithms.NormalizeAccounts(req.OtherAccounts))
	}
	if err := s.profileRepo.Save(tx, profile); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if req.AmazonSite != nil {
		if _, err := s.siteService.MakeDefault(ctx, tx, userID, *req.AmazonSite); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return s.Get(ctx, db, userID)
}

func (s *SettingsServiceImpl) GetShipping(ctx context.Context, db *gorm.DB, userID uint) (*models.ShippingInfo, error) {
	info, err := s.shippingRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrShippingNotFound) {
			return nil, apperrors.ErrShippingNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	return info, nil
}

// UpdateShipping - ручной ввод адреса; источник поиска сбрасывается
func (s *SettingsServiceImpl) UpdateShipping(ctx context.Context, db *gorm.DB, userID uint, req *dto.ShippingRequest) (*models.ShippingInfo, error) {
	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		return nil, mapAccountError(err)
	}

	info := &models.ShippingInfo{
		UserID:   userID,
		Address1: strings.TrimSpace(req.Address1),
		Address2: strings.TrimSpace(req.Address2),
		City:     strings.TrimSpace(req.City),
		State:    strings.TrimSpace(req.State),
		Zip:      strings.TrimSpace(req.Zip),
		Country:  strings.TrimSpace(req.Country),
		ShipTo:   strings.TrimSpace(req.ShipTo),
	}
	if err := s.shippingRepo.Upsert(db, info); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return s.GetShipping(ctx, db, userID)
}

func mapAccountError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrAccountNotFound
	}
	return apperrors.DatabaseError(err)
}
