package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"portal_backend/internal/addresslookup"
	"portal_backend/internal/algorithms"
	"portal_backend/internal/auth"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MsgProfileSaved   = "Profile saved. Please log in."
	MsgProfileUpdated = "Profile updated successfully"
)

type ProfileService interface {
	SetupProfile(ctx context.Context, db *gorm.DB, req *dto.SetupProfileRequest) (*dto.SetupProfileResponse, error)
	GetProfile(ctx context.Context, db *gorm.DB, userID uint) (*dto.ProfileResponse, error)
	SetDefaultSite(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error)
}

type ProfileServiceImpl struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	siteService SiteService
	syncer      *ShippingSyncer
	lookup      addresslookup.Lookup
	tokens      *auth.TokenCodec
	settings    AuthSettings
	now         func() time.Time
}

func NewProfileService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	siteService SiteService,
	syncer *ShippingSyncer,
	lookup addresslookup.Lookup,
	tokens *auth.TokenCodec,
	settings AuthSettings,
) ProfileService {
	return &ProfileServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		siteService: siteService,
		syncer:      syncer,
		lookup:      lookup,
		tokens:      tokens,
		settings:    settings,
		now:         time.Now,
	}
}

// SetupProfile завершает профиль по токену из письма.
//
// Адреса ищутся до транзакции; профиль, отметка о завершении, реестр сайтов
// и адрес доставки пишутся в одной транзакции. Пустой amazon_site оставляет
// реестр сайтов как есть, пустые имена не затирают сохраненные.
func (s *ProfileServiceImpl) SetupProfile(ctx context.Context, db *gorm.DB, req *dto.SetupProfileRequest) (*dto.SetupProfileResponse, error) {
	userID, err := s.tokens.Verify(strings.TrimSpace(req.Token), auth.PurposeVerify, s.settings.VerifyTokenMaxAge)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}
	if !user.IsVerified {
		return nil, apperrors.ErrUserNotVerified
	}
	if s.now().Sub(user.SetupReferenceTime()) > s.settings.SetupWindow {
		return nil, apperrors.ErrSetupWindowExpired
	}

	ctx = logger.WithUserID(ctx, user.ID)

	current, err := s.profileRepo.FindByUserID(db, user.ID)
	if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, apperrors.DatabaseError(err)
	}
	firstName := pick(req.FirstName, current, func(p *models.UserProfile) string { return p.FirstName })
	lastName := pick(req.LastName, current, func(p *models.UserProfile) string { return p.LastName })

	desired := algorithms.NormalizeSites(req.AmazonSite)
	found := s.syncer.Fetch(ctx, desired, firstName, lastName)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.profileRepo.FindOrCreate(tx, user.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	profile.FirstName = firstName
	profile.LastName = lastName
	if v := strings.TrimSpace(req.JobTitle); v != "" {
		profile.JobTitle = v
	}
	if req.OtherAccounts != nil {
		profile.OtherAccounts = datatypes.JSONSlice[string](algorithms.NormalizeAccounts(req.OtherAccounts))
	}
	if err := s.profileRepo.Save(tx, profile); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if err := s.userRepo.MarkProfileCompleted(tx, user.ID, s.now().UTC()); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if len(desired) > 0 {
		if err := s.siteService.Reconcile(ctx, tx, user.ID, desired); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}

	var shippingSource *string
	if found != nil && s.storeShipping(ctx, tx, user.ID, found, profile.FullName()) {
		label := found.Site.Label
		shippingSource = &label
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	sites, err := s.siteService.List(ctx, db, user.ID)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(sites))
	for _, site := range sites {
		labels = append(labels, site.Label)
	}

	logger.CtxInfo(ctx, "profile setup completed", "sites", len(labels), "shipping_synced", shippingSource != nil)
	return &dto.SetupProfileResponse{
		Message: MsgProfileSaved,
		Profile: dto.ProfileSummary{
			ID:            user.ID,
			Email:         user.Email,
			FirstName:     profile.FirstName,
			LastName:      profile.LastName,
			JobTitle:      profile.JobTitle,
			AmazonSite:    labels,
			OtherAccounts: profile.Accounts(),
		},
		ShippingSource: shippingSource,
	}, nil
}

// storeShipping пишет адрес под savepoint: ошибка записи адреса
// откатывает только адрес, профиль и сайты сохраняются. true - адрес записан.
func (s *ProfileServiceImpl) storeShipping(ctx context.Context, tx *gorm.DB, userID uint, found *LookupResult, fullName string) bool {
	const savepoint = "shipping_sync"

	if err := tx.SavePoint(savepoint).Error; err != nil {
		logger.CtxWithError(ctx, "failed to create savepoint for shipping sync", err)
		return false
	}
	if err := s.syncer.Store(tx, userID, found, fullName); err != nil {
		logger.CtxWithError(ctx, "failed to store shipping information", err, "site", found.Site.Label)
		if rbErr := tx.RollbackTo(savepoint).Error; rbErr != nil {
			logger.CtxWithError(ctx, "failed to roll back shipping savepoint", rbErr)
		}
		return false
	}
	return true
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, db *gorm.DB, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}

	sites, err := s.siteService.List(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		ID:            user.ID,
		Email:         user.Email,
		FirstName:     profile.FirstName,
		LastName:      profile.LastName,
		JobTitle:      profile.JobTitle,
		AmazonSite:    defaultSiteLabel(sites),
		OtherAccounts: profile.Accounts(),
	}, nil
}

// SetDefaultSite делает сайт основным и, если внешний сервис настроен,
// прикладывает данные его дашборда. Ошибка дашборда не ошибка запроса.
func (s *ProfileServiceImpl) SetDefaultSite(ctx context.Context, db *gorm.DB, userID uint, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}

	site, err := s.siteService.MakeDefault(ctx, tx, userID, req.AmazonSite)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	resp := &dto.UpdateProfileResponse{
		Message: MsgProfileUpdated,
		Profile: dto.DefaultSiteSummary{
			ID:         user.ID,
			Email:      user.Email,
			AmazonSite: site.Label,
		},
	}

	if s.lookup != nil {
		data, err := s.lookup.Dashboard(ctx, site.SiteSlug)
		switch {
		case err == nil:
			resp.DashboardData = data
		case !errors.Is(err, addresslookup.ErrDisabled):
			logger.CtxWarn(ctx, "dashboard fetch failed", "site", site.Label, "error", err)
		}
	}

	return resp, nil
}

func defaultSiteLabel(sites []models.UserSite) *string {
	site := algorithms.DefaultSite(sites)
	if site == nil {
		return nil
	}
	label := site.Label
	if label == "" {
		label = algorithms.SiteLabel(site.SiteSlug)
	}
	return &label
}

// pick - новое значение из запроса или сохраненное, если в запросе пусто
func pick(value string, current *models.UserProfile, get func(*models.UserProfile) string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	if current != nil {
		return get(current)
	}
	return ""
}
