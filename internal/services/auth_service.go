package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"portal_backend/internal/auth"
	"portal_backend/internal/config"
	"portal_backend/internal/email"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/services/dto"
	"portal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Общие ответы, одинаковые для существующих и несуществующих email
const (
	MsgVerificationSent   = "Verification email sent"
	MsgResendGeneric      = "If the email exists, a new link was sent"
	MsgResetCodeGeneric   = "If the email exists, a reset code has been sent."
	MsgEmailVerified      = "Email verified"
	MsgPasswordReset      = "Password reset successful. Please log in."
	MsgPasswordUpdated    = "Password updated"
	msgMemberNotFound     = "This email isn't registered. Please sign up first."
	msgMemberTokenInvalid = "Invalid or expired verification token."
	msgMemberMismatch     = "The verification link does not match this email."
	msgMemberExpired      = "This verification link has expired (over 30 days). Please request a new verification email."
	msgMemberOK           = "OK"
)

type AuthService interface {
	Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) error
	ResendVerification(ctx context.Context, db *gorm.DB, email string) error
	VerifyEmail(ctx context.Context, db *gorm.DB, token string) (*dto.VerifyEmailResponse, error)
	CheckSetup(ctx context.Context, db *gorm.DB, token string) (string, error)
	CheckMember(ctx context.Context, db *gorm.DB, req *dto.CheckMemberRequest) (*dto.CheckMemberResponse, error)

	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RequestPasswordReset(ctx context.Context, db *gorm.DB, email string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.ChangePasswordRequest) error
	Me(ctx context.Context, db *gorm.DB, userID uint) (*dto.MeResponse, error)
}

// AuthSettings - параметры жизненного цикла аккаунта
type AuthSettings struct {
	FrontendBaseURL   string
	VerifyTokenMaxAge time.Duration
	SetupWindow       time.Duration
	ResetCodeTTL      time.Duration
}

func AuthSettingsFromConfig(cfg *config.Config) AuthSettings {
	return AuthSettings{
		FrontendBaseURL:   cfg.Server.FrontendBaseURL,
		VerifyTokenMaxAge: cfg.Security.VerifyTokenMaxAge,
		SetupWindow:       cfg.SetupWindow(),
		ResetCodeTTL:      cfg.Security.ResetCodeTTL,
	}
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	profileRepo   repositories.ProfileRepository
	tokens        *auth.TokenCodec
	sessions      *auth.SessionManager
	emailProvider email.Provider
	settings      AuthSettings
	now           func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	tokens *auth.TokenCodec,
	sessions *auth.SessionManager,
	emailProvider email.Provider,
	settings AuthSettings,
) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		tokens:        tokens,
		sessions:      sessions,
		emailProvider: emailProvider,
		settings:      settings,
		now:           time.Now,
	}
}

// Signup - регистрация: аккаунт и пустой профиль в одной транзакции,
// письмо со ссылкой уходит после коммита
func (s *AuthServiceImpl) Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) error {
	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.DatabaseError(err)
	}

	profile := &models.UserProfile{
		UserID:        user.ID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		OtherAccounts: datatypes.JSONSlice[string]{},
	}
	if err := s.profileRepo.Create(tx, profile); err != nil {
		return apperrors.DatabaseError(err)
	}

	token, err := s.tokens.Issue(user.ID, auth.PurposeVerify)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "account created", "user_id", user.ID)
	s.sendVerificationEmail(ctx, user.Email, token)
	return nil
}

// ResendVerification ничего не сообщает о существовании аккаунта
func (s *AuthServiceImpl) ResendVerification(ctx context.Context, db *gorm.DB, email string) error {
	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.DatabaseError(err)
	}
	if user.IsVerified {
		return nil
	}

	token, err := s.tokens.Issue(user.ID, auth.PurposeVerify)
	if err != nil {
		return apperrors.InternalError(err)
	}
	s.sendVerificationEmail(ctx, user.Email, token)
	return nil
}

// VerifyEmail подтверждает email; повторный вызов с тем же токеном ничего не меняет.
// Токен возвращается как setup_token для завершения профиля.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, db *gorm.DB, token string) (*dto.VerifyEmailResponse, error) {
	userID, err := s.verifyToken(token)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}

	if !user.IsVerified {
		if err := s.userRepo.MarkVerified(tx, user.ID, s.now().UTC()); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.VerifyEmailResponse{
		Message:    MsgEmailVerified,
		Email:      user.Email,
		SetupToken: token,
	}, nil
}

// CheckSetup сообщает фронтенду, что показать по ссылке из письма.
// Любая проблема с токеном или аккаунтом - статус invalid.
func (s *AuthServiceImpl) CheckSetup(ctx context.Context, db *gorm.DB, token string) (string, error) {
	userID, err := s.tokens.Verify(token, auth.PurposeVerify, s.settings.VerifyTokenMaxAge)
	if err != nil {
		return dto.SetupStatusInvalid, nil
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return dto.SetupStatusInvalid, nil
		}
		return "", apperrors.DatabaseError(err)
	}

	switch user.State() {
	case models.AccountStateUnverified:
		return dto.SetupStatusPendingEmail, nil
	case models.AccountStateProfileComplete:
		return dto.SetupStatusAlreadyCompleted, nil
	default:
		return dto.SetupStatusAllowed, nil
	}
}

// CheckMember - окно завершения профиля: не позже SetupWindow от подтверждения email
// (или от создания аккаунта, если подтверждения не было)
func (s *AuthServiceImpl) CheckMember(ctx context.Context, db *gorm.DB, req *dto.CheckMemberRequest) (*dto.CheckMemberResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return &dto.CheckMemberResponse{Exists: false, Allowed: false, Message: msgMemberNotFound}, nil
		}
		return nil, apperrors.DatabaseError(err)
	}

	if token := strings.TrimSpace(req.Token); token != "" {
		tokenUserID, err := s.tokens.Verify(token, auth.PurposeVerify, s.settings.VerifyTokenMaxAge)
		if err != nil {
			return &dto.CheckMemberResponse{Exists: true, Allowed: false, Message: msgMemberTokenInvalid}, nil
		}
		if tokenUserID != user.ID {
			return &dto.CheckMemberResponse{Exists: true, Allowed: false, Message: msgMemberMismatch}, nil
		}
	}

	if s.now().Sub(user.SetupReferenceTime()) > s.settings.SetupWindow {
		return &dto.CheckMemberResponse{Exists: true, Allowed: false, Message: msgMemberExpired}, nil
	}

	return &dto.CheckMemberResponse{Exists: true, Allowed: true, Message: msgMemberOK}, nil
}

// Login - проверка пароля и выпуск сессионного токена
func (s *AuthServiceImpl) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		return nil, mapAccountError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "login failed: bad password", "user_id", user.ID)
		return nil, apperrors.ErrInvalidPassword
	}

	if !user.IsVerified {
		return nil, apperrors.ErrUserNotVerified
	}

	token, _, err := s.sessions.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.sessions.TTL().Seconds()),
	}, nil
}

// RequestPasswordReset всегда завершается одинаково для внешнего наблюдателя.
// Ошибки хранилища и почты только логируются.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, db *gorm.DB, email string) error {
	user, err := s.userRepo.FindByEmail(db, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxWithError(ctx, "password reset lookup failed", err)
		}
		return nil
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		logger.CtxWithError(ctx, "failed to generate reset code", err, "user_id", user.ID)
		return nil
	}

	expiresAt := s.now().UTC().Add(s.settings.ResetCodeTTL)
	if err := s.userRepo.SetResetCode(db, user.ID, code, expiresAt); err != nil {
		logger.CtxWithError(ctx, "failed to store reset code", err, "user_id", user.ID)
		return nil
	}

	s.sendResetCodeEmail(ctx, user.Email, code)
	return nil
}

// ResetPassword проверяет код; просроченный код сразу гасится
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByEmail(tx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrInvalidResetCode
		}
		return apperrors.DatabaseError(err)
	}

	if user.PasswordResetCode == nil {
		return apperrors.ErrInvalidResetCode
	}

	// Просроченный код гасится до сравнения, даже если прислан неверный
	if auth.ResetCodeExpired(user.PasswordResetExpiresAt, s.now().UTC()) {
		if err := s.userRepo.ClearResetCode(tx, user.ID); err != nil {
			return apperrors.DatabaseError(err)
		}
		if err := tx.Commit().Error; err != nil {
			return apperrors.DatabaseError(err)
		}
		return apperrors.ErrResetCodeExpired
	}

	if !auth.ResetCodeMatches(user.PasswordResetCode, strings.TrimSpace(req.Code)) {
		return apperrors.ErrInvalidResetCode
	}

	hash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(tx, user.ID, hash); err != nil {
		return apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return mapAccountError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrCurrentPasswordMismatch
	}

	hash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(db, user.ID, hash); err != nil {
		return mapAccountError(err)
	}

	logger.CtxInfo(ctx, "password changed", "user_id", user.ID)
	return nil
}

// Me - отображаемое имя: имя и фамилия, иначе локальная часть email
func (s *AuthServiceImpl) Me(ctx context.Context, db *gorm.DB, userID uint) (*dto.MeResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapAccountError(err)
	}

	resp := &dto.MeResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
	}

	profile, err := s.profileRepo.FindByUserID(db, userID)
	switch {
	case err == nil:
		resp.FirstName = profile.FirstName
		resp.LastName = profile.LastName
		resp.JobTitle = profile.JobTitle
		resp.Name = profile.FullName()
	case !errors.Is(err, repositories.ErrProfileNotFound):
		return nil, apperrors.DatabaseError(err)
	}

	if resp.Name == "" {
		resp.Name, _, _ = strings.Cut(user.Email, "@")
	}
	return resp, nil
}

// --- helpers ---

// hashPassword - ошибка длины пароля уходит клиенту как ошибка поля field
func hashPassword(field, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		return "", apperrors.FieldError(field, err.Error())
	case err != nil:
		return "", apperrors.InternalError(err)
	}
	return hash, nil
}

func (s *AuthServiceImpl) verifyToken(token string) (uint, error) {
	userID, err := s.tokens.Verify(strings.TrimSpace(token), auth.PurposeVerify, s.settings.VerifyTokenMaxAge)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return 0, apperrors.ErrTokenExpired
		}
		return 0, apperrors.ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthServiceImpl) verificationLink(token string) string {
	return strings.TrimRight(s.settings.FrontendBaseURL, "/") + "/setup-profile?member=" + url.QueryEscape(token)
}

// sendVerificationEmail отправляет письмо в фоне; запрос не ждет SMTP
func (s *AuthServiceImpl) sendVerificationEmail(ctx context.Context, to, token string) {
	if s.emailProvider == nil {
		return
	}
	link := s.verificationLink(token)
	log := logger.FromContext(ctx)

	go func() {
		if err := s.emailProvider.SendVerification(to, link); err != nil {
			log.Error("failed to send verification email", "error", err)
		}
	}()
}

func (s *AuthServiceImpl) sendResetCodeEmail(ctx context.Context, to, code string) {
	if s.emailProvider == nil {
		return
	}
	ttlMinutes := int(s.settings.ResetCodeTTL / time.Minute)
	log := logger.FromContext(ctx)

	go func() {
		if err := s.emailProvider.SendResetCode(to, code, ttlMinutes); err != nil {
			log.Error("failed to send reset code email", "error", err)
		}
	}()
}
