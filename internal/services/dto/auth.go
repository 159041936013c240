package dto

// SignupRequest - запрос регистрации
type SignupRequest struct {
	FirstName string `json:"first_name" validate:"required,notblank,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=255,allowed_email_domain"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// EmailRequest - запросы, где нужен только email (resend-verification, forgot-password)
type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// VerifyEmailRequest - запрос подтверждения email
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyEmailResponse struct {
	Message    string `json:"message"`
	Email      string `json:"email"`
	SetupToken string `json:"setup_token"`
}

// Статусы GET /auth/check-setup
const (
	SetupStatusInvalid          = "invalid"
	SetupStatusPendingEmail     = "pending_email"
	SetupStatusAlreadyCompleted = "already_completed"
	SetupStatusAllowed          = "allowed"
)

type SetupStatusResponse struct {
	Status string `json:"status"`
}

// CheckMemberRequest - проверка, можно ли еще завершить профиль
type CheckMemberRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Token string `json:"token"`
}

type CheckMemberResponse struct {
	Exists  bool   `json:"exists"`
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - токен сессии; тот же токен уходит в cookie
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// ResetPasswordRequest - подтверждение сброса пароля кодом из письма
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Code        string `json:"code" validate:"required,reset_code"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ChangePasswordRequest - смена пароля авторизованным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// MeResponse - краткие данные текущего пользователя
type MeResponse struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Name       string `json:"name"`
	JobTitle   string `json:"job_title"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
