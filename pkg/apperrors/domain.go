package apperrors

import (
	"net/http"
)

/*
Предопределенные ошибки бизнес-логики портала.
*/

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// --- Auth ---

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already exists",
	http.StatusConflict,
)

// ErrAccountNotFound - аккаунт с таким email/id не найден.
var ErrAccountNotFound = New(
	CodeNotFound,
	"auth",
	"User not found",
	http.StatusNotFound,
)

// ErrInvalidPassword - неверный пароль при логине.
var ErrInvalidPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid password",
	http.StatusUnauthorized,
)

// ErrCurrentPasswordMismatch - неверный текущий пароль при смене пароля.
var ErrCurrentPasswordMismatch = New(
	CodeInvalidCredentials,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest,
)

// ErrUserNotVerified - email не подтвержден.
var ErrUserNotVerified = New(
	CodeNotVerified,
	"auth",
	"Please verify your email before continuing",
	http.StatusForbidden,
)

// ErrInvalidToken - подпись или формат токена неверны.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or malformed token",
	http.StatusBadRequest,
)

// ErrTokenExpired - токен подтверждения устарел.
var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusBadRequest,
)

// ErrSetupWindowExpired - окно завершения профиля закрыто.
var ErrSetupWindowExpired = New(
	CodeForbidden,
	"auth",
	"Profile setup window has expired",
	http.StatusForbidden,
)

// ErrInvalidResetCode - код сброса отсутствует, не совпадает или просрочен.
var ErrInvalidResetCode = New(
	CodeInvalidResetCode,
	"auth",
	"Invalid reset code",
	http.StatusBadRequest,
)

// ErrResetCodeExpired - код сброса просрочен (и уже очищен).
var ErrResetCodeExpired = New(
	CodeInvalidResetCode,
	"auth",
	"Reset code expired",
	http.StatusBadRequest,
)

// ErrTooManyRequests - превышен лимит попыток.
var ErrTooManyRequests = New(
	CodeLimitExceeded,
	"auth",
	"Too many attempts, please try again later",
	http.StatusTooManyRequests,
)

// --- Profile ---

// ErrProfileNotFound - у аккаунта нет профиля.
var ErrProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Profile not found",
	http.StatusNotFound,
)

// --- Sites ---

// ErrSiteNotFound - сайт не найден или принадлежит другому аккаунту.
var ErrSiteNotFound = New(
	CodeNotFound,
	"sites",
	"Site not found",
	http.StatusNotFound,
)

// ErrSiteAlreadyExists - такой сайт уже добавлен.
var ErrSiteAlreadyExists = New(
	CodeAlreadyExists,
	"sites",
	"Site already exists",
	http.StatusConflict,
)

// --- Shipping ---

// ErrShippingNotFound - адрес доставки еще не заполнен.
var ErrShippingNotFound = New(
	CodeNotFound,
	"shipping",
	"Shipping information not found",
	http.StatusNotFound,
)
