package dto

import "encoding/json"

// SetupProfileRequest - завершение профиля по ссылке из письма.
// amazon_site и other_accounts принимаются только как JSON-массивы строк.
type SetupProfileRequest struct {
	Token         string   `json:"token" validate:"required"`
	FirstName     string   `json:"first_name" validate:"max=100"`
	LastName      string   `json:"last_name" validate:"max=100"`
	JobTitle      string   `json:"job_title" validate:"max=150"`
	AmazonSite    []string `json:"amazon_site" validate:"omitempty,max=50,dive,site_code"`
	OtherAccounts []string `json:"other_accounts" validate:"omitempty,max=50,dive,max=255"`
}

type ProfileSummary struct {
	ID            uint     `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	JobTitle      string   `json:"job_title"`
	AmazonSite    []string `json:"amazon_site"`
	OtherAccounts []string `json:"other_accounts"`
}

type SetupProfileResponse struct {
	Message string         `json:"message"`
	Profile ProfileSummary `json:"profile"`
	// ShippingSource - сайт, по которому сохранен адрес доставки; nil, если адрес не найден
	ShippingSource *string `json:"shipping_source"`
}

// ProfileResponse - GET /auth/profile
type ProfileResponse struct {
	ID            uint     `json:"id"`
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	JobTitle      string   `json:"job_title"`
	AmazonSite    *string  `json:"amazon_site"`
	OtherAccounts []string `json:"other_accounts"`
}

// UpdateProfileRequest - PUT /auth/profile: сделать сайт основным
type UpdateProfileRequest struct {
	AmazonSite string `json:"amazon_site" validate:"required,site_code"`
}

type DefaultSiteSummary struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	AmazonSite string `json:"amazon_site"`
}

type UpdateProfileResponse struct {
	Message       string             `json:"message"`
	Profile       DefaultSiteSummary `json:"profile"`
	DashboardData json.RawMessage    `json:"dashboard_data,omitempty"`
}
