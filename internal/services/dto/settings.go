package dto

// AddSiteRequest - POST /sites
type AddSiteRequest struct {
	Site string `json:"site" validate:"required,site_code"`
}

// SettingsResponse - GET /settings
type SettingsResponse struct {
	Email         string   `json:"email"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	JobTitle      string   `json:"job_title"`
	AmazonSite    *string  `json:"amazon_site"`
	OtherAccounts []string `json:"other_accounts"`
}

// UpdateSettingsRequest - PUT /settings. Отсутствующее поле (nil) не меняется,
// пустой массив other_accounts очищает список.
type UpdateSettingsRequest struct {
	FirstName     *string  `json:"first_name" validate:"omitempty,max=100"`
	LastName      *string  `json:"last_name" validate:"omitempty,max=100"`
	JobTitle      *string  `json:"job_title" validate:"omitempty,max=150"`
	AmazonSite    *string  `json:"amazon_site" validate:"omitempty,site_code"`
	OtherAccounts []string `json:"other_accounts" validate:"omitempty,max=50,dive,max=255"`
}

// ShippingRequest - PUT /settings/shipping
type ShippingRequest struct {
	Address1 string `json:"address1" validate:"required,notblank,max=255"`
	Address2 string `json:"address2" validate:"max=255"`
	City     string `json:"city" validate:"required,notblank,max=100"`
	State    string `json:"state" validate:"max=100"`
	Zip      string `json:"zip" validate:"max=20"`
	Country  string `json:"country" validate:"max=50"`
	ShipTo   string `json:"shipto" validate:"max=255"`
}
