package models

import (
	"gorm.io/datatypes"
)

// ShippingInfo - адрес доставки аккаунта (не больше одной строки на аккаунт).
// Заполняется из внешнего сервиса поиска адресов и перезаписывается при повторной синхронизации.
type ShippingInfo struct {
	BaseModel
	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Address1 string `gorm:"size:255" json:"address1"`
	Address2 string `gorm:"size:255" json:"address2"`
	City     string `gorm:"size:100" json:"city"`
	State    string `gorm:"size:100" json:"state"`
	Zip      string `gorm:"size:20" json:"zip"`
	Country  string `gorm:"size:50" json:"country"`
	ShipTo   string `gorm:"column:shipto;size:255" json:"shipto"`

	// SourceSite - метка сайта, по которому найден адрес (пусто, если введен вручную)
	SourceSite    string         `gorm:"size:255" json:"source_site"`
	LookupPayload datatypes.JSON `json:"-"`
}

func (ShippingInfo) TableName() string {
	return "shipping_information"
}
