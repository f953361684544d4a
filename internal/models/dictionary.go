package models

// Dictionary 数据字典
type Dictionary struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_dict_tenant_code"`
	Code        string `json:"code" gorm:"size:100;not null;index:idx_dict_tenant_code"` // 租户内唯一
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"size:255"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`

	Items []DictionaryItem `gorm:"foreignKey:DictionaryID" json:"items,omitempty"`
}

// TableName 表名
func (d *Dictionary) TableName() string {
	return "core_dictionaries"
}

// DictionaryItem 字典项
type DictionaryItem struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index"`
	DictionaryID uint   `json:"dictionary_id" gorm:"not null;index"`
	Label        string `json:"label" gorm:"size:100;not null"`
	Value        string `json:"value" gorm:"size:100;not null"`
	SortOrder    int    `json:"sort_order" gorm:"default:0"`
	IsDefault    bool   `json:"is_default" gorm:"default:false"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (i *DictionaryItem) TableName() string {
	return "core_dictionary_items"
}
