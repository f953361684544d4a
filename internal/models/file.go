package models

// File 文件模型
type File struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"size:255;not null"`
	StoragePath string `json:"-" gorm:"size:500;not null"` // 物理存储路径不对外暴露
	ContentType string `json:"content_type" gorm:"size:100"`
	Size        int64  `json:"size"`
	UploaderID  uint   `json:"uploader_id" gorm:"index"`
}

// TableName 表名
func (f *File) TableName() string {
	return "core_files"
}
