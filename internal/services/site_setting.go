package services

import (
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SiteSettingService struct {
	db *gorm.DB
}

func NewSiteSettingService() *SiteSettingService {
	return &SiteSettingService{db: database.GetDB()}
}

// NewSiteSettingServiceWith 注入依赖的构造方式（测试用）
func NewSiteSettingServiceWith(db *gorm.DB) *SiteSettingService {
	return &SiteSettingService{db: db}
}

// Get 查询租户站点设置，不存在时返回空设置
func (s *SiteSettingService) Get(tenantID uint) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	err := s.db.Where("tenant_id = ?", tenantID).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return &models.SiteSetting{TenantID: tenantID, Settings: datatypes.JSONMap{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Save 保存租户站点设置，按键合并而非整体覆盖
func (s *SiteSettingService) Save(tenantID uint, settings map[string]interface{}) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	err := s.db.Where("tenant_id = ?", tenantID).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		setting = models.SiteSetting{TenantID: tenantID, Settings: datatypes.JSONMap(settings)}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}

	if setting.Settings == nil {
		setting.Settings = datatypes.JSONMap{}
	}
	for k, v := range settings {
		setting.Settings[k] = v
	}
	if err := s.db.Model(&setting).Update("settings", setting.Settings).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// ========== 系统参数 ==========

// GetParameter 查询系统参数
func (s *SiteSettingService) GetParameter(tenantID uint, key string) (*models.SystemParameter, error) {
	var param models.SystemParameter
	err := s.db.Where("tenant_id = ? AND key = ?", tenantID, key).First(&param).Error
	if err != nil {
		return nil, errors.NewNotFound("系统参数不存在: %s", key)
	}
	return &param, nil
}

// SetParameter 写入系统参数，存在则更新
func (s *SiteSettingService) SetParameter(tenantID uint, key, value, description string) (*models.SystemParameter, error) {
	if key == "" {
		return nil, errors.NewInvalidParam("参数键不能为空")
	}

	var param models.SystemParameter
	err := s.db.Where("tenant_id = ? AND key = ?", tenantID, key).First(&param).Error
	if err == gorm.ErrRecordNotFound {
		param = models.SystemParameter{TenantID: tenantID, Key: key, Value: value, Description: description}
		if err := s.db.Create(&param).Error; err != nil {
			return nil, err
		}
		return &param, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"value": value}
	if description != "" {
		updates["description"] = description
	}
	if err := s.db.Model(&param).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

// ListParameters 查询系统参数列表
func (s *SiteSettingService) ListParameters(tenantID uint) ([]models.SystemParameter, error) {
	var params []models.SystemParameter
	err := s.db.Where("tenant_id = ?", tenantID).Order("key ASC").Find(&params).Error
	return params, err
}

// DeleteParameter 删除系统参数
func (s *SiteSettingService) DeleteParameter(tenantID uint, key string) error {
	return s.db.Where("tenant_id = ? AND key = ?", tenantID, key).
		Delete(&models.SystemParameter{}).Error
}

// ========== 语言 ==========

// ListLanguages 查询租户语言列表
func (s *SiteSettingService) ListLanguages(tenantID uint) ([]models.Language, error) {
	var languages []models.Language
	err := s.db.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("is_default DESC, code ASC").Find(&languages).Error
	return languages, err
}

// AddLanguage 添加语言
func (s *SiteSettingService) AddLanguage(tenantID uint, language *models.Language) error {
	var count int64
	s.db.Model(&models.Language{}).
		Where("tenant_id = ? AND code = ?", tenantID, language.Code).Count(&count)
	if count > 0 {
		return fmt.Errorf("语言已存在: %s", language.Code)
	}

	language.TenantID = tenantID
	return s.db.Transaction(func(tx *gorm.DB) error {
		if language.IsDefault {
			if err := tx.Model(&models.Language{}).
				Where("tenant_id = ?", tenantID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(language).Error
	})
}

// SetDefaultLanguage 设置默认语言
func (s *SiteSettingService) SetDefaultLanguage(tenantID uint, code string) error {
	var language models.Language
	if err := s.db.Where("tenant_id = ? AND code = ?", tenantID, code).First(&language).Error; err != nil {
		return errors.NewNotFound("语言不存在: %s", code)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Language{}).
			Where("tenant_id = ?", tenantID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&language).Update("is_default", true).Error
	})
}
