package services

import (
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/errors"
	"riveredge/pkg/search"

	"gorm.io/gorm"
)

type DictionaryService struct {
	db *gorm.DB
}

func NewDictionaryService() *DictionaryService {
	return &DictionaryService{db: database.GetDB()}
}

// NewDictionaryServiceWith 注入依赖的构造方式（测试用）
func NewDictionaryServiceWith(db *gorm.DB) *DictionaryService {
	return &DictionaryService{db: db}
}

// Create 创建字典
func (s *DictionaryService) Create(tenantID uint, dict *models.Dictionary) error {
	var count int64
	s.db.Model(&models.Dictionary{}).
		Where("tenant_id = ? AND code = ?", tenantID, dict.Code).Count(&count)
	if count > 0 {
		return fmt.Errorf("字典编码已存在: %s", dict.Code)
	}

	dict.TenantID = tenantID
	for i := range dict.Items {
		dict.Items[i].TenantID = tenantID
	}
	return s.db.Create(dict).Error
}

// Update 更新字典
func (s *DictionaryService) Update(tenantID uint, id uint, updates map[string]interface{}) (*models.Dictionary, error) {
	var dict models.Dictionary
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&dict).Error; err != nil {
		return nil, err
	}

	delete(updates, "tenant_id")
	delete(updates, "code")
	if err := s.db.Model(&dict).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &dict, nil
}

// Delete 删除字典，被编码规则引用时拒绝
func (s *DictionaryService) Delete(tenantID uint, id uint) error {
	var dict models.Dictionary
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&dict).Error; err != nil {
		return err
	}

	var refCount int64
	s.db.Model(&models.CodeRule{}).
		Where("tenant_id = ? AND (expression LIKE ? OR rule_components::text LIKE ?)",
			tenantID, "%{DICT:"+dict.Code+"}%", "%\""+dict.Code+"\"%").Count(&refCount)
	if refCount > 0 {
		return errors.New(errors.CodeDependencyConflict, "该字典被 %d 条编码规则引用，无法删除", refCount)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND dictionary_id = ?", tenantID, id).
			Delete(&models.DictionaryItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dict).Error
	})
}

// GetByCode 按编码查询字典，包含启用的字典项
func (s *DictionaryService) GetByCode(tenantID uint, code string) (*models.Dictionary, error) {
	var dict models.Dictionary
	err := s.db.Preload("Items", "is_active = ?", true).
		Where("tenant_id = ? AND code = ?", tenantID, code).First(&dict).Error
	if err != nil {
		return nil, errors.NewNotFound("字典不存在: %s", code)
	}
	return &dict, nil
}

// List 查询字典列表
func (s *DictionaryService) List(tenantID uint, opts search.Options, page, pageSize int) ([]models.Dictionary, int64, error) {
	var dicts []models.Dictionary
	var total int64

	opts.KeywordFields = []string{"code", "name", "description"}
	opts.AllowedSorts = []string{"code", "name", "created_at"}
	query := s.db.Model(&models.Dictionary{}).Where("tenant_id = ?", tenantID)
	query = search.Apply(query, opts)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&dicts).Error; err != nil {
		return nil, 0, err
	}
	return dicts, total, nil
}

// ========== 字典项 ==========

// AddItem 添加字典项
func (s *DictionaryService) AddItem(tenantID uint, dictionaryID uint, item *models.DictionaryItem) error {
	var count int64
	s.db.Model(&models.Dictionary{}).
		Where("tenant_id = ? AND id = ?", tenantID, dictionaryID).Count(&count)
	if count == 0 {
		return errors.NewNotFound("字典不存在")
	}

	item.TenantID = tenantID
	item.DictionaryID = dictionaryID

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 默认项唯一
		if item.IsDefault {
			if err := tx.Model(&models.DictionaryItem{}).
				Where("tenant_id = ? AND dictionary_id = ?", tenantID, dictionaryID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(item).Error
	})
}

// UpdateItem 更新字典项
func (s *DictionaryService) UpdateItem(tenantID uint, itemID uint, updates map[string]interface{}) (*models.DictionaryItem, error) {
	var item models.DictionaryItem
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, itemID).First(&item).Error; err != nil {
		return nil, err
	}

	delete(updates, "tenant_id")
	delete(updates, "dictionary_id")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if isDefault, ok := updates["is_default"].(bool); ok && isDefault {
			if err := tx.Model(&models.DictionaryItem{}).
				Where("tenant_id = ? AND dictionary_id = ? AND id <> ?", tenantID, item.DictionaryID, itemID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&item).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem 删除字典项
func (s *DictionaryService) DeleteItem(tenantID uint, itemID uint) error {
	return s.db.Where("tenant_id = ? AND id = ?", tenantID, itemID).
		Delete(&models.DictionaryItem{}).Error
}
