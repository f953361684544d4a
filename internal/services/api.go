package services

import (
	"fmt"
	"strings"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/errors"
	"riveredge/pkg/search"

	"gorm.io/gorm"
)

var allowedAPIMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

type APIService struct {
	db *gorm.DB
}

func NewAPIService() *APIService {
	return &APIService{db: database.GetDB()}
}

// NewAPIServiceWith 注入依赖的构造方式（测试用）
func NewAPIServiceWith(db *gorm.DB) *APIService {
	return &APIService{db: db}
}

// Create 登记托管接口
func (s *APIService) Create(tenantID uint, api *models.API) error {
	api.Method = strings.ToUpper(api.Method)
	if api.Method == "" {
		api.Method = "GET"
	}
	if !allowedAPIMethods[api.Method] {
		return errors.NewInvalidParam("不支持的请求方法: %s", api.Method)
	}
	if api.Path == "" {
		return errors.NewInvalidParam("接口路径不能为空")
	}

	var count int64
	s.db.Model(&models.API{}).
		Where("tenant_id = ? AND code = ?", tenantID, api.Code).Count(&count)
	if count > 0 {
		return fmt.Errorf("接口编码已存在: %s", api.Code)
	}

	api.TenantID = tenantID
	return s.db.Create(api).Error
}

// Update 更新托管接口，系统内置接口只允许启停
func (s *APIService) Update(tenantID uint, id uint, updates map[string]interface{}) (*models.API, error) {
	var api models.API
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&api).Error; err != nil {
		return nil, err
	}

	if api.IsSystem {
		for key := range updates {
			if key != "is_active" {
				return nil, errors.NewForbidden("系统内置接口只允许启停")
			}
		}
	}

	if method, ok := updates["method"].(string); ok {
		method = strings.ToUpper(method)
		if !allowedAPIMethods[method] {
			return nil, errors.NewInvalidParam("不支持的请求方法: %s", method)
		}
		updates["method"] = method
	}

	delete(updates, "tenant_id")
	delete(updates, "code")
	delete(updates, "is_system")
	if err := s.db.Model(&api).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &api, nil
}

// Delete 删除托管接口，被数据集引用时拒绝
func (s *APIService) Delete(tenantID uint, id uint) error {
	var api models.API
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&api).Error; err != nil {
		return err
	}
	if api.IsSystem {
		return errors.NewForbidden("系统内置接口不允许删除")
	}

	var refCount int64
	s.db.Model(&models.Dataset{}).
		Where("tenant_id = ? AND (query_config->>'api_uuid' = ? OR query_config->>'api_code' = ?)",
			tenantID, api.UUID, api.Code).Count(&refCount)
	if refCount > 0 {
		return errors.New(errors.CodeDependencyConflict, "该接口被 %d 个数据集引用，无法删除", refCount)
	}

	return s.db.Delete(&api).Error
}

// GetByUUID 按UUID查询托管接口
func (s *APIService) GetByUUID(tenantID uint, uuid string) (*models.API, error) {
	var api models.API
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&api).Error; err != nil {
		return nil, err
	}
	return &api, nil
}

// List 查询托管接口列表
func (s *APIService) List(tenantID uint, opts search.Options, page, pageSize int) ([]models.API, int64, error) {
	var apis []models.API
	var total int64

	opts.KeywordFields = []string{"code", "name", "path"}
	opts.AllowedSorts = []string{"code", "name", "method", "created_at"}
	query := s.db.Model(&models.API{}).Where("tenant_id = ?", tenantID)
	query = search.Apply(query, opts)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&apis).Error; err != nil {
		return nil, 0, err
	}
	return apis, total, nil
}
