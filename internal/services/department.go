package services

import (
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"

	"gorm.io/gorm"
)

type DepartmentService struct {
	db *gorm.DB
}

func NewDepartmentService() *DepartmentService {
	return &DepartmentService{db: database.GetDB()}
}

// Create 创建部门
func (s *DepartmentService) Create(tenantID uint, name, code string, parentID *uint, sortOrder int) (*models.Department, error) {
	if name == "" {
		return nil, fmt.Errorf("部门名称不能为空")
	}

	if parentID != nil {
		var count int64
		s.db.Model(&models.Department{}).Where("tenant_id = ? AND id = ?", tenantID, *parentID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("父部门不存在")
		}
	}

	dept := &models.Department{
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		ParentID:  parentID,
		SortOrder: sortOrder,
		IsActive:  true,
	}
	err := s.db.Create(dept).Error
	return dept, err
}

// GetByUUID 根据UUID获取部门
func (s *DepartmentService) GetByUUID(tenantID uint, uuid string) (*models.Department, error) {
	var dept models.Department
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// GetTree 获取部门树
func (s *DepartmentService) GetTree(tenantID uint) ([]*models.Department, error) {
	var depts []*models.Department
	err := s.db.Where("tenant_id = ?", tenantID).Order("sort_order").Find(&depts).Error
	if err != nil {
		return nil, err
	}
	return buildDepartmentTree(depts), nil
}

// 由平铺列表在内存中组装部门树
func buildDepartmentTree(depts []*models.Department) []*models.Department {
	byID := make(map[uint]*models.Department, len(depts))
	for _, d := range depts {
		byID[d.ID] = d
	}
	var roots []*models.Department
	for _, d := range depts {
		if d.ParentID != nil {
			if parent, ok := byID[*d.ParentID]; ok {
				parent.Children = append(parent.Children, d)
				continue
			}
		}
		roots = append(roots, d)
	}
	return roots
}

// Update 更新部门
func (s *DepartmentService) Update(tenantID uint, uuid, name, code string, sortOrder int) (*models.Department, error) {
	dept, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}
	dept.Name = name
	dept.Code = code
	dept.SortOrder = sortOrder
	err = s.db.Save(dept).Error
	return dept, err
}

// Delete 删除部门
// 有子部门时拒绝删除；挂在该部门下的用户引用置空
func (s *DepartmentService) Delete(tenantID uint, uuid string) error {
	dept, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}

	var childCount int64
	s.db.Model(&models.Department{}).Where("tenant_id = ? AND parent_id = ?", tenantID, dept.ID).Count(&childCount)
	if childCount > 0 {
		return fmt.Errorf("存在子部门，不允许删除")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("tenant_id = ? AND department_id = ?", tenantID, dept.ID).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(dept).Error
	})
}

type PositionService struct {
	db *gorm.DB
}

func NewPositionService() *PositionService {
	return &PositionService{db: database.GetDB()}
}

// Create 创建岗位
func (s *PositionService) Create(tenantID uint, name, code string, sortOrder int) (*models.Position, error) {
	if name == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}
	position := &models.Position{
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		SortOrder: sortOrder,
		IsActive:  true,
	}
	err := s.db.Create(position).Error
	return position, err
}

// GetByTenant 获取岗位列表
func (s *PositionService) GetByTenant(tenantID uint) ([]models.Position, error) {
	var positions []models.Position
	err := s.db.Where("tenant_id = ?", tenantID).Order("sort_order").Find(&positions).Error
	return positions, err
}

// Update 更新岗位
func (s *PositionService) Update(tenantID uint, uuid, name, code string, sortOrder int) (*models.Position, error) {
	var position models.Position
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&position).Error; err != nil {
		return nil, err
	}
	position.Name = name
	position.Code = code
	position.SortOrder = sortOrder
	err := s.db.Save(&position).Error
	return &position, err
}

// Delete 删除岗位，用户引用置空
func (s *PositionService) Delete(tenantID uint, uuid string) error {
	var position models.Position
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&position).Error; err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("tenant_id = ? AND position_id = ?", tenantID, position.ID).
			Update("position_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&position).Error
	})
}
