package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	BaseModel
	TenantID      uint       `json:"tenant_id" gorm:"not null;index:idx_user_tenant_username"`
	Username      string     `json:"username" gorm:"not null;size:50;index:idx_user_tenant_username"` // 租户内唯一
	Email         string     `json:"email" gorm:"size:100;index"`
	PasswordHash  string     `json:"-" gorm:"not null;size:255"`
	Name          string     `json:"name" gorm:"size:100"`
	Phone         *string    `json:"phone" gorm:"size:20"`
	Avatar        *string    `json:"avatar" gorm:"size:255"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	IsInfraAdmin  bool       `json:"is_infra_admin" gorm:"default:false"`  // 平台级管理员，可跨租户
	IsTenantAdmin bool       `json:"is_tenant_admin" gorm:"default:false"` // 租户管理员
	DepartmentID  *uint      `json:"department_id" gorm:"index"`
	PositionID    *uint      `json:"position_id" gorm:"index"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	// 关联关系
	Tenant     *Tenant     `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Position   *Position   `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	Roles      []Role      `gorm:"many2many:core_user_roles;" json:"roles,omitempty"`
}

// TableName 表名
func (u *User) TableName() string {
	return "core_users"
}

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Department 部门模型，parent_id构成树
type Department struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:100"`
	Code      string `json:"code" gorm:"size:100;index"`
	ParentID  *uint  `json:"parent_id" gorm:"index"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	Children []*Department `json:"children,omitempty" gorm:"-"`
}

// TableName 表名
func (d *Department) TableName() string {
	return "core_departments"
}

// Position 岗位模型
type Position struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:100"`
	Code      string `json:"code" gorm:"size:100;index"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (p *Position) TableName() string {
	return "core_positions"
}
