package services

import (
	"testing"

	"riveredge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func menuWithID(id uint, name string, parentID *uint, appUUID *string, sortOrder int) *models.Menu {
	m := &models.Menu{
		Name:            name,
		ParentID:        parentID,
		ApplicationUUID: appUUID,
		SortOrder:       sortOrder,
	}
	m.ID = id
	return m
}

func TestBuildTree(t *testing.T) {
	db, mock := newMockGorm(t)
	s := NewMenuServiceWith(db, nil)

	appA, appB := "app-a", "app-b"
	parent1 := uint(1)
	menus := []*models.Menu{
		menuWithID(1, "生产管理", nil, &appA, 1),
		menuWithID(2, "工单管理", &parent1, &appA, 1),
		menuWithID(3, "购销管理", nil, &appB, 1),
	}

	mock.ExpectQuery(`SELECT \* FROM "core_applications"`).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "sort_order"}).
			AddRow(10, appA, 20).
			AddRow(11, appB, 10))

	roots := s.buildTree(1, menus)
	require.Len(t, roots, 2)

	// 根节点按应用排序值排列
	assert.Equal(t, "购销管理", roots[0].Name)
	assert.Equal(t, "生产管理", roots[1].Name)

	// 子节点挂到父节点下
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "工单管理", roots[1].Children[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	db, mock := newMockGorm(t)
	s := NewMenuServiceWith(db, nil)

	missingParent := uint(99)
	menus := []*models.Menu{
		menuWithID(1, "孤儿菜单", &missingParent, nil, 1),
	}

	mock.ExpectQuery(`SELECT \* FROM "core_applications"`).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "sort_order"}))

	roots := s.buildTree(1, menus)
	require.Len(t, roots, 1)
	assert.Equal(t, "孤儿菜单", roots[0].Name)
}
