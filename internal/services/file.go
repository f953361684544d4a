package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/config"
	"riveredge/pkg/errors"
	"riveredge/pkg/jwt"
	"riveredge/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	previewURLCacheTTL    = 30 * time.Minute
	rendererHealthTTL     = time.Minute
	rendererHealthTimeout = 5 * time.Second
)

type FileService struct {
	db         *gorm.DB
	cache      *cache.Cache
	httpClient *http.Client

	uploadDir string
	baseURL   string
	renderers []string
	rrCounter uint64 // 渲染端点轮询游标
}

func NewFileService() *FileService {
	cfg := config.GetConfig()
	return &FileService{
		db:         database.GetDB(),
		cache:      database.GetCache(),
		httpClient: &http.Client{Timeout: rendererHealthTimeout},
		uploadDir:  cfg.File.UploadDir,
		baseURL:    strings.TrimRight(cfg.Server.BaseURL, "/"),
		renderers:  cfg.Preview.KKFileViewURLs,
	}
}

// NewFileServiceWith 注入依赖的构造方式（测试用）
func NewFileServiceWith(db *gorm.DB, c *cache.Cache, client *http.Client, uploadDir, baseURL string, renderers []string) *FileService {
	if client == nil {
		client = &http.Client{Timeout: rendererHealthTimeout}
	}
	return &FileService{
		db: db, cache: c, httpClient: client,
		uploadDir: uploadDir, baseURL: strings.TrimRight(baseURL, "/"), renderers: renderers,
	}
}

// ========== 上传与下载 ==========

// Upload 保存文件内容并登记文件记录
func (s *FileService) Upload(tenantID, uploaderID uint, name, contentType string, src io.Reader) (*models.File, error) {
	if name == "" {
		return nil, errors.NewInvalidParam("文件名不能为空")
	}

	// 物理路径按租户分目录，文件名用随机UUID防碰撞
	dir := filepath.Join(s.uploadDir, fmt.Sprintf("tenant_%d", tenantID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %v", err)
	}
	storagePath := filepath.Join(dir, uuid.New().String()+filepath.Ext(name))

	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %v", err)
	}
	size, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("写入文件失败: %v", err)
	}

	file := &models.File{
		TenantID:    tenantID,
		Name:        name,
		StoragePath: storagePath,
		ContentType: contentType,
		Size:        size,
		UploaderID:  uploaderID,
	}
	if err := s.db.Create(file).Error; err != nil {
		os.Remove(storagePath)
		return nil, err
	}
	return file, nil
}

// GetByUUID 按UUID查询文件记录
func (s *FileService) GetByUUID(tenantID uint, fileUUID string) (*models.File, error) {
	var file models.File
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, fileUUID).First(&file).Error; err != nil {
		return nil, errors.NewNotFound("文件不存在")
	}
	return &file, nil
}

// Open 打开文件内容用于下载，调用方负责关闭
func (s *FileService) Open(tenantID uint, fileUUID string) (*models.File, io.ReadCloser, error) {
	file, err := s.GetByUUID(tenantID, fileUUID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := os.Open(file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("读取文件失败: %v", err)
	}
	return file, reader, nil
}

// OpenByPreviewToken 预览令牌换文件内容，供渲染端回源
func (s *FileService) OpenByPreviewToken(token string) (*models.File, io.ReadCloser, error) {
	claims, err := jwt.GetJWTManager().VerifyPreviewToken(token)
	if err != nil {
		return nil, nil, errors.NewForbidden("预览令牌无效或已过期")
	}
	return s.Open(claims.TenantID, claims.FileUUID)
}

// Delete 删除文件记录并移除物理文件
func (s *FileService) Delete(tenantID uint, fileUUID string) error {
	file, err := s.GetByUUID(tenantID, fileUUID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(file).Error; err != nil {
		return err
	}
	if err := os.Remove(file.StoragePath); err != nil && !os.IsNotExist(err) {
		logger.GetLogger().WithError(err).Warn("移除物理文件失败")
	}
	return nil
}

// List 查询文件列表
func (s *FileService) List(tenantID uint, keyword string, page, pageSize int) ([]models.File, int64, error) {
	var files []models.File
	var total int64

	query := s.db.Model(&models.File{}).Where("tenant_id = ?", tenantID)
	if keyword != "" {
		query = query.Where("name ILIKE ?", "%"+keyword+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&files).Error; err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// ========== 预览 ==========

// GetPreviewURL 生成文件预览地址
// 配置了kkFileView时走渲染端点，否则直接返回带令牌的下载地址
func (s *FileService) GetPreviewURL(tenantID uint, fileUUID string) (string, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("file:preview:%d:%s", tenantID, fileUUID)
	var cached string
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	if _, err := s.GetByUUID(tenantID, fileUUID); err != nil {
		return "", err
	}

	token, err := jwt.GetJWTManager().GeneratePreviewToken(fileUUID, tenantID)
	if err != nil {
		return "", err
	}
	downloadURL := fmt.Sprintf("%s/api/v1/core/files/%s/download?token=%s", s.baseURL, fileUUID, token)

	previewURL := downloadURL
	if renderer := s.pickRenderer(ctx); renderer != "" {
		previewURL = fmt.Sprintf("%s/onlinePreview?url=%s&token=%s",
			renderer, url.QueryEscape(downloadURL), token)
	}

	if err := s.cache.Set(ctx, cacheKey, previewURL, previewURLCacheTTL); err != nil {
		logger.GetLogger().WithError(err).Warn("缓存预览地址失败")
	}
	return previewURL, nil
}

// pickRenderer 轮询选取一个健康的渲染端点，全部不可用时返回空
func (s *FileService) pickRenderer(ctx context.Context) string {
	if len(s.renderers) == 0 {
		return ""
	}
	start := atomic.AddUint64(&s.rrCounter, 1)
	for i := 0; i < len(s.renderers); i++ {
		renderer := strings.TrimRight(s.renderers[(int(start)+i)%len(s.renderers)], "/")
		if s.rendererHealthy(ctx, renderer) {
			return renderer
		}
	}
	return ""
}

// rendererHealthy 健康结果按端点缓存1分钟
func (s *FileService) rendererHealthy(ctx context.Context, renderer string) bool {
	cacheKey := fmt.Sprintf("file:renderer:health:%s", renderer)
	var cached bool
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached
	}

	healthy := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, renderer+"/index", nil)
	if err == nil {
		if resp, err := s.httpClient.Do(req); err == nil {
			resp.Body.Close()
			healthy = resp.StatusCode < http.StatusInternalServerError
		}
	}

	if err := s.cache.Set(ctx, cacheKey, healthy, rendererHealthTTL); err != nil {
		logger.GetLogger().WithError(err).Warn("缓存渲染端点状态失败")
	}
	return healthy
}
