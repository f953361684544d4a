package handlers

import (
	"net/http"

	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	service *services.FileService
}

func NewFileHandler(service *services.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// Upload 上传文件
func (h *FileHandler) Upload(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "未找到上传文件")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "读取上传文件失败")
		return
	}
	defer src.Close()

	file, err := h.service.Upload(tc.TenantID, tc.UserID, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), src)
	if err != nil {
		fail(c, err, "上传失败")
		return
	}
	response.Success(c, file)
}

// Download 下载文件
// 带预览令牌时免登录（供渲染端回源），否则要求已认证上下文
func (h *FileHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token != "" {
		file, reader, err := h.service.OpenByPreviewToken(token)
		if err != nil {
			fail(c, err, "下载失败")
			return
		}
		defer reader.Close()
		c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, map[string]string{
			"Content-Disposition": `attachment; filename="` + file.Name + `"`,
		})
		return
	}

	tc := tenantOf(c)
	if tc == nil {
		return
	}

	file, reader, err := h.service.Open(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "下载失败")
		return
	}
	defer reader.Close()
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, map[string]string{
		"Content-Disposition": `attachment; filename="` + file.Name + `"`,
	})
}

// PreviewURL 生成预览地址
func (h *FileHandler) PreviewURL(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	previewURL, err := h.service.GetPreviewURL(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "生成预览地址失败")
		return
	}
	response.Success(c, gin.H{"preview_url": previewURL})
}

// List 文件列表
func (h *FileHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	files, total, err := h.service.List(tc.TenantID, c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, files, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Delete 删除文件
func (h *FileHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.Delete(tc.TenantID, c.Param("uuid")); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}
