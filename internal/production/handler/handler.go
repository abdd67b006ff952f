package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/middleware"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/repository"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Allocation *AllocationHandler
	Register   *RegisterHandler
	Report     *ReportHandler
	Catalog    *CatalogHandler
	SSE        *SSEHandler
}

// NewHandlers 创建处理器集合；repos 可为nil（编辑日志关闭）
func NewHandlers(svc *service.Services, repos *repository.Repositories, hub *sse.Hub) *Handlers {
	var journal *repository.EditLogRepository
	if repos != nil {
		journal = repos.EditLog
	}
	return &Handlers{
		Allocation: NewAllocationHandler(svc.Allocation, svc.Dashboard),
		Register:   NewRegisterHandler(svc.Sessions, journal),
		Report:     NewReportHandler(svc.Sessions, svc.Archive),
		Catalog:    NewCatalogHandler(svc.Catalog, svc.Master),
		SSE:        NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// BadGateway 后端返回错误
func BadGateway(c *gin.Context, message string) {
	Error(c, 50200, message)
}

// ServiceUnavailable 后端不可达
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, 50300, message)
}

// BackendError 按错误类型转换为响应：校验 400，后端 4xx 原样，其余 502/503
func BackendError(c *gin.Context, err error) {
	var ve *entity.ViewError
	switch {
	case errors.As(err, &ve):
		switch ve.Kind {
		case entity.ViewErrorValidation:
			BadRequest(c, ve.Message)
		case entity.ViewErrorTransport:
			ServiceUnavailable(c, ve.Message)
		default:
			if ve.StatusCode >= 400 && ve.StatusCode < 500 {
				Error(c, ve.StatusCode*100, ve.Message)
				return
			}
			BadGateway(c, ve.Message)
		}
	case errors.Is(err, textileapi.ErrInvalidRequest):
		BadRequest(c, err.Error())
	case textileapi.IsTransport(err):
		ServiceUnavailable(c, "Backend unreachable")
	case textileapi.IsServer(err):
		status := textileapi.StatusCode(err)
		if status >= 400 && status < 500 {
			Error(c, status*100, textileapi.Detail(err))
			return
		}
		BadGateway(c, textileapi.Detail(err))
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetSessionID 视图会话ID
func GetSessionID(c *gin.Context) string {
	if id := c.GetString(middleware.CtxSessionID); id != "" {
		return id
	}
	return middleware.DefaultSession
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// requestContext 请求上下文，带上操作人
func requestContext(c *gin.Context) context.Context {
	return service.WithUser(c.Request.Context(), GetUserID(c))
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		BadRequest(c, "invalid "+name)
		return nil, false
	}
	return &n, true
}

// sendFile 下载响应
func sendFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
