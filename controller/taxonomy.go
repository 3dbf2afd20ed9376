package controller

import (
	"errors"
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/service/taxonomy"
)

// TaxonomyController 知识领域与主题的后台接口
type TaxonomyController struct {
	service taxonomy.TaxonomyService
	logger  *core.ZapLogger
}

func NewTaxonomyController(service taxonomy.TaxonomyService, logger *core.ZapLogger) *TaxonomyController {
	return &TaxonomyController{service: service, logger: logger}
}

// respondTaxonomyError 业务错误 → 状态码
func (ctrl *TaxonomyController) respondTaxonomyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, taxonomy.ErrNotFound):
		jsonError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, taxonomy.ErrSlugExists):
		jsonError(c, http.StatusConflict, taxonomy.ErrSlugExists.Error())
	case errors.Is(err, taxonomy.ErrDomainNotFound):
		jsonError(c, http.StatusBadRequest, taxonomy.ErrDomainNotFound.Error())
	default:
		jsonError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (ctrl *TaxonomyController) bindID(c *gin.Context) (ids.ID, bool) {
	id, err := ids.Decode(c.Param("id"))
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func (ctrl *TaxonomyController) bindQuery(c *gin.Context) (*dto.TaxonomyQueryDTO, bool) {
	var query dto.TaxonomyQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid query parameters")
		return nil, false
	}
	return &query, true
}

func (ctrl *TaxonomyController) bindBody(c *gin.Context, operation string, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		ctrl.logger.Warn("请求体校验失败", zap.String("operation", operation), zap.Error(err))
		jsonError(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ListDomainsHandler 领域列表
// @Summary 领域列表
// @Description search 在中英文名与 slug 上模糊匹配，按 sort_order 升序
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param query query dto.TaxonomyQueryDTO false "查询条件"
// @Success 200 {object} vo.DomainListVO
// @Router /admin/api/domains [get]
func (ctrl *TaxonomyController) ListDomainsHandler(c *gin.Context) {
	query, ok := ctrl.bindQuery(c)
	if !ok {
		return
	}
	out, err := ctrl.service.ListDomains(c.Request.Context(), query)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateDomainHandler 创建领域
// @Summary 创建领域
// @Tags 知识分类 (Taxonomy)
// @Accept json
// @Produce json
// @Param body body dto.CreateDomainDTO true "领域"
// @Success 201 {object} vo.DomainVO
// @Failure 400 {object} vo.ErrorVO
// @Failure 409 {object} vo.ErrorVO "slug already exists"
// @Router /admin/api/domains [post]
func (ctrl *TaxonomyController) CreateDomainHandler(c *gin.Context) {
	var in dto.CreateDomainDTO
	if !ctrl.bindBody(c, "TaxonomyController.CreateDomainHandler", &in) {
		return
	}
	out, err := ctrl.service.CreateDomain(c.Request.Context(), &in)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetDomainHandler 领域详情
// @Summary 领域详情
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param id path string true "领域 ID"
// @Success 200 {object} vo.DomainVO
// @Failure 404 {object} vo.ErrorVO
// @Router /admin/api/knowledge/domains/{id} [get]
func (ctrl *TaxonomyController) GetDomainHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	out, err := ctrl.service.GetDomain(c.Request.Context(), id)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateDomainHandler 更新领域
// @Summary 更新领域
// @Description 部分更新，未提供的字段保持不变
// @Tags 知识分类 (Taxonomy)
// @Accept json
// @Produce json
// @Param id path string true "领域 ID"
// @Param body body dto.UpdateDomainDTO true "待更新字段"
// @Success 200 {object} vo.DomainVO
// @Failure 404 {object} vo.ErrorVO
// @Failure 409 {object} vo.ErrorVO
// @Router /admin/api/knowledge/domains/{id} [put]
func (ctrl *TaxonomyController) UpdateDomainHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	var in dto.UpdateDomainDTO
	if !ctrl.bindBody(c, "TaxonomyController.UpdateDomainHandler", &in) {
		return
	}
	out, err := ctrl.service.UpdateDomain(c.Request.Context(), id, &in)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteDomainHandler 软删除领域
// @Summary 删除领域
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param id path string true "领域 ID"
// @Success 200 {object} vo.SuccessVO
// @Failure 404 {object} vo.ErrorVO
// @Router /admin/api/knowledge/domains/{id} [delete]
func (ctrl *TaxonomyController) DeleteDomainHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	if err := ctrl.service.DeleteDomain(c.Request.Context(), id); err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

// ListTopicsHandler 主题列表
// @Summary 主题列表
// @Description name_zh、name_en、slug 为精确匹配，任一存在时忽略 search
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param query query dto.TaxonomyQueryDTO false "查询条件"
// @Success 200 {object} vo.TopicListVO
// @Router /admin/api/knowledge/topics [get]
func (ctrl *TaxonomyController) ListTopicsHandler(c *gin.Context) {
	query, ok := ctrl.bindQuery(c)
	if !ok {
		return
	}
	out, err := ctrl.service.ListTopics(c.Request.Context(), query)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateTopicHandler 创建主题
// @Summary 创建主题
// @Tags 知识分类 (Taxonomy)
// @Accept json
// @Produce json
// @Param body body dto.CreateTopicDTO true "主题"
// @Success 201 {object} vo.TopicVO
// @Failure 400 {object} vo.ErrorVO
// @Failure 409 {object} vo.ErrorVO "slug already exists"
// @Router /admin/api/knowledge/topics [post]
func (ctrl *TaxonomyController) CreateTopicHandler(c *gin.Context) {
	var in dto.CreateTopicDTO
	if !ctrl.bindBody(c, "TaxonomyController.CreateTopicHandler", &in) {
		return
	}
	out, err := ctrl.service.CreateTopic(c.Request.Context(), &in)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetTopicHandler 主题详情
// @Summary 主题详情
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param id path string true "主题 ID"
// @Success 200 {object} vo.TopicVO
// @Failure 404 {object} vo.ErrorVO
// @Router /admin/api/knowledge/topics/{id} [get]
func (ctrl *TaxonomyController) GetTopicHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	out, err := ctrl.service.GetTopic(c.Request.Context(), id)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateTopicHandler 更新主题
// @Summary 更新主题
// @Tags 知识分类 (Taxonomy)
// @Accept json
// @Produce json
// @Param id path string true "主题 ID"
// @Param body body dto.UpdateTopicDTO true "待更新字段"
// @Success 200 {object} vo.TopicVO
// @Failure 404 {object} vo.ErrorVO
// @Failure 409 {object} vo.ErrorVO
// @Router /admin/api/knowledge/topics/{id} [put]
func (ctrl *TaxonomyController) UpdateTopicHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	var in dto.UpdateTopicDTO
	if !ctrl.bindBody(c, "TaxonomyController.UpdateTopicHandler", &in) {
		return
	}
	out, err := ctrl.service.UpdateTopic(c.Request.Context(), id, &in)
	if err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteTopicHandler 软删除主题
// @Summary 删除主题
// @Tags 知识分类 (Taxonomy)
// @Produce json
// @Param id path string true "主题 ID"
// @Success 200 {object} vo.SuccessVO
// @Failure 404 {object} vo.ErrorVO
// @Router /admin/api/knowledge/topics/{id} [delete]
func (ctrl *TaxonomyController) DeleteTopicHandler(c *gin.Context) {
	id, ok := ctrl.bindID(c)
	if !ok {
		return
	}
	if err := ctrl.service.DeleteTopic(c.Request.Context(), id); err != nil {
		ctrl.respondTaxonomyError(c, err)
		return
	}
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

// RegisterRoutes group 为 /admin/api
func (ctrl *TaxonomyController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/domains", ctrl.ListDomainsHandler)
	group.POST("/domains", ctrl.CreateDomainHandler)

	knowledge := group.Group("/knowledge")
	knowledge.GET("/domains/:id", ctrl.GetDomainHandler)
	knowledge.PUT("/domains/:id", ctrl.UpdateDomainHandler)
	knowledge.DELETE("/domains/:id", ctrl.DeleteDomainHandler)

	knowledge.GET("/topics", ctrl.ListTopicsHandler)
	knowledge.POST("/topics", ctrl.CreateTopicHandler)
	knowledge.GET("/topics/:id", ctrl.GetTopicHandler)
	knowledge.PUT("/topics/:id", ctrl.UpdateTopicHandler)
	knowledge.DELETE("/topics/:id", ctrl.DeleteTopicHandler)
}
