package controllers

import (
	"net/http"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/service"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// ProposalController 工程提案接口
type ProposalController struct {
	svc *service.ProposalService
}

// NewProposalController 创建提案控制器
func NewProposalController(svc *service.ProposalService) *ProposalController {
	return &ProposalController{svc: svc}
}

// Create 立项
func (pc *ProposalController) Create(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var req models.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}

	proposal, err := pc.svc.CreateProposal(c.Request.Context(), *user, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, proposal, "提案创建成功", http.StatusCreated)
}

// Get 提案详情，?entry= 选择进度条目（all 或位置序号）
func (pc *ProposalController) Get(c *gin.Context) {
	view, err := pc.svc.GetProposal(c.Request.Context(), c.Param("id"), c.Query("entry"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, view, "")
}

// AppendProgress 提交进度
func (pc *ProposalController) AppendProgress(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var payload models.ProgressPayload
	uploads, err := readSubmission(c, &payload)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	entry, err := pc.svc.AppendProgress(c.Request.Context(), c.Param("id"), *user, payload, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, entry, "进度提交成功", http.StatusCreated)
}

// RemoveProgress 删除进度条目
func (pc *ProposalController) RemoveProgress(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	if err := pc.svc.RemoveProgress(c.Request.Context(), c.Param("id"), c.Param("entryId"), *user); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "进度记录已删除")
}

// SetStatus 设置施工状态
func (pc *ProposalController) SetStatus(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var req models.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateInvalidArgumentError("无效的请求数据: "+err.Error()))
		return
	}
	if req.Status == "" {
		utils.HandleError(c, utils.CreateMissingFieldError("status"))
		return
	}

	proposal, err := pc.svc.SetStatus(c.Request.Context(), c.Param("id"), *user, req.Status)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"currentStatus": proposal.CurrentStatus,
		"version":       proposal.Version,
	}, "状态已更新")
}

// Decide 技术/行政审批
func (pc *ProposalController) Decide(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var fields models.DecisionFields
	uploads, err := readSubmission(c, &fields)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	stage := models.ApprovalStage(c.Param("stage"))
	action := models.ApprovalAction(c.Param("action"))
	record, err := pc.svc.Decide(c.Request.Context(), c.Param("id"), stage, action, *user, fields, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, record, "审批已提交")
}

// RecordTender 登记招标
func (pc *ProposalController) RecordTender(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var fields models.TenderFields
	uploads, err := readSubmission(c, &fields)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	record, err := pc.svc.RecordTender(c.Request.Context(), c.Param("id"), *user, fields, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, record, "招标信息已登记")
}

// RecordWorkOrder 登记工作令
func (pc *ProposalController) RecordWorkOrder(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	var fields models.WorkOrderFields
	uploads, err := readSubmission(c, &fields)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	record, err := pc.svc.RecordWorkOrder(c.Request.Context(), c.Param("id"), *user, fields, uploads)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, record, "工作令已登记")
}
