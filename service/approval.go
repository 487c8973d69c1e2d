package service

import (
	"context"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"
)

// 审批流水线上的待办状态，按先后顺序
var pendingPipeline = []models.WorkStatus{
	models.StatusTechnicalApprovalPending,
	models.StatusAdministrativeApprovalPending,
	models.StatusTenderPending,
	models.StatusWorkOrderPending,
}

var stagePending = map[models.ApprovalStage]models.WorkStatus{
	models.StageTechnical:      models.StatusTechnicalApprovalPending,
	models.StageAdministrative: models.StatusAdministrativeApprovalPending,
}

// Decide 技术审批/行政审批的通过或驳回
//
// 重复审批直接覆盖原记录，文档替换，图片追加。
func (s *ProposalService) Decide(ctx context.Context, proposalID string, stage models.ApprovalStage, action models.ApprovalAction, requester models.CurrentUser, fields models.DecisionFields, uploads []models.Upload) (*models.ApprovalRecord, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	if err := validateDecision(stage, action, fields); err != nil {
		return nil, err
	}
	if err := validateUploads(uploads, stageUploads); err != nil {
		return nil, err
	}

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkDecisionPrerequisite(proposal, stage); err != nil {
		return nil, err
	}

	files, err := s.uploadAll(ctx, uploads, uploadFolder(id, string(stage)+"-approval"))
	if err != nil {
		return nil, err
	}

	var (
		record   *models.ApprovalRecord
		replaced *models.Attachment
	)
	_, err = s.mutate(ctx, id, func(p *models.WorkProposal) error {
		prev := p.Approval(stage)
		if prev != nil && files.appliedTo(prev.AttachedFile, prev.AttachedImages) {
			record = prev
			return errAlreadyApplied
		}
		if err := checkDecisionPrerequisite(p, stage); err != nil {
			return err
		}
		now := s.now()

		record = &models.ApprovalRecord{
			ApprovalNumber: strings.TrimSpace(fields.ApprovalNumber),
			ApprovedBy:     requester.Ref(),
			ApprovalDate:   now,
			Remarks:        fields.Remarks,
			CreatedAt:      now,
		}
		if prev != nil {
			record.CreatedAt = prev.CreatedAt
			record.AttachedFile = prev.AttachedFile
			record.AttachedImages = append(models.AttachmentList{}, prev.AttachedImages...)
		}

		switch action {
		case models.ActionApprove:
			record.Status = models.ApprovalApproved
			if stage == models.StageAdministrative {
				record.ApprovedAmount = *fields.ApprovedAmount
				record.GovtDistrictAS = strings.TrimSpace(fields.GovtDistrictAS)
				p.SanctionAmount = record.ApprovedAmount
			}
		case models.ActionReject:
			record.Status = models.ApprovalRejected
			record.RejectionReason = strings.TrimSpace(fields.RejectionReason)
		}

		replaced = mergeAttachments(&record.AttachedFile, &record.AttachedImages, files, stageUploads)
		p.SetApproval(stage, record)
		invalidateDownstream(p, stage, action)
		p.CurrentStatus = advanceAfterDecision(p.CurrentStatus, stage, action)
		return nil
	})
	if err != nil {
		s.discard(ctx, files)
		return nil, err
	}
	if replaced != nil {
		s.deleteObjects(ctx, replaced.StorageID)
	}

	approvalDecisions.WithLabelValues(string(stage), string(action)).Inc()
	utils.LogInfo(map[string]interface{}{
		"proposalId":     id.Hex(),
		"stage":          stage,
		"action":         action,
		"approvalNumber": record.ApprovalNumber,
		"operator":       requester.Username,
	}, "[审批] 审批完成")
	return record, nil
}

// validateDecision 按阶段和动作检查必填字段
func validateDecision(stage models.ApprovalStage, action models.ApprovalAction, fields models.DecisionFields) error {
	if stage != models.StageTechnical && stage != models.StageAdministrative {
		return utils.CreateInvalidArgumentError("无效的审批阶段: " + string(stage))
	}

	switch action {
	case models.ActionApprove:
		if strings.TrimSpace(fields.ApprovalNumber) == "" {
			return utils.CreateMissingFieldError("approvalNumber")
		}
		if stage == models.StageAdministrative {
			if fields.ApprovedAmount == nil {
				return utils.CreateMissingFieldError("approvedAmount")
			}
			if *fields.ApprovedAmount < 0 {
				return utils.CreateValidationError("approvedAmount", "approvedAmount 不能为负数")
			}
			if strings.TrimSpace(fields.GovtDistrictAS) == "" {
				return utils.CreateMissingFieldError("govtDistrictAS")
			}
		}
	case models.ActionReject:
		if strings.TrimSpace(fields.RejectionReason) == "" {
			return utils.CreateMissingFieldError("rejectionReason")
		}
	default:
		return utils.CreateInvalidArgumentError("无效的审批动作: " + string(action))
	}
	return nil
}

// checkDecisionPrerequisite 行政审批须在技术审批通过之后
func checkDecisionPrerequisite(p *models.WorkProposal, stage models.ApprovalStage) error {
	if stage == models.StageAdministrative && !p.IsApproved(models.StageTechnical) {
		return utils.CreateValidationError("technicalApproval", "技术审批尚未通过")
	}
	return nil
}

// invalidateDownstream 技术审批被驳回后，已通过的行政审批退回待审，须重新审批
func invalidateDownstream(p *models.WorkProposal, stage models.ApprovalStage, action models.ApprovalAction) {
	if stage != models.StageTechnical || action != models.ActionReject {
		return
	}
	if admin := p.AdministrativeApproval; admin != nil && admin.Status == models.ApprovalApproved {
		admin.Status = models.ApprovalPending
	}
}

// advanceAfterDecision 通过时推进到下一待办状态，驳回时退回本阶段待办状态
//
// 只在审批流水线内移动，施工阶段的状态不受审批影响。
func advanceAfterDecision(current models.WorkStatus, stage models.ApprovalStage, action models.ApprovalAction) models.WorkStatus {
	pending := stagePending[stage]
	stageIdx := pipelineIndex(pending)
	currentIdx := pipelineIndex(current)
	if currentIdx < 0 {
		return current
	}

	switch action {
	case models.ActionApprove:
		if currentIdx == stageIdx {
			return pendingPipeline[stageIdx+1]
		}
	case models.ActionReject:
		if currentIdx > stageIdx {
			return pending
		}
	}
	return current
}

func pipelineIndex(status models.WorkStatus) int {
	for i, s := range pendingPipeline {
		if s == status {
			return i
		}
	}
	return -1
}

// mergeAttachments 新文档替换旧文档，新图片追加，返回被替换的文档
func mergeAttachments(file **models.Attachment, images *models.AttachmentList, files *uploadedFiles, rule uploadRule) *models.Attachment {
	var replaced *models.Attachment
	if doc := files.first(rule.fileField); doc != nil {
		replaced = *file
		*file = doc
	}
	*images = append(*images, files.all(rule.imageField)...)
	return replaced
}
