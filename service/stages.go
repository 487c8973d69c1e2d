package service

import (
	"context"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"
)

// RecordTender 登记招标信息，须在行政审批通过之后
func (s *ProposalService) RecordTender(ctx context.Context, proposalID string, requester models.CurrentUser, fields models.TenderFields, uploads []models.Upload) (*models.TenderRecord, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields.TenderNumber) == "" {
		return nil, utils.CreateMissingFieldError("tenderNumber")
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	if err := validateUploads(uploads, stageUploads); err != nil {
		return nil, err
	}

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTenderPrerequisite(proposal); err != nil {
		return nil, err
	}

	files, err := s.uploadAll(ctx, uploads, uploadFolder(id, "tender"))
	if err != nil {
		return nil, err
	}

	var (
		record   *models.TenderRecord
		replaced *models.Attachment
	)
	_, err = s.mutate(ctx, id, func(p *models.WorkProposal) error {
		if prev := p.TenderProcess; prev != nil && files.appliedTo(prev.AttachedFile, prev.AttachedImages) {
			record = prev
			return errAlreadyApplied
		}
		if err := checkTenderPrerequisite(p); err != nil {
			return err
		}
		now := s.now()
		record = &models.TenderRecord{
			TenderNumber:   strings.TrimSpace(fields.TenderNumber),
			TenderDate:     fields.TenderDate,
			ContractorName: fields.ContractorName,
			TenderAmount:   fields.TenderAmount,
			Remarks:        fields.Remarks,
			RecordedBy:     requester.Ref(),
			CreatedAt:      now,
		}
		if prev := p.TenderProcess; prev != nil {
			record.CreatedAt = prev.CreatedAt
			record.AttachedFile = prev.AttachedFile
			record.AttachedImages = append(models.AttachmentList{}, prev.AttachedImages...)
		}
		replaced = mergeAttachments(&record.AttachedFile, &record.AttachedImages, files, stageUploads)
		p.TenderProcess = record
		if p.CurrentStatus == models.StatusTenderPending {
			p.CurrentStatus = models.StatusWorkOrderPending
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, files)
		return nil, err
	}
	if replaced != nil {
		s.deleteObjects(ctx, replaced.StorageID)
	}

	stageRecords.WithLabelValues("tender").Inc()
	utils.LogInfo(map[string]interface{}{
		"proposalId":   id.Hex(),
		"tenderNumber": record.TenderNumber,
		"operator":     requester.Username,
	}, "[招标] 登记招标信息")
	return record, nil
}

// RecordWorkOrder 登记工作令，须已有招标记录且审批仍有效
func (s *ProposalService) RecordWorkOrder(ctx context.Context, proposalID string, requester models.CurrentUser, fields models.WorkOrderFields, uploads []models.Upload) (*models.WorkOrderRecord, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fields.WorkOrderNumber) == "" {
		return nil, utils.CreateMissingFieldError("workOrderNumber")
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	if err := validateUploads(uploads, stageUploads); err != nil {
		return nil, err
	}

	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkWorkOrderPrerequisite(proposal); err != nil {
		return nil, err
	}

	files, err := s.uploadAll(ctx, uploads, uploadFolder(id, "work-order"))
	if err != nil {
		return nil, err
	}

	var (
		record   *models.WorkOrderRecord
		replaced *models.Attachment
	)
	_, err = s.mutate(ctx, id, func(p *models.WorkProposal) error {
		if prev := p.WorkOrder; prev != nil && files.appliedTo(prev.AttachedFile, prev.AttachedImages) {
			record = prev
			return errAlreadyApplied
		}
		if err := checkWorkOrderPrerequisite(p); err != nil {
			return err
		}
		now := s.now()
		record = &models.WorkOrderRecord{
			WorkOrderNumber:        strings.TrimSpace(fields.WorkOrderNumber),
			WorkOrderDate:          fields.WorkOrderDate,
			ContractorName:         fields.ContractorName,
			WorkOrderAmount:        fields.WorkOrderAmount,
			StartDate:              fields.StartDate,
			ExpectedCompletionDate: fields.ExpectedCompletionDate,
			Remarks:                fields.Remarks,
			IssuedBy:               requester.Ref(),
			CreatedAt:              now,
		}
		if prev := p.WorkOrder; prev != nil {
			record.CreatedAt = prev.CreatedAt
			record.AttachedFile = prev.AttachedFile
			record.AttachedImages = append(models.AttachmentList{}, prev.AttachedImages...)
		}
		replaced = mergeAttachments(&record.AttachedFile, &record.AttachedImages, files, stageUploads)
		p.WorkOrder = record
		if p.CurrentStatus == models.StatusWorkOrderPending {
			p.CurrentStatus = models.StatusWorkNotStarted
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, files)
		return nil, err
	}
	if replaced != nil {
		s.deleteObjects(ctx, replaced.StorageID)
	}

	stageRecords.WithLabelValues("work_order").Inc()
	utils.LogInfo(map[string]interface{}{
		"proposalId":      id.Hex(),
		"workOrderNumber": record.WorkOrderNumber,
		"operator":        requester.Username,
	}, "[工作令] 登记工作令")
	return record, nil
}

// checkTenderPrerequisite 技术审批和行政审批都须处于通过状态
func checkTenderPrerequisite(p *models.WorkProposal) error {
	if !p.IsApproved(models.StageTechnical) {
		return utils.CreateValidationError("technicalApproval", "技术审批尚未通过")
	}
	if !p.IsApproved(models.StageAdministrative) {
		return utils.CreateValidationError("administrativeApproval", "行政审批尚未通过")
	}
	return nil
}

func checkWorkOrderPrerequisite(p *models.WorkProposal) error {
	if err := checkTenderPrerequisite(p); err != nil {
		return err
	}
	if p.TenderProcess == nil {
		return utils.CreateValidationError("tenderProcess", "尚未登记招标信息")
	}
	return nil
}
