package service

import (
	"context"
	"slices"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppendProgress 工程师提交一条进度记录
//
// 只有指派工程师可以提交；附件先上传，写库失败时回滚已上传的文件。
// 该操作不修改 currentStatus。
func (s *ProposalService) AppendProgress(ctx context.Context, proposalID string, requester models.CurrentUser, payload models.ProgressPayload, uploads []models.Upload) (*models.ProgressEntry, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkAppointedEngineer(proposal, requester); err != nil {
		return nil, err
	}
	if err := validateProgressPayload(payload); err != nil {
		return nil, err
	}
	if err := validateUploads(uploads, progressUploads); err != nil {
		return nil, err
	}

	files, err := s.uploadAll(ctx, uploads, uploadFolder(id, "progress"))
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := models.ProgressEntry{
		ID:                         primitive.NewObjectID(),
		Desc:                       payload.Desc,
		ExpenditureAmount:          lo.FromPtr(payload.ExpenditureAmount),
		MbStageMeasurementBookStag: payload.MbStageMeasurementBookStag,
		Installments:               append([]models.Installment{}, payload.Installments...),
		ProgressDocuments:          files.first(progressUploads.fileField),
		ProgressImages:             files.all(progressUploads.imageField),
		LastUpdatedBy:              requester.Ref(),
		CreatedAt:                  now,
	}
	entry.TotalAmountReleasedSoFar = lo.SumBy(entry.Installments, func(i models.Installment) float64 {
		return i.Amount
	})

	saved, err := s.mutate(ctx, id, func(p *models.WorkProposal) error {
		// 重新读取后再校验一次，防止期间更换了指派工程师
		if err := checkAppointedEngineer(p, requester); err != nil {
			return err
		}
		if lo.ContainsBy(p.WorkProgress, func(e models.ProgressEntry) bool { return e.ID == entry.ID }) {
			return errAlreadyApplied
		}
		entry.SanctionedAmount = lo.FromPtrOr(payload.SanctionedAmount, p.SanctionAmount)
		entry.RemainingBalance = entry.SanctionedAmount - entry.TotalAmountReleasedSoFar
		p.WorkProgress = append(p.WorkProgress, entry)
		return nil
	})
	if err != nil {
		s.discard(ctx, files)
		return nil, err
	}

	progressAppended.Inc()
	utils.LogInfo(map[string]interface{}{
		"proposalId":   id.Hex(),
		"entryId":      entry.ID.Hex(),
		"entries":      len(saved.WorkProgress),
		"installments": len(entry.Installments),
		"images":       len(entry.ProgressImages),
		"operator":     requester.Username,
	}, "[进度台账] 添加进度记录成功")
	return &entry, nil
}

// SetStatus 设置施工状态，按状态迁移表校验
func (s *ProposalService) SetStatus(ctx context.Context, proposalID string, requester models.CurrentUser, newStatus models.WorkStatus) (*models.WorkProposal, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	if !models.IsWorkStatus(newStatus) {
		return nil, utils.CreateInvalidArgumentError("无效的工程状态: " + string(newStatus))
	}

	var previous models.WorkStatus
	saved, err := s.mutate(ctx, id, func(p *models.WorkProposal) error {
		if !models.CanTransition(p.CurrentStatus, newStatus) {
			return utils.CreateInvalidTransitionError(string(p.CurrentStatus), string(newStatus))
		}
		previous = p.CurrentStatus
		p.CurrentStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo(map[string]interface{}{
		"proposalId": id.Hex(),
		"from":       previous,
		"to":         newStatus,
		"operator":   requester.Username,
	}, "[工程提案] 状态变更")
	return saved, nil
}

// RemoveProgress 按ID删除一条进度记录，占位条目不可删除
func (s *ProposalService) RemoveProgress(ctx context.Context, proposalID, entryID string, requester models.CurrentUser) error {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return err
	}
	eid, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return utils.CreateNotFoundError("进度记录")
	}

	var removed models.ProgressEntry
	_, err = s.mutate(ctx, id, func(p *models.WorkProposal) error {
		entry, idx, ok := lo.FindIndexOf(p.WorkProgress, func(e models.ProgressEntry) bool {
			return e.ID == eid
		})
		if !ok {
			if !removed.ID.IsZero() && removed.ID == eid {
				return errAlreadyApplied
			}
			return utils.CreateNotFoundError("进度记录")
		}
		// 历史数据的占位条目没有 role 标记，按位置同样保护
		if idx == 0 || entry.IsAnchor() {
			return utils.CreateInvalidArgumentError("立项占位记录不能删除")
		}
		removed = entry
		p.WorkProgress = slices.Delete(p.WorkProgress, idx, idx+1)
		return nil
	})
	if err != nil {
		return err
	}

	// 条目独占其附件，删除后清理对象存储
	s.deleteObjects(ctx, entryStorageIDs(removed)...)

	utils.LogInfo(map[string]interface{}{
		"proposalId": id.Hex(),
		"entryId":    entryID,
		"operator":   requester.Username,
	}, "[进度台账] 删除进度记录")
	return nil
}

func checkAppointedEngineer(p *models.WorkProposal, requester models.CurrentUser) error {
	if p.AppointedEngineer.ID == "" || p.AppointedEngineer.ID != requester.ID {
		return utils.CreateForbiddenError("只有指派工程师可以提交进度")
	}
	return nil
}

func entryStorageIDs(e models.ProgressEntry) []string {
	ids := lo.Map(e.ProgressImages, func(a models.Attachment, _ int) string {
		return a.StorageID
	})
	if e.ProgressDocuments != nil {
		ids = append(ids, e.ProgressDocuments.StorageID)
	}
	return ids
}
