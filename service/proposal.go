package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errObjectStoreDisabled = errors.New("对象存储未配置")

// errAlreadyApplied 修改已在之前一次写入中落库（写成功但确认丢失），不再重复写
var errAlreadyApplied = errors.New("修改已生效")

// ProposalStore 提案文档存储，整份读写
type ProposalStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WorkProposal, error)
	Insert(ctx context.Context, proposal *models.WorkProposal) error
	// Save 按读取时的版本号写回，版本不一致返回 models.ErrVersionConflict
	Save(ctx context.Context, proposal *models.WorkProposal) error
}

// ObjectStore 外部文件存储
type ObjectStore interface {
	Put(ctx context.Context, data []byte, name, mimeType, folder string) (models.StoredObject, error)
	Delete(ctx context.Context, id string) error
}

// ProposalService 提案生命周期服务：审批、招标、工作令、进度台账
type ProposalService struct {
	store       ProposalStore
	objects     ObjectStore
	now         func() time.Time
	maxAttempts int
}

// Option 服务可选配置
type Option func(*ProposalService)

// WithClock 替换时间源，测试使用
func WithClock(now func() time.Time) Option {
	return func(s *ProposalService) { s.now = now }
}

// WithMaxAttempts 版本冲突时的最大保存次数
func WithMaxAttempts(n int) Option {
	return func(s *ProposalService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewProposalService 创建提案服务，objects 为 nil 时拒绝带附件的请求
func NewProposalService(store ProposalStore, objects ObjectStore, opts ...Option) *ProposalService {
	s := &ProposalService{
		store:       store,
		objects:     objects,
		now:         time.Now,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProposal 立项，生成占位进度条目
func (s *ProposalService) CreateProposal(ctx context.Context, requester models.CurrentUser, req models.CreateProposalRequest) (*models.WorkProposal, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.AppointedEngineer.ID) == "" {
		return nil, utils.CreateMissingFieldError("appointedEngineer.id")
	}

	now := s.now()
	proposal := &models.WorkProposal{
		ID:                  primitive.NewObjectID(),
		SerialNumber:        req.SerialNumber,
		NameOfWork:          req.NameOfWork,
		TypeOfWork:          req.TypeOfWork,
		WorkAgency:          req.WorkAgency,
		Scheme:              req.Scheme,
		WorkDepartment:      req.WorkDepartment,
		ApprovingDepartment: req.ApprovingDepartment,
		FinancialYear:       req.FinancialYear,
		SanctionAmount:      req.SanctionAmount,
		Location:            req.Location,
		AppointedEngineer:   req.AppointedEngineer,
		AppointedSDO:        req.AppointedSDO,
		CurrentStatus:       models.StatusTechnicalApprovalPending,
		WorkProgress: []models.ProgressEntry{{
			ID:               primitive.NewObjectID(),
			Role:             models.EntryRoleAnchor,
			Desc:             "Proposal created",
			SanctionedAmount: req.SanctionAmount,
			RemainingBalance: req.SanctionAmount,
			Installments:     []models.Installment{},
			LastUpdatedBy:    requester.Ref(),
			CreatedAt:        now,
		}},
		Version:   1,
		CreatedBy: requester.Ref(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, proposal); err != nil {
		return nil, err
	}

	utils.LogInfo(map[string]interface{}{
		"proposalId":   proposal.ID.Hex(),
		"serialNumber": proposal.SerialNumber,
		"engineer":     proposal.AppointedEngineer.ID,
		"operator":     requester.Username,
	}, "[工程提案] 创建提案成功")
	return proposal, nil
}

// GetProposal 返回按选择器裁剪的提案和全部图片
//
// 选择器缺失或非法时按 all 处理；图片始终来自完整的进度序列。
func (s *ProposalService) GetProposal(ctx context.Context, proposalID, rawSelector string) (*models.ProposalView, error) {
	id, err := parseObjectID(proposalID, "提案ID")
	if err != nil {
		return nil, err
	}
	proposal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	selector, err := ParseSelector(rawSelector)
	if err != nil {
		utils.LogWarn(map[string]interface{}{"selector": rawSelector, "proposalId": proposalID}, "[工程提案] 选择器非法，按全部返回")
		selector = AllEntries()
	}
	view, err := SelectView(proposal, selector)
	if err != nil {
		utils.LogWarn(map[string]interface{}{"selector": rawSelector, "proposalId": proposalID}, "[工程提案] 选择器越界，按全部返回")
		selector = AllEntries()
		view, _ = SelectView(proposal, selector)
	}

	return &models.ProposalView{
		Proposal: view,
		Selector: selector.String(),
		Images:   CollectImages(proposal),
	}, nil
}

// load 加载提案，不存在时返回 NotFound
func (s *ProposalService) load(ctx context.Context, id primitive.ObjectID) (*models.WorkProposal, error) {
	proposal, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return nil, utils.CreateNotFoundError("提案")
		}
		return nil, err
	}
	return proposal, nil
}

// mutate 读取-修改-写回，版本冲突时重新读取并重放修改
func (s *ProposalService) mutate(ctx context.Context, id primitive.ObjectID, apply func(p *models.WorkProposal) error) (*models.WorkProposal, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		proposal, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := apply(proposal); err != nil {
			if errors.Is(err, errAlreadyApplied) {
				return proposal, nil
			}
			return nil, err
		}
		proposal.UpdatedAt = s.now()

		err = s.store.Save(ctx, proposal)
		switch {
		case err == nil:
			return proposal, nil
		case errors.Is(err, models.ErrVersionConflict):
			saveConflicts.Inc()
			utils.LogWarn(map[string]interface{}{
				"proposalId": id.Hex(),
				"attempt":    attempt,
			}, "[工程提案] 版本冲突，重新读取")
		case errors.Is(err, models.ErrProposalNotFound):
			return nil, utils.CreateNotFoundError("提案")
		default:
			return nil, err
		}
	}
	return nil, utils.CreateConflictError()
}

// parseObjectID 解析十六进制ID
func parseObjectID(hex, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, utils.CreateInvalidArgumentError(fmt.Sprintf("无效的%s格式: %s", name, hex))
	}
	return id, nil
}

// uploadFolder 对象存储目录: proposals/<id>/<section>
func uploadFolder(id primitive.ObjectID, section string) string {
	return "proposals/" + id.Hex() + "/" + section
}
