package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalStatus 审批结果
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// ApprovalStage 审批阶段
type ApprovalStage string

const (
	StageTechnical      ApprovalStage = "technical"
	StageAdministrative ApprovalStage = "administrative"
)

// ApprovalAction 审批动作
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

// EntryRoleAnchor 立项时生成的占位进度条目
const EntryRoleAnchor = "anchor"

// UserRef 用户引用
type UserRef struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

// Location 工程位置
type Location struct {
	District  string  `json:"district,omitempty" bson:"district,omitempty"`
	Block     string  `json:"block,omitempty" bson:"block,omitempty"`
	Location  string  `json:"location,omitempty" bson:"location,omitempty"`
	Latitude  float64 `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty" bson:"longitude,omitempty"`
}

// ApprovalRecord 技术审批/行政审批共用结构
type ApprovalRecord struct {
	Status          ApprovalStatus `json:"status" bson:"status"`
	ApprovalNumber  string         `json:"approvalNumber,omitempty" bson:"approvalNumber,omitempty"`
	ApprovedBy      UserRef        `json:"approvedBy" bson:"approvedBy"`
	ApprovalDate    time.Time      `json:"approvalDate" bson:"approvalDate"`
	Remarks         string         `json:"remarks,omitempty" bson:"remarks,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ApprovedAmount  float64        `json:"approvedAmount,omitempty" bson:"approvedAmount,omitempty"` // 仅行政审批
	GovtDistrictAS  string         `json:"govtDistrictAS,omitempty" bson:"govtDistrictAS,omitempty"` // 仅行政审批
	AttachedFile    *Attachment    `json:"attachedFile,omitempty" bson:"attachedFile,omitempty"`
	AttachedImages  AttachmentList `json:"attachedImages" bson:"attachedImages"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
}

// TenderRecord 招标记录
type TenderRecord struct {
	TenderNumber   string         `json:"tenderNumber" bson:"tenderNumber"`
	TenderDate     time.Time      `json:"tenderDate,omitempty" bson:"tenderDate,omitempty"`
	ContractorName string         `json:"contractorName,omitempty" bson:"contractorName,omitempty"`
	TenderAmount   float64        `json:"tenderAmount,omitempty" bson:"tenderAmount,omitempty"`
	Remarks        string         `json:"remarks,omitempty" bson:"remarks,omitempty"`
	AttachedFile   *Attachment    `json:"attachedFile,omitempty" bson:"attachedFile,omitempty"`
	AttachedImages AttachmentList `json:"attachedImages" bson:"attachedImages"`
	RecordedBy     UserRef        `json:"recordedBy" bson:"recordedBy"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
}

// WorkOrderRecord 工作令记录
type WorkOrderRecord struct {
	WorkOrderNumber        string         `json:"workOrderNumber" bson:"workOrderNumber"`
	WorkOrderDate          time.Time      `json:"workOrderDate,omitempty" bson:"workOrderDate,omitempty"`
	ContractorName         string         `json:"contractorName,omitempty" bson:"contractorName,omitempty"`
	WorkOrderAmount        float64        `json:"workOrderAmount,omitempty" bson:"workOrderAmount,omitempty"`
	StartDate              time.Time      `json:"startDate,omitempty" bson:"startDate,omitempty"`
	ExpectedCompletionDate time.Time      `json:"expectedCompletionDate,omitempty" bson:"expectedCompletionDate,omitempty"`
	Remarks                string         `json:"remarks,omitempty" bson:"remarks,omitempty"`
	AttachedFile           *Attachment    `json:"attachedFile,omitempty" bson:"attachedFile,omitempty"`
	AttachedImages         AttachmentList `json:"attachedImages" bson:"attachedImages"`
	IssuedBy               UserRef        `json:"issuedBy" bson:"issuedBy"`
	CreatedAt              time.Time      `json:"createdAt" bson:"createdAt"`
}

// Installment 分期拨款
type Installment struct {
	InstallmentNo int       `json:"installmentNo" bson:"installmentNo" validate:"gte=1"`
	Amount        float64   `json:"amount" bson:"amount" validate:"gte=0"`
	Date          time.Time `json:"date" bson:"date" validate:"required"`
}

// ProgressEntry 一次进度快照，创建后不可修改
type ProgressEntry struct {
	ID                         primitive.ObjectID `json:"_id" bson:"_id"`
	Role                       string             `json:"role,omitempty" bson:"role,omitempty"`
	Desc                       string             `json:"desc,omitempty" bson:"desc,omitempty"`
	SanctionedAmount           float64            `json:"sanctionedAmount" bson:"sanctionedAmount"`
	TotalAmountReleasedSoFar   float64            `json:"totalAmountReleasedSoFar" bson:"totalAmountReleasedSoFar"`
	RemainingBalance           float64            `json:"remainingBalance" bson:"remainingBalance"`
	ExpenditureAmount          float64            `json:"expenditureAmount" bson:"expenditureAmount"`
	MbStageMeasurementBookStag string             `json:"mbStageMeasurementBookStag,omitempty" bson:"mbStageMeasurementBookStag,omitempty"`
	Installments               []Installment      `json:"installments" bson:"installments"`
	ProgressDocuments          *Attachment        `json:"progressDocuments" bson:"progressDocuments"`
	ProgressImages             AttachmentList     `json:"progressImages" bson:"progressImages"`
	LastUpdatedBy              UserRef            `json:"lastUpdatedBy" bson:"lastUpdatedBy"`
	CreatedAt                  time.Time          `json:"createdAt" bson:"createdAt"`
}

// IsAnchor 是否为立项占位条目
func (e ProgressEntry) IsAnchor() bool {
	return e.Role == EntryRoleAnchor
}

// WorkProposal 工程提案，聚合根，整份文档存储
type WorkProposal struct {
	ID                     primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	SerialNumber           string             `json:"serialNumber" bson:"serialNumber"`
	NameOfWork             string             `json:"nameOfWork" bson:"nameOfWork"`
	TypeOfWork             string             `json:"typeOfWork" bson:"typeOfWork"`
	WorkAgency             string             `json:"workAgency" bson:"workAgency"`
	Scheme                 string             `json:"scheme" bson:"scheme"`
	WorkDepartment         string             `json:"workDepartment" bson:"workDepartment"`
	ApprovingDepartment    string             `json:"approvingDepartment" bson:"approvingDepartment"`
	FinancialYear          string             `json:"financialYear" bson:"financialYear"`
	SanctionAmount         float64            `json:"sanctionAmount" bson:"sanctionAmount"`
	Location               Location           `json:"location" bson:"location"`
	AppointedEngineer      UserRef            `json:"appointedEngineer" bson:"appointedEngineer"`
	AppointedSDO           UserRef            `json:"appointedSDO" bson:"appointedSDO"`
	CurrentStatus          WorkStatus         `json:"currentStatus" bson:"currentStatus"`
	TechnicalApproval      *ApprovalRecord    `json:"technicalApproval,omitempty" bson:"technicalApproval,omitempty"`
	AdministrativeApproval *ApprovalRecord    `json:"administrativeApproval,omitempty" bson:"administrativeApproval,omitempty"`
	TenderProcess          *TenderRecord      `json:"tenderProcess,omitempty" bson:"tenderProcess,omitempty"`
	WorkOrder              *WorkOrderRecord   `json:"workOrder,omitempty" bson:"workOrder,omitempty"`
	WorkProgress           []ProgressEntry    `json:"workProgress" bson:"workProgress"`
	Version                int64              `json:"version" bson:"version"`
	CreatedBy              UserRef            `json:"createdBy" bson:"createdBy"`
	CreatedAt              time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Approval 返回指定阶段的审批记录
func (p *WorkProposal) Approval(stage ApprovalStage) *ApprovalRecord {
	switch stage {
	case StageTechnical:
		return p.TechnicalApproval
	case StageAdministrative:
		return p.AdministrativeApproval
	}
	return nil
}

// SetApproval 写入指定阶段的审批记录
func (p *WorkProposal) SetApproval(stage ApprovalStage, record *ApprovalRecord) {
	switch stage {
	case StageTechnical:
		p.TechnicalApproval = record
	case StageAdministrative:
		p.AdministrativeApproval = record
	}
}

// IsApproved 指定阶段是否已通过
func (p *WorkProposal) IsApproved(stage ApprovalStage) bool {
	record := p.Approval(stage)
	return record != nil && record.Status == ApprovalApproved
}

// ProposalView 详情接口返回结构
type ProposalView struct {
	Proposal WorkProposal   `json:"proposal"`
	Selector string         `json:"selector"`
	Images   []DisplayImage `json:"images"`
}

// DisplayImage 页面展示用图片
type DisplayImage struct {
	URL     string `json:"url"`
	Section string `json:"section"`
	Caption string `json:"caption"`
}
