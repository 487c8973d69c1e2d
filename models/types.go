package models

import "time"

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleSUPER_ADMIN UserRole = "SUPER_ADMIN" // 超级管理员
	UserRoleSDO         UserRole = "SDO"         // 分区主管
	UserRoleENGINEER    UserRole = "ENGINEER"    // 工程师
	UserRoleAPPROVER    UserRole = "APPROVER"    // 审批人
	UserRoleVIEWER      UserRole = "VIEWER"      // 只读用户
)

// CurrentUser 当前登录用户
type CurrentUser struct {
	ID       string   `json:"id"`
	Role     UserRole `json:"role"`
	Username string   `json:"name"`
}

// Ref 转换为文档中的用户引用
func (u CurrentUser) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Username}
}

// 各种请求结构
type (
	// CreateProposalRequest 创建提案请求
	CreateProposalRequest struct {
		SerialNumber        string   `json:"serialNumber" validate:"required"`
		NameOfWork          string   `json:"nameOfWork" validate:"required"`
		TypeOfWork          string   `json:"typeOfWork" validate:"required"`
		WorkAgency          string   `json:"workAgency" validate:"required"`
		Scheme              string   `json:"scheme"`
		WorkDepartment      string   `json:"workDepartment" validate:"required"`
		ApprovingDepartment string   `json:"approvingDepartment"`
		FinancialYear       string   `json:"financialYear" validate:"required"`
		SanctionAmount      float64  `json:"sanctionAmount" validate:"gte=0"`
		Location            Location `json:"location"`
		AppointedEngineer   UserRef  `json:"appointedEngineer"`
		AppointedSDO        UserRef  `json:"appointedSDO"`
	}

	// ProgressPayload 进度提交内容
	ProgressPayload struct {
		Desc                       string        `json:"desc"`
		SanctionedAmount           *float64      `json:"sanctionedAmount" validate:"omitempty,gte=0"`
		ExpenditureAmount          *float64      `json:"expenditureAmount" validate:"omitempty,gte=0"`
		MbStageMeasurementBookStag string        `json:"mbStageMeasurementBookStag"`
		Installments               []Installment `json:"installments" validate:"omitempty,dive"`
	}

	// StatusRequest 状态设置请求
	StatusRequest struct {
		Status WorkStatus `json:"status"`
	}

	// DecisionFields 审批决定字段
	DecisionFields struct {
		ApprovalNumber  string   `json:"approvalNumber"`
		ApprovedAmount  *float64 `json:"approvedAmount"`
		GovtDistrictAS  string   `json:"govtDistrictAS"`
		RejectionReason string   `json:"rejectionReason"`
		Remarks         string   `json:"remarks"`
	}

	// TenderFields 招标登记字段
	TenderFields struct {
		TenderNumber   string    `json:"tenderNumber"`
		TenderDate     time.Time `json:"tenderDate"`
		ContractorName string    `json:"contractorName"`
		TenderAmount   float64   `json:"tenderAmount" validate:"gte=0"`
		Remarks        string    `json:"remarks"`
	}

	// WorkOrderFields 工作令登记字段
	WorkOrderFields struct {
		WorkOrderNumber        string    `json:"workOrderNumber"`
		WorkOrderDate          time.Time `json:"workOrderDate"`
		ContractorName         string    `json:"contractorName"`
		WorkOrderAmount        float64   `json:"workOrderAmount" validate:"gte=0"`
		StartDate              time.Time `json:"startDate"`
		ExpectedCompletionDate time.Time `json:"expectedCompletionDate"`
		Remarks                string    `json:"remarks"`
	}
)
