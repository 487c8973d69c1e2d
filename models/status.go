package models

// WorkStatus 工程当前状态
type WorkStatus string

const (
	// 审批阶段隐含状态，由各阶段接口推进
	StatusTechnicalApprovalPending      WorkStatus = "Technical Approval Pending"
	StatusAdministrativeApprovalPending WorkStatus = "Administrative Approval Pending"
	StatusTenderPending                 WorkStatus = "Tender Pending"
	StatusWorkOrderPending              WorkStatus = "Work Order Pending"

	// 施工状态，可通过 setStatus 设置
	StatusWorkNotStarted WorkStatus = "Work Not Started"
	StatusWorkInProgress WorkStatus = "Work In Progress"
	StatusWorkCompleted  WorkStatus = "Work Completed"
	StatusWorkCancelled  WorkStatus = "Work Cancelled"
	StatusWorkStopped    WorkStatus = "Work Stopped"
)

// WorkStatuses setStatus 允许的取值
var WorkStatuses = []WorkStatus{
	StatusWorkNotStarted,
	StatusWorkInProgress,
	StatusWorkCompleted,
	StatusWorkCancelled,
	StatusWorkStopped,
}

var statusTransitions = map[WorkStatus][]WorkStatus{
	StatusTechnicalApprovalPending:      {StatusWorkCancelled},
	StatusAdministrativeApprovalPending: {StatusWorkCancelled},
	StatusTenderPending:                 {StatusWorkCancelled},
	StatusWorkOrderPending:              {StatusWorkCancelled},
	StatusWorkNotStarted:                {StatusWorkInProgress, StatusWorkStopped, StatusWorkCancelled},
	StatusWorkInProgress:                {StatusWorkCompleted, StatusWorkStopped, StatusWorkCancelled},
	StatusWorkStopped:                   {StatusWorkInProgress, StatusWorkCancelled},
	StatusWorkCompleted:                 {},
	StatusWorkCancelled:                 {},
}

// IsWorkStatus 是否属于施工状态词表
func IsWorkStatus(s WorkStatus) bool {
	for _, v := range WorkStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// AllowedNextStates 返回当前状态可迁移到的状态
func AllowedNextStates(current WorkStatus) []WorkStatus {
	next, ok := statusTransitions[current]
	if !ok {
		// 旧数据中的自由文本状态，只允许回到正常流程的起点或取消
		return []WorkStatus{StatusWorkNotStarted, StatusWorkCancelled}
	}
	return next
}

// CanTransition 判断状态迁移是否合法，同状态重复设置视为合法
func CanTransition(from, to WorkStatus) bool {
	if from == to {
		return true
	}
	for _, s := range AllowedNextStates(from) {
		if s == to {
			return true
		}
	}
	return false
}
