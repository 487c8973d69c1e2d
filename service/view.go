package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/samber/lo"
)

const selectorAll = "all"

// 图片分组名称，按展示顺序
const (
	SectionTechnicalApproval      = "Technical Approval"
	SectionAdministrativeApproval = "Administrative Approval"
	SectionTenderProcess          = "Tender Process"
	SectionWorkOrder              = "Work Order"
	SectionWorkProgress           = "Work Progress"
)

// Selector 进度条目选择器：全部，或按位置选取单条
//
// 位置 0 是立项占位条目，不可被选中。
type Selector struct {
	All   bool
	Index int
}

// AllEntries 选择全部条目
func AllEntries() Selector {
	return Selector{All: true}
}

func (s Selector) String() string {
	if s.All {
		return selectorAll
	}
	return strconv.Itoa(s.Index)
}

// ParseSelector 解析 ?entry= 参数，空值等同 all
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, selectorAll) {
		return AllEntries(), nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return Selector{}, utils.CreateInvalidArgumentError("无效的进度选择器: " + raw)
	}
	return Selector{Index: idx}, nil
}

// SelectView 按选择器返回提案副本，不修改入参
//
// all 返回除占位条目外的全部条目；单条选取要求 1 <= k < len(workProgress)。
func SelectView(p *models.WorkProposal, sel Selector) (models.WorkProposal, error) {
	view := *p
	entries := p.WorkProgress

	if sel.All {
		if len(entries) <= 1 {
			view.WorkProgress = []models.ProgressEntry{}
			return view, nil
		}
		view.WorkProgress = append([]models.ProgressEntry{}, entries[1:]...)
		return view, nil
	}

	if sel.Index < 1 || sel.Index >= len(entries) {
		return models.WorkProposal{}, utils.CreateInvalidArgumentError(
			fmt.Sprintf("进度选择器越界: %d (共 %d 条)", sel.Index, len(entries)))
	}
	view.WorkProgress = []models.ProgressEntry{entries[sel.Index]}
	return view, nil
}

// CollectImages 汇总各阶段图片用于展示
//
// 顺序固定：技术审批、行政审批、招标、工作令，之后按存储顺序遍历全部进度条目（含占位条目）。
// 没有 URL 的图片跳过。
func CollectImages(p *models.WorkProposal) []models.DisplayImage {
	images := make([]models.DisplayImage, 0)

	if p.TechnicalApproval != nil {
		images = append(images, sectionImages(p.TechnicalApproval.AttachedImages, SectionTechnicalApproval, SectionTechnicalApproval)...)
	}
	if p.AdministrativeApproval != nil {
		images = append(images, sectionImages(p.AdministrativeApproval.AttachedImages, SectionAdministrativeApproval, SectionAdministrativeApproval)...)
	}
	if p.TenderProcess != nil {
		images = append(images, sectionImages(p.TenderProcess.AttachedImages, SectionTenderProcess, SectionTenderProcess)...)
	}
	if p.WorkOrder != nil {
		images = append(images, sectionImages(p.WorkOrder.AttachedImages, SectionWorkOrder, SectionWorkOrder)...)
	}
	for i, entry := range p.WorkProgress {
		images = append(images, sectionImages(entry.ProgressImages, SectionWorkProgress, progressCaption(i, entry))...)
	}
	return images
}

func sectionImages(list models.AttachmentList, section, caption string) []models.DisplayImage {
	return lo.FilterMap(list, func(a models.Attachment, _ int) (models.DisplayImage, bool) {
		if !a.Valid() {
			return models.DisplayImage{}, false
		}
		return models.DisplayImage{URL: a.URL, Section: section, Caption: caption}, true
	})
}

func progressCaption(index int, entry models.ProgressEntry) string {
	if entry.IsAnchor() {
		return "Initial Record"
	}
	caption := fmt.Sprintf("Progress Update %d", index)
	if desc := strings.TrimSpace(entry.Desc); desc != "" {
		caption += ": " + desc
	}
	return caption
}
