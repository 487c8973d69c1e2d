package service

import (
	"context"
	"time"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/samber/lo"
)

// uploadedFiles 一次请求内上传成功的文件，按表单字段分组
type uploadedFiles struct {
	byField map[string][]models.Attachment
	stored  []models.StoredObject
}

// first 返回字段的第一个文件
func (u *uploadedFiles) first(field string) *models.Attachment {
	if u == nil || len(u.byField[field]) == 0 {
		return nil
	}
	a := u.byField[field][0]
	return &a
}

// all 返回字段的全部文件
func (u *uploadedFiles) all(field string) []models.Attachment {
	if u == nil {
		return nil
	}
	return u.byField[field]
}

// appliedTo 本次上传的文件是否已出现在记录的附件中
func (u *uploadedFiles) appliedTo(file *models.Attachment, images models.AttachmentList) bool {
	if u == nil || len(u.stored) == 0 {
		return false
	}
	for _, obj := range u.stored {
		if file != nil && file.StorageID == obj.ID {
			return true
		}
		if lo.ContainsBy(images, func(a models.Attachment) bool { return a.StorageID == obj.ID }) {
			return true
		}
	}
	return false
}

// uploadAll 依次上传，任一失败则删除已上传的文件并返回存储错误
func (s *ProposalService) uploadAll(ctx context.Context, uploads []models.Upload, folder string) (*uploadedFiles, error) {
	result := &uploadedFiles{byField: make(map[string][]models.Attachment)}
	if len(uploads) == 0 {
		return result, nil
	}
	if s.objects == nil {
		return nil, utils.CreateUpstreamStorageError(errObjectStoreDisabled)
	}

	for _, u := range uploads {
		obj, err := s.objects.Put(ctx, u.Data, u.Name, u.MimeType, folder)
		if err != nil {
			utils.LogError(err, map[string]interface{}{
				"file":   u.Name,
				"folder": folder,
			}, "上传附件失败")
			s.discard(ctx, result)
			return nil, utils.CreateUpstreamStorageError(err)
		}
		result.stored = append(result.stored, obj)
		result.byField[u.Field] = append(result.byField[u.Field], models.Attachment{
			URL:          obj.URL,
			StorageID:    obj.ID,
			MimeType:     u.MimeType,
			Size:         int64(len(u.Data)),
			OriginalName: u.Name,
		})
	}
	return result, nil
}

// discard 回滚本次请求上传的文件
func (s *ProposalService) discard(ctx context.Context, files *uploadedFiles) {
	if files == nil {
		return
	}
	ids := make([]string, 0, len(files.stored))
	for _, obj := range files.stored {
		ids = append(ids, obj.ID)
	}
	s.deleteObjects(ctx, ids...)
}

// deleteObjects 尽力删除对象，失败只记日志
func (s *ProposalService) deleteObjects(ctx context.Context, ids ...string) {
	if s.objects == nil || len(ids) == 0 {
		return
	}
	// 原请求可能已取消，删除使用独立的超时
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := s.objects.Delete(delCtx, id); err != nil {
			utils.LogError(err, map[string]interface{}{"storageId": id}, "删除附件失败")
		}
	}
}
