package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息里使用json字段名，和前端表单保持一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct 校验请求结构，返回第一个不合法字段
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return utils.CreateValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if fe.Tag() == "required" {
		return utils.CreateMissingFieldError(field)
	}
	return utils.CreateValidationError(field, fmt.Sprintf("字段 %s 不满足规则 %s", field, fe.Tag()))
}

// validateProgressPayload 进度内容校验，包括期号在同一条目内唯一
func validateProgressPayload(payload models.ProgressPayload) error {
	if err := validateStruct(payload); err != nil {
		return err
	}

	seen := make(map[int]bool, len(payload.Installments))
	for i, inst := range payload.Installments {
		if seen[inst.InstallmentNo] {
			field := fmt.Sprintf("installments[%d].installmentNo", i)
			return utils.CreateValidationError(field, fmt.Sprintf("分期号 %d 重复", inst.InstallmentNo))
		}
		seen[inst.InstallmentNo] = true
	}
	return nil
}

// uploadRule 某一类记录允许的上传字段
type uploadRule struct {
	fileField  string
	imageField string
}

var (
	progressUploads = uploadRule{fileField: "progressDocuments", imageField: "progressImages"}
	stageUploads    = uploadRule{fileField: "attachedFile", imageField: "attachedImages"}
)

// validateUploads 上传前检查字段名、数量和类型
func validateUploads(uploads []models.Upload, rule uploadRule) error {
	files := 0
	for _, u := range uploads {
		if len(u.Data) == 0 {
			return utils.CreateValidationError(u.Field, "文件内容为空: "+u.Name)
		}
		switch u.Field {
		case rule.fileField:
			files++
			if files > 1 {
				return utils.CreateValidationError(u.Field, "只能上传一个文档")
			}
		case rule.imageField:
			if !(models.Attachment{MimeType: u.MimeType}).IsImage() {
				return utils.CreateValidationError(u.Field, "仅支持图片文件: "+u.Name)
			}
		default:
			return utils.CreateValidationError(u.Field, "不支持的上传字段: "+u.Field)
		}
	}
	return nil
}
