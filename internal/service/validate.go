package service

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"noteapp/internal/core/errs"
)

// 与 gin binding 同一套规则，供不经过 HTTP 绑定的调用方使用
var validate = validator.New()

// 列宽上限，与 domain 中的 gorm size 一致
const (
	maxTitleLen    = 200
	maxLocationLen = 255
	maxImageURLLen = 512
)

// checkLen 按字符数而非字节数计
func checkLen(field, v string, max int) error {
	if err := validate.Var(v, "max="+strconv.Itoa(max)); err != nil {
		return errs.Validation(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}
