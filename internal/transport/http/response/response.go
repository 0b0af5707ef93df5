package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"noteapp/internal/core/errs"
)

// Body 错误响应体；成功响应直接返回资源本身
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 构造错误体（customMsg 为空时用默认文案）
func Error(code int, customMsg string) Body {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return Body{Code: code, Message: msg}
}

// Abort 中断后续 handler 并写错误体，HTTP 状态与 code 一致
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}

func OK(c *gin.Context, data any) { c.JSON(http.StatusOK, data) }

func Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

func NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// Fail 把任意错误翻译成唯一一个响应。
// 非 *errs.Error 一律按 500 处理并隐藏原因；原因挂到 c.Errors 由 AccessLog 输出
func Fail(c *gin.Context, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		Abort(c, CodeServerError, "")
		return
	}
	if e.Code >= CodeServerError {
		_ = c.Error(err)
	}
	msg := e.Msg
	if e.Code == CodeServerError {
		msg = ""
	}
	Abort(c, e.Code, msg)
}

// BadBind 请求绑定失败统一 400
func BadBind(c *gin.Context, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		Fail(c, e)
		return
	}
	Abort(c, CodeBadRequest, err.Error())
}
