package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// 统一错误码定义
const (
	SUCCESS           = 200
	ERROR             = 500
	INVALID_PARAMS    = 20001
	NOT_FOUND         = 20003
	TOO_MANY_REQUESTS = 20005
	INTERNAL_ERROR    = 20006
	EXPORT_DISABLED   = 20007
	BACKEND_ERROR     = 20008
)

// 错误码消息映射
var codeMsg = map[int]string{
	SUCCESS:           "OK",
	ERROR:             "Error interno del servidor",
	INVALID_PARAMS:    "Parámetros de la solicitud inválidos",
	NOT_FOUND:         "Recurso no encontrado",
	TOO_MANY_REQUESTS: "Demasiadas solicitudes",
	INTERNAL_ERROR:    "Error interno del servicio",
	EXPORT_DISABLED:   "La exportación requiere los cinco reportes con datos",
	BACKEND_ERROR:     "Error al obtener los reportes. Por favor, inténtelo más tarde.",
}

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	OriginUrl string      `json:"originUrl"`
}

// GetMsg 获取错误码对应的消息
func GetMsg(code int) string {
	msg, exist := codeMsg[code]
	if exist {
		return msg
	}
	return codeMsg[ERROR]
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	resp := Response{
		Code:      SUCCESS,
		Message:   GetMsg(SUCCESS),
		Data:      data,
		OriginUrl: c.Request.URL.Path,
	}
	c.Set("response", resp)
	c.JSON(http.StatusOK, resp)
}

// Error 错误响应
func Error(c *gin.Context, code int, message ...string) {
	ErrorWithData(c, code, nil, message...)
}

// ErrorWithData 带数据的错误响应
func ErrorWithData(c *gin.Context, code int, data interface{}, message ...string) {
	msg := GetMsg(code)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}

	resp := Response{
		Code:      code,
		Message:   msg,
		Data:      data,
		Error:     "error",
		OriginUrl: c.Request.URL.Path,
	}
	c.Set("response", resp)
	c.JSON(http.StatusOK, resp)
}

// Abort 中断请求并返回错误
func Abort(c *gin.Context, code int, message ...string) {
	Error(c, code, message...)
	c.Abort()
}

// BindError 参数绑定或校验失败
func BindError(c *gin.Context, err error) {
	Abort(c, INVALID_PARAMS, FormatBindError(err))
}

// FormatBindError 将校验错误拼成 "Campo regla" 列表
func FormatBindError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]string, len(ve))
		for i, fe := range ve {
			out[i] = fe.Field() + " " + fe.Tag()
		}
		return GetMsg(INVALID_PARAMS) + ": " + strings.Join(out, ", ")
	}
	if err.Error() == "EOF" {
		return GetMsg(INVALID_PARAMS)
	}
	return GetMsg(INVALID_PARAMS) + ": " + err.Error()
}
