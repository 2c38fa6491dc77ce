package middleware

import (
	"github.com/gin-gonic/gin"

	"restaurante-admin/pkg/response"
)

// ParamsKey 绑定后的参数在上下文中的键
const ParamsKey = "params"

// ValidationMiddleware 绑定并校验查询参数，成功后放入上下文。
// newObj 每个请求调用一次，避免多个请求共用同一个对象。
func ValidationMiddleware(newObj func() interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := newObj()
		if err := c.ShouldBindQuery(obj); err != nil {
			response.BindError(c, err)
			return
		}
		c.Set(ParamsKey, obj)
		c.Next()
	}
}
