package middleware

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupLogFile 打开 logDir 下当天的日志文件
func SetupLogFile(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	return os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

// RequestLogger 请求日志中间件，每个请求一行
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Printf("%s %s %s %q %d %s %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Request.URL.RawQuery,
			c.Writer.Status(),
			time.Since(start),
			c.GetString(RequestIDKey),
		)
	}
}
