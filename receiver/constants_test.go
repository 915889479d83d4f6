package receiver

import "github.com/gin-gonic/gin"

const (
	testPayload = "hello from the sender"
)

func init() {
	gin.SetMode(gin.TestMode)
}
