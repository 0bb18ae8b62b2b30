package response

import (
	"github.com/gin-gonic/gin"

	"petclinic/internal/pkg/validator"
)

func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// Error writes {"error": message}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// Message writes {"message": message}.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

// BindError renders a request binding failure with readable field messages.
func BindError(c *gin.Context, statusCode int, key string, err error) {
	c.JSON(statusCode, gin.H{key: validator.Describe(err)})
}
