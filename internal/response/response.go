package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shiftlog/work-hour-api/internal/utils"
)

// Envelope is the uniform success body: {"success": true, "data": ...}
// with pagination metadata attached on list responses.
type Envelope struct {
	Success    bool                      `json:"success"`
	Data       interface{}               `json:"data"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// OK responds with 200 and the payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created responds with 201 and the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated responds with 200, the payload, and pagination metadata.
func Paginated(c *gin.Context, data interface{}, pagination utils.PaginationResponse) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &pagination})
}
