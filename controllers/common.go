package controllers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vlogsite/blogify/middleware"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getRole(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, _ := value.(string)
	return role
}

// RoleBlogger is the privileged role allowed to manage taxonomy.
const RoleBlogger = "blogger"

func isBlogger(ctx *gin.Context) bool {
	return getRole(ctx) == RoleBlogger
}

// flexibleStrings accepts either a JSON array of strings or a single
// string; request payloads arrive in both shapes depending on the client.
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*f = flexibleStrings{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = flexibleStrings(list)
	return nil
}
