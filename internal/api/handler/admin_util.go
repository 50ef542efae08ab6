// 文件路径: internal/api/handler/admin_util.go
// 模块说明: 请求解析小工具，JSON 解码、分页参数与路径 ID。
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func clampQueryInt(raw string, def int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if value < 0 {
		return 0
	}
	if value > maxPageSize {
		return maxPageSize
	}
	return value
}

// pagination reads ?page= and ?page_size= (1-based page).
func pagination(r *http.Request) (page, pageSize int) {
	query := r.URL.Query()
	page = clampQueryInt(query.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = clampQueryInt(query.Get("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// pathID parses a positive numeric chi URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := parseInt64(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func routeParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// parseOptionalBool accepts 1/0/true/false; anything else means "no filter".
func parseOptionalBool(raw string) *bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &value
}
