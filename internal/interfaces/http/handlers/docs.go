package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// DocsHandler lists the registered API endpoints
type DocsHandler struct {
	routes  func() gin.RoutesInfo
	version string
}

// NewDocsHandler creates a docs handler over the route table of an engine
func NewDocsHandler(routes func() gin.RoutesInfo, version string) *DocsHandler {
	return &DocsHandler{routes: routes, version: version}
}

// Endpoint is one line of the API listing
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// List handles GET /api/v1/docs
func (h *DocsHandler) List(c *gin.Context) {
	prefix := strings.TrimSuffix(c.Query("prefix"), "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	var endpoints []Endpoint
	for _, r := range h.routes() {
		if !strings.HasPrefix(r.Path, prefix) {
			continue
		}
		endpoints = append(endpoints, Endpoint{Method: r.Method, Path: r.Path})
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"version":   h.version,
		"endpoints": endpoints,
	})
}
