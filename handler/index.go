package handlers

import "net/http"

type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

var indexRoutes = []struct {
	method, path, description string
}{
	{http.MethodGet, "/posts", "List all posts"},
	{http.MethodGet, "/posts/:id", "Get a post by ID"},
	{http.MethodPost, "/posts", "Create a new post"},
	{http.MethodPut, "/posts/:id", "Update a post"},
	{http.MethodDelete, "/posts/:id", "Delete a post"},
}

// Index describes the available endpoints, with basePath prepended to each route.
func Index(basePath string) http.HandlerFunc {
	endpoints := make(map[string]string, len(indexRoutes)+1)
	for _, rt := range indexRoutes {
		key := rt.method + " " + basePath + rt.path
		endpoints[key] = rt.description
	}
	endpoints["GET /ws"] = "Subscribe to post changes (WebSocket)"

	resp := IndexResponse{
		Message:   "Simple Blog API - up and running!",
		Endpoints: endpoints,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, resp)
	}
}

// NotFound answers any route missing from the table.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Route not found", nil)
}
