package router

import (
	"net/http"

	handlers "blogapi/handler"
	postHandler "blogapi/internal/post"
	"blogapi/internal/post/service"
	"blogapi/middleware"
	"blogapi/socket"
)

// Setup builds the route table. basePath ("" or e.g. "/api") prefixes the post routes.
func Setup(postService *service.PostService, hub *socket.Hub, basePath string) http.Handler {
	mux := http.NewServeMux()

	// WebSocket change feed
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	// REST API
	posts := postHandler.NewPostHandler(postService)

	mux.HandleFunc("GET "+basePath+"/posts", posts.GetPosts)
	mux.HandleFunc("GET "+basePath+"/posts/{id}", posts.GetPost)
	mux.HandleFunc("POST "+basePath+"/posts", posts.CreatePost)
	mux.HandleFunc("PUT "+basePath+"/posts/{id}", posts.UpdatePost)
	mux.HandleFunc("DELETE "+basePath+"/posts/{id}", posts.DeletePost)

	mux.HandleFunc("GET /{$}", handlers.Index(basePath))
	mux.HandleFunc("/", handlers.NotFound)

	return middleware.LoggingMiddleware(middleware.CORSMiddleware(mux))
}
