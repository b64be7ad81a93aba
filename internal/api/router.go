package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lmoren/taskdeck-be/internal/api/handlers"
	"github.com/lmoren/taskdeck-be/internal/auth"
	"github.com/lmoren/taskdeck-be/internal/services"
	"github.com/lmoren/taskdeck-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(hub *websocket.Hub, userService services.UserServiceProvider, taskService services.TaskServiceProvider, eventService services.EventServiceProvider, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// TODO: require auth before exposing the account listing.
	r.Get("/users", userHandler.List)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware())

		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)

		r.Get("/events", eventHandler.GetRecent)
		r.Get("/ws", wsHandler.Serve)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.List) // {id} is the owner user id
				r.Get("/stats", taskHandler.Stats)
				r.Put("/", taskHandler.Update) // {id} is the task id
				r.Delete("/", taskHandler.Delete)
			})
		})
	})

	return r
}
