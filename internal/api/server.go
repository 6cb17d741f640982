// Package api provides the HTTP API server and handlers for the TaskTiles application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tasktiles/tasktiles-server/internal/assistant"
	"github.com/tasktiles/tasktiles-server/internal/service"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store             store.Store
	authService       *service.AuthService
	boardService      *service.BoardService
	listService       *service.ListService
	cardService       *service.CardService
	invitationService *service.InvitationService
	dispatcher        *assistant.Dispatcher
	corsOrigins       []string
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store store.Store, authService *service.AuthService, boardService *service.BoardService, listService *service.ListService, cardService *service.CardService, invitationService *service.InvitationService, dispatcher *assistant.Dispatcher, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		store:             store,
		authService:       authService,
		boardService:      boardService,
		listService:       listService,
		cardService:       cardService,
		invitationService: invitationService,
		dispatcher:        dispatcher,
		corsOrigins:       corsOrigins,
		router:            chi.NewRouter(),
		logger:            logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Boards and their members.
		r.Route("/boards", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateBoard)
			r.Get("/", s.handleListBoards)
			r.Get("/{id}", s.handleGetBoard)
			r.Patch("/{id}", s.handleUpdateBoard)
			r.Delete("/{id}", s.handleDeleteBoard)
			r.Get("/{id}/members", s.handleListMembers)
			r.Delete("/{id}/members/{userID}", s.handleRemoveMember)
		})

		// Lists.
		r.Route("/lists", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateList)
			r.Get("/{id}", s.handleGetList)
			r.Patch("/{id}", s.handleRenameList)
			r.Post("/{id}/move", s.handleMoveList)
			r.Delete("/{id}", s.handleDeleteList)
		})

		// Cards.
		r.Route("/cards", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCard)
			r.Get("/today", s.handleTodayTasks)
			r.Get("/{id}", s.handleGetCard)
			r.Patch("/{id}", s.handleUpdateCard)
			r.Post("/{id}/move", s.handleMoveCard)
			r.Delete("/{id}", s.handleDeleteCard)
		})

		// Invitations.
		r.Route("/invitations", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateInvitation)
			r.Get("/sent", s.handleListSentInvitations)
			r.Get("/received", s.handleListReceivedInvitations)
			r.Post("/{id}/accept", s.handleAcceptInvitation)
			r.Post("/{id}/decline", s.handleDeclineInvitation)
		})

		// Conversational assistant.
		r.Route("/assistant", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/chat", s.handleAssistantChat)
		})
	})
}
