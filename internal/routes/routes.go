package routes

import (
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/customadesign/ACFL/internal/cache"
	"github.com/customadesign/ACFL/internal/config"
	"github.com/customadesign/ACFL/internal/handlers"
	"github.com/customadesign/ACFL/internal/middleware"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
	"github.com/customadesign/ACFL/internal/services"
	chatws "github.com/customadesign/ACFL/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	coachRepo := repository.NewCoachRepository(db)
	savedCoachRepo := repository.NewSavedCoachRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	var coachPoolCache services.CoachPoolCache
	if cfg.RedisURL != "" {
		poolCache, err := cache.NewCoachPoolCache(cfg.RedisURL, cfg.CoachCacheTTL)
		if err != nil {
			log.Printf("Coach pool cache disabled: %v", err)
		} else {
			coachPoolCache = poolCache
		}
	}

	authHandler := handlers.NewAuthHandler(db, userRepo, cfg.JWTSecret)
	matchService := services.NewMatchService(coachRepo, coachPoolCache)
	matchHandler := handlers.NewMatchHandler(matchService, clientRepo)
	savedCoachHandler := handlers.NewSavedCoachHandler(clientRepo, coachRepo, savedCoachRepo)
	appointmentService := services.NewAppointmentService(db, sessionRepo, clientRepo, coachRepo)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	coachService := services.NewCoachService(coachRepo, sessionRepo)
	coachHandler := handlers.NewCoachHandler(coachService, coachRepo)
	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	v1 := api.Group("/v1")

	v1.Post("/match", matchHandler.Match)
	v1.Get("/coaches/:id<int>", coachHandler.PublicProfile)

	authProtected := v1.Group("", middleware.AuthRequired(cfg.JWTSecret))

	clients := authProtected.Group("/clients", middleware.RequireRole(models.RoleClient))
	clients.Post("/search-coaches", matchHandler.SearchCoaches)
	clients.Get("/appointments", appointmentHandler.List)
	clients.Post("/appointments", appointmentHandler.Book)
	clients.Put("/appointments/:id", appointmentHandler.UpdateStatus)
	clients.Get("/saved-coaches", savedCoachHandler.List)
	clients.Post("/saved-coaches", savedCoachHandler.Save)
	clients.Delete("/saved-coaches/:coachId", savedCoachHandler.Remove)

	coaches := authProtected.Group("/coaches", middleware.RequireRole(models.RoleCoach))
	coaches.Get("/profile", coachHandler.GetProfile)
	coaches.Put("/profile", coachHandler.UpdateProfile)
	coaches.Get("/profile/stats", coachHandler.Stats)
	coaches.Get("/dashboard", coachHandler.Dashboard)
	coaches.Get("/clients", coachHandler.Clients)
	coaches.Get("/appointments", appointmentHandler.List)
	coaches.Put("/appointments/:id", appointmentHandler.UpdateStatus)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
