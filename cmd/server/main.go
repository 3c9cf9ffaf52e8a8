package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/tkrell/backend/internal/auth"
	"github.com/tkrell/backend/internal/chat"
	"github.com/tkrell/backend/internal/database"
	"github.com/tkrell/backend/internal/gamification"
	"github.com/tkrell/backend/internal/generator"
	"github.com/tkrell/backend/internal/middleware"
	"github.com/tkrell/backend/internal/notes"
	"github.com/tkrell/backend/internal/papers"
	"github.com/tkrell/backend/internal/payments"
	"github.com/tkrell/backend/internal/quiz"
	"github.com/tkrell/backend/internal/referrals"
	"github.com/tkrell/backend/internal/tutor"
	"github.com/tkrell/backend/internal/uploads"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the LLM response cache. Missing Redis degrades to
	// no caching, it never blocks startup.
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable, quiz cache disabled: %v", err)
			rdb = nil
		}
	}

	// Stores and services
	gen := generator.NewGenerator(generator.NewCache(rdb))
	gamStore := gamification.NewStore(db)
	quizStore := quiz.NewStore(db)
	quizService := quiz.NewService(quizStore, gen, gamStore)
	notesStore := notes.NewStore(db)
	uploadsStore := uploads.NewStore(db)
	chatStore := chat.NewStore(db)
	paymentsStore := payments.NewStore(db)
	referralsStore := referrals.NewStore(db)
	papersStore := papers.NewStore(db)
	tutorStore := tutor.NewStore(db)

	if err := papersStore.Seed(); err != nil {
		log.Fatalf("Failed to seed past papers: %v", err)
	}

	hub := chat.NewHub()
	go hub.Run()

	mpesaClient := payments.NewMpesaClient(payments.ConfigFromEnv())
	if confirmURL := os.Getenv("MPESA_C2B_CONFIRMATION_URL"); confirmURL != "" {
		validateURL := os.Getenv("MPESA_C2B_VALIDATION_URL")
		if err := mpesaClient.RegisterC2BURLs(context.Background(), confirmURL, validateURL); err != nil {
			log.Printf("M-Pesa C2B URL registration failed: %v", err)
		}
	}

	// Handlers
	authHandler := auth.NewHandler(db)
	quizHandler := quiz.NewHandler(quizService)
	gamHandler := gamification.NewHandler(gamStore)
	notesHandler := notes.NewHandler(notesStore)
	uploadsHandler := uploads.NewHandler(uploadsStore)
	chatHandler := chat.NewHandler(chatStore, hub)
	paymentsHandler := payments.NewHandler(paymentsStore, mpesaClient)
	referralsHandler := referrals.NewHandler(referralsStore)
	papersHandler := papers.NewHandler(papersStore)
	tutorHandler := tutor.NewHandler(tutorStore, gen)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/leaderboard", gamHandler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/payments/mpesa/callback", paymentsHandler.Callback).Methods("POST")
	api.HandleFunc("/ws", chatHandler.ServeWS).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)

	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", authHandler.UpsertProfile).Methods("PUT")

	protected.HandleFunc("/quizzes/generate", quizHandler.Generate).Methods("POST")
	protected.HandleFunc("/quizzes", quizHandler.List).Methods("GET")
	protected.HandleFunc("/quizzes/{id:[0-9]+}", quizHandler.Get).Methods("GET")
	protected.HandleFunc("/quizzes/{id:[0-9]+}/grade", quizHandler.Grade).Methods("POST")
	protected.HandleFunc("/results", quizHandler.Results).Methods("GET")

	protected.HandleFunc("/notes", notesHandler.List).Methods("GET")
	protected.HandleFunc("/notes", notesHandler.Create).Methods("POST")
	protected.HandleFunc("/notes/{id:[0-9]+}", notesHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/uploads", uploadsHandler.Create).Methods("POST")
	protected.HandleFunc("/uploads", uploadsHandler.ListPublic).Methods("GET")
	protected.HandleFunc("/uploads/mine", uploadsHandler.ListMine).Methods("GET")
	protected.HandleFunc("/uploads/{id:[0-9]+}", uploadsHandler.Get).Methods("GET")
	protected.HandleFunc("/uploads/{id:[0-9]+}", uploadsHandler.Update).Methods("PUT")
	protected.HandleFunc("/uploads/{id:[0-9]+}", uploadsHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/uploads/{id:[0-9]+}/like", uploadsHandler.ToggleLike).Methods("POST")
	protected.HandleFunc("/uploads/{id:[0-9]+}/download", uploadsHandler.Download).Methods("POST")

	protected.HandleFunc("/conversations", chatHandler.StartConversation).Methods("POST")
	protected.HandleFunc("/conversations", chatHandler.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetMessages).Methods("GET")
	protected.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.SendMessage).Methods("POST")
	protected.HandleFunc("/conversations/{id:[0-9]+}/read", chatHandler.MarkRead).Methods("POST")
	protected.HandleFunc("/users/search", chatHandler.SearchUsers).Methods("GET")

	protected.HandleFunc("/payments/mpesa/initiate", paymentsHandler.Initiate).Methods("POST")
	protected.HandleFunc("/payments/mpesa/status/{checkoutRequestID}", paymentsHandler.Status).Methods("GET")
	protected.HandleFunc("/payments/history", paymentsHandler.History).Methods("GET")
	protected.HandleFunc("/payments/subscription", paymentsHandler.SubscriptionStatus).Methods("GET")
	protected.HandleFunc("/payments/subscription", paymentsHandler.CancelSubscription).Methods("DELETE")

	protected.HandleFunc("/referrals", referralsHandler.Create).Methods("POST")
	protected.HandleFunc("/referrals", referralsHandler.List).Methods("GET")
	protected.HandleFunc("/referrals/redeem", referralsHandler.Redeem).Methods("POST")

	protected.HandleFunc("/papers", papersHandler.List).Methods("GET")
	protected.HandleFunc("/papers/{id:[0-9]+}", papersHandler.Get).Methods("GET")

	protected.HandleFunc("/tutor", tutorHandler.Ask).Methods("POST")
	protected.HandleFunc("/tutor/history", tutorHandler.History).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
