package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codequest/backend/internal/config"
	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/handler"
	appMiddleware "github.com/codequest/backend/internal/middleware"
	"github.com/codequest/backend/internal/repository"
	"github.com/codequest/backend/internal/service"
	"github.com/codequest/backend/pkg/crypto"
	"github.com/codequest/backend/pkg/mailer"
	"github.com/codequest/backend/pkg/media"
	"github.com/codequest/backend/pkg/payment"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config (reads .env when present)
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ Config error: %v", err)
	}

	log := newLogger(cfg)
	handler.ExposeInternalErrors(cfg.IsDevelopment())

	ctx := context.Background()

	// Initialize database
	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Database error: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := repository.RunMigrations(ctx, db); err != nil {
		log.Fatalf("❌ Migration error: %v", err)
	}
	log.Info("✅ Database connected & migrated")

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	postRepo := repository.NewPostRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	otpStore, err := newOTPStore(cfg, db)
	if err != nil {
		log.Fatalf("❌ Encryption error: %v", err)
	}
	log.WithField("store", cfg.OTPStore).Info("🔐 OTP store ready")

	provider := newPaymentProvider(cfg, log)
	mail := newMailer(cfg, log)

	mediaStore, err := newMediaStore(cfg)
	if err != nil {
		log.Fatalf("❌ Media store error: %v", err)
	}

	// Services
	tokens := service.NewTokenIssuer(cfg.JWTSecret)
	otp := service.NewOTPVerifier(otpStore, cfg.OTPTTL)
	historySvc := service.NewLoginHistoryService(historyRepo, log)
	authSvc := service.NewAuthService(accountRepo, tokens, otp, historySvc, mail, service.AuthOptions{
		MobileWindow: domain.Window{StartHour: cfg.MobileWindowStart, EndHour: cfg.MobileWindowEnd, Location: cfg.MobileLocation},
		ExposeOTP:    cfg.OTPExposeCode,
	}, log)
	userSvc := service.NewUserService(accountRepo)
	subSvc := service.NewSubscriptionService(subRepo, log)
	paymentWindow := domain.Window{StartHour: cfg.PaymentWindowStart, EndHour: cfg.PaymentWindowEnd, Location: cfg.PaymentLocation}
	paymentSvc := service.NewPaymentService(provider, paymentRepo, accountRepo, subSvc, mail, paymentWindow, log)
	questionSvc := service.NewQuestionService(questionRepo, subSvc, mediaStore, log)
	friendSvc := service.NewFriendService(friendRepo, accountRepo, log)
	// Daily post counts reset at midnight in the payment time zone.
	postSvc := service.NewPostService(postRepo, accountRepo, mediaStore, domain.Window{Location: cfg.PaymentLocation}, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	historyHandler := handler.NewLoginHistoryHandler(historySvc)
	subHandler := handler.NewSubscriptionHandler(subSvc, paymentSvc)
	questionHandler := handler.NewQuestionHandler(questionSvc)
	friendHandler := handler.NewFriendHandler(friendSvc)
	postHandler := handler.NewPostHandler(postSvc)
	healthHandler := handler.NewHealthHandler(db)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery(log))
	r.Use(appMiddleware.Logger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	defer globalRL.Stop()
	r.Use(globalRL.Middleware())

	// Login and OTP endpoints get 1 req/sec per IP, burst of 5
	strictRL := appMiddleware.StrictRateLimiter()
	defer strictRL.Stop()

	// Health check, uploads and public routes (no auth)
	r.Get("/health", healthHandler.Check)
	if !cfg.CloudinaryConfigured() {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", userHandler.List)
		r.Get("/subscription/plans", subHandler.Plans)
		r.Get("/subscription/payment-window", subHandler.PaymentWindow)
		r.Get("/questions", questionHandler.List)
		r.Get("/questions/video", questionHandler.ListVideo)
		r.Get("/questions/text", questionHandler.ListText)
		r.Get("/posts", postHandler.Feed)

		// Auth routes
		r.Group(func(r chi.Router) {
			r.Use(strictRL.Middleware())
			r.Post("/auth/signup", authHandler.Signup)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/google", authHandler.Google)
			r.Post("/auth/email/send-otp", authHandler.SendEmailOTP)
			r.Post("/auth/email/verify-otp", authHandler.VerifyEmailOTP)
			r.Post("/auth/phone/send-otp", authHandler.SendPhoneOTP)
			r.Post("/auth/phone/verify-otp", authHandler.VerifyPhoneOTP)
		})

		// Protected API routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Auth(authSvc))

			r.Get("/auth/me", authHandler.Me)
			r.Patch("/users/{id}", userHandler.Update)

			// Login history
			r.Get("/login-history", historyHandler.History)
			r.Get("/login-history/recent", historyHandler.Recent)
			r.Get("/login-history/stats", historyHandler.Stats)

			// Subscription & payments
			r.Get("/subscription/me", subHandler.Me)
			r.Get("/subscription/payments", subHandler.Payments)
			r.Post("/subscription/create-order", subHandler.CreateOrder)
			r.Post("/subscription/verify-payment", subHandler.VerifyPayment)

			// Questions
			r.Post("/questions", questionHandler.Ask)
			r.Patch("/questions/{id}", questionHandler.Edit)
			r.Delete("/questions/{id}", questionHandler.Delete)
			r.Patch("/questions/{id}/vote", questionHandler.Vote)

			// Friends (specific routes BEFORE generic {userId} route)
			r.Post("/friends/request", friendHandler.Send)
			r.Get("/friends/requests/pending", friendHandler.Pending)
			r.Get("/friends/requests/sent", friendHandler.Sent)
			r.Patch("/friends/request/{id}/accept", friendHandler.Accept)
			r.Patch("/friends/request/{id}/reject", friendHandler.Reject)
			r.Delete("/friends/request/{id}", friendHandler.Cancel)
			r.Get("/friends/status/{targetUserId}", friendHandler.Status)
			r.Get("/friends", friendHandler.Mine)
			r.Get("/friends/{userId}", friendHandler.OfUser)
			r.Delete("/friends/{friendId}", friendHandler.Remove)

			// Posts
			r.Get("/posts/status", postHandler.Status)
			r.Post("/posts", postHandler.Create)
			r.Patch("/posts/{id}/like", postHandler.Like)
			r.Post("/posts/{id}/comment", postHandler.Comment)
			r.Post("/posts/{id}/share", postHandler.Share)
			r.Delete("/posts/{id}", postHandler.Delete)
		})
	})

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("🛑 Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown did not complete cleanly")
		}
	}()

	log.Infof("🚀 CodeQuest backend listening at http://%s", addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ Server error: %v", err)
	}
	paymentSvc.Wait()
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// newOTPStore keeps codes in process memory, or encrypted in postgres when
// several instances share the load.
func newOTPStore(cfg *config.Config, db *pgxpool.Pool) (service.OTPStore, error) {
	if cfg.OTPStore != "postgres" {
		return service.NewMemoryOTPStore(), nil
	}
	enc, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return repository.NewOTPRepository(db, enc), nil
}

func newPaymentProvider(cfg *config.Config, log logrus.FieldLogger) payment.Provider {
	keyID := cfg.RazorpayKeyID
	if keyID == "" {
		keyID = "rzp_test_dummy"
	}
	mock := payment.NewMockProvider(keyID, cfg.RazorpayKeySecret)
	if !payment.Configured(cfg.RazorpayKeyID, cfg.RazorpayKeySecret) {
		log.Warn("⚠️  Razorpay not configured, using mock payment provider")
		return mock
	}
	log.Info("✅ Razorpay configured")
	return payment.WithFallback(payment.NewRazorpayProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL), mock, log)
}

func newMailer(cfg *config.Config, log logrus.FieldLogger) mailer.Mailer {
	if !cfg.SMTPConfigured() {
		log.Warn("⚠️  SMTP not configured, emails will be logged")
		return mailer.NewLogMailer(log)
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

func newMediaStore(cfg *config.Config) (media.Store, error) {
	if cfg.CloudinaryConfigured() {
		return media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "codequest")
	}
	return media.NewDiskStore(cfg.UploadDir, "/uploads")
}
