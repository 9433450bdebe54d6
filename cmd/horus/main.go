package main

import (
	"context"
	"crypto/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/DELTAJoSch/Horus/internal/application/user"
	"github.com/DELTAJoSch/Horus/internal/config"
	horushttp "github.com/DELTAJoSch/Horus/internal/infrastructure/http"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/http/handlers"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/http/middleware"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/persistence/mongodb"
	"github.com/DELTAJoSch/Horus/internal/infrastructure/security"
	"github.com/DELTAJoSch/Horus/internal/startup"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	client, err := mongodb.Connect(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	userRepo, err := mongodb.NewUserRepository(ctx, client.Database(cfg.Database.Name), cfg.Database.UsersCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("prepare users collection")
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	ensurer := startup.NewUserExistenceEnsurer(userRepo, hasher, log)
	if err := ensurer.Ensure(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user existence")
	}

	sessionSecret := []byte(cfg.Session.Secret)
	if len(sessionSecret) == 0 {
		// Sessions do not survive restarts without a configured secret.
		sessionSecret = make([]byte, 32)
		if _, err := rand.Read(sessionSecret); err != nil {
			log.Fatal().Err(err).Msg("generate session secret")
		}
		log.Warn().Msg("SESSION_SECRET not set, using an ephemeral secret")
	}
	sessions := middleware.NewSessionManager(
		sessionSecret,
		time.Duration(cfg.Session.TTLDays)*24*time.Hour,
		cfg.Secure.IsDevelopment,
	)

	svc := user.NewService(userRepo, hasher, log)
	usersHandler := handlers.NewUsersHandler(svc, sessions, log)
	healthHandler := handlers.NewHealthHandler(client)
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))

	router := horushttp.NewRouter(horushttp.RouterConfig{
		Users:    usersHandler,
		Health:   healthHandler,
		Sessions: sessions,
		Log:      log,
		Secure:   secureMiddleware,
		Metrics:  true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
