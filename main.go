package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	var store Store
	if cfg.DBURL == "" {
		mem, err := seedDemoStore()
		if err != nil {
			logger.Fatal("seeding in-memory store failed", zap.Error(err))
		}
		store = mem
	} else {
		pg, err := newPGStore(context.Background(), cfg.DBURL, logger)
		if err != nil {
			logger.Fatal("database setup failed", zap.Error(err))
		}
		defer pg.Close()
		logger.Info("DB pool ready")
		store = pg
	}

	h := newHandler(store, cfg.Location, logger)
	router := h.newRouter()

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("timezone", cfg.Location.String()))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// seedDemoStore returns an in-memory store with one "demo" account so the API
// can be tried without Postgres. The password comes from DEMO_PASSWORD.
func seedDemoStore() (*memStore, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(getenv("DEMO_PASSWORD", "demo")), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	s := newMemStore()
	token := uuid.New().String()
	s.addUser(user{Username: "demo", Email: "demo@example.com", Password: string(hash), AuthToken: token})
	fmt.Printf("In-memory mode. Demo user: demo  Auth Token: %s\n", token)
	return s, nil
}
