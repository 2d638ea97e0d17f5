package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/dmforge/encounter-engine/internal/config"
	mcphandler "github.com/dmforge/encounter-engine/internal/handlers/mcp"
	"github.com/dmforge/encounter-engine/internal/repositories/characters"
	"github.com/dmforge/encounter-engine/internal/services"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	providerConfig := &services.ProviderConfig{}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Try to connect to Redis if URL is provided
	if cfg.Redis.URL != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.URL)

		opts, parseErr := redis.ParseURL(cfg.Redis.URL)
		if parseErr != nil {
			log.Printf("Failed to parse Redis URL: %v", parseErr)
			log.Println("Falling back to in-memory repositories")
		} else {
			redisClient = redis.NewClient(opts)

			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				cancel()
				log.Printf("Failed to connect to Redis: %v", pingErr)
				log.Println("Falling back to in-memory repositories")
				redisClient = nil
			} else {
				cancel()
				log.Println("Successfully connected to Redis")

				providerConfig.CharacterRepository = characters.NewRedisRepository(&characters.RedisRepoConfig{
					Client: redisClient,
				})
				log.Println("Using Redis for character persistence")
			}
		}
	} else {
		log.Println("No REDIS_URL found, using in-memory repositories")
	}

	serviceProvider := services.NewProvider(providerConfig)

	server := mcphandler.NewServer(&mcphandler.ServerConfig{
		ServiceProvider: serviceProvider,
		Name:            cfg.Server.Name,
		Version:         cfg.Server.Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	log.Println("MCP server running over stdio. Press CTRL-C to exit.")

	if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Printf("Server stopped: %v", err)
	}

	// Clean up Redis connection if we have one
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		} else {
			log.Println("Closed Redis connection")
		}
	}
}
