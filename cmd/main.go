package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"lexora-chat/handler"
	"lexora-chat/internal/integrations/openai"
	"lexora-chat/internal/integrations/paramstore"
	"lexora-chat/internal/ratelimit"
	"lexora-chat/internal/repository"
	"lexora-chat/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Local runs only; Lambda has no .env file.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	databaseURL := os.Getenv("DATABASE_URL")
	limits := usecase.Limits{
		MaxContextItems:      envInt("MAX_CONTEXT_ITEMS", 20),
		MaxMessageLength:     envInt("MAX_MESSAGE_LENGTH", 4000),
		MaxDocumentChars:     envInt("MAX_DOCUMENT_CHARS", 12000),
		MaxTurnChars:         envInt("MAX_TURN_CHARS", 4000),
		MaxConversationTurns: envInt("MAX_CONVERSATION_TURNS", 30),
	}
	ratePerMinute := envFloat("CHAT_RATE_PER_MINUTE", 20)
	rateBurst := envInt("CHAT_RATE_BURST", 5)
	temperature := envFloat("OPENAI_TEMPERATURE", 0.3)
	maxTokens := envInt("OPENAI_MAX_TOKENS", 0)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	stateStore, err := repository.NewConversationStore(awsdynamodb.NewFromConfig(cfg), stateTable)
	if err != nil {
		slog.Error("failed to create state store", "err", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(ssmClient, paramPrefix,
		openai.WithTemperature(temperature),
		openai.WithMaxTokens(maxTokens),
		openai.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithRateLimiter(ratelimit.New(ratePerMinute, rateBurst)),
	}
	if databaseURL != "" {
		pool, err := repository.OpenPool(ctx, databaseURL)
		if err != nil {
			slog.Error("failed to connect to document database", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		documents, err := repository.NewDocumentStore(pool)
		if err != nil {
			slog.Error("failed to create document store", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithDocumentFetcher(documents))
	} else {
		slog.Info("DATABASE_URL not set, document text lookup disabled")
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(ssmClient, openaiClient, stateStore, paramPrefix, limits, opts...)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, handler.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func logLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
