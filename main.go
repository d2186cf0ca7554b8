package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/VirajsNexus/HireVoid/internal/database"
	"github.com/VirajsNexus/HireVoid/internal/extract"
	"github.com/VirajsNexus/HireVoid/internal/jobsearch"
	"github.com/VirajsNexus/HireVoid/internal/llm"
	"github.com/VirajsNexus/HireVoid/internal/logger"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/streadway/amqp"
)

const agentName = "resume_analyzer"

func main() {
	_ = godotenv.Load()

	addr := pflag.String("addr", envOr("ADDR", ":5000"), "HTTP listen address")
	workers := pflag.Int("workers", 3, "number of queue consumer workers")
	pflag.Parse()

	caller, _ := strconv.ParseBool(os.Getenv("LOG_CALLER"))
	logger.Init(logger.Config{
		Level:        os.Getenv("LOG_LEVEL"),
		Format:       envOr("LOG_FORMAT", "json"),
		ReportCaller: caller,
	})
	log := logger.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	googleApiKey := os.Getenv("GOOGLE_API_KEY")
	if googleApiKey == "" {
		log.Fatal().Msg("empty GOOGLE_API_KEY in env")
	}
	modelName := envOr("GEMINI_MODEL", llm.DefaultModel)

	generator, err := llm.NewGemini(ctx, llm.GeminiConfig{
		APIKey: googleApiKey,
		Model:  modelName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating gemini client")
	}

	var extractOpts []extract.Option
	if repair, _ := strconv.ParseBool(os.Getenv("EXTRACT_REPAIR")); repair {
		extractOpts = append(extractOpts, extract.WithRepair())
		log.Info().Msg("json repair enabled")
	}

	cfg := &ApiConfig{
		Analyzer:  analysis.NewAnalyzer(generator, extract.New(extractOpts...), log),
		Generator: generator,
		Log:       log,
	}

	if rapidKey := os.Getenv("RAPIDAPI_KEY"); rapidKey != "" {
		var cache *jobsearch.Cache
		if redisUrl := os.Getenv("REDIS_URL"); redisUrl != "" {
			opts, err := redis.ParseURL(redisUrl)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid REDIS_URL")
			}
			cache = jobsearch.NewCache(redis.NewClient(opts), jobsearch.DefaultCacheTTL)
		}
		cfg.Jobs = jobsearch.NewFinder(jobsearch.NewClient(rapidKey), cache, log)
	} else {
		log.Warn().Msg("RAPIDAPI_KEY not set, job search disabled")
	}

	if dbUrl := os.Getenv("DB_URL"); dbUrl != "" {
		db, err := sql.Open("postgres", dbUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("error opening db")
		}
		defer db.Close()
		cfg.DB = database.New(db)
	} else {
		log.Warn().Msg("DB_URL not set, saved analyses disabled")
	}

	if r2, ok := r2ConfigFromEnv(); ok {
		awsConfig, err := config.LoadDefaultConfig(ctx,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
			config.WithRegion("auto"),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating aws config")
		}
		cfg.Store = newR2Store(awsConfig, r2)
	}

	if rabbitmqUrl := os.Getenv("RABBITMQ_URL"); rabbitmqUrl != "" {
		conn, err := amqp.Dial(rabbitmqUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to RabbitMQ")
		}
		defer conn.Close()

		publisher, err := newRabbitPublisher(conn)
		if err != nil {
			log.Fatal().Err(err).Msg("error declaring RabbitMQ topology")
		}
		cfg.Publisher = publisher
		cfg.RABBITMQUrl = rabbitmqUrl

		agent, err := newADKAgent(ctx, googleApiKey, modelName, agentName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create agent")
		}
		cfg.Agent = agent
	}

	poolDone := make(chan struct{})
	if cfg.DB != nil && cfg.Store != nil && cfg.Publisher != nil && *workers > 0 {
		log.Info().Int("workers", *workers).Msg("starting consumer worker pool")
		go func() {
			defer close(poolDone)
			cfg.StartConsumerWorkerPool(ctx, *workers)
		}()
	} else {
		close(poolDone)
		log.Warn().Msg("uploads disabled, need DB_URL, R2_* and RABBITMQ_URL")
	}

	h := server.New(
		server.WithHostPorts(*addr),
		server.WithMaxRequestBodySize(maxUploadBytes+(1<<20)),
	)
	registerRoutes(h, cfg)

	go func() {
		if err := h.Run(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("addr", *addr).Str("model", generator.Model()).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	<-poolDone
	log.Info().Msg("workers stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// r2ConfigFromEnv reports ok=false unless every R2 variable is set.
func r2ConfigFromEnv() (R2Config, bool) {
	r2 := R2Config{
		AccountID: os.Getenv("R2_ACCOUNT_ID"),
		Bucket:    os.Getenv("R2_BUCKET"),
		AccessKey: os.Getenv("R2_ACCESS_KEY"),
		SecretKey: os.Getenv("R2_SECRET_KEY"),
	}
	if r2.AccountID == "" || r2.Bucket == "" || r2.AccessKey == "" || r2.SecretKey == "" {
		return r2, false
	}
	return r2, true
}
