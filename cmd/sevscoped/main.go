// Command sevscoped is the hosted sevscope service.
// It serves the scoring and ingest API, the publisher webhook endpoint,
// Prometheus metrics and a health check.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sevscope/sevscope/internal/api"
	"github.com/sevscope/sevscope/internal/ingestion"
	"github.com/sevscope/sevscope/internal/notify"
	"github.com/sevscope/sevscope/internal/platform"
	"github.com/sevscope/sevscope/internal/tenant"
	"github.com/sevscope/sevscope/internal/webhook"
)

type config struct {
	Port          string
	DatabaseURL   string
	APIKey        string
	WebhookSecret string

	LocalStoragePath string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	GCSBucket        string

	AlertEndpoint  string
	AlertIssuer    string
	AlertKeyFile   string
	AlertMinRating string
}

func loadConfig() config {
	return config{
		Port:          envOrDefault("PORT", "8080"),
		DatabaseURL:   envOrDefault("DATABASE_URL", "postgres://localhost:5432/sevscope?sslmode=disable"),
		APIKey:        os.Getenv("API_KEY"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		LocalStoragePath: envOrDefault("LOCAL_STORAGE_PATH", "/tmp/sevscope-data"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),

		AlertEndpoint:  os.Getenv("ALERT_ENDPOINT"),
		AlertIssuer:    envOrDefault("ALERT_ISSUER", "sevscope"),
		AlertKeyFile:   os.Getenv("ALERT_PRIVATE_KEY_FILE"),
		AlertMinRating: envOrDefault("ALERT_MIN_RATING", "high"),
	}
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	tenantSvc := tenant.NewService(db)

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("configure storage: %v", err)
	}

	var alerter ingestion.Alerter
	if cfg.AlertEndpoint != "" {
		keyPEM, err := os.ReadFile(cfg.AlertKeyFile)
		if err != nil {
			log.Fatalf("read alert key: %v", err)
		}
		publisher, err := notify.NewAlertPublisher(cfg.AlertEndpoint, cfg.AlertIssuer, keyPEM, cfg.AlertMinRating)
		if err != nil {
			log.Fatalf("configure alerting: %v", err)
		}
		alerter = publisher
	}

	ingestionSvc := ingestion.NewService(tenantSvc, storage, alerter)

	apiMux := http.NewServeMux()
	api.NewHandler(tenantSvc, ingestionSvc, nil).RegisterRoutes(apiMux)
	apiChain := api.CORS(api.APIKeyAuth(cfg.APIKey)(api.Metrics(apiMux)))

	webhookHandler := webhook.NewHandler([]byte(cfg.WebhookSecret), tenantSvc, ingestionSvc)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiChain)
	mux.Handle("POST /v1/webhooks/publisher", webhookHandler)
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("starting sevscoped on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildStorage picks the document archive backend: GCS when GCS_BUCKET is
// set, S3 when S3_BUCKET is set, local disk otherwise.
func buildStorage(ctx context.Context, cfg config) (ingestion.StorageClient, error) {
	if cfg.GCSBucket != "" {
		return ingestion.NewGCSStorage(ctx, cfg.GCSBucket)
	}
	if cfg.S3Bucket != "" {
		return ingestion.NewS3Storage(ctx, ingestion.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return ingestion.NewLocalStorage(cfg.LocalStoragePath), nil
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
