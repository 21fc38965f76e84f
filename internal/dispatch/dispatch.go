// Package dispatch builds the single HTTP front the whole emulator answers
// on, classifying each request to the S3, DynamoDB, or Lambda surface the
// same way the reference router does before handing it to that engine.
package dispatch

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"stackbox/internal/dynamo"
	"stackbox/internal/lambdastub"
	"stackbox/internal/logging"
	"stackbox/internal/objectstore"
)

// Config enables or disables each emulated service, mirroring the
// RUSTSTACK_S3 / RUSTSTACK_DYNAMODB / RUSTSTACK_LAMBDA switches.
type Config struct {
	S3       bool
	DynamoDB bool
	Lambda   bool
}

// Router is the top-level HTTP front end: one dispatcher in front of the S3,
// DynamoDB, and (stub) Lambda engines.
type Router struct {
	cfg       Config
	s3        *objectstore.Service
	s3Router  chi.Router
	dynamo    *dynamo.Service
	logger    *zap.Logger
}

// NewRouter wires a Router over already-constructed engine services.
func NewRouter(cfg Config, s3 *objectstore.Service, dyn *dynamo.Service, logger *zap.Logger) *Router {
	s3Router := chi.NewRouter()
	s3.Routes(s3Router)
	return &Router{cfg: cfg, s3: s3, s3Router: s3Router, dynamo: dyn, logger: logger}
}

// Setup builds the chi handler: global middleware, health endpoints, and the
// catch-all classifier.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(logging.RequestLogger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Amz-Target", "X-Amz-Content-Sha256", "X-Amz-Date", "X-Amz-Security-Token"},
		ExposedHeaders:   []string{"X-Request-ID", "ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/_localstack/health", rt.healthCheck)
	router.Handle("/*", http.HandlerFunc(rt.classify))

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"running","services":["s3","dynamodb","lambda"]}`))
}

// classify reproduces detect_service's ordering: an X-Amz-Target header
// naming a DynamoDB operation wins outright, then a Lambda-shaped path, and
// everything else falls through to S3 (the most common case).
func (rt *Router) classify(w http.ResponseWriter, r *http.Request) {
	service := rt.detectService(r)
	*r = *r.WithContext(logging.WithService(r.Context(), service))

	switch service {
	case "dynamodb":
		if !rt.cfg.DynamoDB {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		rt.dynamo.ServeHTTP(w, r)
	case "lambda":
		if !rt.cfg.Lambda {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		*r = *r.WithContext(logging.WithOperation(r.Context(), "Invoke"))
		lambdastub.Handler(w, r)
	default:
		if !rt.cfg.S3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		*r = *r.WithContext(logging.WithOperation(r.Context(), r.Method))
		rt.s3Router.ServeHTTP(w, r)
	}
}

func (rt *Router) detectService(r *http.Request) string {
	if target := r.Header.Get("X-Amz-Target"); target != "" && strings.HasPrefix(target, "DynamoDB") {
		return "dynamodb"
	}
	path := r.URL.Path
	if strings.HasPrefix(path, "/2015-03-31/functions") || strings.HasPrefix(path, "/lambda") {
		return "lambda"
	}
	return "s3"
}
