package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemsource/supplier-cli/internal/country"
	"github.com/chemsource/supplier-cli/internal/discover"
	"github.com/chemsource/supplier-cli/internal/model"
	"github.com/chemsource/supplier-cli/internal/resilience"
)

var servePort int

// exampleChemicals are known-good inputs for trying the API out.
var exampleChemicals = []map[string]string{
	{"chemical_name": "Eucalyptol", "cas_number": "470-82-6"},
	{"chemical_name": "N-Methyl-2-pyrrolidone", "cas_number": "872-50-4"},
	{"chemical_name": "Potassium methoxide", "cas_number": "865-33-8"},
	{"chemical_name": "Polysorbate 80", "cas_number": "9005-65-6"},
	{"chemical_name": "Acetone", "cas_number": "67-64-1"},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the supplier discovery HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", handleHealth(env))
		r.Get("/countries", handleCountries)
		r.Get("/examples", handleExamples)
		r.Post("/search", handleSearch(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleHealth(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"search_provider":  cfg.Serp.Key != "",
			"rerank_provider":  cfg.Cohere.Key != "" || cfg.Jina.Key != "",
			"email_verifier":   cfg.Hunter.Key != "",
			"store_configured": env.Store != nil,
		})
	}
}

func handleCountries(w http.ResponseWriter, r *http.Request) {
	codes := country.Codes()
	writeJSON(w, http.StatusOK, map[string]any{
		"country_codes":   codes,
		"total_countries": len(codes),
	})
}

func handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"examples": exampleChemicals})
}

type searchRequest struct {
	ChemicalName      string   `json:"chemical_name"`
	CASNumber         string   `json:"cas_number"`
	Limit             int      `json:"limit"`
	ExcludedCountries []string `json:"excluded_countries,omitempty"`
	AllowedCountries  []string `json:"allowed_countries,omitempty"`
}

type searchResponse struct {
	Success            bool                   `json:"success"`
	Message            string                 `json:"message"`
	Result             *model.DiscoveryResult `json:"result,omitempty"`
	Failed             []resilience.DLQEntry  `json:"failed,omitempty"`
	Stats              *discover.Stats        `json:"stats,omitempty"`
	ProcessingTimeSecs float64                `json:"processing_time_secs,omitempty"`
}

func handleSearch(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, searchResponse{Message: "invalid request body"})
			return
		}

		limit := req.Limit
		if limit == 0 {
			limit = 10
		}
		query := model.ChemicalQuery{
			Name:             req.ChemicalName,
			CAS:              req.CASNumber,
			Limit:            limit,
			AllowedCountries: country.CanonicalNames(req.AllowedCountries),
			DeniedCountries:  country.CanonicalNames(req.ExcludedCountries),
		}
		if err := query.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, searchResponse{Message: err.Error()})
			return
		}

		start := time.Now()
		report, err := env.Pipeline.Discover(r.Context(), query)
		if err != nil {
			zap.L().Error("search request failed",
				zap.String("chemical", query.Name),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, searchResponse{Message: "search failed"})
			return
		}

		if env.Store != nil {
			persistRun(r.Context(), env, query, &report.Result)
		}

		writeJSON(w, http.StatusOK, searchResponse{
			Success:            true,
			Message:            fmt.Sprintf("found %d suppliers", len(report.Result.Suppliers)),
			Result:             &report.Result,
			Failed:             report.Failed,
			Stats:              &report.Stats,
			ProcessingTimeSecs: time.Since(start).Seconds(),
		})
	}
}

// persistRun records a completed API search in the run store.
func persistRun(ctx context.Context, env *pipelineEnv, query model.ChemicalQuery, result *model.DiscoveryResult) {
	run, err := env.Store.CreateRun(ctx, query)
	if err == nil {
		err = env.Store.CompleteRun(ctx, run.ID, result)
	}
	if err != nil {
		zap.L().Warn("persist run", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
