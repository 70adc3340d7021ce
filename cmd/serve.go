package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diag360/territory-cli/internal/apiclient"
	"github.com/diag360/territory-cli/internal/model"
	"github.com/diag360/territory-cli/internal/score"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map dataset and score endpoints locally",
	Long: `Bootstraps a session (geometry plus score table) and serves it over a
local HTTP API for a dashboard frontend: the filtered GeoJSON, territory
search, score breakdowns and flash reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(cfg, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Session.Start(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":      "ok",
				"data_source": e.Session.DataSource(),
			})
		})

		r.Get("/api/geo", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, e.Session.Collection())
		})

		r.Get("/api/territories", func(w http.ResponseWriter, req *http.Request) {
			limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
			items, err := e.Session.Search(req.Context(), req.URL.Query().Get("search"), limit)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, model.TerritoryListResponse{Items: items, Total: len(items)})
		})

		r.Get("/api/territories/{code}", func(w http.ResponseWriter, req *http.Request) {
			rec, err := e.API.GetTerritoryByCode(req.Context(), chi.URLParam(req, "code"))
			if err != nil {
				status := http.StatusBadGateway
				if errors.Is(err, apiclient.ErrNotFound) {
					status = http.StatusNotFound
				}
				writeJSON(w, status, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, rec)
		})

		r.Get("/api/territories/{code}/summary", func(w http.ResponseWriter, req *http.Request) {
			groups := score.ObjectiveTypes
			if req.URL.Query().Get("by") == "indicators" {
				groups = score.IndicatorTypes
			}
			rec, err := e.API.GetTerritoryByCode(req.Context(), chi.URLParam(req, "code"))
			if err != nil {
				status := http.StatusBadGateway
				if errors.Is(err, apiclient.ErrNotFound) {
					status = http.StatusNotFound
				}
				writeJSON(w, status, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, score.Summarize(rec, groups))
		})

		r.Post("/api/reports/flash", func(w http.ResponseWriter, req *http.Request) {
			var body model.FlashReportRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.CodeSiren == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code_siren is required"})
				return
			}
			rec, err := e.API.GetTerritoryByCode(req.Context(), body.CodeSiren)
			if err != nil {
				status := http.StatusBadGateway
				if errors.Is(err, apiclient.ErrNotFound) {
					status = http.StatusNotFound
				}
				writeJSON(w, status, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, score.FlashReport(rec, body.Scores))
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
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
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
