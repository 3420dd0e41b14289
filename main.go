package main

import (
	"Gateway/internal/admin"
	auth "Gateway/internal/auth"
	"Gateway/internal/calc/batch"
	"Gateway/internal/calc/importer"
	"Gateway/internal/calc/report"
	"Gateway/internal/calc/solubility"
	"Gateway/internal/config"
	"Gateway/internal/metrics"
	profile "Gateway/internal/profile"
	repo "Gateway/internal/repo"
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg *config.Config, users repo.Repository, store *solubility.Store, gatherer prometheus.Gatherer) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: users, Secure: cfg.TLSCert != ""}
	profileH := &profile.ProfileHandler{Repo: users}
	adminH := &admin.Handler{Repo: users}

	calcH := solubility.NewHandler(store)
	reportH := &report.Handler{Calc: calcH}
	batchH := &batch.Handler{Calc: calcH}
	importH := &importer.Handler{Calc: calcH}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	userApi := api.PathPrefix("/user").Subrouter()
	userApi.Use(authEnv.APIMiddleware)
	userApi.HandleFunc("/onboard", profileH.Onboard).Methods("POST")

	h2s := api.PathPrefix("/h2s").Subrouter()
	h2s.Use(authEnv.APIMiddleware, authEnv.RequireApproved)
	h2s.HandleFunc("", calcH.Calc).Methods("GET")
	h2s.HandleFunc("/systems", calcH.Systems).Methods("GET")
	h2s.HandleFunc("/history", calcH.GetHistory).Methods("GET")
	h2s.HandleFunc("/history", calcH.ClearHistory).Methods("DELETE")
	h2s.HandleFunc("/history/{id:[0-9]+}/csv", calcH.CSV).Methods("GET")
	h2s.HandleFunc("/history/{id:[0-9]+}/xlsx", calcH.XLSX).Methods("GET")
	h2s.HandleFunc("/chart.png", calcH.Chart).Methods("GET")
	h2s.HandleFunc("/report.pdf", reportH.Generate).Methods("GET")
	h2s.HandleFunc("/batch", batchH.Run).Methods("POST")
	h2s.HandleFunc("/import", importH.Import).Methods("POST")

	adminApi := api.PathPrefix("/admin").Subrouter()
	adminApi.Use(authEnv.APIMiddleware, authEnv.RequireAdmin)
	adminApi.HandleFunc("/users", adminH.List).Methods("GET")
	adminApi.HandleFunc("/users/{id:[0-9]+}", adminH.Update).Methods("PATCH")

	mux.Handle("/auth/me", authEnv.APIMiddleware(http.HandlerFunc(profileH.Me))).Methods("GET")

	authFileServer := http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "auth")))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	mainFileServer := http.FileServer(http.Dir(filepath.Join(cfg.StaticDir, "main")))
	mux.PathPrefix("/").
		Handler(mainFileServer)
}

func openUsers(ctx context.Context, databaseURL string) (repo.Repository, func()) {
	if databaseURL == "memory" {
		logrus.Warn("DATABASE_URL=memory: users are kept in process memory")
		return repo.NewMemoryUserDB(), func() {}
	}
	db := auth.InitDB(databaseURL)
	users := repo.NewPostgresUserDB(db)
	if err := users.Migrate(ctx); err != nil {
		logrus.Fatal("migrate users table: ", err)
	}
	return users, func() { db.Close() }
}

func main() {
	cfg, err := config.Load("gateway", os.Args[1:])
	if err != nil {
		logrus.Fatal(err)
	}
	if err := config.SetupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatal(err)
	}
	if cfg.TokenKey == "" {
		logrus.Fatal("TOKEN_KEY environment variable is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics.Register(prometheus.DefaultRegisterer)
	users, closeDB := openUsers(ctx, cfg.DatabaseURL)
	defer closeDB()
	store := solubility.LoadStore(solubility.Assets(cfg.GridDir))

	mux := mux.NewRouter()
	HandleList(mux, cfg, users, store, prometheus.DefaultGatherer)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "tls": cfg.TLSCert != ""}).Info("starting server")
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("server shutdown: %v", err)
	}
	logrus.Info("server stopped")

	wg.Wait()
}
