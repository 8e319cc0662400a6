package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	auth "Annular/internal/auth"
	film "Annular/internal/calc/film"
	batch "Annular/internal/calc/premium/batch"
	importer "Annular/internal/calc/premium/importer"
	report "Annular/internal/calc/report"
	config "Annular/internal/config"
	profile "Annular/internal/profile"
	props "Annular/internal/props"
	repo "Annular/internal/repo"
	stream "Annular/internal/stream"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

type stores struct {
	users repo.Repository
	runs  repo.RunRepository
}

func HandleList(mux *mux.Router, cfg config.Config, st stores) {
	env := film.Env{Channel: cfg.Channel, Options: cfg.Options, Provider: props.NewTable()}

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: st.users, InsecureCookie: cfg.TLSCert == ""}
	profileH := &profile.ProfileHandler{Repo: st.users, Runs: st.runs}
	filmH := &film.Handler{Env: env, Runs: st.runs}
	batchH := &batch.Handler{Env: env}
	importH := &importer.Handler{Env: env}
	reportH := &report.Handler{Env: env}
	wsH := stream.NewServer(env, websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	})

	limiter := auth.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()

	loginApi := api.NewRoute().Subrouter()
	loginApi.Use(limiter.LimitMiddleware)
	loginApi.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	loginApi.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	api.HandleFunc("/substances", filmH.Substances).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/runs", profileH.ListRuns).Methods("GET")
	secureApi.HandleFunc("/runs/{id}", profileH.GetRun).Methods("GET")

	secureApi.HandleFunc("/tools/film/calc", filmH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/film/point", filmH.Point).Methods("POST")
	secureApi.HandleFunc("/tools/film/batch", batchH.Film).Methods("POST")
	secureApi.HandleFunc("/tools/film/import", importH.Film).Methods("POST")
	secureApi.HandleFunc("/tools/film/export", importH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/film/report", reportH.Generate).Methods("POST")

	mux.Handle("/ws/film", authEnv.AuthMiddleware(http.HandlerFunc(wsH.ServeWs)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
}

// openStores uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise.
func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, users and runs are kept in memory")
		mem := repo.NewMemory()
		return stores{users: mem, runs: mem}, func() {}, nil
	}
	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return stores{}, nil, err
	}
	if err := repo.Migrate(ctx, db); err != nil {
		db.Close()
		return stores{}, nil, err
	}
	return stores{users: repo.NewPostgresUserDB(db), runs: repo.NewPostgresRunDB(db)}, func() { db.Close() }, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.SetupLogging()
	if cfg.TokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer closeStores()

	mux := mux.NewRouter()
	HandleList(mux, cfg, st)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(log.Fields{"addr": cfg.Addr, "tls": cfg.TLSCert != ""}).Info("starting server")
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Info("Server stopped")

	wg.Wait()
}
