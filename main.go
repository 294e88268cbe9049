package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"kartbook/auth"
	"kartbook/booking"
	"kartbook/config"
	"kartbook/jobs"
	"kartbook/karts"
	"kartbook/middleware"
	"kartbook/models"
	"kartbook/mq"
	"kartbook/notify"
	"kartbook/ratelim"
	"kartbook/rdx"
	"kartbook/routes"
	"kartbook/settings"

	"github.com/covalenthq/lumberjack"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		// Referrer and permissions
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// Prevent caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s in %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// initLogger sends the standard logger to stdout and, when LOG_FILE is set,
// to a rotated file as well.
func initLogger(file string) {
	if file == "" {
		log.SetOutput(os.Stdout)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func newHandler(router http.Handler) http.Handler {
	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	return loggingMiddleware(securityHeaders(corsHandler))
}

func main() {
	cfg := config.Load()
	initLogger(cfg.LogFile)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	mailer := notify.NewMailer(st.settings)
	svc := &booking.Service{
		Clock:         booking.SystemClock{Location: cfg.Location()},
		Karts:         st.karts,
		Settings:      st.settings,
		Bookings:      st.bookings,
		Notifier:      mailer,
		NotifyTimeout: cfg.NotifyTimeout,
	}
	hub := booking.NewHub(svc)

	// Redis spreads the booking lock and availability pushes across instances.
	if cfg.RedisAddr != "" {
		conn, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer conn.Close()
		svc.Locker = rdx.NewLocker(conn)
		svc.Events = mq.Emitter{Conn: conn}
		go mq.StartBookingWorker(ctx, conn, func(ctx context.Context, ev models.BookingEvent) {
			hub.Refresh(ctx, ev.Date)
		})
	} else {
		svc.Locker = booking.NewLocalLocker()
		svc.Events = hub
	}

	if err := auth.EnsureAdmin(ctx, st.users, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		log.Printf("[Auth] admin seeding failed: %v", err)
	}
	if _, err := karts.SeedTypes(ctx, st.kartTypes); err != nil {
		log.Printf("[Karts] kart type seeding failed: %v", err)
	}

	scheduler, err := jobs.NewScheduler(ctx, svc, cfg.EmailRetryInterval)
	if err != nil {
		log.Fatalf("❌ scheduler: %v", err)
	}

	router := routes.New(routes.Handlers{
		Auth:      auth.NewHandler(st.users, []byte(cfg.JWTSecret)),
		Bookings:  booking.NewHandler(svc),
		Hub:       hub,
		Karts:     &karts.Handler{Karts: st.karts, Types: st.kartTypes, UploadDir: cfg.UploadDir},
		Settings:  &settings.Handler{Store: st.settings, Mailer: mailer},
		Guard:     middleware.Auth{Secret: []byte(cfg.JWTSecret)},
		Limiter:   ratelim.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst),
		UploadDir: cfg.UploadDir,
	})

	// create HTTP server
	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           newHandler(router),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Closing availability subscribers...")
		hub.Close()
	})

	// start server
	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	// initiate graceful shutdown
	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("❌ Scheduler shutdown failed: %v", err)
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Printf("❌ Store shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
