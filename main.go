package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/config"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/db"
	api "github.com/MiltonTSilva/ContasReceber-sub000/internal/http"
	"github.com/MiltonTSilva/ContasReceber-sub000/internal/notify"
)

func main() {
	env := config.LoadEnv()

	pool := config.ConnectDB(env.DBDSN)
	defer pool.Close()

	if err := db.Migrate(pool); err != nil {
		log.Fatalf("Falha ao migrar o banco: %v", err)
	}

	hub := notify.NewHub()

	r := api.NewRouter(env, pool, hub)

	// sem WriteTimeout: /api/events mantém streams SSE abertos
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Servidor em execução em http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Falha ao iniciar o servidor: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Desligando o servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Falha ao desligar o servidor: %v", err)
	}

	log.Println("Servidor encerrado com segurança.")
}
