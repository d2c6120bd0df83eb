package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/stafflyhq/chat/internal/config"
	"github.com/stafflyhq/chat/internal/devserver"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	srv := devserver.New(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting dev server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Handler()))
}
