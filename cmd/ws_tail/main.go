// Command ws_tail abre un websocket contra la API, se une a salas y muestra los frames recibidos.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"legal-aid/internal/domain"
	"legal-aid/internal/realtime"
	"legal-aid/internal/service"
)

type tailConfig struct {
	APIURL    string `env:"WS_TAIL_URL" envDefault:"ws://localhost:8080/ws"`
	JWTSecret string `env:"JWT_SECRET,required"`
}

func main() {
	userID := flag.String("user", "", "user id to connect as")
	name := flag.String("name", "ws_tail", "display name placed in the token")
	role := flag.String("role", string(domain.RoleCitizen), "role placed in the token")
	conversations := flag.String("conversations", "", "comma separated conversation ids to join")
	flag.Parse()

	_ = godotenv.Load()

	var cfg tailConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(*userID) == "" {
		log.Fatal("missing -user")
	}

	logger := zap.NewExample()
	defer logger.Sync()

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Hour)
	token, err := jwtSvc.IssueAccessToken(domain.User{ID: *userID, FullName: *name, Role: domain.Role(*role)})
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	target, err := url.Parse(cfg.APIURL)
	if err != nil {
		log.Fatalf("parse url: %v", err)
	}
	q := target.Query()
	q.Set("access_token", token)
	target.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(target.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	join := func(event, id string) {
		data, _ := json.Marshal(id)
		if err := conn.WriteJSON(realtime.Frame{Event: event, Data: data}); err != nil {
			log.Fatalf("join %s: %v", id, err)
		}
	}
	join(realtime.EventJoinUserRoom, *userID)
	for _, id := range strings.Split(*conversations, ",") {
		if id = strings.TrimSpace(id); id != "" {
			join(realtime.EventJoinConversation, id)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				logger.Info("connection closed", zap.Error(err))
				return
			}
			var frame struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(raw, &frame); err != nil {
				fmt.Println(string(raw))
				continue
			}
			fmt.Printf("[%s] %s %s\n", time.Now().Format(time.TimeOnly), frame.Event, frame.Data)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
