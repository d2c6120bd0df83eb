// chat-cli is a terminal client for poking at a running chat server: list
// channels, open threads, send messages, watch pushes arrive live.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stafflyhq/chat/internal/api"
	"github.com/stafflyhq/chat/internal/config"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stafflyhq/chat/internal/session"
	"github.com/stafflyhq/chat/internal/store"
	"github.com/stafflyhq/chat/internal/transport/ws"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	userID := uuid.New()
	displayName := getenv("CHAT_NAME", "cli-user")

	token := cfg.Token
	if token == "" {
		// Dev convenience: mint a token the dev server will accept.
		var err error
		token, err = mintToken(cfg.JWTSecret, userID, displayName)
		if err != nil {
			log.Fatal(err)
		}
	}

	st := store.New()
	client := api.NewClient(cfg.ServerURL, token)
	sess := session.New(st, client, nil, userID, displayName)

	adapter := ws.NewAdapter(cfg.ServerURL+"/ws", token, &printingHandler{sess})
	sess.SetTransport(adapter)

	ctx := context.Background()
	if err := adapter.Connect(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}
	if err := sess.LoadChannels(ctx); err != nil {
		log.Fatalf("load channels: %v", err)
	}

	fmt.Println("commands: /channels  /mkchan <name>  /threads <channel-id>  /mkthread <title>  /open <thread-id>  /unread  /quit")
	fmt.Println("anything else is sent to the open thread")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := run(ctx, sess, st, line); err != nil {
			fmt.Println("error:", err)
		}
		if line == "/quit" {
			return
		}
	}
}

func run(ctx context.Context, sess *session.Session, st *store.Store, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit":
		sess.Logout()
		return nil

	case "/channels":
		for _, t := range []domain.ChannelType{domain.ChannelPublic, domain.ChannelPrivate, domain.ChannelDirect} {
			for _, ch := range st.ChannelsByType(t) {
				fmt.Printf("  [%s] %s  %s\n", ch.Type, ch.Name, ch.ID)
			}
		}
		return nil

	case "/mkchan":
		ch, err := sess.CreateChannel(ctx, arg, domain.ChannelPublic)
		if err != nil {
			return err
		}
		fmt.Printf("created channel %s (%s)\n", ch.Name, ch.ID)
		return nil

	case "/threads":
		channelID, err := uuid.Parse(arg)
		if err != nil {
			return err
		}
		if err := sess.SelectChannel(ctx, channelID); err != nil {
			return err
		}
		for _, th := range st.ThreadsFor(channelID) {
			fmt.Printf("  %s  %s (unread %d)\n", th.Title, th.ID, st.UnreadCount(th.ID))
		}
		return nil

	case "/mkthread":
		th, err := sess.CreateThread(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Printf("created thread %q (%s)\n", th.Title, th.ID)
		return nil

	case "/open":
		threadID, err := uuid.Parse(arg)
		if err != nil {
			return err
		}
		if err := sess.SelectThread(ctx, threadID); err != nil {
			return err
		}
		for _, msg := range st.Messages(threadID) {
			fmt.Printf("  %s %s: %s\n", msg.CreatedAt.Format("15:04"), msg.SenderName, msg.Content)
		}
		return nil

	case "/unread":
		for threadID, n := range st.UnreadCounts() {
			fmt.Printf("  %s: %d\n", threadID, n)
		}
		return nil

	default:
		_, err := sess.SendMessage(ctx, line, nil)
		return err
	}
}

// printingHandler echoes incoming pushes to the terminal before handing them
// to the session.
type printingHandler struct {
	*session.Session
}

func (h *printingHandler) OnMessageCreated(msg domain.Message) {
	fmt.Printf("<< %s: %s\n", msg.SenderName, msg.Content)
	h.Session.OnMessageCreated(msg)
}

func (h *printingHandler) OnTypingStart(threadID, userID uuid.UUID, displayName string) {
	fmt.Printf("<< %s is typing...\n", displayName)
	h.Session.OnTypingStart(threadID, userID, displayName)
}

func mintToken(secret string, userID uuid.UUID, displayName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"name": displayName,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
