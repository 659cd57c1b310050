// Command keyer is a line-oriented terminal client for the morse service.
// It drives one session: create or join a channel, then key dots and dashes
// by tap duration.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"morse-service/internal/auth"
	"morse-service/internal/client"
	"morse-service/internal/models"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("base", envOr("MORSE_BASE_URL", "http://localhost:8087"), "service base URL")
	token := flag.String("token", os.Getenv("MORSE_TOKEN"), "bearer token")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "mint a dev token with this secret when -token is empty")
	userID := flag.String("user", "", "user id (uuid), generated when empty")
	callsign := flag.String("callsign", "KEYER", "operator callsign")
	flag.Parse()

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			log.Fatalf("bad -user: %v", err)
		}
		id = parsed
	}

	if *token == "" {
		if *secret == "" {
			log.Fatal("either -token or -secret is required")
		}
		minted, err := auth.NewVerifier(*secret).Mint(id, 12*time.Hour)
		if err != nil {
			log.Fatalf("mint token: %v", err)
		}
		*token = minted
	}

	session := client.NewSession(client.Config{
		BaseURL: *baseURL,
		Token:   *token,
		User:    models.User{ID: id, Callsign: *callsign},
	})
	defer session.Close()

	go printEvents(session)

	fmt.Println("commands: create | join <id> | random | tap <ms> | . | - | delay <ms> | status | leave | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !dispatch(session, strings.Fields(scanner.Text())) {
			return
		}
	}
}

func dispatch(session *client.Session, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	ctx := context.Background()

	switch fields[0] {
	case "create":
		if err := session.Create(ctx); err != nil {
			fmt.Println("!", err)
		}
	case "join":
		if len(fields) < 2 {
			fmt.Println("! join needs a channel id")
			return true
		}
		if err := session.Join(ctx, fields[1]); err != nil {
			fmt.Println("!", err)
		}
	case "random":
		if err := session.JoinRandom(ctx); err != nil {
			fmt.Println("!", err)
		}
	case "tap":
		if len(fields) < 2 {
			fmt.Println("! tap needs a duration in ms")
			return true
		}
		ms, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("! bad duration:", fields[1])
			return true
		}
		tap(session, time.Duration(ms)*time.Millisecond)
	case ".":
		tap(session, 100*time.Millisecond)
	case "-":
		tap(session, 400*time.Millisecond)
	case "delay":
		if len(fields) < 2 {
			fmt.Println("! delay needs a duration in ms")
			return true
		}
		ms, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("! bad duration:", fields[1])
			return true
		}
		session.SetBlankDelay(time.Duration(ms) * time.Millisecond)
	case "status":
		fmt.Printf("[%s] %s  channel=%s  display=%q\n",
			session.State(), session.Status(), session.ChannelID(), session.Transcript().String())
	case "leave":
		session.Disconnect()
	case "quit", "exit":
		return false
	default:
		fmt.Println("! unknown command:", fields[0])
	}
	return true
}

func tap(session *client.Session, held time.Duration) {
	if signal, sent := session.Tap(held); sent {
		fmt.Printf("sent %q\n", string(signal))
	} else {
		fmt.Println("! not connected, nothing sent")
	}
}

func printEvents(session *client.Session) {
	for event := range session.Events() {
		switch e := event.(type) {
		case client.OpenedEvent:
			fmt.Printf("* %s\n", session.Status())
		case client.PartnerJoinedEvent:
			fmt.Printf("* %s joined channel %s\n", e.User.Callsign, e.ChannelID)
		case client.PartnerLeftEvent:
			fmt.Printf("* %s left\n", e.User.Callsign)
		case client.SignalEvent:
			if !e.Local {
				fmt.Printf("rx %q  display=%q\n", string(e.Signal), session.Transcript().String())
			}
		case client.ClosedEvent:
			fmt.Printf("* %s\n", e.Status)
		}
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
