/*
Package main is the entry point for the tabchat terminal client.

It loads configuration, initializes the global logging system, connects the
synchronization controller to the chat server, and runs a minimal line-based
rendering loop. The rendering here is deliberately thin: it only reads the
controller's snapshots and submits intents, the same contract a richer UI
would use.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tabchat/internal/app/client"
	"tabchat/internal/app/convo"
	"tabchat/internal/configs"
	"tabchat/internal/pkg/avatar"
	"tabchat/internal/pkg/errs"
	"tabchat/internal/pkg/logx"
	"tabchat/internal/pkg/randx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("server_url", cfg.ServerURL).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := client.NewController(client.Options{
		ServerURL:        cfg.ServerURL,
		HandshakeTimeout: cfg.HandshakeTimeout,
		SendRate:         cfg.SendRate,
		SendBurst:        cfg.SendBurst,
	})

	if cerr := ctrl.Connect(ctx); cerr != nil {
		logx.Fatal(cerr, "Could not connect to the chat server")
	}
	defer ctrl.Disconnect()

	username := cfg.Username
	if username == "" {
		suggested, rerr := randx.GuestNickname()
		if rerr != nil {
			logx.Fatal(rerr, "Could not generate a guest nickname")
		}
		username = suggested
	}

	if cerr := ctrl.SubmitIdentity(username); cerr != nil {
		logx.Fatal(cerr, "Could not set username")
	}

	fmt.Printf("Joined as %s. Type /help for commands.\n", ctrl.Identity())

	go renderLoop(ctx, ctrl)

	runInput(ctx, ctrl)

	fmt.Println("Bye.")
}

// runInput reads user intents from stdin until EOF or shutdown.
func runInput(ctx context.Context, ctrl *client.Controller) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctrl, line); quit {
				return
			}
			continue
		}

		if cerr := ctrl.SendMessage(line); cerr != nil {
			printError(cerr)
		}
	}
}

// printError renders a failed intent. Transport failures are labeled, since
// unlike precondition errors they are not fixable by retyping the input.
func printError(cerr *errs.CustomError) {
	if errs.IsKind(cerr, errs.KindTransport) {
		fmt.Printf("! Connection error: %s\n", cerr.Message)
		return
	}
	fmt.Printf("! %s\n", cerr.Message)
}

// runCommand dispatches one slash command. It reports whether to quit.
func runCommand(ctrl *client.Controller, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	switch parts[0] {
	case "/help":
		fmt.Println("/users           list online users")
		fmt.Println("/open <user>     open a private tab")
		fmt.Println("/close <user>    close a private tab")
		fmt.Println("/main            switch to the main channel")
		fmt.Println("/status          show connection status")
		fmt.Println("/quit            leave")

	case "/users":
		for _, user := range ctrl.Store().Users() {
			fmt.Printf("  %-16s %s\n", user, avatar.URL(user))
		}

	case "/open":
		if cerr := ctrl.OpenConversation(arg); cerr != nil {
			printError(cerr)
		}

	case "/close":
		if cerr := ctrl.CloseConversation(arg); cerr != nil {
			printError(cerr)
		}

	case "/main":
		ctrl.SetActiveConversation(convo.MainKey)

	case "/status":
		fmt.Printf("  %s", ctrl.ConnectionState())
		if cerr := ctrl.LastError(); cerr != nil {
			fmt.Printf(" (%s)", cerr.Message)
		}
		fmt.Println()

	case "/quit":
		return true

	default:
		fmt.Println("! Unknown command. Type /help.")
	}

	return false
}

// renderLoop prints messages of the active conversation as they arrive,
// reading only the controller's read-only snapshots.
func renderLoop(ctx context.Context, ctrl *client.Controller) {
	printed := make(map[string]int)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ctrl.Updates():
		}

		if ctrl.ConnectionState() == client.StateDisconnected {
			fmt.Println("! Disconnected from server.")
			continue
		}

		key := ctrl.ActiveConversation()

		if key == convo.MainKey {
			msgs := ctrl.Store().MainMessages()
			for _, msg := range msgs[min(printed[key], len(msgs)):] {
				fmt.Printf("[main] %s %s: %s\n", formatTime(msg.Timestamp), msg.Username, msg.Text)
			}
			printed[key] = len(msgs)
			continue
		}

		msgs, ok := ctrl.Store().PrivateMessages(key)
		if !ok {
			continue
		}
		for _, msg := range msgs[min(printed[key], len(msgs)):] {
			fmt.Printf("[%s] %s %s: %s\n", key, formatTime(msg.Timestamp), msg.Sender, msg.Text)
		}
		printed[key] = len(msgs)
	}
}

// formatTime renders a protocol timestamp (Unix milliseconds) as local time.
func formatTime(millis int64) string {
	return time.UnixMilli(millis).Local().Format("15:04:05")
}
