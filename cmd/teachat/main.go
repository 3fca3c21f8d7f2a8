package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/herbqa/teachat-go/internal/chat"
	"github.com/herbqa/teachat-go/internal/config"
	"github.com/herbqa/teachat-go/internal/conversation"
	"github.com/herbqa/teachat-go/internal/history"
	"github.com/herbqa/teachat-go/internal/logger"
	"github.com/herbqa/teachat-go/internal/session"
	"github.com/herbqa/teachat-go/internal/transport"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// renderer is the store's refresh hook: it prints the not-yet-printed suffix
// of the latest assistant message, so streamed snapshots appear as one
// growing answer line (the terminal stand-in for scroll-to-latest).
type renderer struct {
	store   *conversation.Store
	lastID  string
	printed string
}

func (r *renderer) refresh() {
	msgs := r.store.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role != conversation.RoleAssistant {
		// The user's own line is already on screen.
		return
	}

	label := answerStyle.Render("答:") + " "
	if last.ID != r.lastID {
		r.lastID = last.ID
		r.printed = ""
		fmt.Print(label)
	}

	if strings.HasPrefix(last.Text, r.printed) {
		fmt.Print(last.Text[len(r.printed):])
	} else {
		// Snapshot replaced rather than extended (placeholder swapped for the
		// first chunk, or for the failure text): rewrite the line.
		fmt.Print("\r\x1b[2K" + label + last.Text)
	}
	r.printed = last.Text
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	sessionID := session.NewID()
	logger.L.Info("session started", "session_id", sessionID, "backend", cfg.Backend.BaseURL)

	recorder := history.Open(cfg.History.Path)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.L.Warn("transcript close error", "error", err)
		}
	}()

	t := transport.Select(cfg.Backend, &http.Client{})

	r := &renderer{}
	store := conversation.NewStore(r.refresh)
	r.store = store

	client := chat.New(store, t, recorder, sessionID)

	fmt.Println(titleStyle.Render("代茶饮知识问答") + "  输入问题回车提交，Ctrl+D 退出")
	fmt.Print(promptStyle.Render("问: "))

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := in.Text()
		if client.CanSend(line) {
			if err := client.Ask(context.Background(), line); err != nil {
				logger.L.Debug("request settled with error", "error", err)
			}
			fmt.Println()
		}
		fmt.Print(promptStyle.Render("问: "))
	}
	if err := in.Err(); err != nil {
		logger.L.Error("stdin read failed", "error", err)
	}
	fmt.Println()
}
