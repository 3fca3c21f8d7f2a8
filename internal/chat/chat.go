// Package chat drives one question/answer exchange at a time: append the
// user's question, append a thinking placeholder, then rewrite the
// placeholder with each streamed snapshot until the request settles.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/qmuntal/stateless"

	"github.com/herbqa/teachat-go/internal/conversation"
	"github.com/herbqa/teachat-go/internal/history"
	"github.com/herbqa/teachat-go/internal/logger"
	"github.com/herbqa/teachat-go/internal/transport"
)

// FSM states for a single request.
type FSMState stateless.State

var (
	StateSending        FSMState = "Sending"
	StateStreaming      FSMState = "Streaming"
	StateSettledSuccess FSMState = "SettledSuccess" // Terminal: answer delivered
	StateSettledFailed  FSMState = "SettledFailed"  // Terminal: fixed failure text shown
)

// FSM triggers.
type FSMTrigger stateless.Trigger

var (
	TriggerSubmit          FSMTrigger = "Submit"
	TriggerRequestIssued   FSMTrigger = "RequestIssued"
	TriggerAnswerCompleted FSMTrigger = "AnswerCompleted"
	TriggerTransportFailed FSMTrigger = "TransportFailed"
)

// ThinkingPlaceholder is the assistant text shown while the answer streams
// in; FailureText replaces it when a request fails. Raw error detail is
// logged, never rendered into the conversation.
const (
	ThinkingPlaceholder = "正在思考…"
	FailureText         = "抱歉，服务暂时不可用，请稍后重试。"
)

// Client serializes submissions: at most one outstanding request per
// session. A concurrent submission is rejected by the can-send guard rather
// than queued.
type Client struct {
	store     *conversation.Store
	transport transport.Transport
	recorder  *history.Recorder
	sessionID string

	mu       sync.Mutex
	inFlight bool
}

// New creates the orchestrator. recorder may be nil to disable the transcript.
func New(store *conversation.Store, t transport.Transport, recorder *history.Recorder, sessionID string) *Client {
	return &Client{store: store, transport: t, recorder: recorder, sessionID: sessionID}
}

// CanSend reports whether input would be accepted right now: non-blank after
// trimming, and no request currently in flight.
func (c *Client) CanSend(input string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.TrimSpace(input) != "" && !c.inFlight
}

// InFlight reports whether a request is outstanding.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// begin applies the can-send guard and claims the in-flight slot atomically.
func (c *Client) begin(question string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if question == "" || c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

func (c *Client) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// Ask runs one full exchange through a per-request state machine:
// Sending -> Streaming -> Settled(Success|Failed). A submission rejected by
// the guard (blank input, or another request in flight) is ignored: nothing
// is appended and no request is issued. The returned error is diagnostic
// only; on failure the conversation already shows FailureText, and the
// session keeps accepting new questions either way.
func (c *Client) Ask(ctx context.Context, input string) error {
	question := strings.TrimSpace(input)
	if !c.begin(question) {
		logger.L.Debug("submission ignored", "session_id", c.sessionID)
		return nil
	}
	defer c.end()

	// Request-scoped data threaded between entry actions.
	req := struct {
		assistantID string
		answer      string
		lastErr     error
	}{}

	fsm := stateless.NewStateMachine(StateSending)

	// State: Sending
	// Action: clear the way for the exchange — append the user message and
	// the assistant placeholder, retaining the placeholder id for updates.
	fsm.Configure(StateSending).
		PermitReentry(TriggerSubmit). // initial Fire runs OnEntry via reentry
		OnEntry(func(ctx context.Context, _ ...any) error {
			c.store.Append(conversation.RoleUser, question)
			req.assistantID = c.store.Append(conversation.RoleAssistant, ThinkingPlaceholder)
			return fsm.FireCtx(ctx, TriggerRequestIssued)
		}).
		Permit(TriggerRequestIssued, StateStreaming)

	// State: Streaming
	// Action: run the transport; every snapshot lands in the placeholder.
	fsm.Configure(StateStreaming).
		OnEntry(func(ctx context.Context, _ ...any) error {
			err := c.transport.FetchAnswer(ctx, question, func(text string) {
				req.answer = text
				c.store.Update(req.assistantID, text)
			})
			if err != nil {
				req.lastErr = err
				return fsm.FireCtx(ctx, TriggerTransportFailed)
			}
			return fsm.FireCtx(ctx, TriggerAnswerCompleted)
		}).
		Permit(TriggerAnswerCompleted, StateSettledSuccess).
		Permit(TriggerTransportFailed, StateSettledFailed)

	fsm.Configure(StateSettledSuccess).
		OnEntry(func(ctx context.Context, _ ...any) error {
			c.record(question, req.answer)
			logger.L.Info("request settled", "session_id", c.sessionID, "answer_len", len(req.answer))
			return nil
		})

	fsm.Configure(StateSettledFailed).
		OnEntry(func(ctx context.Context, _ ...any) error {
			c.store.Update(req.assistantID, FailureText)
			c.record(question, FailureText)
			logger.L.Error("request failed", "session_id", c.sessionID, "error", req.lastErr)
			return nil
		})

	if err := fsm.FireCtx(ctx, TriggerSubmit); err != nil {
		logger.L.Warn("fsm fire error", "error", err)
		return err
	}
	return req.lastErr
}

func (c *Client) record(question, answer string) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(c.sessionID, string(conversation.RoleUser), question)
	c.recorder.Record(c.sessionID, string(conversation.RoleAssistant), answer)
}
