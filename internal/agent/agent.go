// Package agent is the conversation orchestrator: it resolves the session,
// routes the message to an intent, gates disabled intents, dispatches
// structured intents to tools and answers everything else through the
// knowledge tiers. Both sides of the turn are recorded in session history.
package agent

import (
	"context"

	"sarathi/internal/intent"
	"sarathi/internal/knowledge"
	"sarathi/internal/models"
	"sarathi/internal/session"
	"sarathi/pkg/logger"
)

// Replies used when no tier can answer.
const (
	escalateReply  = "I'm not sure. I can connect you to a human agent."
	apologyReply   = "Sorry, I couldn't generate an answer right now. Please try again in a moment."
	fallbackSource = "llm_fallback"
)

// Request is one inbound chat turn.
type Request struct {
	UserID         string
	Message        string
	SessionID      string
	EnabledIntents map[string]bool // nil means the configured default set
}

// Agent coordinates one chat turn end to end.
type Agent struct {
	sessions      *session.Manager
	engine        *knowledge.Engine
	dispatcher    *Dispatcher
	enabled       map[string]bool
	historyWindow int
	log           *logger.Logger
}

// New wires the agent. enabledIntents is the default gate applied when a
// request does not carry its own.
func New(sessions *session.Manager, engine *knowledge.Engine, dispatcher *Dispatcher, enabledIntents []string, historyWindow int, log *logger.Logger) *Agent {
	return &Agent{
		sessions:      sessions,
		engine:        engine,
		dispatcher:    dispatcher,
		enabled:       intent.EnabledSet(enabledIntents),
		historyWindow: historyWindow,
		log:           log,
	}
}

// HandleMessage runs one full turn: session, routing, gating, dispatch or
// retrieval, history. The returned result always carries the session id the
// turn was recorded under.
func (a *Agent) HandleMessage(ctx context.Context, req Request) (*models.ChatResult, error) {
	sess, created, err := a.sessions.ResolveOrCreate(ctx, req.SessionID, req.UserID)
	if err != nil {
		return nil, err
	}
	if created {
		a.log.WithField("session_id", sess.ID).Debug("opened new session")
	}

	if _, err := a.sessions.AppendMessage(ctx, sess.ID, models.RoleUser, req.Message, nil); err != nil {
		a.log.WithError(err).Warn("failed to record user message")
	}

	enabled := req.EnabledIntents
	if enabled == nil {
		enabled = a.enabled
	}
	routed := intent.Route(req.Message)
	gated, ok := intent.Gate(routed, enabled)
	result := a.respond(ctx, req, sess.ID, routed, gated, ok)
	result.SessionID = sess.ID

	meta := map[string]interface{}{"intent": result.Intent}
	if result.Escalated {
		meta["escalated"] = true
	}
	if _, err := a.sessions.AppendMessage(ctx, sess.ID, models.RoleAssistant, result.Reply, meta); err != nil {
		a.log.WithError(err).Warn("failed to record assistant message")
	}
	return result, nil
}

func (a *Agent) respond(ctx context.Context, req Request, sessionID, routed, gated string, allowed bool) *models.ChatResult {
	if !allowed {
		return &models.ChatResult{
			Reply:  intent.DisabledReply,
			Intent: gated,
			Metadata: map[string]interface{}{
				"disabled_intent": routed,
			},
		}
	}

	if result, handled := a.dispatcher.Dispatch(gated, req.UserID, req.Message); handled {
		return result
	}

	reply, tier, found := a.engine.Answer(ctx, req.Message)
	if found {
		return &models.ChatResult{
			Reply:    reply,
			Intent:   gated,
			Metadata: map[string]interface{}{"tier": tier},
		}
	}

	if !a.engine.HasFallback() {
		return &models.ChatResult{
			Reply:     escalateReply,
			Escalated: true,
			Intent:    gated,
		}
	}

	history, err := a.sessions.RecentHistory(ctx, sessionID, a.historyWindow)
	if err != nil {
		a.log.WithError(err).Warn("history unavailable, generating without it")
		history = nil
	}
	answer, err := a.engine.Fallback(ctx, req.Message, history)
	if err != nil {
		a.log.WithError(err).Error("generative fallback failed")
		return &models.ChatResult{
			Reply:    apologyReply,
			Intent:   gated,
			Metadata: map[string]interface{}{"tier": knowledge.TierLLM, "source": fallbackSource},
		}
	}
	return &models.ChatResult{
		Reply:    answer,
		Intent:   gated,
		Metadata: map[string]interface{}{"tier": knowledge.TierLLM, "source": fallbackSource},
	}
}
