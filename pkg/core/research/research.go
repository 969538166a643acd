// Package research runs market-research chat sessions. Each session keeps
// its own history and, when the caller supplies market data, grounds the
// conversation in the heuristic market score.
package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/market"
	"dealdesk/pkg/core/prompt"
	"dealdesk/pkg/core/utils"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("research session not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrEmptyAnswer     = errors.New("model returned an empty answer")
)

const (
	// DefaultMaxTurns bounds the history replayed to the model.
	DefaultMaxTurns = 20
	// DefaultMaxSessions bounds the sessions held in memory.
	DefaultMaxSessions = 1000
	// DefaultIdleTTL expires sessions with no activity.
	DefaultIdleTTL = 24 * time.Hour
)

// Roles used in Turn.Role.
const (
	RoleSystem = "system"
	RoleUser   = "user"
	RoleModel  = "model"
)

// Turn is one message in a session.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends a message on top of an existing history. A leading
// RoleSystem turn, if any, carries the system instruction.
type ChatClient interface {
	Send(ctx context.Context, history []Turn, message string) (string, error)
}

// Session is a conversation with its market context.
type Session struct {
	ID        string              `json:"id"`
	Market    *market.Data        `json:"market,omitempty"`
	Score     *market.MarketScore `json:"score,omitempty"`
	History   []Turn              `json:"history"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Answer is the reply to one Ask.
type Answer struct {
	SessionID string              `json:"session_id"`
	Markdown  string              `json:"markdown"`
	HTML      string              `json:"html"`
	Score     *market.MarketScore `json:"score,omitempty"`
}

// Service holds sessions in memory. Sessions idle for longer than IdleTTL
// expire, and past MaxSessions the least recently used one is dropped.
type Service struct {
	Client      ChatClient
	Prompts     *prompt.Registry // nil uses the global registry
	Weights     market.Weights   // nil uses market.DefaultWeights
	MaxTurns    int
	MaxSessions int
	IdleTTL     time.Duration
	Now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService returns a Service backed by client.
func NewService(client ChatClient) *Service {
	return &Service{
		Client:      client,
		MaxTurns:    DefaultMaxTurns,
		MaxSessions: DefaultMaxSessions,
		IdleTTL:     DefaultIdleTTL,
		Now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Ask sends message in the given session. An empty sessionID starts a new
// one, which is kept only once the model has answered. Market data, when
// given, replaces the session's market context.
func (s *Service) Ask(ctx context.Context, sessionID, message string, data *market.Data) (*Answer, error) {
	log := logging.Named("research")

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	var score *market.MarketScore
	if data != nil {
		sc := market.ScoreMarket(*data, s.Weights)
		score = &sc
	}

	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
	var history []Turn
	mkt := data
	id := sessionID
	if sessionID != "" {
		sess, err := s.lookup(sessionID)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		history = s.window(sess.History)
		if data == nil {
			score, mkt = sess.Score, sess.Market
		}
	}
	s.mu.Unlock()

	reg := s.Prompts
	if reg == nil {
		reg = prompt.Get()
	}
	pctx := prompt.NewContext().Set("Question", message)
	if data != nil || len(history) == 0 {
		pctx.Set("MarketContext", marketContext(mkt, score))
	}
	system, user, err := reg.Render(prompt.MarketResearchID, pctx)
	if err != nil {
		return nil, fmt.Errorf("render research prompt: %w", err)
	}

	turns := append([]Turn{{Role: RoleSystem, Content: system}}, history...)
	reply, err := s.Client.Send(ctx, turns, user)
	if err != nil {
		return nil, fmt.Errorf("research chat: %w", err)
	}

	md := utils.CleanMarkdown(reply)
	if !utils.ValidateMarkdown(md) {
		return nil, ErrEmptyAnswer
	}
	html, err := utils.RenderMarkdown(md)
	if err != nil {
		return nil, fmt.Errorf("render answer: %w", err)
	}

	s.mu.Lock()
	now := s.now()
	var sess *Session
	if id == "" {
		sess = &Session{ID: uuid.NewString(), CreatedAt: now}
		s.sessions[sess.ID] = sess
		id = sess.ID
	} else if sess = s.sessions[id]; sess == nil {
		// Reset or expired while the model was answering
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if data != nil {
		sess.Market, sess.Score = data, score
	}
	sess.History = append(sess.History, Turn{Role: RoleUser, Content: user}, Turn{Role: RoleModel, Content: md})
	sess.UpdatedAt = now
	n := len(sess.History)
	s.evict()
	s.mu.Unlock()

	log.Debugw("research turn", "session", id, "turns", n, "grounded", score != nil)
	return &Answer{SessionID: id, Markdown: md, HTML: html, Score: score}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// lookup returns a live session, dropping it if it has expired. Caller
// holds s.mu.
func (s *Service) lookup(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if ok && s.IdleTTL > 0 && s.now().Sub(sess.UpdatedAt) > s.IdleTTL {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// evict drops expired sessions, then the least recently used ones beyond
// MaxSessions. Caller holds s.mu.
func (s *Service) evict() {
	now := s.now()
	if s.IdleTTL > 0 {
		for id, sess := range s.sessions {
			if now.Sub(sess.UpdatedAt) > s.IdleTTL {
				delete(s.sessions, id)
			}
		}
	}
	if s.MaxSessions <= 0 || len(s.sessions) <= s.MaxSessions {
		return
	}
	byAge := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		byAge = append(byAge, sess)
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].UpdatedAt.Before(byAge[j].UpdatedAt) })
	for _, sess := range byAge[:len(byAge)-s.MaxSessions] {
		delete(s.sessions, sess.ID)
	}
}

// window returns a copy of the most recent MaxTurns turns, starting on a
// user turn.
func (s *Service) window(h []Turn) []Turn {
	max := s.MaxTurns
	if max <= 0 {
		max = DefaultMaxTurns
	}
	if len(h) > max {
		h = h[len(h)-max:]
		if len(h) > 0 && h[0].Role != RoleUser {
			h = h[1:]
		}
	}
	return append([]Turn(nil), h...)
}

// Session returns a copy of a session.
func (s *Service) Session(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	out := *sess
	out.History = append([]Turn(nil), sess.History...)
	return out, nil
}

// Reset drops a session.
func (s *Service) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

func marketContext(d *market.Data, score *market.MarketScore) string {
	if d == nil || score == nil {
		return ""
	}
	var b strings.Builder
	name := d.Name
	if name == "" {
		name = "Subject market"
	}
	fmt.Fprintf(&b, "%s: heuristic score %.1f/100 (grade %s, %.0f%% of factors available)\n",
		name, score.Score, score.Grade, score.Coverage*100)
	for _, f := range score.Factors {
		fmt.Fprintf(&b, "- %s: %.4g (normalized %.2f, weight %.0f)\n", f.Name, f.Raw, f.Normalized, f.Weight)
	}
	return strings.TrimRight(b.String(), "\n")
}
