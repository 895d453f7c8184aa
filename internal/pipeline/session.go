package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/provider"
)

// ErrUnknownSession is returned for tokens that were never issued, were
// already used, or expired.
var ErrUnknownSession = eris.New("pipeline: unknown or expired session")

// inputApplier is a stage that can finish with operator input.
// *provider.Interactive implements it.
type inputApplier interface {
	Apply(ctx context.Context, ref model.ObjectRef, in provider.Input) (*model.Candidate, error)
}

// applierOf finds an inputApplier in p or anything p wraps.
func applierOf(p provider.Provider) (inputApplier, bool) {
	for p != nil {
		if a, ok := p.(inputApplier); ok {
			return a, true
		}
		u, ok := p.(interface{ Unwrap() provider.Provider })
		if !ok {
			return nil, false
		}
		p = u.Unwrap()
	}
	return nil, false
}

// Pending describes a run waiting for operator input.
type Pending struct {
	Token    string            `json:"token"`
	Object   model.ObjectRef   `json:"object"`
	Stage    string            `json:"stage"`
	Since    time.Time         `json:"since"`
	Rejected []model.Rejection `json:"rejected,omitempty"`
}

type session struct {
	run     *run
	stage   provider.Provider
	created time.Time
}

// sessions holds suspended runs. A session is removed when it is resumed,
// canceled or older than ttl. Expired sessions are handed to expire outside
// the lock.
type sessions struct {
	mu     sync.Mutex
	m      map[string]*session
	ttl    time.Duration
	now    func() time.Time
	expire func(token string, s *session)
}

func newSessions(ttl time.Duration, now func() time.Time, expire func(string, *session)) *sessions {
	return &sessions{m: make(map[string]*session), ttl: ttl, now: now, expire: expire}
}

func (s *sessions) put(ru *run, stage provider.Provider) string {
	token := uuid.NewString()
	s.mu.Lock()
	expired := s.pruneLocked()
	s.m[token] = &session{run: ru, stage: stage, created: s.now()}
	s.mu.Unlock()

	s.notify(expired)
	return token
}

func (s *sessions) take(token string) (*session, error) {
	s.mu.Lock()
	expired := s.pruneLocked()
	sess, ok := s.m[token]
	delete(s.m, token)
	s.mu.Unlock()

	s.notify(expired)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSession, "token %s", token)
	}
	return sess, nil
}

func (s *sessions) list() []Pending {
	s.mu.Lock()
	expired := s.pruneLocked()
	out := make([]Pending, 0, len(s.m))
	for token, sess := range s.m {
		out = append(out, Pending{
			Token:    token,
			Object:   sess.run.ref,
			Stage:    sess.stage.Name(),
			Since:    sess.created,
			Rejected: append([]model.Rejection(nil), sess.run.rejected...),
		})
	}
	s.mu.Unlock()

	s.notify(expired)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Since.Equal(out[j].Since) {
			return out[i].Token < out[j].Token
		}
		return out[i].Since.Before(out[j].Since)
	})
	return out
}

func (s *sessions) pruneLocked() map[string]*session {
	var expired map[string]*session
	cutoff := s.now().Add(-s.ttl)
	for token, sess := range s.m {
		if sess.created.Before(cutoff) {
			if expired == nil {
				expired = make(map[string]*session)
			}
			expired[token] = sess
			delete(s.m, token)
		}
	}
	return expired
}

func (s *sessions) notify(expired map[string]*session) {
	if s.expire == nil {
		return
	}
	for token, sess := range expired {
		s.expire(token, sess)
	}
}

// WithAbandoned sets the sink for runs that end without a caller to return
// them to: sessions that expire, and resumed runs whose ctx is canceled.
// Each arrives as an exhausted Outcome.
func (r *Resolver) WithAbandoned(s Sink) *Resolver {
	r.abandoned = s
	return r
}

// abandon ends ru unresolved and hands it to the abandoned sink.
func (r *Resolver) abandon(ctx context.Context, ru *run, stage string, reason model.RejectReason, detail string) {
	ru.reject(stage, nil, reason, detail, nil)
	o := r.unresolved(ru)
	if r.abandoned == nil {
		return
	}
	if err := r.abandoned(ctx, o); err != nil {
		ru.log.Error("pipeline: abandoned sink failed", zap.Error(err))
	}
}

// expireSession is the sessions expiry hook.
func (r *Resolver) expireSession(token string, sess *session) {
	sess.run.log.Info("pipeline: session expired", zap.String("token", token))
	r.abandon(context.Background(), sess.run, sess.stage.Name(), model.RejectExpired,
		"no operator input within "+r.cfg.SessionTTL.String())
}

// suspend parks ru until Resume or Cancel is called with the returned token.
func (r *Resolver) suspend(ru *run, stage provider.Provider) *Outcome {
	token := r.sessions.put(ru, stage)
	ru.step(StateSuspended, ResultNeedsInput, 0)
	ru.log.Info("pipeline: awaiting operator input",
		zap.String("stage", stage.Name()),
		zap.String("token", token),
	)
	return &Outcome{
		Object:    ru.ref,
		Suspended: true,
		Token:     token,
		Rejected:  append([]model.Rejection(nil), ru.rejected...),
		Trace:     ru.trace,
	}
}

// Pending lists suspended runs, oldest first.
func (r *Resolver) Pending() []Pending {
	return r.sessions.list()
}

// Resume continues a suspended run with operator input. A coordinate or an
// address that fails validation is recorded and the run moves on; the
// suspended stage is never re-entered.
func (r *Resolver) Resume(ctx context.Context, token string, in provider.Input) (*Outcome, error) {
	sess, err := r.sessions.take(token)
	if err != nil {
		return nil, err
	}
	ru, name := sess.run, sess.stage.Name()

	if in.Skip {
		ru.step(State(name), ResultSkipped, 0)
		ru.reject(name, nil, model.RejectNoData, "operator skipped", nil)
		return r.resumeFallback(ctx, ru, name)
	}

	ap, _ := applierOf(sess.stage)
	sctx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	start := time.Now()
	c, err := ap.Apply(sctx, ru.ref, in)
	cancel()

	c, err = r.check(ctx, ru, name, c, err, time.Since(start))
	if err != nil {
		r.abandon(context.WithoutCancel(ctx), ru, name, model.RejectCanceled, err.Error())
		return nil, err
	}
	if c != nil {
		return r.finish(ctx, ru, c, ConfidenceFor(State(name), ru.coherence.Status)), nil
	}
	return r.resumeFallback(ctx, ru, name)
}

// resumeFallback continues a resumed run. The session is already gone, so a
// canceled ctx abandons the run instead of dropping it.
func (r *Resolver) resumeFallback(ctx context.Context, ru *run, stage string) (*Outcome, error) {
	o, err := r.fallback(ctx, ru)
	if err != nil && ctx.Err() != nil {
		r.abandon(context.WithoutCancel(ctx), ru, stage, model.RejectCanceled, err.Error())
	}
	return o, err
}

// Cancel abandons a suspended run. The run ends unresolved with the
// cancellation recorded; other runs are unaffected.
func (r *Resolver) Cancel(token string) (*Outcome, error) {
	sess, err := r.sessions.take(token)
	if err != nil {
		return nil, err
	}
	ru := sess.run
	ru.reject(sess.stage.Name(), nil, model.RejectCanceled, "operator abandoned the run", nil)
	return r.unresolved(ru), nil
}
