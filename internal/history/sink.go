package history

import (
	"context"

	"go.uber.org/zap"

	"biodex/internal/explore"
	"biodex/internal/session"
	"biodex/pkg/models"
)

// Sink records explorations made by a session. Anonymous queries are not
// kept.
type Sink struct {
	Repo *Repo
	Log  *zap.Logger
}

var _ explore.HistorySink = (*Sink)(nil)

func NewSink(repo *Repo, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{Repo: repo, Log: log}
}

func (s *Sink) Record(ctx context.Context, ev explore.QueryEvent) {
	sid := session.IDFromContext(ctx)
	if sid == "" {
		return
	}

	entry := models.HistoryEntry{
		SessionID: sid,
		Mode:      string(ev.Spec.Mode),
		Term:      ev.Spec.Term,
		Latitude:  ev.Spec.Latitude,
		Longitude: ev.Spec.Longitude,
		Provider:  ev.Provider,
		Results:   ev.Results,
		At:        ev.At,
	}
	// the request may already be finished; history must not depend on it
	if err := s.Repo.Add(context.WithoutCancel(ctx), entry); err != nil {
		s.Log.Warn("history write failed", zap.String("session", sid), zap.Error(err))
	}
}
