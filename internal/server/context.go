package server

import (
	"context"
	"sync"

	"github.com/teemow/meetsched/internal/calendar"
	"github.com/teemow/meetsched/internal/config"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/mail"
)

// MailDialer opens a fresh authenticated mail connection. Tool handlers
// dial per call so a dropped IMAP connection never poisons later calls.
type MailDialer func() (mail.Client, error)

// ServerContext holds the shared state of the MCP server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	calendar *calendar.Manager
	dialMail MailDialer
	imapCfg  config.IMAPConfig
	sessions *SlotSessions

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The mail dialer may be
// overridden for tests; when nil, connections go to the configured IMAP
// server.
func NewServerContext(ctx context.Context, cfg config.Config, dial MailDialer) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	manager := calendar.NewManager(calendar.ManagerConfig{
		Path:        cfg.Calendar.Path,
		MinNotice:   cfg.Calendar.MinNotice,
		MaxResults:  cfg.Calendar.MaxResults,
		HorizonDays: cfg.Calendar.HorizonDays,
	})
	if err := manager.EnsureExists(); err != nil {
		cancel()
		return nil, err
	}

	if dial == nil {
		imapCfg := cfg.IMAP
		dial = func() (mail.Client, error) {
			return mail.Dial(imapCfg)
		}
	}

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		calendar: manager,
		dialMail: dial,
		imapCfg:  cfg.IMAP,
		sessions: NewSlotSessions(DefaultSessionTTL),
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Calendar returns the calendar manager.
func (sc *ServerContext) Calendar() *calendar.Manager {
	return sc.calendar
}

// DialMail opens a new mail connection. The caller owns the connection and
// must close it.
func (sc *ServerContext) DialMail() (mail.Client, error) {
	return sc.dialMail()
}

// Sessions returns the slot listing session store.
func (sc *ServerContext) Sessions() *SlotSessions {
	return sc.sessions
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
