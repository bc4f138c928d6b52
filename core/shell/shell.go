package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"incidents-dashboard/core/aggregate"
	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/incidents"
	"incidents-dashboard/core/notify"
	"incidents-dashboard/core/present"
	"incidents-dashboard/core/utils"
)

var (
	ErrSignedOut  = errors.New("not signed in")
	ErrNoIncident = errors.New("incident not found")
	ErrNoEvidence = errors.New("incident has no evidence")
)

// Shell is the application state of one device: authentication, loaded
// incidents, navigation, notifications and mounted charts.
type Shell struct {
	DeviceID  string
	Gate      *auth.Gate
	Workspace *Workspace
	Notices   *notify.Center
	Board     *present.Board

	loc    *time.Location
	lang   string
	logger *utils.Logger

	mu       sync.Mutex
	view     View
	uid      string
	lastSeen time.Time
	unbind   func()
}

type Options struct {
	Location *time.Location
	Lang     string
	Logger   *utils.Logger
}

func New(deviceID string, gate *auth.Gate, ws *Workspace, notices *notify.Center, opts Options) *Shell {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Lang == "" {
		opts.Lang = "es"
	}
	s := &Shell{
		DeviceID:  deviceID,
		Gate:      gate,
		Workspace: ws,
		Notices:   notices,
		Board:     present.NewBoard(),
		loc:       opts.Location,
		lang:      opts.Lang,
		logger:    opts.Logger,
		view:      DefaultView(),
		lastSeen:  time.Now(),
	}
	s.unbind = gate.Observe(s.onSession)
	return s
}

// onSession tears the workspace down whenever the device is signed out or
// a different account signs in over the current one.
func (s *Shell) onSession(sess *auth.Session) {
	next := ""
	if sess != nil {
		next = sess.UID
	}
	s.mu.Lock()
	prev := s.uid
	s.uid = next
	s.mu.Unlock()
	if sess != nil && (prev == "" || prev == next) {
		return
	}
	s.Workspace.Discard()
	s.Board.DisposeAll()
	s.mu.Lock()
	s.view = DefaultView()
	s.mu.Unlock()
	if sess != nil {
		// Notices queued for the previous account must not reach the new one.
		s.Notices.Clear()
		s.logger.Printf("account switch device=%s", s.DeviceID)
	}
}

func (s *Shell) Close() {
	if s.unbind != nil {
		s.unbind()
	}
	s.Workspace.Discard()
	s.Board.DisposeAll()
}

func (s *Shell) Location() *time.Location { return s.loc }

func (s *Shell) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Shell) SetLang(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

func (s *Shell) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Shell) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Shell) SignedIn() bool {
	return s.Gate.Current() != nil
}

// SignIn authenticates and queues the matching notification.
func (s *Shell) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	lang := s.Lang()
	sess, err := s.Gate.SignIn(ctx, email, password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		s.Notices.Push(notify.Warning, auth.Localized(lang, auth.MsgMissingFields))
		return nil, err
	case err != nil:
		s.Notices.Push(notify.Error, auth.Describe(lang, err))
		return nil, err
	}
	s.Notices.Push(notify.Success, auth.Localized(lang, auth.MsgWelcome))
	return sess, nil
}

func (s *Shell) SignOut(ctx context.Context) error {
	lang := s.Lang()
	if err := s.Gate.SignOut(ctx); err != nil {
		s.logger.Errorf("sign out device=%s: %v", s.DeviceID, err)
		s.Notices.Push(notify.Error, auth.Localized(lang, auth.MsgSignOutFailed))
		return err
	}
	s.Notices.Push(notify.Success, auth.Localized(lang, auth.MsgSignedOut))
	return nil
}

// Incidents returns the loaded list, performing the first load if needed.
func (s *Shell) Incidents(ctx context.Context) (Snapshot, error) {
	if !s.SignedIn() {
		return Snapshot{}, ErrSignedOut
	}
	snap := s.Workspace.Snapshot()
	if snap.State == Ready {
		return snap, nil
	}
	return s.load(ctx, s.Workspace.EnsureLoaded)
}

// Refresh refetches the collection. On failure the previous list stays.
func (s *Shell) Refresh(ctx context.Context) (Snapshot, error) {
	if !s.SignedIn() {
		return Snapshot{}, ErrSignedOut
	}
	return s.load(ctx, s.Workspace.Load)
}

func (s *Shell) load(ctx context.Context, fn func(context.Context) (Snapshot, error)) (Snapshot, error) {
	lang := s.Lang()
	snap, err := fn(ctx)
	switch {
	case errors.Is(err, ErrDiscarded):
		return Snapshot{}, ErrSignedOut
	case err != nil:
		s.Notices.Push(notify.Error, auth.Localized(lang, auth.MsgLoadFailed))
		var le *incidents.LoadError
		if errors.As(err, &le) {
			s.logger.Warnf("device=%s load failed kind=%s", s.DeviceID, le.Kind)
		}
		// the prior list, possibly empty, is still rendered
		return snap, nil
	}
	s.Notices.Push(notify.Success, fmt.Sprintf(auth.Localized(lang, auth.MsgLoaded), len(snap.Items)))
	return snap, nil
}

// Dashboard derives counters and charts and mounts the charts on the board.
func (s *Shell) Dashboard(ctx context.Context) (present.Dashboard, error) {
	snap, err := s.Incidents(ctx)
	if err != nil {
		return present.Dashboard{}, err
	}
	view := aggregate.Build(snap.Items, s.loc)
	dash := present.BuildDashboard(view, snap.Generation)
	for _, c := range dash.Charts {
		s.Board.Mount(c, present.SVGRender)
	}
	return dash, nil
}

// Table returns rows for the current search term and sort state.
func (s *Shell) Table(ctx context.Context) ([]present.Row, View, error) {
	snap, err := s.Incidents(ctx)
	if err != nil {
		return nil, View{}, err
	}
	v := s.View()
	return present.Rows(aggregate.Table(snap.Items, v.Search, v.Sort), s.loc), v, nil
}

func (s *Shell) SetTab(tab Tab) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Tab = tab
	return s.view
}

func (s *Shell) SetKPI(pane KPIPane) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.KPI = pane
	return s.view
}

func (s *Shell) SetSearch(term string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Search = term
	return s.view
}

// ToggleSort flips the order for the active key, or switches to key ascending.
func (s *Shell) ToggleSort(key aggregate.SortKey) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Sort = s.view.Sort.Toggle(key)
	return s.view
}

func (s *Shell) find(id string) (incidents.Incident, error) {
	if !s.SignedIn() {
		return incidents.Incident{}, ErrSignedOut
	}
	for _, inc := range s.Workspace.Snapshot().Items {
		if inc.ID == id {
			return inc, nil
		}
	}
	return incidents.Incident{}, ErrNoIncident
}

// OpenImage opens the evidence modal for an incident that has evidence.
func (s *Shell) OpenImage(id string) (View, error) {
	inc, err := s.find(id)
	if err != nil {
		return s.View(), err
	}
	if !inc.HasEvidence() {
		return s.View(), ErrNoEvidence
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Modal = id
	return s.view, nil
}

// CloseImage handles both the close button and a click on the overlay.
func (s *Shell) CloseImage() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Modal = ""
	return s.view
}

// Evidence returns the raw evidence reference of an incident.
func (s *Shell) Evidence(id string) (string, error) {
	inc, err := s.find(id)
	if err != nil {
		return "", err
	}
	if !inc.HasEvidence() {
		return "", ErrNoEvidence
	}
	return inc.Evidence, nil
}

// Expire signs the device out once the credential expiry has passed.
func (s *Shell) Expire(ctx context.Context, now time.Time) bool {
	if !s.Gate.Expire(ctx, now) {
		return false
	}
	s.Notices.Push(notify.Warning, auth.Localized(s.Lang(), auth.MsgSessionExpired))
	return true
}
