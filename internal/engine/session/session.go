package session

import (
	"context"
	"io"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/linkplan"
	"go.trai.ch/zerr"
)

// transitions lists the legal successor states. Failed is reachable from every
// non-terminal state and is handled separately.
var transitions = map[domain.SessionState][]domain.SessionState{
	domain.StateCreated:     {domain.StateConfiguring, domain.StateFlushed},
	domain.StateConfiguring: {domain.StateCompiling},
	domain.StateCompiling:   {domain.StateLinked},
	domain.StateLinked:      {domain.StateConfiguring, domain.StateFlushed},
}

// Prepared is a configured and compiled unit awaiting Link.
type Prepared struct {
	Spec     domain.ExtensionSpec
	Config   *domain.ToolchainConfig
	Artifact domain.Artifact
}

// Session drives one pass of Configure, Compile and Link over its specs and
// flushes the accumulated output exactly once. A failure at any step discards
// everything accumulated so far.
type Session struct {
	o       *Orchestrator
	env     domain.Environment
	opts    Options
	specs   []domain.ExtensionSpec
	planner *linkplan.Planner
	tracker *Tracker

	state   domain.SessionState
	index   int
	pending *Prepared
	units   []domain.UnitOutput
	err     error
}

func newSession(o *Orchestrator, env domain.Environment, opts Options, specs []domain.ExtensionSpec) *Session {
	env = env.WithDefaults()
	return &Session{
		o:       o,
		env:     env,
		opts:    opts,
		specs:   slices.Clone(specs),
		planner: linkplan.New(env),
		tracker: NewTracker(),
		state:   domain.StateCreated,
		index:   -1,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	return s.state
}

// Index returns the position of the spec being processed, or -1 before the first.
func (s *Session) Index() int {
	return s.index
}

// Remaining returns how many specs have not been prepared yet.
func (s *Session) Remaining() int {
	return len(s.specs) - (s.index + 1)
}

// Err returns the failure that moved the session to Failed, if any.
func (s *Session) Err() error {
	return s.err
}

// Prepare configures and compiles the next spec. The returned Prepared must be
// passed to Link before the next spec can be prepared.
func (s *Session) Prepare(ctx context.Context) (*Prepared, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.state == domain.StateCompiling {
		return nil, s.invalid("previous unit has not been linked")
	}
	if s.Remaining() == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoPendingSpec, "every unit is prepared"), "units", len(s.specs))
	}
	if err := ctx.Err(); err != nil {
		return nil, s.fail(zerr.Wrap(err, "build interrupted"))
	}

	if err := s.transition(domain.StateConfiguring); err != nil {
		return nil, err
	}
	s.index++
	spec := s.specs[s.index]

	cfg, err := s.configure(ctx, spec)
	if err != nil {
		return nil, s.fail(s.unitErr(err, spec))
	}

	if err := s.transition(domain.StateCompiling); err != nil {
		return nil, err
	}
	artifact, err := s.compile(ctx, spec, cfg)
	if err != nil {
		return nil, s.fail(s.unitErr(err, spec))
	}

	s.pending = &Prepared{Spec: spec, Config: cfg, Artifact: artifact}
	return s.pending, nil
}

// Link records the link directives and rebuild triggers of a prepared unit.
func (s *Session) Link(ctx context.Context, p *Prepared) error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.state != domain.StateCompiling || p == nil || p != s.pending {
		return s.invalid("link requires the most recently prepared unit")
	}

	_, vertex := s.o.telemetry.Record(ctx, "link "+p.Spec.Name())
	directives := s.planner.Plan(p.Spec)
	directives = append(directives, p.Artifact.Directive())
	sources := p.Spec.Sources()
	s.tracker.Register(sources...)

	s.units = append(s.units, domain.UnitOutput{
		Unit:       p.Spec.Name(),
		Kind:       p.Spec.Kind(),
		Artifact:   p.Artifact,
		Directives: directives,
		Triggers:   sources,
	})
	s.pending = nil
	vertex.Complete(nil)

	return s.transition(domain.StateLinked)
}

// Build configures, compiles and links the next spec in one call.
func (s *Session) Build(ctx context.Context) (domain.Artifact, error) {
	p, err := s.Prepare(ctx)
	if err != nil {
		return domain.Artifact{}, err
	}
	if err := s.Link(ctx, p); err != nil {
		return domain.Artifact{}, err
	}
	return p.Artifact, nil
}

// BuildAll builds every remaining spec, stopping at the first failure.
func (s *Session) BuildAll(ctx context.Context) ([]domain.Artifact, error) {
	var artifacts []domain.Artifact
	for s.Remaining() > 0 {
		artifact, err := s.Build(ctx)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// Flush hands the accumulated output to emitter, which writes it to w. It is
// only legal once the final spec is linked.
func (s *Session) Flush(w io.Writer, emitter ports.Emitter) (domain.SessionOutput, error) {
	if err := s.guard(); err != nil {
		return domain.SessionOutput{}, err
	}
	if s.Remaining() != 0 || s.state == domain.StateCompiling {
		return domain.SessionOutput{}, s.invalid("flush requires every unit to be linked")
	}

	out := s.output()
	if err := emitter.Emit(w, out); err != nil {
		return domain.SessionOutput{}, s.fail(zerr.Wrap(err, "failed to emit session output"))
	}
	if err := s.transition(domain.StateFlushed); err != nil {
		return domain.SessionOutput{}, err
	}
	return out, nil
}

func (s *Session) output() domain.SessionOutput {
	lists := make([][]domain.LinkDirective, 0, len(s.units))
	for _, u := range s.units {
		lists = append(lists, u.Directives)
	}
	return domain.SessionOutput{
		Triggers:   s.tracker.Triggers(),
		Directives: domain.MergeDirectives(lists...),
		Units:      slices.Clone(s.units),
	}
}

func (s *Session) configure(ctx context.Context, spec domain.ExtensionSpec) (*domain.ToolchainConfig, error) {
	_, vertex := s.o.telemetry.Record(ctx, "configure "+spec.Name())
	cfg, err := s.o.configurator.Configure(spec, s.env)
	if err == nil {
		vertex.Log(domain.LogLevelDebug, strings.Join(cfg.CompileFlags(), " "))
	}
	vertex.Complete(err)
	return cfg, err
}

func (s *Session) guard() error {
	switch s.state {
	case domain.StateFailed:
		return zerr.With(zerr.Wrap(domain.ErrSessionFailed, "session cannot continue"), "cause", s.err.Error())
	case domain.StateFlushed:
		return s.invalid("session already flushed")
	default:
		return nil
	}
}

func (s *Session) transition(to domain.SessionState) error {
	if !slices.Contains(transitions[s.state], to) {
		return s.invalid("illegal transition from " + string(s.state) + " to " + string(to))
	}
	s.state = to
	return nil
}

func (s *Session) invalid(msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidTransition, msg), "state", string(s.state))
}

// fail moves the session to Failed and drops all unflushed output.
func (s *Session) fail(err error) error {
	s.state = domain.StateFailed
	s.err = err
	s.pending = nil
	s.units = nil
	s.tracker.reset()
	return err
}

func (s *Session) unitErr(err error, spec domain.ExtensionSpec) error {
	wrapped := zerr.With(zerr.Wrap(err, "unit "+spec.Name()+" failed"), "unit", spec.Name())
	return zerr.With(wrapped, "index", s.index)
}
