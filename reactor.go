package reactor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/AnatoleLucet/reactor/internal"
)

type (
	World         = internal.World
	NodeID        = internal.NodeID
	Tick          = internal.Tick
	NodeSpan      = internal.NodeSpan
	TrackingScope = internal.TrackingScope
	View          = internal.View
	Reaction      = internal.Reaction
	Request       = internal.Request
	Lifecycle     = internal.Lifecycle
	Host          = internal.Host
	Graph         = internal.Graph
)

const NoNode = internal.NoNode

const (
	Fresh  = internal.Fresh
	Active = internal.Active
	Razed  = internal.Razed
)

const (
	IntentRerun = internal.IntentRerun
	IntentRaze  = internal.IntentRaze
)

var (
	ErrTypeMismatch    = internal.ErrTypeMismatch
	ErrAlreadyBuilt    = internal.ErrAlreadyBuilt
	ErrNotBuilt        = internal.ErrNotBuilt
	ErrAlreadyStarted  = internal.ErrAlreadyStarted
	ErrNoParent        = internal.ErrNoParent
	ErrUnknownNode     = internal.ErrUnknownNode
	ErrUnknownCell     = internal.ErrUnknownCell
	ErrUnknownResource = internal.ErrUnknownResource
	ErrReentrant       = internal.ErrReentrant
	ErrWrongGoroutine  = internal.ErrWrongGoroutine
)

func EmptySpan() NodeSpan { return internal.EmptySpan() }

func NodeSpanOf(id NodeID) NodeSpan { return internal.NodeSpanOf(id) }

func FragmentSpan(children ...NodeSpan) NodeSpan { return internal.FragmentSpan(children...) }

// NewGraph creates an empty in-memory host graph.
func NewGraph() *Graph { return internal.NewGraph() }

type options struct {
	host Host
	reg  prometheus.Registerer
	log  *zerolog.Logger
}

type Option func(*options)

// WithHost runs the world on h instead of a fresh in-memory graph.
func WithHost(h Host) Option {
	return func(o *options) { o.host = h }
}

// WithRegisterer registers the world's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithLogger overrides the logger built from the config.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// New creates a world configured by cfg.
func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.host == nil {
		o.host = internal.NewGraph()
	}

	logger := NewLogger(cfg)
	if o.log != nil {
		logger = *o.log
	}

	var metrics *internal.Metrics
	if o.reg != nil {
		metrics = internal.NewMetrics(o.reg, cfg.MetricsNamespace)
	}

	return internal.NewWorld(
		o.host,
		internal.WithLogger(logger),
		internal.WithMetrics(metrics),
		internal.WithAffinity(cfg.EnforceAffinity),
	), nil
}

// NewWorld creates a world on an in-memory graph, with logging disabled.
func NewWorld(opts ...Option) *World {
	cfg := DefaultConfig()
	cfg.LogLevel = "disabled"

	w, err := New(cfg, opts...)
	if err != nil {
		// the default config always validates
		panic(err)
	}
	return w
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Mutable is a typed handle to a mutable cell. Writes are staged and become
// visible at the next commit.
type Mutable[T any] struct {
	id NodeID
}

func typedEqual[T any](equal func(a, b T) bool) func(a, b any) bool {
	return func(a, b any) bool {
		return equal(as[T](a), as[T](b))
	}
}

func comparableEqual[T comparable](a, b T) bool {
	return a == b
}

// NewMutable creates a cell outside of any reaction. It lives until its node
// is destroyed.
func NewMutable[T comparable](w *World, initial T) Mutable[T] {
	return NewMutableFunc(w, initial, comparableEqual[T])
}

// NewMutableFunc is NewMutable for values compared with equal.
func NewMutableFunc[T any](w *World, initial T, equal func(a, b T) bool) Mutable[T] {
	return Mutable[T]{
		id: w.CreateCell(nil, initial, internal.KeyOf[T](), typedEqual(equal)),
	}
}

// MutableOf wraps an existing cell id. Accessing it with the wrong T is fatal.
func MutableOf[T any](id NodeID) Mutable[T] {
	return Mutable[T]{id: id}
}

func (m Mutable[T]) ID() NodeID {
	return m.id
}

// Get returns the committed value and tracks it as a dependency of cx.
func (m Mutable[T]) Get(cx *Cx) T {
	return as[T](cx.world.ReadCell(m.id, internal.KeyOf[T](), cx.scope))
}

// Set stages v. Writing the committed value again is ignored.
func (m Mutable[T]) Set(cx *Cx, v T) {
	cx.world.StageCell(m.id, internal.KeyOf[T](), v)
}

// Update stages fn applied to the committed value.
func (m Mutable[T]) Update(cx *Cx, fn func(T) T) {
	m.Set(cx, fn(m.Get(cx)))
}

// Peek returns the committed value without tracking it.
func (m Mutable[T]) Peek(w *World) T {
	return as[T](w.ReadCell(m.id, internal.KeyOf[T](), nil))
}

// Stage stages v from outside any reaction.
func (m Mutable[T]) Stage(w *World, v T) {
	w.StageCell(m.id, internal.KeyOf[T](), v)
}

func requireNode(w *World, id NodeID) {
	if !w.Host().Contains(id) {
		w.Fatalf(ErrUnknownNode, "node %d", id)
	}
}

// InsertComponent stores v on node id, replacing any previous T. The node
// must exist.
func InsertComponent[T any](w *World, id NodeID, v T) {
	requireNode(w, id)
	w.Host().InsertComponent(id, internal.KeyOf[T](), v)
}

func GetComponent[T any](w *World, id NodeID) (T, bool) {
	v, _, ok := w.Host().Component(id, internal.KeyOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](v), true
}

func HasComponent[T any](w *World, id NodeID) bool {
	_, _, ok := w.Host().Component(id, internal.KeyOf[T]())
	return ok
}

func RemoveComponent[T any](w *World, id NodeID) bool {
	requireNode(w, id)
	return w.Host().RemoveComponent(id, internal.KeyOf[T]())
}

// InsertResource stores the global T.
func InsertResource[T any](w *World, v T) {
	w.Host().InsertResource(internal.KeyOf[T](), v)
}

func GetResource[T any](w *World) (T, bool) {
	v, _, ok := w.Host().Resource(internal.KeyOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](v), true
}

// DisplayNodeChanged marks a view whose set of child nodes changed and needs
// its host side layout refreshed.
type DisplayNodeChanged struct{}
