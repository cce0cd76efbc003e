package engine

import (
	"log"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/dispatch"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/livetrack"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/locator"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/messaging"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/routing"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/store"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/tracker"
)

type LogFunc func(format string, args ...any)

// LocatorBackend is the GPS feed: a position provider with a health check.
type LocatorBackend interface {
	locator.Provider
	IsConnected() bool
}

type Config struct {
	AppConfig     *config.Config
	ConfigPath    string
	DB            *store.DB
	Live          *livetrack.Manager
	MsgClient     *messaging.Client
	GPS           LocatorBackend
	Transport     notify.Transport
	RouteProvider routing.Provider
	LogFunc       LogFunc
}

// Engine wires the components together and owns the event bus.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	live       *livetrack.Manager
	msgClient  *messaging.Client
	gps        LocatorBackend
	transport  notify.Transport
	routes     routing.Provider

	dispatcher *dispatch.Engine
	notifier   *notify.Notifier
	tracker    *tracker.Tracker
	optimizer  *routing.Optimizer
	drainer    *messaging.OutboxDrainer

	Events *EventBus
	logFn  LogFunc

	stopChan     chan struct{}
	msgConnected bool
	gpsConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		live:       c.Live,
		msgClient:  c.MsgClient,
		gps:        c.GPS,
		transport:  c.Transport,
		routes:     c.RouteProvider,
		Events:     NewEventBus(),
		logFn:      logFn,
		stopChan:   make(chan struct{}),
	}
}

func (e *Engine) Start() {
	// Create emitter adapters
	de := &dispatchEmitter{bus: e.Events}
	te := &trackerEmitter{bus: e.Events}
	ne := &notifierEmitter{bus: e.Events}

	e.notifier = notify.NewNotifier(e.db, e.transport, ne)
	e.dispatcher = dispatch.NewEngine(e.db, e.notifier, de)
	e.tracker = tracker.New(e.db, e.live, e.gps, te, e.cfg.Tracker.PositionInterval)
	e.optimizer = routing.NewOptimizer(e.db, e.routes, routing.Waypoint{
		Label:   "depósito",
		Address: e.cfg.Routing.OriginAddress,
	})

	e.wireEventHandlers()

	if err := e.dispatcher.Refresh(); err != nil {
		e.logFn("engine: load board: %v", err)
	}
	if e.live != nil {
		if err := e.live.SyncRedisFromSQL(); err != nil {
			e.logFn("engine: sync live state: %v", err)
		}
	}
	if err := e.tracker.Resume(); err != nil {
		e.logFn("engine: resume routes: %v", err)
	}

	if e.msgClient != nil {
		e.drainer = messaging.NewOutboxDrainer(e.db, e.msgClient, e.cfg.Messaging.OutboxDrainInterval)
		e.drainer.Start()
	}

	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.logFn("engine: started")
}

func (e *Engine) Stop() {
	select {
	case e.stopChan <- struct{}{}:
	default:
	}
	if e.drainer != nil {
		e.drainer.Stop()
	}
	if e.tracker != nil {
		e.tracker.Shutdown()
	}
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB                 { return e.db }
func (e *Engine) AppConfig() *config.Config     { return e.cfg }
func (e *Engine) ConfigPath() string            { return e.configPath }
func (e *Engine) Dispatcher() *dispatch.Engine  { return e.dispatcher }
func (e *Engine) Notifier() *notify.Notifier    { return e.notifier }
func (e *Engine) Tracker() *tracker.Tracker     { return e.tracker }
func (e *Engine) Optimizer() *routing.Optimizer { return e.optimizer }
func (e *Engine) Live() *livetrack.Manager      { return e.live }
func (e *Engine) MsgClient() *messaging.Client  { return e.msgClient }

func (e *Engine) checkConnectionStatus() {
	// Kafka
	if e.msgClient != nil {
		if e.msgClient.IsConnected() {
			if !e.msgConnected {
				e.msgConnected = true
				e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "kafka connected"}})
			}
		} else if e.msgConnected {
			e.msgConnected = false
			e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "kafka disconnected"}})
		}
	}

	// GPS feed
	if e.gps != nil {
		if e.gps.IsConnected() {
			if !e.gpsConnected {
				e.gpsConnected = true
				e.Events.Emit(Event{Type: EventLocatorConnected, Payload: ConnectionEvent{Detail: "gps feed connected"}})
			}
		} else if e.gpsConnected {
			e.gpsConnected = false
			e.Events.Emit(Event{Type: EventLocatorDisconnected, Payload: ConnectionEvent{Detail: "gps feed disconnected"}})
		}
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

// ReconfigureMessaging reconnects kafka with current config.
func (e *Engine) ReconfigureMessaging() {
	if e.msgClient == nil {
		return
	}
	if err := e.msgClient.Reconfigure(&e.cfg.Messaging); err != nil {
		e.logFn("engine: messaging reconfigure error: %v", err)
	} else {
		e.logFn("engine: messaging reconfigured")
	}
	e.checkConnectionStatus()
}
