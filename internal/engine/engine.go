package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/optionswing/internal/domain"
	"github.com/alejandrodnm/optionswing/internal/options"
	"github.com/alejandrodnm/optionswing/internal/ports"
	"github.com/alejandrodnm/optionswing/internal/universe"
)

const housekeepingInterval = 30 * time.Second

// Config contiene la configuración del engine.
type Config struct {
	RiskPerTrade  float64
	StopLossPct   float64
	TradeInterval time.Duration
	RiskInterval  time.Duration

	Universe universe.Config
	Options  options.Config

	// UniverseRefreshAt y DailySummaryAt son horas HH:MM ya validadas.
	UniverseRefreshAt string
	DailySummaryAt    string

	// DryRun loguea las órdenes que enviaría sin tocar el broker ni el journal.
	DryRun bool
}

// Engine es el driver de todo el proceso: compone el selector de universo, el
// picker ATM, el sizing de órdenes, el risk manager y el scheduler.
// Single-threaded: todos los jobs corren inline en el goroutine de Run.
type Engine struct {
	cfg      Config
	data     ports.MarketData
	broker   ports.Broker
	journal  ports.Journal
	notifier ports.Notifier
	selector *universe.Selector
	picker   *options.Picker
	session  *Session
	now      func() time.Time

	lastRefresh    time.Time
	lastSummary    time.Time
	lastCandidates []domain.EquityCandidate
}

// UniverseCandidates devuelve los candidatos del último refresh, para que el
// modo -once pueda imprimirlos como tabla.
func (e *Engine) UniverseCandidates() []domain.EquityCandidate {
	return e.lastCandidates
}

// New crea un Engine con todas las dependencias inyectadas.
// journal puede ser nil (dry-run): se omite la persistencia.
func New(cfg Config, data ports.MarketData, broker ports.Broker, journal ports.Journal, notifier ports.Notifier) *Engine {
	e := &Engine{
		cfg:      cfg,
		data:     data,
		broker:   broker,
		journal:  journal,
		notifier: notifier,
		selector: universe.New(cfg.Universe, data),
		picker:   options.New(cfg.Options, data),
		now:      time.Now,
	}
	e.session = NewSession(e.now())
	return e
}

// Run ejecuta el loop hasta que el contexto se cancele. Hace una pasada
// inmediata al arrancar y después dispara cada job en su propio ticker.
// Un job largo bloquea al resto hasta terminar: no hay preemption.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"trade_interval", e.cfg.TradeInterval,
		"risk_interval", e.cfg.RiskInterval,
		"dry_run", e.cfg.DryRun,
	)

	e.safely(ctx, "trade cycle", e.runTradeCycle)
	e.safely(ctx, "risk check", e.runRiskCycle)

	tradeTicker := time.NewTicker(e.cfg.TradeInterval)
	defer tradeTicker.Stop()
	riskTicker := time.NewTicker(e.cfg.RiskInterval)
	defer riskTicker.Stop()
	houseTicker := time.NewTicker(housekeepingInterval)
	defer houseTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-tradeTicker.C:
			e.safely(ctx, "trade cycle", e.runTradeCycle)
		case <-riskTicker.C:
			e.safely(ctx, "risk check", e.runRiskCycle)
		case <-houseTicker.C:
			e.housekeeping(ctx)
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de trading y un chequeo de riesgo.
func (e *Engine) RunOnce(ctx context.Context) error {
	if err := e.runTradeCycle(ctx); err != nil {
		return err
	}
	return e.runRiskCycle(ctx)
}

// safely ejecuta un job atrapando panics y errores en la frontera del loop:
// ambos se reportan como alerta crítica y el loop sigue vivo.
func (e *Engine) safely(ctx context.Context, name string, job func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job", name, "panic", r)
			e.notifyCritical(ctx, name+" panicked", fmt.Errorf("%v", r))
		}
	}()

	if err := job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("job failed", "job", name, "err", err)
		e.notifyCritical(ctx, name+" failure", err)
	}
}

// housekeeping corre en el tick corto: reset al cruzar el día UTC y los jobs
// a hora fija (refresh del universo, resumen diario).
func (e *Engine) housekeeping(ctx context.Context) {
	now := e.now()
	if !e.session.SameDay(now) {
		slog.Info("daily reset", "purchased_today", e.session.PurchasedCount())
		e.session.Reset(now)
	}
	if jobDue(now, e.cfg.UniverseRefreshAt, &e.lastRefresh) {
		e.safely(ctx, "universe refresh", e.refreshUniverseJob)
	}
	if jobDue(now, e.cfg.DailySummaryAt, &e.lastSummary) {
		e.safely(ctx, "daily summary", e.runDailySummary)
	}
}

// runTradeCycle es el pipeline completo: clock gate → cash → universo →
// selección ATM → sizing → submit. Los errores por-símbolo se loguean y el
// ciclo continúa con el siguiente.
func (e *Engine) runTradeCycle(ctx context.Context) error {
	if !e.marketOpen(ctx) {
		slog.Info("market closed, skipping trade cycle")
		return nil
	}
	start := e.now()

	account, err := e.broker.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("engine.runTradeCycle: account: %w", err)
	}
	if account.Cash <= 0 {
		slog.Info("no cash available, skipping trade cycle")
		return nil
	}

	// El tope por trade se calcula una vez por ciclo; el presupuesto del
	// ciclo sí se consume con cada orden aceptada para no comprometer más
	// cash del que hay.
	maxInvest := account.Cash * e.cfg.RiskPerTrade
	budget := account.Cash

	syms := e.session.Universe()
	if len(syms) == 0 {
		if err := e.refreshUniverse(ctx); err != nil {
			return fmt.Errorf("engine.runTradeCycle: %w", err)
		}
		syms = e.session.Universe()
	}
	if len(syms) == 0 {
		slog.Info("universe empty, nothing to trade")
		return nil
	}

	submitted := 0
	for _, sym := range syms {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sel, err := e.picker.ChooseATM(ctx, sym)
		if err != nil {
			slog.Warn("atm selection failed", "symbol", sym, "err", err)
			continue
		}
		if sel.Call == nil || sel.Put == nil {
			slog.Debug("no valid ATM pair", "symbol", sym, "price_known", sel.PriceKnown)
			continue
		}

		submitted += e.submitIfNew(ctx, *sel.Call, sel.UnderlyingPrice, maxInvest, &budget)
		submitted += e.submitIfNew(ctx, *sel.Put, sel.UnderlyingPrice, maxInvest, &budget)
	}

	took := e.now().Sub(start)
	if e.journal != nil && !e.cfg.DryRun {
		if err := e.journal.SaveCycle(ctx, len(syms), submitted, took); err != nil {
			slog.Warn("journal error", "err", err)
		}
	}
	slog.Info("trade cycle complete",
		"universe", len(syms),
		"orders", submitted,
		"duration", took.Round(time.Millisecond),
	)
	return nil
}

// submitIfNew aplica sizing y dedup a un contrato y envía la orden de compra.
// Devuelve 1 si se envió una orden, 0 en cualquier skip. Un fallo de submit se
// reporta y abandona la orden para este ciclo, sin reintentos.
func (e *Engine) submitIfNew(ctx context.Context, c domain.OptionContract, underlyingPrice, maxInvest float64, budget *float64) int {
	if !c.PriceKnown || c.Price <= 0 {
		return 0
	}

	invest := maxInvest
	if *budget < invest {
		invest = *budget
	}
	qty := ContractQuantity(invest, c.Price)
	if qty < 1 {
		return 0
	}
	if e.session.AlreadyPurchased(c.Symbol) {
		slog.Debug("already purchased today", "symbol", c.Symbol)
		return 0
	}

	if e.cfg.DryRun {
		slog.Info("dry-run: would buy",
			"symbol", c.Symbol, "type", c.Type, "qty", qty, "price", c.Price)
		return 0
	}

	req := domain.OrderRequest{
		ClientOrderID: uuid.NewString(),
		Symbol:        c.Symbol,
		Qty:           qty,
		Side:          domain.Buy,
	}
	if _, err := e.broker.SubmitOrder(ctx, req); err != nil {
		slog.Error("order submit failed", "symbol", c.Symbol, "err", err)
		e.notify(ctx, fmt.Sprintf("❌ OrderError %s %s: %v",
			strings.ToUpper(string(c.Type)), c.Symbol, err))
		return 0
	}

	// Solo tras el submit aceptado: un fallo deja el símbolo comprable
	// en el siguiente ciclo.
	e.session.MarkPurchased(c.Symbol)
	*budget -= c.Price * contractMultiplier * float64(qty)

	if e.journal != nil {
		record := domain.TradeRecord{
			SubmittedAt: e.now().UTC(),
			Symbol:      c.Symbol,
			Underlying:  c.Underlying,
			Side:        domain.Buy,
			Qty:         qty,
			Price:       c.Price,
			Reason:      domain.ReasonEntry,
		}
		if err := e.journal.SaveTrade(ctx, record); err != nil {
			slog.Warn("journal error", "symbol", c.Symbol, "err", err)
		}
	}

	icon := "🟢"
	if c.Type == domain.Put {
		icon = "🔴"
	}
	e.notify(ctx, fmt.Sprintf("%s Bought %s %s x%d at ~$%.2f (underlying %s @ $%.2f)",
		icon, strings.ToUpper(string(c.Type)), c.Symbol, qty, c.Price, c.Underlying, underlyingPrice))
	return 1
}

// marketOpen es el clock gate: fail-closed ante cualquier error.
// Un rechazo de credenciales se escala como crítico; el resto queda en warn
// para no generar fatiga de alertas por gaps rutinarios.
func (e *Engine) marketOpen(ctx context.Context) bool {
	open, err := e.data.Clock(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrUnauthorized) {
			e.notifyCritical(ctx, "unauthorized response from brokerage clock", err)
		} else {
			slog.Warn("clock check failed, assuming closed", "err", err)
		}
		return false
	}
	return open
}

// notify envía un mensaje y degrada cualquier fallo del notifier a un warn.
func (e *Engine) notify(ctx context.Context, msg string) {
	if err := e.notifier.Notify(ctx, msg); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func (e *Engine) notifyCritical(ctx context.Context, title string, err error) {
	if nerr := e.notifier.NotifyCritical(ctx, title, err); nerr != nil {
		slog.Warn("notifier error", "err", nerr)
	}
}

// jobDue devuelve true si la hora local ya pasó el HH:MM programado y el job
// no corrió todavía hoy. Marca last al dispararlo.
func jobDue(now time.Time, at string, last *time.Time) bool {
	if at == "" {
		return false
	}
	t, err := time.Parse("15:04", at)
	if err != nil {
		return false
	}
	sched := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if now.Before(sched) {
		return false
	}
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	if ly == ny && lm == nm && ld == nd {
		return false
	}
	*last = now
	return true
}
