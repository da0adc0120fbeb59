package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
// Se usa en modo -once/-dry-run y en tests.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime el mensaje con timestamp.
func (c *Console) Notify(_ context.Context, message string) error {
	fmt.Fprintf(c.out, "[%s] %s\n", time.Now().Format("15:04:05"), message)
	return nil
}

// NotifyCritical imprime la alerta con su error, si lo hay.
func (c *Console) NotifyCritical(_ context.Context, title string, err error) error {
	if err != nil {
		fmt.Fprintf(c.out, "[%s] CRITICAL: %s: %v\n", time.Now().Format("15:04:05"), title, err)
		return nil
	}
	fmt.Fprintf(c.out, "[%s] CRITICAL: %s\n", time.Now().Format("15:04:05"), title)
	return nil
}

// PrintUniverse imprime el universo seleccionado como tabla.
func (c *Console) PrintUniverse(candidates []domain.EquityCandidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(c.out, "universe: empty")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Symbol", "Close", "Volume")
	for i, cand := range candidates {
		table.Append(
			fmt.Sprintf("%d", i+1),
			cand.Symbol,
			fmt.Sprintf("$%.2f", cand.LastClose),
			fmt.Sprintf("%d", cand.LastVolume),
		)
	}
	table.Render()
}

// PrintPositions imprime las posiciones de opciones abiertas como tabla.
func (c *Console) PrintPositions(positions []domain.Position) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Qty", "Entry", "Current", "P&L %")
	for _, p := range positions {
		if p.AssetClass != domain.AssetClassOption {
			continue
		}
		pnl := 0.0
		if p.AvgEntryPrice > 0 {
			pnl = (p.CurrentPrice - p.AvgEntryPrice) / p.AvgEntryPrice * 100
		}
		table.Append(
			p.Symbol,
			fmt.Sprintf("%d", p.Qty),
			fmt.Sprintf("$%.2f", p.AvgEntryPrice),
			fmt.Sprintf("$%.2f", p.CurrentPrice),
			fmt.Sprintf("%+.1f%%", pnl),
		)
	}
	table.Render()
}
