package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/polylab/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// maxTradesShown acota el log de fills en consola; el detalle completo
// vive en SQLite.
const maxTradesShown = 20

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime los reports en el modo configurado.
func (c *Console) Notify(_ context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		fmt.Fprintf(c.out, "[%s] no backtest results\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(reports)
	} else {
		c.printCompact(reports)
	}
	return nil
}

// printCompact imprime una línea por ejecución.
func (c *Console) printCompact(reports []domain.Report) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d runs", now, len(reports))
	for _, r := range reports {
		fmt.Fprintf(&sb, " | %s t:%d ret:%+.2f%% dd:%.1f%% sharpe:%.2f",
			truncate(r.Result.Strategy, 24),
			r.TotalTrades(),
			r.TotalReturn()*100,
			r.MaxDrawdown()*100,
			r.SharpeRatio(),
		)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla de métricas y el detalle de cada run.
func (c *Console) printFull(reports []domain.Report) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d backtest runs\n", now, len(reports))

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Trades", "Return", "Win rate", "Max DD", "Sharpe", "Final")

	for _, r := range reports {
		table.Append(
			truncate(r.Result.Strategy, 28),
			fmt.Sprintf("%d", r.TotalTrades()),
			fmt.Sprintf("%+.2f%%", r.TotalReturn()*100),
			fmt.Sprintf("%.1f%%", r.WinRate()*100),
			fmt.Sprintf("%.1f%%", r.MaxDrawdown()*100),
			fmt.Sprintf("%.2f", r.SharpeRatio()),
			fmt.Sprintf("$%.2f", r.Result.FinalBalance),
		)
	}

	table.Render()

	for _, r := range reports {
		fmt.Fprintln(c.out)
		fmt.Fprint(c.out, r.Text())
	}
	fmt.Fprintln(c.out)
}

// PrintTrades imprime los primeros fills de un resultado. El log completo
// no cabe en consola con datasets grandes.
func (c *Console) PrintTrades(result domain.BacktestResult) {
	if len(result.Trades) == 0 {
		fmt.Fprintln(c.out, "  no trades executed")
		return
	}

	shown := result.Trades
	if len(shown) > maxTradesShown {
		shown = shown[:maxTradesShown]
	}

	fmt.Fprintf(c.out, "\n--- Trades (%d de %d) ---\n", len(shown), len(result.Trades))
	for _, tr := range shown {
		fmt.Fprintf(c.out, "  %s  %-4s %-20s px:%.4f sz:%.2f fee:%.4f cost:$%.4f\n",
			tr.Timestamp.Format("2006-01-02 15:04"),
			tr.Side,
			truncate(tr.Token, 20),
			tr.Price,
			tr.Size,
			tr.Fee,
			tr.TotalCost,
		)
	}
	if rest := len(result.Trades) - len(shown); rest > 0 {
		fmt.Fprintf(c.out, "  ... y %d más\n", rest)
	}
}

// PrintRuns imprime el histórico de runs persistidos, el más reciente
// primero.
func (c *Console) PrintRuns(runs []domain.BacktestRun) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no recorded runs")
		return
	}

	if c.table {
		table := tablewriter.NewWriter(c.out)
		table.Header("ID", "Strategy", "Started", "Trades", "Return", "Win rate", "Max DD", "Sharpe")
		for _, run := range runs {
			table.Append(
				shortID(run.ID),
				truncate(run.Strategy, 28),
				run.StartedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("%d", run.TotalTrades),
				fmt.Sprintf("%+.2f%%", run.TotalReturn*100),
				fmt.Sprintf("%.1f%%", run.WinRate*100),
				fmt.Sprintf("%.1f%%", run.MaxDrawdown*100),
				fmt.Sprintf("%.2f", run.Sharpe),
			)
		}
		table.Render()
		return
	}

	for _, run := range runs {
		fmt.Fprintf(c.out, "%s  %s  %-24s trades:%-4d ret:%+7.2f%% sharpe:%.2f\n",
			shortID(run.ID),
			run.StartedAt.Format("2006-01-02 15:04"),
			truncate(run.Strategy, 24),
			run.TotalTrades,
			run.TotalReturn*100,
			run.Sharpe,
		)
	}
}

// PrintStrategies lista las estrategias registradas.
func (c *Console) PrintStrategies(names []string) {
	if len(names) == 0 {
		fmt.Fprintln(c.out, "no registered strategies")
		return
	}

	if c.table {
		table := tablewriter.NewWriter(c.out)
		table.Header("#", "Strategy")
		for i, name := range names {
			table.Append(fmt.Sprintf("%d", i+1), name)
		}
		table.Render()
		return
	}

	for _, name := range names {
		fmt.Fprintf(c.out, "  %s\n", name)
	}
}

// --- helpers ---

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
