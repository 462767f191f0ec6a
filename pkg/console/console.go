package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// Console é uma implementação do ConsoleInterface.
type Console struct {
	mu    sync.Mutex
	plain bool
	out   io.Writer
}

// Option configura um Console.
type Option func(*Console)

// WithPlain desativa cores, spinners e barras de progresso.
// Usado no Lambda, onde a saída vai para o CloudWatch Logs.
func WithPlain(plain bool) Option {
	return func(c *Console) { c.plain = plain }
}

// WithWriter redireciona a saída do console.
func WithWriter(w io.Writer) Option {
	return func(c *Console) { c.out = w }
}

// NewConsole cria um novo Console.
func NewConsole(opts ...Option) *Console {
	c := &Console{out: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	if c.plain {
		pterm.DisableStyling()
		color.NoColor = true
	}
	pterm.SetDefaultOutput(c.out)
	return c
}

// Plain reports whether the console runs without styling.
func (c *Console) Plain() bool {
	return c.plain
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	c.log(&pterm.Info, "INFO", format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	c.log(&pterm.Warning, "WARN", format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	c.log(&pterm.Error, "ERROR", format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	c.log(&pterm.Success, "OK", format, a...)
}

func (c *Console) log(printer *pterm.PrefixPrinter, level, format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plain {
		// Uma linha por evento, no formato "LEVEL: mensagem".
		fmt.Fprintf(c.out, "%s: %s\n", level, fmt.Sprintf(format, a...))
		return
	}
	printer.WithWriter(c.out).Printfln(format, a...)
}

// Cores predefinidas para uso consistente
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	if c.plain {
		c.LogInfo("%s", message)
		return &statusHandle{}
	}
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).Start(message)
	return &statusHandle{spinner: spinner}
}

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// progressHandle é uma implementação do ProgressHandle.
type progressHandle struct {
	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal cria uma barra de progresso com o total de instâncias.
func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	if c.plain || total == 0 {
		return &progressHandle{}
	}
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Scanning instances").
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false). // Manter a barra após concluir
		WithWriter(c.out).
		Start()
	return &progressHandle{bar: bar}
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bar != nil {
		_, _ = h.bar.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
	plain   bool
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
		plain:   c.plain,
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	if !t.plain {
		table = table.
			WithBoxed().
			WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan))
	}

	renderedTable, _ := table.Srender()
	return renderedTable
}
