package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-livegames/internal/model"
	"github.com/rickgao/kalshi-livegames/internal/stream"
)

// Supported formats.
const (
	FormatJSON     = "json"
	FormatEnvelope = "envelope"
	FormatTable    = "table"
)

// DefaultMaxCellWidth bounds string cells in table output.
const DefaultMaxCellWidth = 50

// ErrNotSummary is returned by table output for records that are not summaries.
var ErrNotSummary = errors.New("table output requires summary records")

// Printer writes records from a stream to w.
type Printer struct {
	w           io.Writer
	format      string
	envelopeKey string
	keys        []string
	kind        string
	maxWidth    int
}

// Option configures a Printer.
type Option func(*Printer)

// WithEnvelopeKey sets the key holding the records in envelope output.
func WithEnvelopeKey(key string) Option {
	return func(p *Printer) {
		if key != "" {
			p.envelopeKey = key
		}
	}
}

// WithColumns sets the table columns, in order.
func WithColumns(keys []string) Option {
	return func(p *Printer) {
		p.keys = keys
	}
}

// WithKind names the records in the table footer, e.g. "markets".
func WithKind(kind string) Option {
	return func(p *Printer) {
		p.kind = kind
	}
}

// WithMaxCellWidth truncates longer table cells. Zero disables truncation.
func WithMaxCellWidth(n int) Option {
	return func(p *Printer) {
		p.maxWidth = n
	}
}

// NewPrinter returns a printer for format.
func NewPrinter(w io.Writer, format string, opts ...Option) (*Printer, error) {
	switch format {
	case FormatJSON, FormatEnvelope, FormatTable:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	p := &Printer{
		w:           w,
		format:      format,
		envelopeKey: "records",
		kind:        "records",
		maxWidth:    DefaultMaxCellWidth,
	}
	for _, opt := range opts {
		opt(p)
	}

	if format == FormatTable && len(p.keys) == 0 {
		return nil, errors.New("table output requires columns")
	}
	return p, nil
}

// Print drains s and returns the number of records written.
func (p *Printer) Print(ctx context.Context, s *stream.Stream[any]) (int, error) {
	switch p.format {
	case FormatEnvelope:
		return p.printEnvelope(ctx, s)
	case FormatTable:
		return p.printTable(ctx, s)
	default:
		return p.printJSON(ctx, s)
	}
}

// printJSON writes each record as soon as it is produced, separated by a blank line.
func (p *Printer) printJSON(ctx context.Context, s *stream.Stream[any]) (int, error) {
	n := 0
	err := stream.ForEach(ctx, s, func(_ context.Context, rec any) error {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if n > 0 {
			if _, err := io.WriteString(p.w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(p.w, "%s\n", data); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// printEnvelope buffers every record so the count can lead the document.
func (p *Printer) printEnvelope(ctx context.Context, s *stream.Stream[any]) (int, error) {
	records, err := stream.Collect(ctx, s)
	if err != nil {
		return 0, err
	}
	if records == nil {
		records = []any{}
	}

	key, err := json.Marshal(p.envelopeKey)
	if err != nil {
		return 0, fmt.Errorf("marshal envelope key: %w", err)
	}
	body, err := json.MarshalIndent(records, "  ", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal records: %w", err)
	}

	if _, err := fmt.Fprintf(p.w, "{\n  \"count\": %d,\n  %s: %s\n}\n", len(records), key, body); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Printer) printTable(ctx context.Context, s *stream.Stream[any]) (int, error) {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	header := make([]string, len(p.keys))
	for i, k := range p.keys {
		header[i] = strings.ToUpper(k)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	n := 0
	err := stream.ForEach(ctx, s, func(_ context.Context, rec any) error {
		sum, ok := rec.(model.Summary)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrNotSummary, rec)
		}
		cells := make([]string, len(p.keys))
		for i, k := range p.keys {
			v, _ := sum.Get(k)
			cells[i] = p.cell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
		n++
		return nil
	})
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return n, err
	}

	_, err = fmt.Fprintf(p.w, "\nTotal: %d %s\n", n, p.kind)
	return n, err
}

func (p *Printer) cell(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		s = v
	case float64:
		s = decimal.NewFromFloat(v).String()
	case decimal.Decimal:
		s = v.String()
	case *decimal.Decimal:
		if v == nil {
			return "-"
		}
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	s = strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	return truncate(s, p.maxWidth)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
