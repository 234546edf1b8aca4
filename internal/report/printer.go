package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/Checker-Finance/rdp-pricing/internal/httpclient"
	"github.com/Checker-Finance/rdp-pricing/internal/rdp"
)

// Printer writes fetch results and failures for a human reader.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Result prints a fetch result. Direct results are written byte-for-byte;
// library results additionally show the data type and the tabular view.
func (p *Printer) Result(res *rdp.EventsResult) error {
	if res.Data == nil {
		fmt.Fprintf(p.w, "Historical pricing result from %s REST call:\n", res.Path)
		if _, err := p.w.Write(res.Raw); err != nil {
			return err
		}
		_, err := fmt.Fprintln(p.w)
		return err
	}

	fmt.Fprintf(p.w, "Content layer result type: %T\n", res.Data)
	fmt.Fprintln(p.w, "Raw JSON view:")
	if _, err := p.w.Write(res.Data.Raw()); err != nil {
		return err
	}
	fmt.Fprintln(p.w)

	tbl, err := res.Data.Table()
	if err != nil {
		return fmt.Errorf("build table: %w", err)
	}
	fmt.Fprintf(p.w, "Tabular view (%s):\n", tbl.Universe)
	return tbl.Render(p.w)
}

// Failure prints one path's failure. HTTP failures show status, reason and body.
func (p *Printer) Failure(path string, err error) {
	stage := "pricing data request"
	if errors.Is(err, rdp.ErrAuthentication) {
		stage = "authentication"
	}

	var se *httpclient.StatusError
	if errors.As(err, &se) {
		fmt.Fprintf(p.w, "[%s] %s failure: %d %s\n", path, stage, se.StatusCode, se.Reason)
		fmt.Fprintf(p.w, "Text: %s\n", se.Body)
		return
	}
	fmt.Fprintf(p.w, "[%s] %s failure: %v\n", path, stage, err)
}
