package ioutil

import "io"

// ProgressWriter counts the bytes written through it and reports the
// running total after every successful write.
type ProgressWriter struct {
	w       io.Writer
	written int64
	report  func(written int64)
}

func NewProgressWriter(w io.Writer, report func(written int64)) *ProgressWriter {
	return &ProgressWriter{w: w, report: report}
}

func (p *ProgressWriter) Write(buf []byte) (int, error) {
	n, err := p.w.Write(buf)
	if n > 0 {
		p.written += int64(n)
		if p.report != nil {
			p.report(p.written)
		}
	}
	return n, err
}

func (p *ProgressWriter) Written() int64 { return p.written }
