package def

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// File is a parsed DEF file: the header and the design geometry.
type File struct {
	Version     string
	DividerChar string
	BusBitChars string
	Design      *layout.Layout
}

// NewFile wraps l with a default header.
func NewFile(l *layout.Layout) *File {
	return &File{Version: "5.8", DividerChar: "/", BusBitChars: "[]", Design: l}
}

// ReadOption configures [Read], [Parse] and [Import].
type ReadOption func(*parser)

// WithWarnings installs fn to receive every skipped word.
func WithWarnings(fn func(Warning)) ReadOption {
	return func(p *parser) { p.warn = fn }
}

// Read parses a DEF file from r. It does not close r.
func Read(r io.Reader, opts ...ReadOption) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(src, opts...)
}

// Import reads and parses the DEF file at path.
func Import(path string, opts ...ReadOption) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts...)
}

// Parse parses DEF source held in memory.
func Parse(src []byte, opts ...ReadOption) (*File, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, eof: len(src), warn: func(Warning) {}}
	for _, opt := range opts {
		opt(p)
	}
	if p.warn == nil {
		p.warn = func(Warning) {}
	}
	return p.file()
}

type parser struct {
	toks []token
	pos  int
	eof  int
	warn func(Warning)
}

func (p *parser) errorf(off int, format string, args ...any) error {
	return &SyntaxError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) next(what string) (token, error) {
	if p.done() {
		return token{}, p.errorf(p.eof, "expected %s, got end of input", what)
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

// is reports whether the upcoming tokens are the unquoted words ws.
func (p *parser) is(ws ...string) bool {
	if p.pos+len(ws) > len(p.toks) {
		return false
	}
	for i, w := range ws {
		if t := p.toks[p.pos+i]; t.quoted || t.text != w {
			return false
		}
	}
	return true
}

// accept consumes ws if they come next.
func (p *parser) accept(ws ...string) bool {
	if !p.is(ws...) {
		return false
	}
	p.pos += len(ws)
	return true
}

func (p *parser) expect(ws ...string) error {
	for _, w := range ws {
		if p.accept(w) {
			continue
		}
		if p.done() {
			return p.errorf(p.eof, "expected %q, got end of input", w)
		}
		t := p.toks[p.pos]
		return p.errorf(t.off, "expected %q, got %q", w, t.text)
	}
	return nil
}

func (p *parser) skip() {
	t := p.toks[p.pos]
	p.pos++
	p.warn(Warning{Offset: t.off, Word: t.text})
}

func (p *parser) word(what string) (string, error) {
	t, err := p.next(what)
	if err != nil {
		return "", err
	}
	if !t.quoted && len(t.text) == 1 && isPunct(t.text[0]) {
		return "", p.errorf(t.off, "expected %s, got %q", what, t.text)
	}
	return t.text, nil
}

func (p *parser) quoted(what string) (string, error) {
	t, err := p.next(what)
	if err != nil {
		return "", err
	}
	if !t.quoted {
		return "", p.errorf(t.off, "expected quoted %s, got %q", what, t.text)
	}
	return t.text, nil
}

func (p *parser) number(what string) (float64, error) {
	t, err := p.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.text, 64)
	if err != nil || t.quoted {
		return 0, p.errorf(t.off, "expected number for %s, got %q", what, t.text)
	}
	return v, nil
}

func (p *parser) count(what string) (int, error) {
	t, err := p.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t.text)
	if err != nil || v < 0 || t.quoted {
		return 0, p.errorf(t.off, "expected non-negative integer for %s, got %q", what, t.text)
	}
	return v, nil
}

func (p *parser) orientation() (layout.Orientation, error) {
	t, err := p.next("orientation")
	if err != nil {
		return 0, err
	}
	o, err := layout.ParseOrientation(t.text)
	if err != nil {
		return 0, p.errorf(t.off, "%v", err)
	}
	return o, nil
}

func (p *parser) point(what string) (float64, float64, error) {
	if err := p.expect("("); err != nil {
		return 0, 0, err
	}
	x, err := p.number(what + " x")
	if err != nil {
		return 0, 0, err
	}
	y, err := p.number(what + " y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, p.expect(")")
}

// coord reads a number or '*', which repeats prev.
func (p *parser) coord(what string, prev float64) (float64, error) {
	if p.accept("*") {
		return prev, nil
	}
	return p.number(what)
}

// Fewest tokens one entry of a section can take, without the terminator.
const (
	componentTokens  = 10 // - name model + PLACED ( x y ) orient
	specialNetTokens = 14 // - name + ROUTED layer width ( x y ) ( x y )
)

// capHint bounds a declared entry count by what the remaining tokens can
// hold, so a lying count cannot size an allocation.
func (p *parser) capHint(declared, perEntry int) int {
	return min(declared, (len(p.toks)-p.pos)/perEntry)
}

// end consumes an optional statement terminator.
func (p *parser) end() { p.accept(";") }

func (p *parser) file() (*File, error) {
	f := &File{}
	for !p.done() {
		var err error
		switch {
		case p.accept("VERSION"):
			f.Version, err = p.word("version")
		case p.accept("DIVIDERCHAR"):
			f.DividerChar, err = p.quoted("divider character")
		case p.accept("BUSBITCHARS"):
			f.BusBitChars, err = p.quoted("bus bit characters")
		case p.accept("DESIGN"):
			if f.Design != nil {
				return nil, p.errorf(p.toks[p.pos-1].off, "second DESIGN section")
			}
			f.Design, err = p.design()
			if err != nil {
				return nil, err
			}
			continue
		default:
			p.skip()
			continue
		}
		if err != nil {
			return nil, err
		}
		p.end()
	}
	if f.Design == nil {
		return nil, p.errorf(p.eof, "no DESIGN section")
	}
	return f, nil
}

func (p *parser) design() (*layout.Layout, error) {
	l := &layout.Layout{}
	name, err := p.word("design name")
	if err != nil {
		return nil, err
	}
	l.Name = name
	p.end()

	for {
		var err error
		switch {
		case p.done():
			return nil, p.errorf(p.eof, "expected \"END DESIGN\", got end of input")
		case p.accept("END", "DESIGN"):
			return l, nil
		case p.accept("UNITS"):
			l.Units, err = p.units()
		case p.accept("DIEAREA"):
			l.DieArea, err = p.dieArea()
		case p.accept("ROW"):
			var r layout.Row
			r, err = p.row()
			l.Rows = append(l.Rows, r)
		case p.accept("COMPONENTS"):
			l.Cells, err = p.components()
		case p.accept("SPECIALNETS"):
			l.SpecialNets, err = p.specialNets()
		default:
			p.skip()
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) units() (int, error) {
	if err := p.expect("DISTANCE", "MICRONS"); err != nil {
		return 0, err
	}
	u, err := p.count("units")
	p.end()
	return u, err
}

func (p *parser) dieArea() (layout.Rect, error) {
	x1, y1, err := p.point("die area")
	if err != nil {
		return layout.Rect{}, err
	}
	x2, y2, err := p.point("die area")
	if err != nil {
		return layout.Rect{}, err
	}
	p.end()
	return layout.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

func (p *parser) row() (layout.Row, error) {
	var r layout.Row
	var err error
	if r.Name, err = p.word("row name"); err != nil {
		return r, err
	}
	if r.Site, err = p.word("site name"); err != nil {
		return r, err
	}
	if r.X, err = p.number("row x"); err != nil {
		return r, err
	}
	if r.Y, err = p.number("row y"); err != nil {
		return r, err
	}
	if r.Orient, err = p.orientation(); err != nil {
		return r, err
	}
	if err = p.expect("DO"); err != nil {
		return r, err
	}
	if r.CountX, err = p.count("row count x"); err != nil {
		return r, err
	}
	if err = p.expect("BY"); err != nil {
		return r, err
	}
	if r.CountY, err = p.count("row count y"); err != nil {
		return r, err
	}
	if err = p.expect("STEP"); err != nil {
		return r, err
	}
	if r.StepX, err = p.number("row step x"); err != nil {
		return r, err
	}
	if r.StepY, err = p.number("row step y"); err != nil {
		return r, err
	}
	p.end()
	return r, nil
}

func (p *parser) components() ([]layout.Cell, error) {
	n, err := p.count("component count")
	if err != nil {
		return nil, err
	}
	countOff := p.toks[p.pos-1].off
	p.end()

	cells := make([]layout.Cell, 0, p.capHint(n, componentTokens))
	for p.accept("-") {
		var c layout.Cell
		if c.Name, err = p.word("component name"); err != nil {
			return nil, err
		}
		if c.Model, err = p.word("component model"); err != nil {
			return nil, err
		}
		if err = p.expect("+", "PLACED"); err != nil {
			return nil, err
		}
		if c.X, c.Y, err = p.point("component"); err != nil {
			return nil, err
		}
		if c.Orient, err = p.orientation(); err != nil {
			return nil, err
		}
		p.end()
		cells = append(cells, c)
	}
	if len(cells) != n {
		return nil, p.errorf(countOff, "COMPONENTS declares %d components, found %d", n, len(cells))
	}
	return cells, p.expect("END", "COMPONENTS")
}

func (p *parser) specialNets() ([]layout.SpecialNet, error) {
	n, err := p.count("special net count")
	if err != nil {
		return nil, err
	}
	countOff := p.toks[p.pos-1].off
	p.end()

	nets := make([]layout.SpecialNet, 0, p.capHint(n, specialNetTokens))
	for p.accept("-") {
		var s layout.SpecialNet
		if s.Label, err = p.word("special net name"); err != nil {
			return nil, err
		}
		if err = p.expect("+", "ROUTED"); err != nil {
			return nil, err
		}
		if s.Layer, err = p.word("layer"); err != nil {
			return nil, err
		}
		if s.Width, err = p.number("wire width"); err != nil {
			return nil, err
		}
		if s.X1, s.Y1, err = p.point("wire start"); err != nil {
			return nil, err
		}
		if err = p.expect("("); err != nil {
			return nil, err
		}
		if s.X2, err = p.coord("wire end x", s.X1); err != nil {
			return nil, err
		}
		if s.Y2, err = p.coord("wire end y", s.Y1); err != nil {
			return nil, err
		}
		if err = p.expect(")"); err != nil {
			return nil, err
		}
		p.end()
		nets = append(nets, s)
	}
	if len(nets) != n {
		return nil, p.errorf(countOff, "SPECIALNETS declares %d nets, found %d", n, len(nets))
	}
	return nets, p.expect("END", "SPECIALNETS")
}
