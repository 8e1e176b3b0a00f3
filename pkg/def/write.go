package def

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Write encodes f as DEF and writes it to w. Empty header fields are
// replaced by the defaults of [NewFile].
func Write(w io.Writer, f *File) error {
	if f.Design == nil {
		return fmt.Errorf("write: file has no design")
	}
	hdr := NewFile(nil)
	if f.Version != "" {
		hdr.Version = f.Version
	}
	if f.DividerChar != "" {
		hdr.DividerChar = f.DividerChar
	}
	if f.BusBitChars != "" {
		hdr.BusBitChars = f.BusBitChars
	}

	l := f.Design
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "VERSION %s ;\n", hdr.Version)
	fmt.Fprintf(b, "DIVIDERCHAR %s ;\n", quote(hdr.DividerChar))
	fmt.Fprintf(b, "BUSBITCHARS %s ;\n", quote(hdr.BusBitChars))
	fmt.Fprintf(b, "DESIGN %s ;\n", l.Name)
	fmt.Fprintf(b, "UNITS DISTANCE MICRONS %d ;\n\n", l.Units)

	d := l.DieArea
	fmt.Fprintf(b, "DIEAREA ( %s %s ) ( %s %s ) ;\n\n", num(d.X1), num(d.Y1), num(d.X2), num(d.Y2))

	for _, r := range l.Rows {
		fmt.Fprintf(b, "ROW %s %s %s %s %s DO %d BY %d STEP %s %s ;\n",
			r.Name, r.Site, num(r.X), num(r.Y), r.Orient, r.CountX, r.CountY, num(r.StepX), num(r.StepY))
	}
	if len(l.Rows) > 0 {
		b.WriteString("\n")
	}

	if len(l.Cells) > 0 {
		fmt.Fprintf(b, "COMPONENTS %d ;\n", len(l.Cells))
		for _, c := range l.Cells {
			fmt.Fprintf(b, "- %s %s + PLACED ( %s %s ) %s ;\n", c.Name, c.Model, num(c.X), num(c.Y), c.Orient)
		}
		b.WriteString("END COMPONENTS\n\n")
	}

	if len(l.SpecialNets) > 0 {
		fmt.Fprintf(b, "SPECIALNETS %d ;\n", len(l.SpecialNets))
		for _, s := range l.SpecialNets {
			fmt.Fprintf(b, "- %s + ROUTED %s %s ( %s %s ) ( %s %s ) ;\n",
				s.Label, s.Layer, num(s.Width), num(s.X1), num(s.Y1), num(s.X2), num(s.Y2))
		}
		b.WriteString("END SPECIALNETS\n\n")
	}

	b.WriteString("END DESIGN\n")
	if err := b.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Export writes f to a DEF file at path.
func Export(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

func quote(s string) string { return `"` + quoteReplacer.Replace(s) + `"` }
