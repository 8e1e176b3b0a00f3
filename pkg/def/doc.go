// Package def reads and writes the subset of the Design Exchange Format (DEF)
// needed to carry a standard-cell placement through legalization.
//
// # Supported Statements
//
//	VERSION 5.8 ;
//	DIVIDERCHAR "/" ;
//	BUSBITCHARS "[]" ;
//	DESIGN name ;
//	UNITS DISTANCE MICRONS 1000 ;
//	DIEAREA ( x1 y1 ) ( x2 y2 ) ;
//	ROW name site x y orient DO countX BY countY STEP stepX stepY ;
//	COMPONENTS n ;
//	- name model + PLACED ( x y ) orient ;
//	END COMPONENTS
//	SPECIALNETS n ;
//	- label + ROUTED layer width ( x1 y1 ) ( x2|* y2|* ) ;
//	END SPECIALNETS
//	END DESIGN
//
// Words outside this subset are skipped one at a time and reported through
// the callback installed with [WithWarnings]. Lines starting with '#' are
// comments. A '*' in the second point of a special net repeats the
// corresponding coordinate of the first point.
//
// # Reading and Writing
//
// Use [Import] to read a file or [Read] for any io.Reader. Both return a
// [File] whose Design field holds the geometry as a [layout.Layout]:
//
//	f, err := def.Import("design.def")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(f.Design.Cells), "cells")
//
// [Write] and [Export] emit the same subset. Coordinates are written with
// the shortest representation that reads back to the same float64, so a
// read-write-read round trip is lossless.
//
// # Errors
//
// Malformed input yields a [*SyntaxError] carrying the byte offset of the
// offending token. Every syntax error matches [ErrSyntax] with errors.Is.
//
// [layout.Layout]: github.com/matzehuels/legalizer/pkg/layout.Layout
package def
