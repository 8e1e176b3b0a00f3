// Package io provides JSON import and export for placement layouts.
//
// # Overview
//
// DEF (package def) is the interchange format of the placement flow. This
// package offers a JSON rendition of the same [layout.Layout] for tools that
// would rather not parse DEF, and for the HTTP API, which accepts and returns
// layouts as JSON.
//
// # JSON Format
//
//	{
//	  "name": "adder",
//	  "units": 1000,
//	  "die_area": {"x1": 0, "y1": 0, "x2": 1000, "y2": 40},
//	  "rows": [
//	    {"name": "r0", "site": "core", "x": 0, "y": 0, "orient": "N",
//	     "count_x": 100, "count_y": 1, "step_x": 10, "step_y": 0}
//	  ],
//	  "cells": [
//	    {"name": "u1", "model": "INV", "x": 103, "y": 4, "orient": "N"}
//	  ],
//	  "special_nets": [
//	    {"label": "VDD", "layer": "ME3", "width": 10,
//	     "x1": 500, "y1": 0, "x2": 500, "y2": 40}
//	  ]
//	}
//
// Orientations use the DEF keywords (N, S, W, E, FN, FS, FW, FE). Unknown
// fields are rejected so that typos do not silently drop data.
//
// # Import
//
// Use [ImportJSON] to read a layout from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	l, err := io.ImportJSON("adder.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions check structural constraints (named cells, no duplicate
// cell names, non-negative row counts). Failures match [ErrInvalidLayout].
//
// # Export
//
// Use [ExportJSON] to write a layout to a file, or [WriteJSON] to write to
// any io.Writer. Export followed by import yields an identical layout.
//
// [layout.Layout]: github.com/matzehuels/legalizer/pkg/layout.Layout
package io
