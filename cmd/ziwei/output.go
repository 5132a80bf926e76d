package main

import (
	"encoding/json"
	"io"
	"strings"
	"text/tabwriter"

	"ziwei/internal/view"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func starNames(stars []view.Star) string {
	if len(stars) == 0 {
		return "-"
	}
	names := make([]string, 0, len(stars))
	for _, s := range stars {
		if s.Transformation != "" {
			names = append(names, s.Name+"("+s.Transformation+")")
			continue
		}
		names = append(names, s.Name)
	}
	return strings.Join(names, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
