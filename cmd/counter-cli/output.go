package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/govm-net/counter/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.English)

// label turns a snake_case key into "Reset Count"
func label(key string) string {
	return title.String(strings.ReplaceAll(key, "_", " "))
}

func printRows(w io.Writer, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(label(r[0])))
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s  %s\n", width, label(r[0]), r[1])
	}
}

func printResponse(w io.Writer, res *types.Response) {
	rows := make([][2]string, 0, len(res.Attributes))
	for _, a := range res.Attributes {
		rows = append(rows, [2]string{a.Key, a.Value})
	}
	printRows(w, rows)
	if len(res.Data) > 0 {
		fmt.Fprintf(w, "Data: %s\n", res.Data)
	}
}
