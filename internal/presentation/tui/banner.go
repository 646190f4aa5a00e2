package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _____     _       _____ _           _", "#818cf8"},
	{" |  ___|_ _| |_ ___|  ___(_)_ __   __| | ___ _ __", "#a78bfa"},
	{" | |_ / _` | __/ _ \\ |_  | | '_ \\ / _` |/ _ \\ '__|", "#c084fc"},
	{" |  _| (_| | ||  __/  _| | | | | | (_| |  __/ |", "#e879f9"},
	{" |_|  \\__,_|\\__\\___|_|   |_|_| |_|\\__,_|\\___|_|", "#f472b6"},
}

// PrintBanner writes the FateFinder banner to w, coloured when w supports it.
func PrintBanner(w io.Writer) {
	o := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(w)
}
