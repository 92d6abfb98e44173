package gamemaster

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"conquest/game"
)

// RenderBoard writes the board as a table, marking the selected territory.
func RenderBoard(w io.Writer, b *game.Board, selection int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tUNITS\tNEIGHBORS\t")
	for _, t := range b.Territories() {
		name := t.Name
		if t.ID == selection {
			name = "*" + name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t\n", t.ID, name, t.Owner, t.Units, neighborIDs(b, t))
	}
	return tw.Flush()
}

func neighborIDs(b *game.Board, t *game.Territory) string {
	ids := []string{}
	for _, n := range b.Neighbors(t) {
		ids = append(ids, strconv.Itoa(n.ID))
	}
	return strings.Join(ids, ",")
}
