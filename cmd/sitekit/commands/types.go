package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitekit/internal/media"
)

// TypesCmd implements the 'types' command.
type TypesCmd struct{}

func (TypesCmd) Run(g *Global) error {
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMIME\tCATEGORY\tTEXT\tEXTENSIONS")
	for _, mt := range media.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", mt.Name(), mt.MIME(), mt.Category(), mt.IsTextual(), strings.Join(mt.Extensions(), ", "))
	}
	return tw.Flush()
}
