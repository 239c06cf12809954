package main

import (
	"context"
	"os"

	"golang.org/x/term"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/picker"
)

// terminalPresenter asks the user to choose a declaration with an
// interactive list drawn on stderr, so stdout stays clean for the result.
type terminalPresenter struct {
	in  *os.File
	out *os.File
}

func (p terminalPresenter) Choose(ctx context.Context, ref sassdef.Reference, decls []sassdef.Declaration) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	items := make([]picker.Item, len(decls))
	for i, d := range decls {
		items[i] = picker.Item{Label: ref.Text, Description: d.Description}
	}
	return picker.Run(sassdef.ChooseTitle, sassdef.ChoosePlaceholder, items, p.in, p.out)
}

// interactive reports whether stdin and stderr are both terminals.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// presenterFor returns the terminal presenter when a choice can be shown,
// and nil otherwise. A nil presenter makes Select return every declaration.
func presenterFor(format string, noPick bool) sassdef.Presenter {
	if format != "text" || noPick || !interactive() {
		return nil
	}
	return terminalPresenter{in: os.Stdin, out: os.Stderr}
}
