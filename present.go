package sassdef

import (
	"context"
	"fmt"
)

// Quick-pick labels used when the user must choose among declarations.
const (
	ChooseTitle       = "Choose Declaration"
	ChoosePlaceholder = "Select a variable declaration"
)

// Presenter lets the user choose one declaration. ok is false when the user
// dismissed the choice.
type Presenter interface {
	Choose(ctx context.Context, ref Reference, decls []Declaration) (index int, ok bool, err error)
}

// Select applies the host's presentation rules to a result. A single
// declaration is returned as is. With peek set every declaration is returned
// for inline display. Otherwise p chooses one; a dismissed choice yields no
// declarations and no error.
func Select(ctx context.Context, p Presenter, res *Result, peek bool) ([]Declaration, error) {
	if res == nil || len(res.Declarations) == 0 {
		return nil, nil
	}
	if len(res.Declarations) == 1 || peek || p == nil {
		return res.Declarations, nil
	}
	i, ok, err := p.Choose(ctx, res.Reference, res.Declarations)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if i < 0 || i >= len(res.Declarations) {
		return nil, fmt.Errorf("sassdef: presenter chose %d of %d declarations", i, len(res.Declarations))
	}
	return res.Declarations[i : i+1], nil
}
