package advisor

import "context"

// Static always answers with the same hint. It backs offline play and tests.
type Static string

func (s Static) Strategy(ctx context.Context, _ Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}
