// Package strategies contains the built-in snapshot strategies and the capability registry that
// resolves a default strategy for a capability such as "dump" or "image".
//
// Every built-in strategy is deterministic: map keys are sorted, pointer addresses are omitted,
// and HTTP headers are ordered by name, so the same logical subject always yields the same bytes.
//
// Custom strategies are derived from the built-in ones with snapshot.Pullback:
//
//	var userDump = snapshot.Pullback(strategies.Text, func(u User) string {
//		return u.Name + " <" + u.Email + ">"
//	})
package strategies
