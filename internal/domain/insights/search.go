package insights

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/ledger"
)

// Search returns the transactions whose description fuzzily contains query,
// ignoring case and diacritics. Closer matches come first; equal matches
// keep ledger order.
func Search(l ledger.Ledger, query string) ledger.Ledger {
	query = strings.TrimSpace(query)
	if query == "" || len(l) == 0 {
		return nil
	}

	targets := make([]string, len(l))
	for i, t := range l {
		targets[i] = t.Description
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make(ledger.Ledger, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, l[r.OriginalIndex])
	}
	return out
}
