package calculator

import (
	"math"
	"sort"
)

// GroupAmount is a counterparty's net amount inside one group.
type GroupAmount struct {
	GroupID   string
	GroupName string
	Amount    float64 // Positive = counterparty owes the subject
}

// CounterpartyInvolvement lists everyone the subject has dealings with,
// including counterparties whose dealings net to zero.
type CounterpartyInvolvement struct {
	MemberID           string
	Name               string
	GroupNames         []string
	TotalOwedToSubject float64
	TotalOwedBySubject float64
}

// CounterpartyBalance is a counterparty with a non-zero net across groups.
type CounterpartyBalance struct {
	MemberID   string
	Name       string
	Avatar     string
	GroupNames []string
	Amount     float64 // Always positive; direction is given by the list it is in
	Groups     []GroupAmount
}

// ViewerTotals is the subject's position across every group.
type ViewerTotals struct {
	TotalOwedToSubject float64
	TotalOwedBySubject float64
	NetTotal           float64
	Involvements       []CounterpartyInvolvement
	SubjectOwes        []CounterpartyBalance
	OwedToSubject      []CounterpartyBalance
}

type counterpartyAgg struct {
	id      string
	name    string
	avatar  string
	owedTo  float64
	owedBy  float64
	groups  map[string]*GroupAmount
	ordered []string // group ids in first-seen order
}

func (c *counterpartyAgg) add(group *GroupBalanceSummary, amount float64) {
	g, ok := c.groups[group.GroupID]
	if !ok {
		g = &GroupAmount{GroupID: group.GroupID, GroupName: group.GroupName}
		c.groups[group.GroupID] = g
		c.ordered = append(c.ordered, group.GroupID)
	}
	g.Amount += amount
}

func (c *counterpartyAgg) groupNames() []string {
	names := make([]string, 0, len(c.ordered))
	for _, id := range c.ordered {
		names = append(names, c.groups[id].GroupName)
	}
	sort.Strings(names)
	return names
}

func (c *counterpartyAgg) breakdown() []GroupAmount {
	out := make([]GroupAmount, 0, len(c.ordered))
	for _, id := range c.ordered {
		if g := c.groups[id]; math.Abs(g.Amount) >= netEpsilon {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessByName(out[i].GroupName, out[i].GroupID, out[j].GroupName, out[j].GroupID)
	})
	return out
}

// AggregateAcrossGroups merges per-group summaries for one subject.
//
// Totals are plain sums of the group totals, so NetTotal always equals the sum
// of each group's NetBalance. Counterparties are merged by id; the first
// resolved name seen wins.
func AggregateAcrossGroups(summaries []GroupBalanceSummary) ViewerTotals {
	var totals ViewerTotals
	byID := make(map[string]*counterpartyAgg)

	get := func(c CounterpartyAmount) *counterpartyAgg {
		agg, ok := byID[c.MemberID]
		if !ok {
			agg = &counterpartyAgg{
				id:     c.MemberID,
				name:   c.Name,
				avatar: c.Avatar,
				groups: make(map[string]*GroupAmount),
			}
			byID[c.MemberID] = agg
		}
		return agg
	}

	for i := range summaries {
		g := &summaries[i]
		totals.TotalOwedToSubject += g.TotalOwedToSubject
		totals.TotalOwedBySubject += g.TotalOwedBySubject
		totals.NetTotal += g.NetBalance

		for _, c := range g.SubjectOwes {
			agg := get(c)
			agg.owedBy += c.Amount
			agg.add(g, -c.Amount)
		}
		for _, c := range g.OwedToSubject {
			agg := get(c)
			agg.owedTo += c.Amount
			agg.add(g, c.Amount)
		}
	}

	aggs := make([]*counterpartyAgg, 0, len(byID))
	for _, agg := range byID {
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool {
		return lessByName(aggs[i].name, aggs[i].id, aggs[j].name, aggs[j].id)
	})

	totals.Involvements = make([]CounterpartyInvolvement, 0, len(aggs))
	for _, agg := range aggs {
		totals.Involvements = append(totals.Involvements, CounterpartyInvolvement{
			MemberID:           agg.id,
			Name:               agg.name,
			GroupNames:         agg.groupNames(),
			TotalOwedToSubject: agg.owedTo,
			TotalOwedBySubject: agg.owedBy,
		})

		net := agg.owedTo - agg.owedBy
		if math.Abs(net) < netEpsilon {
			continue
		}
		balance := CounterpartyBalance{
			MemberID:   agg.id,
			Name:       agg.name,
			Avatar:     agg.avatar,
			GroupNames: agg.groupNames(),
			Groups:     agg.breakdown(),
		}
		if net > 0 {
			balance.Amount = net
			totals.OwedToSubject = append(totals.OwedToSubject, balance)
		} else {
			balance.Amount = -net
			totals.SubjectOwes = append(totals.SubjectOwes, balance)
		}
	}
	return totals
}
