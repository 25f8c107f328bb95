package reconcile

import (
	"sort"

	"penya-tracker/internal/domain"
)

type EventKind int

// The order of the kinds breaks ties on equal minutes: a player who scores and is
// replaced in the same minute scored first.
const (
	EventGoal EventKind = iota
	EventCard
	EventSubstitution
)

func (k EventKind) String() string {
	switch k {
	case EventGoal:
		return "goal"
	case EventCard:
		return "card"
	case EventSubstitution:
		return "substitution"
	}
	return "unknown"
}

type Event struct {
	Minute       int
	Kind         EventKind
	Goal         *domain.GoalEvent
	Card         *domain.CardEvent
	Substitution *domain.Substitution
}

func (e Event) Team() string {
	switch {
	case e.Goal != nil:
		return e.Goal.Team
	case e.Card != nil:
		return e.Card.Team
	case e.Substitution != nil:
		return e.Substitution.Team
	}
	return ""
}

// Timeline merges the event streams of one match ordered by minute, then kind, then the
// order they appear in their own table.
func Timeline(rec *domain.MatchRecord) []Event {
	events := make([]Event, 0, len(rec.Goals)+len(rec.Cards)+len(rec.Substitutions))
	for i := range rec.Goals {
		events = append(events, Event{Minute: rec.Goals[i].Minute, Kind: EventGoal, Goal: &rec.Goals[i]})
	}
	for i := range rec.Cards {
		events = append(events, Event{Minute: rec.Cards[i].Minute, Kind: EventCard, Card: &rec.Cards[i]})
	}
	for i := range rec.Substitutions {
		events = append(events, Event{Minute: rec.Substitutions[i].Minute, Kind: EventSubstitution, Substitution: &rec.Substitutions[i]})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Minute != events[j].Minute {
			return events[i].Minute < events[j].Minute
		}
		return events[i].Kind < events[j].Kind
	})
	return events
}

// chronologicalCards returns card indexes ordered by minute, document order on ties, so
// the second yellow of a player is the later one.
func chronologicalCards(cards []domain.CardEvent) []int {
	order := make([]int, len(cards))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return cards[order[i]].Minute < cards[order[j]].Minute })
	return order
}
