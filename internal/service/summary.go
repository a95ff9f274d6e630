package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
)

// enrich attaches active relationship summaries to persons. A failure to load summaries
// is logged and degrades to empty summaries; the persons themselves are still returned.
func enrich(ctx context.Context, rels RelationshipStore, log zerolog.Logger, persons []model.Person) []model.PersonCandidate {
	out := make([]model.PersonCandidate, 0, len(persons))
	if len(persons) == 0 {
		return out
	}

	ids := make([]string, len(persons))
	for i := range persons {
		ids[i] = persons[i].ID
	}

	rows, err := rels.ActiveSummaries(ctx, ids)
	if err != nil {
		log.Error().Err(err).Int("persons", len(ids)).Msg("failed to load relationship summaries")
		rows = nil
	}

	byPerson := summarize(rows)
	for _, p := range persons {
		sum, ok := byPerson[p.ID]
		if !ok {
			sum = model.EmptySummary()
		}
		out = append(out, model.PersonCandidate{Person: p, Summary: sum})
	}
	return out
}

// summarize folds summary rows into one summary per person. Students and schools are
// de-duplicated by id, keeping the first-seen order.
func summarize(rows []model.SummaryRow) map[string]model.RelationshipSummary {
	type acc struct {
		sum      model.RelationshipSummary
		students map[string]bool
		schools  map[string]bool
	}
	accs := make(map[string]*acc)

	for _, row := range rows {
		a, ok := accs[row.PersonID]
		if !ok {
			a = &acc{sum: model.EmptySummary(), students: map[string]bool{}, schools: map[string]bool{}}
			accs[row.PersonID] = a
		}
		if row.StudentID != "" && !a.students[row.StudentID] {
			a.students[row.StudentID] = true
			name := row.StudentFirstName
			if row.StudentLastName != "" {
				name += " " + row.StudentLastName
			}
			a.sum.StudentNames = append(a.sum.StudentNames, name)
		}
		if !a.schools[row.School.ID] {
			a.schools[row.School.ID] = true
			a.sum.Schools = append(a.sum.Schools, row.School)
		}
	}

	out := make(map[string]model.RelationshipSummary, len(accs))
	for id, a := range accs {
		a.sum.TotalChildren = len(a.students)
		a.sum.TotalSchools = len(a.schools)
		out[id] = a.sum
	}
	return out
}
