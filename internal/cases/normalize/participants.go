package normalize

import (
	"strings"

	"legaltrack/internal/cases/models"
)

// ParticipantSource extracts one category of participants from one source field.
type ParticipantSource func(*models.RawCaseDetail) []models.Participant

// Fallback chains per category. The first source yielding a non-empty list wins.
var (
	PlaintiffSources = []ParticipantSource{
		fromText(func(r *models.RawCaseDetail) string { return r.Plaintiffs }),
		fromSideList(func(r *models.RawCaseDetail) models.SideList { return r.SidePl }),
		fromSides(func(s *models.RawSides) []models.RawSideParty { return s.Plaintiffs }),
	}
	DefendantSources = []ParticipantSource{
		fromText(func(r *models.RawCaseDetail) string { return r.Defendants }),
		fromSideList(func(r *models.RawCaseDetail) models.SideList { return r.SideDf }),
		fromSides(func(s *models.RawSides) []models.RawSideParty { return s.Defendants }),
	}
	ThirdPartySources = []ParticipantSource{
		fromText(func(r *models.RawCaseDetail) string { return r.Third }),
		fromSides(func(s *models.RawSides) []models.RawSideParty { return s.Third }),
	}
	OtherSources = []ParticipantSource{
		fromText(func(r *models.RawCaseDetail) string { return r.Others }),
		fromSides(func(s *models.RawSides) []models.RawSideParty { return s.Others }),
	}
)

// Participants runs a fallback chain. The result is never nil.
func Participants(raw *models.RawCaseDetail, chain []ParticipantSource) []models.Participant {
	for _, source := range chain {
		if ps := source(raw); len(ps) > 0 {
			return ps
		}
	}
	return []models.Participant{}
}

func fromText(get func(*models.RawCaseDetail) string) ParticipantSource {
	return func(r *models.RawCaseDetail) []models.Participant {
		names := models.SplitNames(get(r))
		out := make([]models.Participant, 0, len(names))
		for _, name := range names {
			out = append(out, models.Participant{Name: name})
		}
		return out
	}
}

// fromSideList reads a side_* field. Free text in a side field is split the same
// way as the dedicated text lists.
func fromSideList(get func(*models.RawCaseDetail) models.SideList) ParticipantSource {
	return func(r *models.RawCaseDetail) []models.Participant {
		side := get(r)
		switch side.Shape {
		case models.SideText:
			names := side.Names()
			out := make([]models.Participant, 0, len(names))
			for _, name := range names {
				out = append(out, models.Participant{Name: name})
			}
			return out
		case models.SideItems:
			out := make([]models.Participant, 0, len(side.Items))
			for _, it := range side.Items {
				name := strings.TrimSpace(it.NameSide)
				if name == "" {
					continue
				}
				out = append(out, models.Participant{Name: name, INN: it.INN, OGRN: firstNonEmpty(it.OGRN, it.OGRNIP)})
			}
			return out
		case models.SideAbsent, models.SideNull:
			return nil
		default:
			return nil
		}
	}
}

func fromSides(get func(*models.RawSides) []models.RawSideParty) ParticipantSource {
	return func(r *models.RawCaseDetail) []models.Participant {
		if r.Sides == nil {
			return nil
		}
		parties := get(r.Sides)
		out := make([]models.Participant, 0, len(parties))
		for _, p := range parties {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				continue
			}
			out = append(out, models.Participant{Name: name, Address: p.Address, INN: p.INN, OGRN: p.OGRN})
		}
		return out
	}
}
