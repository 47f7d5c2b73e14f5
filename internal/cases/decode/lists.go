package decode

import (
	"encoding/json"
	"fmt"

	"legaltrack/internal/cases/models"
)

// Subscriptions is the decoded subscriptions response.
type Subscriptions struct {
	Cases     []models.LegalCase
	Companies []models.Company
}

// listPaths are the nesting variants under which a named list may appear.
func listPaths(name string) [][]string {
	return [][]string{
		{name},
		{"data", name},
		{"data", "data", name},
	}
}

// lookup walks an object path and returns the raw value at its end.
func lookup(o object, path []string) (json.RawMessage, bool) {
	cur := o
	for i, key := range path {
		raw, ok := cur[key]
		if !ok || isNull(raw) {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		next, ok := parseObject(raw)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// findList returns the elements of the first path that holds an array.
func findList(o object, name string) ([]json.RawMessage, bool) {
	for _, path := range listPaths(name) {
		raw, ok := lookup(o, path)
		if !ok {
			continue
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err == nil && elems != nil {
			return elems, true
		}
	}
	return nil, false
}

// Subscriptions decodes the tracked cases and companies. The response must hold
// at least one of the two lists under a recognized path.
func (d *Decoder) Subscriptions(body []byte) (Subscriptions, error) {
	top, ok := parseObject(body)
	if !ok {
		return Subscriptions{}, fmt.Errorf("subscriptions: top level is not an object: %w", ErrMalformedRecord)
	}
	caseElems, hasCases := findList(top, "cases")
	companyElems, hasCompanies := findList(top, "companies")
	if !hasCases && !hasCompanies {
		return Subscriptions{}, fmt.Errorf("subscriptions: no cases or companies list: %w", ErrMalformedRecord)
	}
	out := Subscriptions{
		Cases:     make([]models.LegalCase, 0, len(caseElems)),
		Companies: make([]models.Company, 0, len(companyElems)),
	}
	for _, e := range caseElems {
		if c, ok := d.legalCase(e); ok {
			out.Cases = append(out.Cases, c)
		}
	}
	for _, e := range companyElems {
		if c, ok := d.company(e); ok {
			out.Companies = append(out.Companies, c)
		}
	}
	return out, nil
}

// CaseList decodes only the tracked cases.
func (d *Decoder) CaseList(body []byte) ([]models.LegalCase, error) {
	top, ok := parseObject(body)
	if !ok {
		return nil, fmt.Errorf("case list: top level is not an object: %w", ErrMalformedRecord)
	}
	elems, ok := findList(top, "cases")
	if !ok {
		return nil, fmt.Errorf("case list: no cases list: %w", ErrMalformedRecord)
	}
	cases := make([]models.LegalCase, 0, len(elems))
	for _, e := range elems {
		if c, ok := d.legalCase(e); ok {
			cases = append(cases, c)
		}
	}
	return cases, nil
}

// CompanyList decodes only the tracked companies. A subscriptions object
// holding cases but no companies yields an empty list; an object holding
// neither is malformed.
func (d *Decoder) CompanyList(body []byte) ([]models.Company, error) {
	subs, err := d.Subscriptions(body)
	if err != nil {
		return nil, fmt.Errorf("company list: %w", err)
	}
	return subs.Companies, nil
}

// identity reads the numeric id of a list element; elements without one are skipped.
func (d *Decoder) identity(raw json.RawMessage, entity string) (object, int64, bool) {
	o, ok := parseObject(raw)
	if !ok {
		d.degraded(entity, 0, "element", raw)
		return nil, 0, false
	}
	id, ok := AsInteger(o["id"])
	if !ok {
		d.degraded(entity, 0, "id", o["id"])
		return nil, 0, false
	}
	return o, id, true
}

func (d *Decoder) legalCase(raw json.RawMessage) (models.LegalCase, bool) {
	const entity = "case_summary"
	o, id, ok := d.identity(raw, entity)
	if !ok {
		return models.LegalCase{}, false
	}
	c := models.LegalCase{
		ID:          id,
		Title:       d.text(o, entity, id, "title"),
		Value:       d.text(o, entity, id, "value"),
		Name:        d.text(o, entity, id, "name"),
		Description: d.text(o, entity, id, "description"),
		IsSou:       d.boolLike(o, entity, id, "is_sou"),
		Status:      d.text(o, entity, id, "status"),
		CreatedAt:   d.text(o, entity, id, "created_at"),
		UpdatedAt:   d.text(o, entity, id, "updated_at"),
		CompanyID:   d.integer(o, entity, id, "company_id"),
		LastEvent:   d.text(o, entity, id, "last_event"),
		New:         d.integer(o, entity, id, "new"),
		Folder:      d.text(o, entity, id, "folder"),
		Favorites:   d.flag(o, entity, id, "favorites"),
		Link:        d.text(o, entity, id, "link"),
		CardLink:    d.text(o, entity, id, "card-link"),
		CourtName:   d.textAny(o, entity, id, "court_name", "courtName"),
		City:        d.text(o, entity, id, "city"),
		SidePl:      d.text(o, entity, id, "side_pl"),
	}
	if r, ok := o["side_df"]; ok {
		if s, ok := SideList(r); ok {
			c.SideDf = s.Names()
		} else {
			d.degraded(entity, id, "side_df", r)
		}
	}
	return c, true
}

func (d *Decoder) company(raw json.RawMessage) (models.Company, bool) {
	const entity = "company"
	o, id, ok := d.identity(raw, entity)
	if !ok {
		return models.Company{}, false
	}
	return models.Company{
		ID:          id,
		Value:       d.text(o, entity, id, "value"),
		INN:         d.text(o, entity, id, "inn"),
		Name:        d.text(o, entity, id, "name"),
		Description: d.text(o, entity, id, "description"),
		CreatedAt:   d.text(o, entity, id, "created_at"),
		LastEvent:   d.text(o, entity, id, "last_event"),
		TotalCases:  d.text(o, entity, id, "total_cases"),
		New:         d.integer(o, entity, id, "new"),
		Status:      d.text(o, entity, id, "status"),
		NameCustom:  d.text(o, entity, id, "name_custom"),
	}, true
}

// CalendarEvents decodes {"data": [...]} or a bare array of events.
func (d *Decoder) CalendarEvents(body []byte) ([]models.CalendarEvent, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil || elems == nil {
		top, ok := parseObject(body)
		if !ok {
			return nil, fmt.Errorf("calendar: unrecognized response: %w", ErrMalformedRecord)
		}
		elems = nil
		if raw, ok := top["data"]; ok && !isNull(raw) {
			if err := json.Unmarshal(raw, &elems); err != nil {
				return nil, fmt.Errorf("calendar: data is not a list: %w", ErrMalformedRecord)
			}
		}
	}
	const entity = "calendar_event"
	events := make([]models.CalendarEvent, 0, len(elems))
	for _, e := range elems {
		o, id, ok := d.identity(e, entity)
		if !ok {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:            id,
			DateTimeStart: d.text(o, entity, id, "datetime_start"),
			CaseID:        d.integer(o, entity, id, "case_id"),
			Head:          d.text(o, entity, id, "head"),
			SecondLine:    d.text(o, entity, id, "second_line"),
			ThirdLine:     d.text(o, entity, id, "third_line"),
			IsSou:         d.flag(o, entity, id, "is_sou"),
		})
	}
	return events, nil
}

// NotificationsPage decodes one feed page. Missing page counters default to 1
// and a non-list data member yields an empty page.
func (d *Decoder) NotificationsPage(body []byte) (models.NotificationsPage, error) {
	top, ok := parseObject(body)
	if !ok {
		return models.NotificationsPage{}, fmt.Errorf("notifications: top level is not an object: %w", ErrMalformedRecord)
	}
	page := models.NotificationsPage{Page: 1, TotalPages: 1, Items: []models.Notification{}}
	if n, ok := AsInteger(top["page"]); ok && n > 0 {
		page.Page = int(n)
	}
	if n, ok := AsInteger(top["total_pages"]); ok && n > 0 {
		page.TotalPages = int(n)
	}
	var elems []json.RawMessage
	if raw, ok := top["data"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &elems); err != nil {
			d.degraded("notifications", 0, "data", raw)
		}
	}
	const entity = "notification"
	for _, e := range elems {
		o, id, ok := d.identity(e, entity)
		if !ok {
			continue
		}
		page.Items = append(page.Items, models.Notification{
			ID:            id,
			TextHeader:    d.text(o, entity, id, "text_header"),
			TextSubHeader: d.text(o, entity, id, "text_sub_header"),
			Text:          d.text(o, entity, id, "text"),
			Type:          d.text(o, entity, id, "type"),
			Meta:          d.text(o, entity, id, "meta"),
			HasDocument:   d.flag(o, entity, id, "has_document"),
			Document:      d.text(o, entity, id, "document"),
			CaseID:        d.integer(o, entity, id, "case"),
			CompanyID:     d.integer(o, entity, id, "company"),
			IsSou:         d.flag(o, entity, id, "is_sou"),
			IsRead:        d.flag(o, entity, id, "is_read"),
		})
	}
	return page, nil
}
