package decode

import (
	"encoding/json"
	"fmt"

	"legaltrack/internal/cases/models"
)

// CaseDetail decodes a case detail response. The record may arrive wrapped as
// {"message": ..., "data": {...}} or bare. A record without a numeric id is
// ErrMalformedRecord.
func (d *Decoder) CaseDetail(body []byte) (*models.RawCaseDetail, error) {
	top, ok := parseObject(body)
	if !ok {
		return nil, fmt.Errorf("case detail: top level is not an object: %w", ErrMalformedRecord)
	}
	rec := top
	if inner, ok := parseObject(top["data"]); ok {
		rec = inner
	}
	if !rec.present("id") {
		return nil, fmt.Errorf("case detail: missing id: %w", ErrMalformedRecord)
	}
	id, ok := AsInteger(rec["id"])
	if !ok {
		return nil, fmt.Errorf("case detail: id %s is not numeric: %w", abbreviate(rec["id"]), ErrMalformedRecord)
	}

	const entity = "case"
	raw := &models.RawCaseDetail{
		ID:           id,
		Name:         d.text(rec, entity, id, "name"),
		Value:        d.text(rec, entity, id, "value"),
		Title:        d.text(rec, entity, id, "title"),
		Status:       d.text(rec, entity, id, "status"),
		StatusKind:   d.text(rec, entity, id, "status_kind"),
		Type:         d.text(rec, entity, id, "type"),
		Kind:         d.text(rec, entity, id, "kind"),
		Courts:       d.text(rec, entity, id, "courts"),
		CourtName:    d.text(rec, entity, id, "court_name"),
		Judge:        d.text(rec, entity, id, "judge"),
		Link:         d.text(rec, entity, id, "link"),
		CardLink:     d.text(rec, entity, id, "card-link"),
		CaseDuration: d.text(rec, entity, id, "case-dur"),
		StartedDate:  d.text(rec, entity, id, "started-date"),
		CaseDate:     d.text(rec, entity, id, "case-date"),
		AddedDate:    d.text(rec, entity, id, "added_date"),
		Category:     d.text(rec, entity, id, "category"),
		IsSou:        d.boolLike(rec, entity, id, "is_sou"),
		Plaintiffs:   d.text(rec, entity, id, "plaintiffs"),
		Defendants:   d.text(rec, entity, id, "defendants"),
		Third:        d.text(rec, entity, id, "third"),
		Others:       d.text(rec, entity, id, "others"),
	}
	raw.SidePl = d.sideField(rec, id, "side_pl")
	raw.SideDf = d.sideField(rec, id, "side_df")
	raw.Sides = d.sides(rec["sides"], id)
	raw.NearestSession = d.session(rec["nearest_session"], id)
	raw.ShortInfo = d.shortInfo(rec["short_info"], id)
	if r, ok := rec["instances"]; ok {
		raw.Instances = d.Instances(r, id)
	}
	return raw, nil
}

func (d *Decoder) sideField(o object, id int64, key string) models.SideList {
	raw, ok := o[key]
	if !ok {
		return models.SideList{}
	}
	s, ok := SideList(raw)
	if !ok {
		d.degraded("case", id, key, raw)
		return models.SideList{}
	}
	return s
}

func (d *Decoder) session(raw json.RawMessage, id int64) *models.RawSession {
	o, ok := d.nested(raw, id, "nearest_session")
	if !ok {
		return nil
	}
	return &models.RawSession{
		Date:    d.text(o, "case", id, "date"),
		Judge:   d.text(o, "case", id, "judge"),
		Cabinet: d.text(o, "case", id, "cabinet"),
	}
}

func (d *Decoder) shortInfo(raw json.RawMessage, id int64) *models.RawShortInfo {
	o, ok := d.nested(raw, id, "short_info")
	if !ok {
		return nil
	}
	return &models.RawShortInfo{
		Case:        d.text(o, "case", id, "case"),
		Court:       d.text(o, "case", id, "court"),
		Judge:       d.text(o, "case", id, "judge"),
		HearingDate: d.text(o, "case", id, "hearingDate"),
	}
}

func (d *Decoder) nested(raw json.RawMessage, id int64, key string) (object, bool) {
	if isNull(raw) {
		return nil, false
	}
	o, ok := parseObject(raw)
	if !ok {
		d.degraded("case", id, key, raw)
		return nil, false
	}
	return o, true
}
