package decode

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"

	"legaltrack/internal/cases/models"
	"legaltrack/pkg/rawvalue"
)

// Instances probes the instances field once: an array is the arbitration shape,
// an object carrying a known bucket name is the general-jurisdiction shape, and
// anything else is absent.
func (d *Decoder) Instances(raw json.RawMessage, id int64) models.RawInstances {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return models.RawInstances{}
	}
	switch t[0] {
	case '[':
		tiers, ok := d.tiers(t, id)
		if !ok {
			d.degraded("case", id, "instances", raw)
			return models.RawInstances{}
		}
		return models.RawInstances{Dialect: models.DialectArbitration, Tiers: tiers}
	case '{':
		buckets, ok := d.buckets(t, id)
		if !ok {
			d.degraded("case", id, "instances", raw)
			return models.RawInstances{}
		}
		return models.RawInstances{Dialect: models.DialectGeneral, Buckets: buckets}
	default:
		if !isNull(t) {
			d.degraded("case", id, "instances", raw)
		}
		return models.RawInstances{}
	}
}

func (d *Decoder) tiers(raw json.RawMessage, id int64) ([]models.RawCourtTier, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	tiers := make([]models.RawCourtTier, 0, len(elems))
	for i, e := range elems {
		o, ok := parseObject(e)
		if !ok {
			d.degraded("case", id, "instances["+strconv.Itoa(i)+"]", e)
			continue
		}
		tiers = append(tiers, models.RawCourtTier{
			InstanceName: d.text(o, "case", id, "instance-name"),
			Name:         d.text(o, "case", id, "name"),
			DataCourt:    d.text(o, "case", id, "data-court"),
			DataID:       d.text(o, "case", id, "data-id"),
			CourtName:    d.text(o, "case", id, "court-name"),
			CaseNumber:   d.text(o, "case", id, "case-number"),
			Items:        d.tierItems(o["data"], id),
		})
	}
	return tiers, true
}

// tierItems reads data.Result.Items. Items that fail the strict schema go
// through itemFromValue.
func (d *Decoder) tierItems(raw json.RawMessage, id int64) []models.RawInstanceItem {
	if isNull(raw) {
		return nil
	}
	var envelope struct {
		Result *struct {
			Items []json.RawMessage `json:"Items"`
		} `json:"Result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Result == nil {
		d.degraded("case", id, "instances.data", raw)
		return nil
	}
	items := make([]models.RawInstanceItem, 0, len(envelope.Result.Items))
	for _, r := range envelope.Result.Items {
		var it models.RawInstanceItem
		if err := json.Unmarshal(r, &it); err == nil {
			items = append(items, it)
			continue
		}
		v, err := rawvalue.Decode(r)
		if err != nil || v.Kind() != rawvalue.KindMap {
			d.degraded("case", id, "instances.data.Result.Items", r)
			continue
		}
		items = append(items, itemFromValue(v))
	}
	return items
}

// itemFromValue is the lenient reader for instance items.
func itemFromValue(v rawvalue.Value) models.RawInstanceItem {
	it := models.RawInstanceItem{
		ID:                 textOf(v, "Id"),
		CaseID:             textOf(v, "CaseId"),
		InstanceID:         textOf(v, "InstanceId"),
		CourtName:          textOf(v, "CourtName"),
		CourtTag:           textOf(v, "CourtTag"),
		DisplayDate:        textOf(v, "DisplayDate"),
		Date:               textOf(v, "Date"),
		DocumentTypeName:   textOf(v, "DocumentTypeName"),
		AdditionalInfo:     textOf(v, "AdditionalInfo"),
		DecisionTypeName:   textOf(v, "DecisionTypeName"),
		FileName:           textOf(v, "FileName"),
		PublishDisplayDate: textOf(v, "PublishDisplayDate"),
		HearingPlace:       textOf(v, "HearingPlace"),
	}
	if f, ok := v.Field("IsAct"); ok {
		switch f.Kind() {
		case rawvalue.KindBool:
			it.IsAct, _ = f.AsBool()
		case rawvalue.KindInt:
			n, _ := f.AsInt()
			it.IsAct = n != 0
		case rawvalue.KindString:
			s, _ := f.AsString()
			it.IsAct, _ = boolText(s)
		case rawvalue.KindNull, rawvalue.KindFloat, rawvalue.KindSeq, rawvalue.KindMap:
		}
	}
	if f, ok := v.Field("InstanceLevel"); ok {
		if n, ok := integerOf(f); ok {
			it.InstanceLevel = int(n)
		}
	}
	for _, key := range []string{"ClaimSum", "RecoverySum"} {
		f, ok := v.Field(key)
		if !ok {
			continue
		}
		x, ok := f.AsFloat()
		if !ok {
			continue
		}
		if key == "ClaimSum" {
			it.ClaimSum = &x
		} else {
			it.RecoverySum = &x
		}
	}
	if seq, ok := fieldSeq(v, "ContentTypes"); ok {
		for _, e := range seq {
			if s, ok := e.AsString(); ok {
				it.ContentTypes = append(it.ContentTypes, s)
			}
		}
	}
	if seq, ok := fieldSeq(v, "Judges"); ok {
		for _, e := range seq {
			if e.Kind() == rawvalue.KindMap {
				it.Judges = append(it.Judges, models.RawJudge{Name: textOf(e, "Name"), Role: textOf(e, "Role")})
			}
		}
	}
	if seq, ok := fieldSeq(v, "Declarers"); ok {
		for _, e := range seq {
			if e.Kind() != rawvalue.KindMap {
				continue
			}
			it.Declarers = append(it.Declarers, models.RawDeclarer{
				ID:             textOf(e, "Id"),
				OrganizationID: textOf(e, "OrganizationId"),
				Organization:   textOf(e, "Organization"),
				Address:        textOf(e, "Address"),
				INN:            textOf(e, "Inn"),
				OGRN:           textOf(e, "Ogrn"),
			})
		}
	}
	return it
}

func fieldSeq(v rawvalue.Value, key string) ([]rawvalue.Value, bool) {
	f, ok := v.Field(key)
	if !ok {
		return nil, false
	}
	return f.AsSeq()
}

// buckets reads the general-jurisdiction mapping. The object must carry at
// least one known bucket name; unknown buckets are ignored.
func (d *Decoder) buckets(raw json.RawMessage, id int64) (map[string][]models.RawEvent, bool) {
	v, err := rawvalue.Decode(raw)
	if err != nil {
		return nil, false
	}
	fields, ok := v.AsMap()
	if !ok {
		return nil, false
	}
	known := false
	for name := range fields {
		if slices.Contains(models.KnownBuckets, name) {
			known = true
			break
		}
	}
	if !known {
		return nil, false
	}
	out := make(map[string][]models.RawEvent)
	for _, name := range models.KnownBuckets {
		f, ok := fields[name]
		if !ok {
			continue
		}
		entries, ok := f.AsSeq()
		if !ok {
			if !f.IsNull() {
				d.logger.Debug("field decode degraded", "entity", "case", "id", id, "field", "instances."+name, "kind", f.Kind().String())
			}
			continue
		}
		events := make([]models.RawEvent, 0, len(entries))
		for _, e := range entries {
			if e.Kind() != rawvalue.KindMap {
				continue
			}
			events = append(events, models.RawEvent{
				Date:   textOf(e, "date"),
				Time:   textOf(e, "time"),
				Header: textOf(e, "header"),
				Text:   textOf(e, "text"),
			})
		}
		out[name] = events
	}
	return out, true
}
