package decode

import (
	"encoding/json"

	"legaltrack/internal/cases/models"
	"legaltrack/pkg/rawvalue"
)

// SideListChain reads side_* participant fields: null, plain text, structured
// participant objects, then flexible participant objects.
var SideListChain = []Interpretation[models.SideList]{
	sideNull,
	sideText,
	sideStructured,
	sideFlexible,
}

// SideList resolves a side_* field. A value matching no interpretation is absent.
func SideList(raw json.RawMessage) (models.SideList, bool) {
	return FirstOf(raw, SideListChain...)
}

func sideNull(raw json.RawMessage) (models.SideList, bool) {
	if !isNull(raw) {
		return models.SideList{}, false
	}
	return models.SideList{Shape: models.SideNull}, true
}

func sideText(raw json.RawMessage) (models.SideList, bool) {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return models.SideList{}, false
	}
	return models.SideList{Shape: models.SideText, Text: s}, true
}

// sideType accepts the participant role as a string or an integer code.
type sideType string

func (t *sideType) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = sideType(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = sideType(n.String())
	return nil
}

type structuredSideItem struct {
	SideType sideType `json:"sideType"`
	NameSide *string  `json:"nameSide"`
	INN      *string  `json:"inn"`
	KPP      *string  `json:"kpp"`
	OGRN     *string  `json:"ogrn"`
	OGRNIP   *string  `json:"ogrnip"`
}

func sideStructured(raw json.RawMessage) (models.SideList, bool) {
	var items []structuredSideItem
	if json.Unmarshal(raw, &items) != nil || items == nil {
		return models.SideList{}, false
	}
	out := make([]models.RawSideItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.RawSideItem{
			SideType: string(it.SideType),
			NameSide: deref(it.NameSide),
			INN:      deref(it.INN),
			KPP:      deref(it.KPP),
			OGRN:     deref(it.OGRN),
			OGRNIP:   deref(it.OGRNIP),
		})
	}
	return models.SideList{Shape: models.SideItems, Items: out}, true
}

// sideFlexible accepts objects whose members are independently null, text or
// numbers. Elements that are not objects are skipped.
func sideFlexible(raw json.RawMessage) (models.SideList, bool) {
	v, err := rawvalue.Decode(raw)
	if err != nil {
		return models.SideList{}, false
	}
	elems, ok := v.AsSeq()
	if !ok {
		return models.SideList{}, false
	}
	out := make([]models.RawSideItem, 0, len(elems))
	for _, e := range elems {
		if e.Kind() != rawvalue.KindMap {
			continue
		}
		out = append(out, models.RawSideItem{
			SideType: textOf(e, "sideType"),
			NameSide: textOf(e, "nameSide"),
			INN:      textOf(e, "inn"),
			KPP:      textOf(e, "kpp"),
			OGRN:     textOf(e, "ogrn"),
			OGRNIP:   textOf(e, "ogrnip"),
		})
	}
	return models.SideList{Shape: models.SideItems, Items: out}, true
}

// sides reads the per-category "sides" object. Parties that do not decode
// strictly are read leniently member by member.
func (d *Decoder) sides(raw json.RawMessage, id int64) *models.RawSides {
	if isNull(raw) {
		return nil
	}
	var strict models.RawSides
	if err := json.Unmarshal(raw, &strict); err == nil {
		return &strict
	}
	o, ok := parseObject(raw)
	if !ok {
		d.degraded("case", id, "sides", raw)
		return nil
	}
	return &models.RawSides{
		Plaintiffs: d.parties(o["Plaintiffs"], id, "sides.Plaintiffs"),
		Defendants: d.parties(o["Defendants"], id, "sides.Defendants"),
		Third:      d.parties(o["Third"], id, "sides.Third"),
		Others:     d.parties(o["Others"], id, "sides.Others"),
	}
}

func (d *Decoder) parties(raw json.RawMessage, id int64, fieldName string) []models.RawSideParty {
	if isNull(raw) {
		return nil
	}
	v, err := rawvalue.Decode(raw)
	if err != nil {
		d.degraded("case", id, fieldName, raw)
		return nil
	}
	elems, ok := v.AsSeq()
	if !ok {
		d.degraded("case", id, fieldName, raw)
		return nil
	}
	out := make([]models.RawSideParty, 0, len(elems))
	for _, e := range elems {
		if e.Kind() != rawvalue.KindMap {
			continue
		}
		p := models.RawSideParty{
			ID:        textOf(e, "Id"),
			Name:      textOf(e, "Name"),
			Address:   textOf(e, "Address"),
			INN:       textOf(e, "INN"),
			OGRN:      textOf(e, "OGRN"),
			BirthDate: textOf(e, "BirthDate"),
		}
		if st, ok := e.Field("SideType"); ok {
			if n, ok := integerOf(st); ok {
				p.SideType = int(n)
			}
		}
		out = append(out, p)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
