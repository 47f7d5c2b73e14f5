package normalize

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"legaltrack/internal/cases/models"
)

// actKeywords mark ruling, decision and resolution document types.
var actKeywords = []string{"определение", "решение", "постановление"}

// IsAct classifies a document as a judicial act.
func IsAct(flag bool, docType string) bool {
	if flag {
		return true
	}
	// cases.Caser is stateful, so one is built per call.
	lower := cases.Lower(language.Russian).String(docType)
	for _, kw := range actKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

const (
	minOpaqueFileNameLen = 10
	pdfEndpoint          = "/subs/get-pdf"
)

// ResolvePDFURL returns a download link for the document or "" when none can be
// built. The forms are tried in a fixed order:
//  1. FileName already carrying an http(s) scheme;
//  2. internal API fetch by tracking id and document id;
//  3. server-relative FileName joined to the internal API base;
//  4. archive direct link by tracking id and document id;
//  5. archive link by FileName when it looks like an opaque identifier.
//
// The internal forms require an API base.
func (n *Normalizer) ResolvePDFURL(doc models.Document) string {
	fileName := strings.TrimSpace(doc.FileName)
	caseID := strings.TrimSpace(doc.CaseID)
	docID := strings.TrimSpace(doc.ID)

	if hasHTTPScheme(fileName) {
		return fileName
	}
	if n.apiBase != "" && caseID != "" && docID != "" {
		q := url.Values{}
		q.Set("case_id", caseID)
		q.Set("document_id", docID)
		return n.apiBase + pdfEndpoint + "?" + q.Encode()
	}
	if n.apiBase != "" && strings.HasPrefix(fileName, "/") {
		return n.apiBase + fileName
	}
	if n.archiveBase != "" && caseID != "" && docID != "" {
		return n.archiveBase + "/Document/Pdf/" + url.PathEscape(caseID) + "/" + url.PathEscape(docID) + "?isAddStamp=True"
	}
	if n.archiveBase != "" && looksOpaque(fileName) {
		return n.archiveBase + "/Kad/PdfDocument/" + url.PathEscape(fileName)
	}
	return ""
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func looksOpaque(fileName string) bool {
	return strings.Contains(fileName, "-") && utf8.RuneCountInString(fileName) > minOpaqueFileNameLen
}

func (n *Normalizer) arbitrationInstances(tiers []models.RawCourtTier) []models.Instance {
	out := make([]models.Instance, 0, len(tiers))
	for _, tier := range tiers {
		inst := models.Instance{
			Name:       firstNonEmpty(tier.InstanceName, tier.Name, defaultInstance),
			Court:      tier.CourtName,
			CaseNumber: tier.CaseNumber,
			Documents:  make([]models.Document, 0, len(tier.Items)),
		}
		for _, item := range tier.Items {
			inst.Documents = append(inst.Documents, n.document(item))
		}
		if len(tier.Items) > 0 {
			first := tier.Items[0]
			if inst.Court == "" {
				inst.Court = first.CourtName
			}
			inst.Date = first.DisplayDate
		}
		out = append(out, inst)
	}
	return out
}

func (n *Normalizer) document(item models.RawInstanceItem) models.Document {
	doc := models.Document{
		ID:           item.ID,
		CaseID:       item.CaseID,
		DisplayDate:  item.DisplayDate,
		PublishDate:  item.PublishDisplayDate,
		Type:         item.DocumentTypeName,
		Description:  firstNonEmpty(item.AdditionalInfo, item.DecisionTypeName),
		Decision:     item.DecisionTypeName,
		CourtName:    item.CourtName,
		FileName:     item.FileName,
		Judges:       []string{},
		Declarers:    []string{},
		ContentTypes: []string{},
		IsAct:        IsAct(item.IsAct, item.DocumentTypeName),
	}
	for _, j := range item.Judges {
		if j.Name != "" {
			doc.Judges = append(doc.Judges, j.Name)
		}
	}
	for _, d := range item.Declarers {
		if d.Organization != "" {
			doc.Declarers = append(doc.Declarers, d.Organization)
		}
	}
	doc.ContentTypes = append(doc.ContentTypes, item.ContentTypes...)
	doc.PDFURL = n.ResolvePDFURL(doc)
	if doc.PDFURL == "" && (doc.ID != "" || doc.FileName != "") {
		n.logger.Debug("document has no resolvable link", "document_id", doc.ID, "case_id", doc.CaseID, "file_name", doc.FileName)
	}
	return doc
}

// generalBuckets are the buckets projected into synthetic instances, in order,
// with the act flag their entries carry.
var generalBuckets = []struct {
	name  string
	isAct bool
}{
	{models.BucketEvents, false},
	{models.BucketActs, true},
}

func (n *Normalizer) generalInstances(raw *models.RawCaseDetail, court string) []models.Instance {
	out := make([]models.Instance, 0, len(generalBuckets))
	for _, b := range generalBuckets {
		events := raw.Instances.Buckets[b.name]
		if len(events) == 0 {
			continue
		}
		inst := models.Instance{
			Name:       b.name,
			Court:      court,
			CaseNumber: raw.Value,
			Documents:  make([]models.Document, 0, len(events)),
		}
		for _, ev := range events {
			inst.Documents = append(inst.Documents, models.Document{
				DisplayDate:  eventDate(ev),
				Type:         ev.Header,
				Description:  ev.Text,
				Judges:       []string{},
				Declarers:    []string{},
				ContentTypes: []string{},
				IsAct:        IsAct(b.isAct, ev.Header),
			})
		}
		inst.Date = inst.Documents[0].DisplayDate
		out = append(out, inst)
	}
	return out
}

func eventDate(ev models.RawEvent) string {
	if ev.Date != "" && ev.Time != "" {
		return ev.Date + " " + ev.Time
	}
	return ev.Date
}
