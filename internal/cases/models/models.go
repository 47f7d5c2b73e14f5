package models

import "fmt"

// CaseDetail is the canonical case model served to callers and stored in the
// cache. Participant and instance slices are never nil.
type CaseDetail struct {
	ID               int64         `json:"id"`
	Dialect          Dialect       `json:"dialect"`
	Number           string        `json:"number"`
	Name             string        `json:"name,omitempty"`
	Category         string        `json:"category,omitempty"`
	Type             string        `json:"type,omitempty"`
	Kind             string        `json:"kind,omitempty"`
	Court            string        `json:"court,omitempty"`
	Judge            string        `json:"judge,omitempty"`
	Status           string        `json:"status,omitempty"`
	Duration         string        `json:"duration,omitempty"`
	StartDate        string        `json:"start_date,omitempty"`
	Link             string        `json:"link,omitempty"`
	CardLink         string        `json:"card_link,omitempty"`
	IsSou            bool          `json:"is_sou"`
	NearestSession   *Session      `json:"nearest_session,omitempty"`
	Plaintiffs       []Participant `json:"plaintiffs"`
	Defendants       []Participant `json:"defendants"`
	ThirdParties     []Participant `json:"third_parties"`
	Others           []Participant `json:"others"`
	Instances        []Instance    `json:"instances"`
	CaseNumbersChain string        `json:"case_numbers_chain"`
}

// Documents returns every document across instances in instance order.
func (c *CaseDetail) Documents() []Document {
	var docs []Document
	for _, inst := range c.Instances {
		docs = append(docs, inst.Documents...)
	}
	return docs
}

// FindDocument looks a document up by its id.
func (c *CaseDetail) FindDocument(id string) (Document, bool) {
	for _, inst := range c.Instances {
		for _, d := range inst.Documents {
			if d.ID != "" && d.ID == id {
				return d, true
			}
		}
	}
	return Document{}, false
}

type Participant struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	INN     string `json:"inn,omitempty"`
	OGRN    string `json:"ogrn,omitempty"`
}

type Session struct {
	Date    string `json:"date,omitempty"`
	Judge   string `json:"judge,omitempty"`
	Cabinet string `json:"cabinet,omitempty"`
}

// Instance is one court tier (arbitration) or one synthetic bucket (general
// jurisdiction).
type Instance struct {
	Name       string     `json:"name"`
	Court      string     `json:"court,omitempty"`
	CaseNumber string     `json:"case_number,omitempty"`
	Date       string     `json:"date,omitempty"`
	Documents  []Document `json:"documents"`
}

type Document struct {
	ID           string   `json:"id,omitempty"`
	CaseID       string   `json:"case_id,omitempty"`
	DisplayDate  string   `json:"display_date,omitempty"`
	PublishDate  string   `json:"publish_date,omitempty"`
	Type         string   `json:"type,omitempty"`
	Description  string   `json:"description,omitempty"`
	Decision     string   `json:"decision,omitempty"`
	CourtName    string   `json:"court_name,omitempty"`
	FileName     string   `json:"file_name,omitempty"`
	Judges       []string `json:"judges"`
	Declarers    []string `json:"declarers"`
	ContentTypes []string `json:"content_types"`
	IsAct        bool     `json:"is_act"`
	PDFURL       string   `json:"pdf_url,omitempty"`
}

// HasPDF reports whether URL resolution produced a link.
func (d Document) HasPDF() bool {
	return d.PDFURL != ""
}

// LegalCase is a case summary from the subscriptions list.
type LegalCase struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title,omitempty"`
	Value       string   `json:"value,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	IsSou       *bool    `json:"is_sou,omitempty"`
	Status      string   `json:"status,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	CompanyID   int64    `json:"company_id,omitempty"`
	LastEvent   string   `json:"last_event,omitempty"`
	New         int64    `json:"new,omitempty"`
	Folder      string   `json:"folder,omitempty"`
	Favorites   bool     `json:"favorites,omitempty"`
	Link        string   `json:"link,omitempty"`
	CardLink    string   `json:"card_link,omitempty"`
	CourtName   string   `json:"court_name,omitempty"`
	City        string   `json:"city,omitempty"`
	SidePl      string   `json:"side_pl,omitempty"`
	SideDf      []string `json:"side_df,omitempty"`
}

// DisplayTitle picks the first non-empty label for the case.
func (c LegalCase) DisplayTitle() string {
	for _, s := range []string{c.Title, c.Name, c.Value} {
		if s != "" {
			return s
		}
	}
	return fmt.Sprintf("Дело №%d", c.ID)
}

type Company struct {
	ID          int64  `json:"id"`
	Value       string `json:"value,omitempty"`
	INN         string `json:"inn,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastEvent   string `json:"last_event,omitempty"`
	TotalCases  string `json:"total_cases,omitempty"`
	New         int64  `json:"new,omitempty"`
	Status      string `json:"status,omitempty"`
	NameCustom  string `json:"name_custom,omitempty"`
}

type CalendarEvent struct {
	ID            int64  `json:"id"`
	DateTimeStart string `json:"datetime_start,omitempty"`
	CaseID        int64  `json:"case_id,omitempty"`
	Head          string `json:"head,omitempty"`
	SecondLine    string `json:"second_line,omitempty"`
	ThirdLine     string `json:"third_line,omitempty"`
	IsSou         bool   `json:"is_sou"`
}

type Notification struct {
	ID            int64  `json:"id"`
	TextHeader    string `json:"text_header,omitempty"`
	TextSubHeader string `json:"text_sub_header,omitempty"`
	Text          string `json:"text,omitempty"`
	Type          string `json:"type,omitempty"`
	Meta          string `json:"meta,omitempty"`
	HasDocument   bool   `json:"has_document"`
	Document      string `json:"document,omitempty"`
	CaseID        int64  `json:"case,omitempty"`
	CompanyID     int64  `json:"company,omitempty"`
	IsSou         bool   `json:"is_sou"`
	IsRead        bool   `json:"is_read"`
}

// NotificationsPage is one page of the notifications feed.
type NotificationsPage struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Items      []Notification `json:"items"`
}
