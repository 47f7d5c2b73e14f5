package models

// Raw types are decode targets for backend payloads. Empty strings stand for absent
// values; fields whose wire type varies are resolved by the tolerant decoder.

// Dialect identifies which backend family produced a case payload.
type Dialect string

const (
	DialectUnknown     Dialect = ""
	DialectArbitration Dialect = "arbitration"
	DialectGeneral     Dialect = "general"
)

// RawCaseDetail is the loosely typed case detail record. It lives for one
// response and is discarded after normalization.
type RawCaseDetail struct {
	ID           int64
	Name         string
	Value        string
	Title        string
	Status       string
	StatusKind   string
	Type         string
	Kind         string
	Courts       string
	CourtName    string
	Judge        string
	Link         string
	CardLink     string
	CaseDuration string
	StartedDate  string
	CaseDate     string
	AddedDate    string
	Category     string

	IsSou *bool

	// Free-text participant lists.
	Plaintiffs string
	Defendants string
	Third      string
	Others     string

	SidePl SideList
	SideDf SideList
	Sides  *RawSides

	NearestSession *RawSession
	ShortInfo      *RawShortInfo

	Instances RawInstances
}

// SideShape tags the interpretation that succeeded for a side_* field.
type SideShape uint8

const (
	SideAbsent SideShape = iota
	SideNull
	SideText
	SideItems
)

// SideList is a participant field that arrives as null, free text or a list of
// participant objects.
type SideList struct {
	Shape SideShape
	Text  string
	Items []RawSideItem
}

// RawSideItem is one structured participant object.
type RawSideItem struct {
	SideType string `json:"sideType"`
	NameSide string `json:"nameSide"`
	INN      string `json:"inn"`
	KPP      string `json:"kpp"`
	OGRN     string `json:"ogrn"`
	OGRNIP   string `json:"ogrnip"`
}

type RawSides struct {
	Plaintiffs []RawSideParty `json:"Plaintiffs"`
	Defendants []RawSideParty `json:"Defendants"`
	Third      []RawSideParty `json:"Third"`
	Others     []RawSideParty `json:"Others"`
}

type RawSideParty struct {
	ID        string `json:"Id"`
	Name      string `json:"Name"`
	Address   string `json:"Address"`
	INN       string `json:"INN"`
	OGRN      string `json:"OGRN"`
	BirthDate string `json:"BirthDate"`
	SideType  int    `json:"SideType"`
}

type RawSession struct {
	Date    string `json:"date"`
	Judge   string `json:"judge"`
	Cabinet string `json:"cabinet"`
}

type RawShortInfo struct {
	Case        string `json:"case"`
	Court       string `json:"court"`
	Judge       string `json:"judge"`
	HearingDate string `json:"hearingDate"`
}

// RawInstances holds whichever instances shape the payload carried.
type RawInstances struct {
	Dialect Dialect
	Tiers   []RawCourtTier
	Buckets map[string][]RawEvent
}

// Present reports whether any instances shape was recognized.
func (r RawInstances) Present() bool {
	return r.Dialect != DialectUnknown
}

// RawCourtTier is one arbitration court tier with its document items.
type RawCourtTier struct {
	InstanceName string
	Name         string
	DataCourt    string
	DataID       string
	CourtName    string
	CaseNumber   string
	Items        []RawInstanceItem
}

// RawInstanceItem is one document or event inside an arbitration tier.
type RawInstanceItem struct {
	ID                 string        `json:"Id"`
	CaseID             string        `json:"CaseId"`
	InstanceID         string        `json:"InstanceId"`
	CourtName          string        `json:"CourtName"`
	CourtTag           string        `json:"CourtTag"`
	DisplayDate        string        `json:"DisplayDate"`
	Date               string        `json:"Date"`
	DocumentTypeName   string        `json:"DocumentTypeName"`
	AdditionalInfo     string        `json:"AdditionalInfo"`
	DecisionTypeName   string        `json:"DecisionTypeName"`
	FileName           string        `json:"FileName"`
	PublishDisplayDate string        `json:"PublishDisplayDate"`
	ContentTypes       []string      `json:"ContentTypes"`
	Judges             []RawJudge    `json:"Judges"`
	Declarers          []RawDeclarer `json:"Declarers"`
	ClaimSum           *float64      `json:"ClaimSum"`
	RecoverySum        *float64      `json:"RecoverySum"`
	IsAct              bool          `json:"IsAct"`
	HearingPlace       string        `json:"HearingPlace"`
	InstanceLevel      int           `json:"InstanceLevel"`
}

type RawJudge struct {
	Name string `json:"Name"`
	Role string `json:"Role"`
}

type RawDeclarer struct {
	ID             string `json:"Id"`
	OrganizationID string `json:"OrganizationId"`
	Organization   string `json:"Organization"`
	Address        string `json:"Address"`
	INN            string `json:"Inn"`
	OGRN           string `json:"Ogrn"`
	Type           int    `json:"Type"`
}

// RawEvent is one entry of a general-jurisdiction bucket.
type RawEvent struct {
	Date   string
	Time   string
	Header string
	Text   string
}

// General-jurisdiction bucket names as they appear on the wire.
const (
	BucketStatusHistory = "История статусов"
	BucketMovement      = "Движение дела"
	BucketEvents        = "События"
	BucketActs          = "Судебные акты"
)

// KnownBuckets lists every bucket name that marks the general-jurisdiction shape.
var KnownBuckets = []string{BucketStatusHistory, BucketMovement, BucketEvents, BucketActs}
