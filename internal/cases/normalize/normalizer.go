// Package normalize projects tolerant-decoded records into the canonical case
// model. Every function here is pure; a Normalizer may be shared between
// goroutines.
package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"legaltrack/internal/cases/decode"
	"legaltrack/internal/cases/models"
)

const (
	DefaultAPIBase     = "https://arbitr.kazna.tech"
	DefaultArchiveBase = "https://kad.arbitr.ru"

	noNumber        = "Без номера"
	defaultInstance = "Инстанция"
	chainSeparator  = " ← "
)

type Normalizer struct {
	apiBase     string
	archiveBase string
	logger      *slog.Logger
}

type Option func(*Normalizer)

// WithAPIBase sets the internal API base used for document links. An empty base
// disables the internal link forms.
func WithAPIBase(base string) Option {
	return func(n *Normalizer) {
		n.apiBase = strings.TrimRight(base, "/")
	}
}

func WithArchiveBase(base string) Option {
	return func(n *Normalizer) {
		n.archiveBase = strings.TrimRight(base, "/")
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		apiBase:     DefaultAPIBase,
		archiveBase: DefaultArchiveBase,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds the canonical case detail. A nil record or one without a
// positive id is refused with decode.ErrMalformedRecord.
func (n *Normalizer) Normalize(raw *models.RawCaseDetail) (*models.CaseDetail, error) {
	if raw == nil {
		return nil, fmt.Errorf("normalize: nil record: %w", decode.ErrMalformedRecord)
	}
	if raw.ID <= 0 {
		return nil, fmt.Errorf("normalize: invalid id %d: %w", raw.ID, decode.ErrMalformedRecord)
	}

	detail := &models.CaseDetail{
		ID:        raw.ID,
		Number:    firstNonEmpty(shortInfo(raw).Case, raw.Value, noNumber),
		Name:      raw.Name,
		Category:  raw.Category,
		Type:      raw.Type,
		Kind:      raw.Kind,
		Court:     firstNonEmpty(raw.CourtName, shortInfo(raw).Court, raw.Courts),
		Judge:     firstNonEmpty(raw.Judge, shortInfo(raw).Judge, session(raw).Judge),
		Status:    raw.Status,
		Duration:  raw.CaseDuration,
		StartDate: firstNonEmpty(raw.StartedDate, raw.CaseDate),
		Link:      raw.Link,
		CardLink:  raw.CardLink,
	}
	if raw.NearestSession != nil {
		s := models.Session(*raw.NearestSession)
		detail.NearestSession = &s
	}

	number := firstNonEmpty(raw.Value, shortInfo(raw).Case)
	if raw.IsSou != nil {
		detail.IsSou = *raw.IsSou
	} else {
		detail.IsSou = IsSouByNumber(number)
	}

	detail.Plaintiffs = Participants(raw, PlaintiffSources)
	detail.Defendants = Participants(raw, DefendantSources)
	detail.ThirdParties = Participants(raw, ThirdPartySources)
	detail.Others = Participants(raw, OtherSources)

	switch raw.Instances.Dialect {
	case models.DialectArbitration:
		detail.Dialect = models.DialectArbitration
		detail.Instances = n.arbitrationInstances(raw.Instances.Tiers)
	case models.DialectGeneral:
		detail.Dialect = models.DialectGeneral
		detail.Instances = n.generalInstances(raw, detail.Court)
	case models.DialectUnknown:
		detail.Dialect = dialectOf(detail.IsSou)
		detail.Instances = []models.Instance{}
	}

	detail.CaseNumbersChain = CaseNumbersChain(detail.Instances, detail.Number)
	return detail, nil
}

func dialectOf(isSou bool) models.Dialect {
	if isSou {
		return models.DialectGeneral
	}
	return models.DialectArbitration
}

var (
	arbitrationNumber = regexp.MustCompile(`^[АA]\d+-`)
	generalNumber     = regexp.MustCompile(`^\d+-\d+/\d+`)
)

// IsSouByNumber classifies a case by its number when the backend omits the
// flag. Arbitration numbers start with the court letter; general-jurisdiction
// numbers look like "2-1234/2024". Anything else is treated as arbitration.
func IsSouByNumber(number string) bool {
	number = strings.TrimSpace(number)
	if arbitrationNumber.MatchString(number) {
		return false
	}
	return generalNumber.MatchString(number)
}

// Summaries fills in the general-jurisdiction flag on case summaries that lack it.
func Summaries(cases []models.LegalCase) []models.LegalCase {
	out := slices.Clone(cases)
	for i := range out {
		if out[i].IsSou != nil {
			continue
		}
		sou := IsSouByNumber(firstNonEmpty(out[i].Value, out[i].Name))
		out[i].IsSou = &sou
	}
	return out
}

// CaseNumbersChain joins distinct instance case numbers, highest tier first as
// delivered, falling back to the case number.
func CaseNumbersChain(instances []models.Instance, fallback string) string {
	var numbers []string
	for _, inst := range instances {
		if inst.CaseNumber != "" && !slices.Contains(numbers, inst.CaseNumber) {
			numbers = append(numbers, inst.CaseNumber)
		}
	}
	if len(numbers) == 0 {
		return fallback
	}
	return strings.Join(numbers, chainSeparator)
}

func shortInfo(raw *models.RawCaseDetail) models.RawShortInfo {
	if raw.ShortInfo == nil {
		return models.RawShortInfo{}
	}
	return *raw.ShortInfo
}

func session(raw *models.RawCaseDetail) models.RawSession {
	if raw.NearestSession == nil {
		return models.RawSession{}
	}
	return *raw.NearestSession
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
