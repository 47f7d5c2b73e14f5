package decode

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"legaltrack/internal/cases/models"
)

func TestBoolLike(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		ok    bool
	}{
		{`true`, true, true},
		{`1`, true, true},
		{`"1"`, true, true},
		{`"true"`, true, true},
		{`"TRUE"`, true, true},
		{`false`, false, true},
		{`0`, false, true},
		{`"0"`, false, true},
		{`"false"`, false, true},
		{`-3`, true, true},
		{`null`, false, false},
		{`"yes"`, false, false},
		{`1.5`, false, false},
		{`[]`, false, false},
		{`{}`, false, false},
		{`"2"`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := BoolLike(json.RawMessage(tt.input))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoolLikeChainRejectsNull(t *testing.T) {
	for i, try := range BoolLikeChain {
		for _, input := range []string{`null`, ` null `, ``} {
			got, ok := try(json.RawMessage(input))
			assert.False(t, ok, "interpretation %d accepted %q", i, input)
			assert.False(t, got)
		}
	}
}

func TestSideList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape models.SideShape
		names []string
	}{
		{"null", `null`, models.SideNull, nil},
		{"comma text", `"A, B"`, models.SideText, []string{"A", "B"}},
		{"semicolon text", `"A; B"`, models.SideText, []string{"A", "B"}},
		{"structured with null name", `[{"nameSide":"A"},{"nameSide":null}]`, models.SideItems, []string{"A"}},
		{"integer side type", `[{"sideType":1,"nameSide":"A"}]`, models.SideItems, []string{"A"}},
		{"flexible numeric name", `[{"sideType":true,"nameSide":42,"inn":7700}]`, models.SideItems, []string{"42"}},
		{"flexible skips non objects", `[{"nameSide":"A","sideType":[]}, 5, null]`, models.SideItems, []string{"A"}},
		{"empty array", `[]`, models.SideItems, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SideList(json.RawMessage(tt.input))
			require.True(t, ok)
			assert.Equal(t, tt.shape, got.Shape)
			names := got.Names()
			assert.NotContains(t, names, "")
			if tt.names == nil {
				assert.Empty(t, names)
				return
			}
			assert.Equal(t, tt.names, names)
		})
	}

	t.Run("number is absent", func(t *testing.T) {
		_, ok := SideList(json.RawMessage(`12`))
		assert.False(t, ok)
	})
	t.Run("flexible converts integer side type and identifiers", func(t *testing.T) {
		got, ok := SideList(json.RawMessage(`[{"sideType":2,"nameSide":"A","inn":7700,"ogrn":null,"kpp":false}]`))
		require.True(t, ok)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "2", got.Items[0].SideType)
		assert.Equal(t, "7700", got.Items[0].INN)
		assert.Empty(t, got.Items[0].OGRN)
		assert.Empty(t, got.Items[0].KPP)
	})
}

func TestAsInteger(t *testing.T) {
	for input, want := range map[string]int64{`12`: 12, `"34"`: 34, `5.0`: 5, `" 6 "`: 6} {
		got, ok := AsInteger(json.RawMessage(input))
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{`5.5`, `"x"`, `true`, `null`, `[]`} {
		_, ok := AsInteger(json.RawMessage(input))
		assert.False(t, ok, input)
	}
}

type CaseDetailSuite struct {
	suite.Suite
	decoder *Decoder
}

func TestCaseDetailSuite(t *testing.T) {
	suite.Run(t, new(CaseDetailSuite))
}

func (s *CaseDetailSuite) SetupTest() {
	s.decoder = New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func (s *CaseDetailSuite) load(name string) []byte {
	b, err := os.ReadFile("testdata/" + name)
	s.Require().NoError(err)
	return b
}

func (s *CaseDetailSuite) TestArbitrationDetail() {
	raw, err := s.decoder.CaseDetail(s.load("arbitration_detail.json"))
	s.Require().NoError(err)

	s.EqualValues(101, raw.ID)
	s.Equal("А40-12345/2024", raw.Value)
	s.Require().NotNil(raw.IsSou)
	s.False(*raw.IsSou)
	s.Equal("ООО Ромашка, ООО Лютик", raw.Plaintiffs)
	s.Equal(models.SideItems, raw.SideDf.Shape)
	s.Equal([]string{"ООО Василек"}, raw.SideDf.Names())
	s.Equal("2", raw.SideDf.Items[1].SideType)
	s.Require().NotNil(raw.ShortInfo)
	s.Equal("Петров П.П.", raw.ShortInfo.Judge)
	s.Require().NotNil(raw.NearestSession)
	s.Equal("301", raw.NearestSession.Cabinet)

	s.Equal(models.DialectArbitration, raw.Instances.Dialect)
	s.Require().Len(raw.Instances.Tiers, 1, "non-object tiers are dropped")
	tier := raw.Instances.Tiers[0]
	s.Equal("Первая инстанция", tier.InstanceName)
	s.Require().Len(tier.Items, 2)
	s.Equal("doc-1", tier.Items[0].ID)
	s.Equal([]string{"pdf"}, tier.Items[0].ContentTypes)

	lenient := tier.Items[1]
	s.Equal("77", lenient.ID, "numeric id read by the fallback decoder")
	s.True(lenient.IsAct)
	s.Equal(1, lenient.InstanceLevel)
}

func (s *CaseDetailSuite) TestGeneralDetail() {
	raw, err := s.decoder.CaseDetail(s.load("general_detail.json"))
	s.Require().NoError(err)

	s.EqualValues(202, raw.ID)
	s.Require().NotNil(raw.IsSou)
	s.True(*raw.IsSou)
	s.Equal(models.SideNull, raw.SidePl.Shape)
	s.Equal(models.SideText, raw.SideDf.Shape)
	s.Require().NotNil(raw.Sides)
	s.Require().Len(raw.Sides.Plaintiffs, 1)
	s.Equal("123", raw.Sides.Plaintiffs[0].INN, "lenient party decode")
	s.Equal("Москва", raw.Sides.Plaintiffs[0].Address)

	s.Equal(models.DialectGeneral, raw.Instances.Dialect)
	s.Len(raw.Instances.Buckets[models.BucketEvents], 2)
	s.Len(raw.Instances.Buckets[models.BucketActs], 1)
	s.Len(raw.Instances.Buckets[models.BucketStatusHistory], 1)
	s.Equal("10:00", raw.Instances.Buckets[models.BucketEvents][0].Time)
}

func (s *CaseDetailSuite) TestBareRecordWithoutEnvelope() {
	raw, err := s.decoder.CaseDetail([]byte(`{"id": 5, "value": "А41-1/2024", "is_sou": "maybe"}`))
	s.Require().NoError(err)
	s.EqualValues(5, raw.ID)
	s.Nil(raw.IsSou, "unrecognized flag degrades to absent")
	s.False(raw.Instances.Present())
}

func (s *CaseDetailSuite) TestMalformedRecords() {
	cases := map[string]string{
		"not an object":  `[1,2]`,
		"not json":       `<html>`,
		"missing id":     `{"data": {"value": "x"}}`,
		"null id":        `{"id": null}`,
		"non numeric id": `{"id": "abc"}`,
		"empty":          ``,
	}
	for name, body := range cases {
		s.Run(name, func() {
			_, err := s.decoder.CaseDetail([]byte(body))
			s.ErrorIs(err, ErrMalformedRecord)
		})
	}
}

func (s *CaseDetailSuite) TestDegradedFieldsDoNotFailRecord() {
	body := `{"id": 9, "name": {"x": 1}, "side_df": 15, "sides": "oops", "nearest_session": [1], "instances": "text", "judge": ["a"]}`
	raw, err := s.decoder.CaseDetail([]byte(body))
	s.Require().NoError(err)
	s.Empty(raw.Name)
	s.Empty(raw.Judge)
	s.Equal(models.SideAbsent, raw.SideDf.Shape)
	s.Nil(raw.Sides)
	s.Nil(raw.NearestSession)
	s.False(raw.Instances.Present())
}

func (s *CaseDetailSuite) TestInstancesProbe() {
	s.Run("object without known buckets is absent", func() {
		got := s.decoder.Instances(json.RawMessage(`{"Events": []}`), 1)
		s.False(got.Present())
	})
	s.Run("empty array is arbitration with no tiers", func() {
		got := s.decoder.Instances(json.RawMessage(`[]`), 1)
		s.Equal(models.DialectArbitration, got.Dialect)
		s.Empty(got.Tiers)
	})
	s.Run("bucket that is not a list is skipped", func() {
		got := s.decoder.Instances(json.RawMessage(`{"События": "none", "Судебные акты": []}`), 1)
		s.Equal(models.DialectGeneral, got.Dialect)
		_, hasEvents := got.Buckets[models.BucketEvents]
		s.False(hasEvents)
	})
}
