package audit

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ExportSuite tests the CSV serialization used for audit downloads.
//
// Justification: exported files are consumed by external compliance
// tooling, so the format must survive a round trip through a standard
// CSV parser even when fields contain delimiters or quotes.
type ExportSuite struct {
	suite.Suite
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportSuite))
}

func (s *ExportSuite) TestHeaderAndFieldOrder() {
	ts := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	data := ToCSV([]Entry{{
		Timestamp:    ts,
		Action:       ActionUpdate,
		ResourceType: "claims",
		ResourceID:   "CLM-88",
		UserAgent:    "Mozilla/5.0",
	}})

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal([]string{"Timestamp", "Action", "Resource Type", "Resource ID", "User Agent"}, records[0])
	s.Equal([]string{"2025-03-14T09:26:53Z", "update", "claims", "CLM-88", "Mozilla/5.0"}, records[1])
}

func (s *ExportSuite) TestEveryFieldIsQuoted() {
	data := ToCSV([]Entry{{
		Timestamp:    time.Now().UTC(),
		Action:       ActionCreate,
		ResourceType: "patients",
		ResourceID:   "PAT-1",
	}})

	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		s.True(strings.HasPrefix(line, `"`), "line %q must start quoted", line)
		s.True(strings.HasSuffix(line, `"`), "line %q must end quoted", line)
		s.Len(strings.Split(line, `","`), len(csvHeader), "every separator must be quote-comma-quote")
	}
}

func (s *ExportSuite) TestEmbeddedDelimitersSurviveRoundTrip() {
	data := ToCSV([]Entry{{
		Timestamp:    time.Now().UTC(),
		Action:       ActionDelete,
		ResourceType: "prior_authorizations",
		ResourceID:   `auth "urgent", batch 2`,
		UserAgent:    "custom/1.0 (a, b)",
	}})

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(`auth "urgent", batch 2`, records[1][3])
	s.Equal("custom/1.0 (a, b)", records[1][4])
}

func (s *ExportSuite) TestEmptySetProducesHeaderOnly() {
	records, err := csv.NewReader(bytes.NewReader(ToCSV(nil))).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("Timestamp", records[0][0])
}
