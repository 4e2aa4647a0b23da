package export_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/export"
)

func TestOvertimeJSON(t *testing.T) {
	got := export.OvertimeJSON(reportFixture())

	assert.Nil(t, got.ID, "unarchived report has no ID")
	assert.Nil(t, got.CreatedAt)
	assert.Nil(t, got.From)
	require.Len(t, got.Records, 2)

	first := got.Records[0]
	assert.Equal(t, "05-Mar-2024", first.Label)
	assert.Equal(t, "Tuesday", first.Weekday)
	require.NotNil(t, first.HomeArrival)
	assert.Equal(t, "18:07", *first.HomeArrival)

	assert.Nil(t, got.Records[1].HomeArrival)
	assert.True(t, got.Records[1].FullDay)
}

func TestOvertimeJSON_ArchivedWithPattern(t *testing.T) {
	report := reportFixture()
	report.ID = uuid.New()
	report.CreatedAt = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	report.Range = domain.DateRange{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}

	p := domain.WorkPattern{
		Month:           domain.Month{Year: 2024, Month: time.March},
		WorkedSaturdays: domain.DateSet{},
		WorkedSundays:   domain.DateSet{},
		OffDays:         domain.DateSet{},
	}
	p.WorkedSundays.Add(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	p.OffDays.Add(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	p.OffDays.Add(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	report.Patterns = []domain.WorkPattern{p}

	got := export.OvertimeJSON(report)

	require.NotNil(t, got.ID)
	assert.Equal(t, report.ID, *got.ID)
	require.NotNil(t, got.From)
	assert.Nil(t, got.To)
	require.Len(t, got.Patterns, 1)
	assert.Equal(t, "2024-03", got.Patterns[0].Month)
	assert.Empty(t, got.Patterns[0].WorkedSaturdays)
	require.Len(t, got.Patterns[0].OffDays, 2)
	assert.Equal(t, "2024-03-08", got.Patterns[0].OffDays[0].Time.Format(domain.DateLayout))
}

func TestWriteOvertimeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteOvertimeJSON(&buf, reportFixture()))

	var body map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.InDelta(t, 8.5, body["total_hours"], 1e-9)
	records := body["records"].([]any)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-05", records[0].(map[string]any)["date"])
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteSummaryJSON(&buf, summaryFixture()))

	var body export.MileageSummaryJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	require.Len(t, body.Days, 1)
	assert.Equal(t, "05-Mar-2024", body.Days[0].Label)
	assert.Equal(t, []string{"UB3", "UB2", "UB3"}, body.Days[0].Postcodes)
	assert.InDelta(t, 15.5, body.TotalMiles, 1e-9)
}

func TestWriteOvertime_Dispatch(t *testing.T) {
	var csvBuf, jsonBuf bytes.Buffer
	require.NoError(t, export.WriteOvertime(&csvBuf, export.CSV, reportFixture()))
	require.NoError(t, export.WriteOvertime(&jsonBuf, export.JSON, reportFixture()))

	assert.Contains(t, csvBuf.String(), "Overtime Hours")
	assert.Contains(t, jsonBuf.String(), `"records"`)
}
