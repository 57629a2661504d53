package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	parsed, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 30}, parsed)

	_, err = ParseTimeOfDay("nonsense")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("10:75")
	assert.Error(t, err)
}

func TestTimeOfDayDisplay(t *testing.T) {
	cases := []struct {
		in   TimeOfDay
		want string
	}{
		{TimeOfDay{Hour: 0, Minute: 0}, "12:00 AM"},
		{TimeOfDay{Hour: 9, Minute: 5}, "9:05 AM"},
		{TimeOfDay{Hour: 12, Minute: 0}, "12:00 PM"},
		{TimeOfDay{Hour: 13, Minute: 30}, "1:30 PM"},
		{TimeOfDay{Hour: 23, Minute: 59}, "11:59 PM"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.Display(), "display of %s", tc.in)
	}
}

func TestTimeOfDayAddMinutesCarries(t *testing.T) {
	next := TimeOfDay{Hour: 9, Minute: 45}.AddMinutes(30)
	assert.Equal(t, TimeOfDay{Hour: 10, Minute: 15}, next)

	// Generation compares against a window end instead of wrapping, so an
	// overrun past midnight stays monotonic.
	late := TimeOfDay{Hour: 23, Minute: 30}.AddMinutes(60)
	assert.Equal(t, TimeOfDay{Hour: 24, Minute: 30}, late)
	assert.True(t, TimeOfDay{Hour: 23, Minute: 59}.Before(late))
}

func TestTimeOfDayJSON(t *testing.T) {
	raw, err := json.Marshal(TimeOfDay{Hour: 14, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, `"14:05"`, string(raw))

	var decoded TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"08:00"`), &decoded))
	assert.Equal(t, TimeOfDay{Hour: 8}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"junk"`), &decoded))
}

func TestDisplayDateDerivedFromCanonical(t *testing.T) {
	assert.Equal(t, "Tuesday, January 2, 2024", DisplayDate("2024-01-02"))

	// An unparseable stored value falls back to itself rather than lying.
	assert.Equal(t, "not-a-date", DisplayDate("not-a-date"))
}

func TestCompareSlotsOrdering(t *testing.T) {
	a := Slot{ID: "a", Date: "2024-01-02", Time: TimeOfDay{Hour: 9}}
	b := Slot{ID: "b", Date: "2024-01-02", Time: TimeOfDay{Hour: 10}}
	c := Slot{ID: "c", Date: "2024-01-03", Time: TimeOfDay{Hour: 8}}

	assert.Negative(t, CompareSlots(a, b))
	assert.Negative(t, CompareSlots(b, c))
	assert.Positive(t, CompareSlots(c, a))
	assert.Zero(t, CompareSlots(a, a))
}

func TestSlotConfigValidate(t *testing.T) {
	valid := SlotConfig{
		Date:       "2024-01-02",
		StartTime:  TimeOfDay{Hour: 9},
		EndTime:    TimeOfDay{Hour: 17},
		SlotLength: 30,
	}
	assert.NoError(t, valid.Validate())

	badDate := valid
	badDate.Date = "02/01/2024"
	assert.True(t, IsValidation(badDate.Validate()))

	badLength := valid
	badLength.SlotLength = 0
	assert.True(t, IsValidation(badLength.Validate()))

	inverted := valid
	inverted.StartTime, inverted.EndTime = inverted.EndTime, inverted.StartTime
	assert.True(t, IsValidation(inverted.Validate()))

	degenerate := valid
	degenerate.EndTime = degenerate.StartTime
	assert.True(t, IsValidation(degenerate.Validate()))
}

func TestVisitorDetailsValidate(t *testing.T) {
	valid := VisitorDetails{Name: "Ann Visitor", Email: "ann@example.com", Phone: "555-0101"}
	assert.NoError(t, valid.Validate())

	missingName := valid
	missingName.Name = "  "
	assert.True(t, IsValidation(missingName.Validate()))

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.True(t, IsValidation(badEmail.Validate()))

	missingPhone := valid
	missingPhone.Phone = ""
	assert.True(t, IsValidation(missingPhone.Validate()))
}
