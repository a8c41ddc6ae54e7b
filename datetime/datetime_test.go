package datetime

import (
	"testing"
	"time"
)

func TestStringForms(t *testing.T) {
	tests := []struct {
		name string
		dt   Datetime
		want string
	}{
		{
			"offset datetime",
			Datetime{
				Date:   &Date{Year: 1979, Month: 5, Day: 27},
				Time:   &Time{Hour: 7, Minute: 32, Second: 0},
				Offset: &Offset{Z: true},
			},
			"1979-05-27T07:32:00Z",
		},
		{
			"negative offset",
			Datetime{
				Date:   &Date{Year: 1979, Month: 5, Day: 27},
				Time:   &Time{Hour: 0, Minute: 32, Second: 0},
				Offset: &Offset{Minutes: -7 * 60},
			},
			"1979-05-27T00:32:00-07:00",
		},
		{
			"local datetime with fraction",
			Datetime{
				Date: &Date{Year: 1979, Month: 5, Day: 27},
				Time: &Time{Hour: 0, Minute: 32, Second: 0, Nanosecond: 999999000},
			},
			"1979-05-27T00:32:00.999999",
		},
		{
			"local date",
			Datetime{Date: &Date{Year: 1979, Month: 5, Day: 27}},
			"1979-05-27",
		},
		{
			"local time",
			Datetime{Time: &Time{Hour: 7, Minute: 32, Second: 0}},
			"07:32:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dt.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"1979-05-27T07:32:00Z",
		"1979-05-27T00:32:00-07:00",
		"1979-05-27T00:32:00.999999",
		"1979-05-27",
		"07:32:00",
		"00:32:00.5",
	}
	for _, in := range inputs {
		dt, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", in, err)
			continue
		}
		if got := dt.String(); got != in {
			t.Errorf("Parse(%q).String() = %q", in, got)
		}
	}
}

func TestParseSeparators(t *testing.T) {
	for _, in := range []string{
		"1979-05-27T07:32:00Z",
		"1979-05-27t07:32:00z",
		"1979-05-27 07:32:00Z",
	} {
		dt, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", in, err)
		}
		if dt.Date == nil || dt.Time == nil || dt.Offset == nil {
			t.Errorf("Parse(%q) missing parts: %+v", in, dt)
		}
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"not a date",
		"1979-13-27",          // month out of range
		"1979-02-30",          // day out of range
		"1979-05-27X07:32:00", // bad separator
		"25:00:00",            // hour out of range
		"07:32:00+07:00",      // offset without a date
		"07:32",               // missing seconds
	}
	for _, in := range bad {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should have failed", in)
		}
	}
}

func TestLeapYear(t *testing.T) {
	if _, err := Parse("2000-02-29"); err != nil {
		t.Errorf("2000-02-29 is a valid date: %v", err)
	}
	if _, err := Parse("1900-02-29"); err == nil {
		t.Error("1900-02-29 should be rejected (1900 is not a leap year)")
	}
}

func TestTimeConversion(t *testing.T) {
	orig := time.Date(2024, 3, 15, 10, 30, 45, 120000000, time.UTC)
	dt := FromTime(orig)
	if dt.String() != "2024-03-15T10:30:45.12Z" {
		t.Errorf("unexpected canonical form: %s", dt.String())
	}
	back := dt.AsTime(time.Local)
	if !back.Equal(orig) {
		t.Errorf("round trip through Datetime changed the instant: %v != %v", back, orig)
	}
}

func TestIsValid(t *testing.T) {
	if (Datetime{}).IsValid() {
		t.Error("empty datetime should be invalid")
	}
	offsetOnlyTime := Datetime{
		Time:   &Time{Hour: 7},
		Offset: &Offset{Z: true},
	}
	if offsetOnlyTime.IsValid() {
		t.Error("offset requires both date and time")
	}
}
