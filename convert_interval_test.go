package tsodbc

import (
	"testing"
)

func TestConvertInterval(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		text      string
		target    NativeType
		precision int16
		want      IntervalStruct
	}{
		{
			name:   "YearToMonth",
			text:   "1-2",
			target: CIntervalYearToMonth,
			want:   IntervalStruct{Kind: IsYearToMonth, YearMonth: YearMonth{Year: 1, Month: 2}},
		},
		{
			name:   "NegativeYearToMonth",
			text:   "-1-2",
			target: CIntervalYearToMonth,
			want:   IntervalStruct{Kind: IsYearToMonth, Sign: 1, YearMonth: YearMonth{Year: 1, Month: 2}},
		},
		{
			name:   "Years",
			text:   "3 years",
			target: CIntervalYear,
			want:   IntervalStruct{Kind: IsYear, YearMonth: YearMonth{Year: 3}},
		},
		{
			name:   "YearsAndMonths",
			text:   "2 years 3 mons",
			target: CIntervalMonth,
			want:   IntervalStruct{Kind: IsMonth, YearMonth: YearMonth{Year: 2, Month: 3}},
		},
		{
			name:   "Days",
			text:   "5 days",
			target: CIntervalDay,
			want:   IntervalStruct{Kind: IsDay, DaySecond: DaySecond{Day: 5}},
		},
		{
			name:      "DayToSecond",
			text:      "3 04:05:06.789",
			target:    CIntervalDayToSecond,
			precision: 3,
			want: IntervalStruct{Kind: IsDayToSecond,
				DaySecond: DaySecond{Day: 3, Hour: 4, Minute: 5, Second: 6, Fraction: 789}},
		},
		{
			name:      "DefaultPrecision",
			text:      "3 04:05:06.789",
			target:    CIntervalDayToSecond,
			precision: -1,
			want: IntervalStruct{Kind: IsDayToSecond,
				DaySecond: DaySecond{Day: 3, Hour: 4, Minute: 5, Second: 6, Fraction: 789000}},
		},
		{
			name:   "NegativeDayToSecond",
			text:   "-3 04:05:06",
			target: CIntervalDayToSecond,
			want: IntervalStruct{Kind: IsDayToSecond, Sign: 1,
				DaySecond: DaySecond{Day: 3, Hour: 4, Minute: 5, Second: 6}},
		},
		{
			name:   "DaysWithClock",
			text:   "2 days 01:02:03",
			target: CIntervalDayToSecond,
			want: IntervalStruct{Kind: IsDayToSecond,
				DaySecond: DaySecond{Day: 2, Hour: 1, Minute: 2, Second: 3}},
		},
		{
			name:      "ClockOnly",
			text:      "01:02:03.5",
			target:    CIntervalHourToSecond,
			precision: 2,
			want: IntervalStruct{Kind: IsHourToSecond,
				DaySecond: DaySecond{Hour: 1, Minute: 2, Second: 3, Fraction: 50}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, intervalStructSize)
			res, err := e.Convert(Text(tt.text), TypeVarchar,
				Slot{Type: tt.target, Buffer: buf, Precision: tt.precision}, nil)
			if err != nil {
				t.Fatalf("Failed to convert %q: %v", tt.text, err)
			}
			if res.Value != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, res.Value)
			}
			if got := decodeInterval(buf); got != tt.want {
				t.Errorf("Expected buffer to decode to %+v, got %+v", tt.want, got)
			}
			if res.Length != intervalStructSize {
				t.Errorf("Expected length %d, got %d", intervalStructSize, res.Length)
			}
		})
	}
}

func TestConvertIntervalInvalid(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		text   string
		target NativeType
	}{
		{"1-2", CIntervalDayToSecond},
		{"3 days", CIntervalYear},
		{"01:02:03", CIntervalYearToMonth},
		{"soon", CIntervalDay},
	}
	for _, tt := range tests {
		_, err := e.Convert(Text(tt.text), TypeVarchar,
			Slot{Type: tt.target, Buffer: make([]byte, intervalStructSize)}, nil)
		if CodeOf(err) != CodeInvalidStringConversion {
			t.Errorf("%q as %s: expected InvalidStringConversion, got %v", tt.text, tt.target, err)
		}
	}
}

func TestIntervalLiteralText(t *testing.T) {
	tests := []struct {
		iv        IntervalStruct
		precision int
		want      string
	}{
		{IntervalStruct{Kind: IsYear, YearMonth: YearMonth{Year: 3}}, 0, "3 years"},
		{IntervalStruct{Kind: IsMonth, Sign: 1, YearMonth: YearMonth{Month: 4}}, 0, "-4 mons"},
		{IntervalStruct{Kind: IsYearToMonth, YearMonth: YearMonth{Year: 1, Month: 2}}, 0, "1-2"},
		{IntervalStruct{Kind: IsDayToSecond, DaySecond: DaySecond{Day: 1, Hour: 2, Minute: 3, Second: 4, Fraction: 5}}, 3, "1 02:03:04.005"},
		{IntervalStruct{Kind: IsDayToSecond, DaySecond: DaySecond{Day: 1, Hour: 2, Minute: 3, Second: 4}}, 0, "1 02:03:04"},
		{IntervalStruct{Kind: IsDayToSecond, DaySecond: DaySecond{Second: 1, Fraction: 7}}, -1, "0 00:00:01.000007"},
	}
	for _, tt := range tests {
		if got := intervalText(tt.iv, tt.precision); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
