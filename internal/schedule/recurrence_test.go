package schedule

import (
	"strings"
	"testing"
)

func TestParseRecurrence_Valid(t *testing.T) {
	tests := []struct {
		name   string
		fields [5]string
		spec   string
	}{
		{"every minute", [5]string{"*", "*", "*", "*", "*"}, "* * * * *"},
		{"daily", [5]string{"30", "22", "*", "*", "*"}, "30 22 * * *"},
		{"weekly", [5]string{"0", "13", "*", "*", "0"}, "0 13 * * SUN"},
		{"weekdays list", [5]string{"15", "6", "*", "*", "1,3,5"}, "15 6 * * MON,WED,FRI"},
		{"monthly", [5]string{"0", "0", "1", "*", "*"}, "0 0 1 * *"},
		{"saturday", [5]string{"5", "23", "*", "*", "6"}, "5 23 * * SAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseRecurrence(tt.fields[0], tt.fields[1], tt.fields[2], tt.fields[3], tt.fields[4])
			if err != nil {
				t.Fatalf("ParseRecurrence failed: %v", err)
			}
			if got := r.CronSpec(); got != tt.spec {
				t.Errorf("Expected spec %q, got %q", tt.spec, got)
			}
		})
	}
}

func TestParseRecurrence_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields [5]string
		errSub string
	}{
		{"minute too big", [5]string{"60", "*", "*", "*", "*"}, "minute"},
		{"hour too big", [5]string{"0", "24", "*", "*", "*"}, "hour"},
		{"day zero", [5]string{"0", "0", "0", "*", "*"}, "day-of-month"},
		{"month 13", [5]string{"0", "0", "*", "13", "*"}, "month"},
		{"dow 7", [5]string{"0", "0", "*", "*", "7"}, "day-of-week"},
		{"negative", [5]string{"-1", "*", "*", "*", "*"}, "minute"},
		{"garbage", [5]string{"abc", "*", "*", "*", "*"}, "minute"},
		{"empty field", [5]string{"", "*", "*", "*", "*"}, "minute"},
		{"bad list element", [5]string{"0", "0", "*", "*", "1,9"}, "day-of-week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecurrence(tt.fields[0], tt.fields[1], tt.fields[2], tt.fields[3], tt.fields[4])
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Expected error mentioning %q, got %q", tt.errSub, err)
			}
		})
	}
}

func TestRecurrence_RoundTrip(t *testing.T) {
	orig, err := ParseRecurrence("15", "6", "*", "*", "1,3,5")
	if err != nil {
		t.Fatalf("ParseRecurrence failed: %v", err)
	}

	back, err := FromCronSpec(orig.CronSpec())
	if err != nil {
		t.Fatalf("FromCronSpec failed: %v", err)
	}

	if back != orig {
		t.Errorf("Round trip changed recurrence: %v != %v", back, orig)
	}
}

func TestFromCronSpec_Invalid(t *testing.T) {
	if _, err := FromCronSpec("* * * *"); err == nil {
		t.Error("Expected error for four fields")
	}
	if _, err := FromCronSpec("0 0 * * FOO"); err == nil {
		t.Error("Expected error for unknown day name")
	}
}

func TestRecurrence_String(t *testing.T) {
	r, err := ParseRecurrence("0", "13", "*", "*", "0")
	if err != nil {
		t.Fatalf("ParseRecurrence failed: %v", err)
	}
	if got := r.String(); got != "0 13 * * 0" {
		t.Errorf("Expected numeric rendering, got %q", got)
	}
}

func TestCommand_Args(t *testing.T) {
	cmd := Command{
		Title:     "Morning Show",
		Feed:      "morning-show",
		StationID: "TBS",
		Start:     "202609011300",
		End:       "202609011400",
	}

	args := cmd.Args()
	want := []string{"Morning Show", "morning-show", "TBS", "202609011300", "202609011400", "", "", ""}
	if len(args) != len(want) {
		t.Fatalf("Expected %d args, got %d", len(want), len(args))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg[%d]: expected %q, got %q", i, want[i], args[i])
		}
	}

	folder := int64(7)
	cmd.FolderID = &folder
	if got := cmd.Args()[6]; got != "7" {
		t.Errorf("Expected folder slot %q, got %q", "7", got)
	}
}

func TestJobID(t *testing.T) {
	if got := JobID(KindRecurring, 3); got != "recurring:3" {
		t.Errorf("Expected recurring:3, got %q", got)
	}
	s := &OneTimeSchedule{ID: 9}
	if got := s.JobID(); got != "onetime:9" {
		t.Errorf("Expected onetime:9, got %q", got)
	}
}
