package bot

import (
	"testing"
	"time"

	kit "postbot/internal/transport"
)

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"00:00", 0, 0, false},
		{"9:05", 9, 5, false},
		{" 23:59 ", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"-1:10", 0, 0, true},
		{"12", 0, 0, true},
		{"12:30:00", 0, 0, true},
		{"aa:bb", 0, 0, true},
		{"+9:+30", 0, 0, true},
		{"-1:00", 0, 0, true},
		{"9:3a", 0, 0, true},
		{"9: 30", 0, 0, true},
		{"009:00", 0, 0, true},
		{":30", 0, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			h, m, err := parseHHMM(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseHHMM(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHHMM(%q): %v", tt.in, err)
			}
			if h != tt.h || m != tt.m {
				t.Fatalf("parseHHMM(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.h, tt.m)
			}
		})
	}
}

func TestDailyScheduleFiresOncePerDay(t *testing.T) {
	t.Parallel()
	sched, err := DailySchedule("14:30")
	if err != nil {
		t.Fatal(err)
	}

	// Same day when the time is still ahead.
	from := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if got, want := sched.Next(from), time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("Next(%v) = %v, want %v", from, got, want)
	}
	// Next day once it has passed, including the exact minute.
	from = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if got, want := sched.Next(from), time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("Next(%v) = %v, want %v", from, got, want)
	}

	// Walking a full day minute by minute hits exactly one firing.
	seen := map[time.Time]bool{}
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for cur := start; cur.Before(start.Add(24 * time.Hour)); cur = cur.Add(time.Minute) {
		next := sched.Next(cur)
		if next.Before(start.Add(24 * time.Hour)) {
			seen[next] = true
		}
	}
	if len(seen) != 1 {
		t.Fatalf("expected one firing within 24h, got %d: %v", len(seen), seen)
	}
}

func TestDailyScheduleUsesTimeLocation(t *testing.T) {
	t.Parallel()
	sched, err := DailySchedule("00:15")
	if err != nil {
		t.Fatal(err)
	}
	loc := time.FixedZone("UTC+7", 7*3600)
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, loc)
	got := sched.Next(from)
	if want := time.Date(2026, 6, 1, 0, 15, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestDailyScheduleRejectsBadTime(t *testing.T) {
	t.Parallel()
	if _, err := DailySchedule("25:00"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPostSpecDelivery(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec PostSpec
		want kit.MediaKind
	}{
		{"text", PostSpec{MediaKind: kit.MediaNone, MediaURL: "https://x/y.jpg"}, kit.MediaNone},
		{"image", PostSpec{MediaKind: kit.MediaImage, MediaURL: "https://x/y.jpg"}, kit.MediaImage},
		{"video", PostSpec{MediaKind: kit.MediaVideo, MediaURL: "https://x/y.mp4"}, kit.MediaVideo},
		{"image without url", PostSpec{MediaKind: kit.MediaImage}, kit.MediaNone},
		{"video without url", PostSpec{MediaKind: kit.MediaVideo}, kit.MediaNone},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.spec.Delivery(); got != tt.want {
				t.Fatalf("Delivery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestManagerWithoutSessionListsNothing(t *testing.T) {
	t.Parallel()
	m := New(nil)
	if got := m.ScheduledPosts(); len(got) != 0 {
		t.Fatalf("expected empty registry, got %v", got)
	}
	st := m.Status()
	if st.State != StateUninitialized || st.Timezone != "UTC" {
		t.Fatalf("unexpected status: %+v", st)
	}
}
