package domain

import (
	"testing"
	"time"
)

func TestDueReminderWindows(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	sent := &now

	cases := []struct {
		name string
		lead Lead
		want ReminderKind
		ok   bool
	}{
		{"four hours away", Lead{Status: StatusAppointment, AppointmentAt: at(4 * time.Hour)}, Reminder5h, true},
		{"exactly five hours", Lead{Status: StatusAppointment, AppointmentAt: at(5 * time.Hour)}, Reminder5h, true},
		{"six hours away", Lead{Status: StatusAppointment, AppointmentAt: at(6 * time.Hour)}, "", false},
		{"five hour already sent", Lead{Status: StatusAppointment, AppointmentAt: at(3 * time.Hour), Reminder5hAt: sent}, "", false},
		{"forty minutes away", Lead{Status: StatusAppointment, AppointmentAt: at(40 * time.Minute)}, Reminder1h, true},
		{"one hour sent", Lead{Status: StatusAppointment, AppointmentAt: at(40 * time.Minute), Reminder1hAt: sent}, "", false},
		{"1h window ignores 5h flag", Lead{Status: StatusAppointment, AppointmentAt: at(30 * time.Minute), Reminder5hAt: sent}, Reminder1h, true},
		{"in the past", Lead{Status: StatusAppointment, AppointmentAt: at(-time.Minute)}, "", false},
		{"not an appointment", Lead{Status: StatusCallback, AppointmentAt: at(time.Hour)}, "", false},
		{"no time", Lead{Status: StatusAppointment}, "", false},
	}

	for _, tc := range cases {
		got, ok := tc.lead.DueReminder(now)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s: expected (%q, %v), got (%q, %v)", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}
