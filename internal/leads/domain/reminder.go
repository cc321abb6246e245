package domain

import "time"

// ReminderKind names one of the two appointment reminders.
type ReminderKind string

const (
	Reminder5h ReminderKind = "5h"
	Reminder1h ReminderKind = "1h"
)

// Lead time of each reminder before the appointment.
const (
	Reminder5hLead = 5 * time.Hour
	Reminder1hLead = time.Hour
)

// DueReminder classifies which reminder, if any, is due at now. An appointment
// within the next hour gets the 1-hour reminder; one between one and five hours
// away gets the 5-hour reminder. A reminder already sent is never due again.
func (l Lead) DueReminder(now time.Time) (ReminderKind, bool) {
	if l.AppointmentAt == nil || l.Status != StatusAppointment {
		return "", false
	}
	until := l.AppointmentAt.Sub(now)
	switch {
	case until <= 0:
		return "", false
	case until <= Reminder1hLead:
		if l.Reminder1hAt == nil {
			return Reminder1h, true
		}
	case until <= Reminder5hLead:
		if l.Reminder5hAt == nil {
			return Reminder5h, true
		}
	}
	return "", false
}
