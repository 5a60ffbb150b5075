// Package carddav reads contacts from Fastmail address books over CardDAV
// and computes upcoming birthdays.
//
// Birthdays are kept as the raw vCard BDAY string. ParseBirthday
// understands the forms Fastmail and common clients write:
//
//	1990-05-20   complete date
//	19900520     compact date
//	--05-20      date without year
//	05-20        month and day
package carddav
