// Package credentials resolves the Fastmail username and app passwords used
// by the CalDAV and CardDAV clients.
//
// Values come only from the process environment:
//
//	FASTMAIL_USERNAME            account name, e.g. jane@fastmail.com
//	FASTMAIL_CALDAV_PASSWORD     app password for CalDAV
//	FASTMAIL_APP_PASSWORD        fallback for CalDAV
//	FASTMAIL_CARDDAV_PASSWORD    app password for CardDAV
package credentials
