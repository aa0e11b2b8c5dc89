// Package models defines the persisted domain types for Splitledger.
//
// Users register with an email and password. Groups own a roster of members
// and a list of expenses. A member is either a registered user, identified by
// the user ID, or an invited email that has not registered yet, identified by
// a pending ID (see NewPendingMemberID). Pending IDs are rebound to the user ID
// when the invited email registers.
//
// Expenses record who paid and the owed-by list: how much of the total each
// member is responsible for, the payer's own share included. Balances are never
// stored; they are derived from expenses by the calculator package.
//
// Relationships use ID strings rather than pointers, and timestamps are Unix
// seconds.
package models
